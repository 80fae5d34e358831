package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/presence-stats/internal/core/domain"
	"github.com/lorrc/presence-stats/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockStatusRecordRepository is a mock implementation of ports.StatusRecordRepository
type MockStatusRecordRepository struct {
	mock.Mock
}

func NewMockStatusRecordRepository() *MockStatusRecordRepository {
	return &MockStatusRecordRepository{}
}

func (m *MockStatusRecordRepository) ListForUsersBetween(
	ctx context.Context,
	userIDs []uuid.UUID,
	from, to *time.Time,
) ([]domain.StatusEvent, error) {
	args := m.Called(ctx, userIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusEvent), args.Error(1)
}

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockUserLookupService is a mock implementation of ports.UserLookupService
type MockUserLookupService struct {
	mock.Mock
}

func NewMockUserLookupService() *MockUserLookupService {
	return &MockUserLookupService{}
}

func (m *MockUserLookupService) GetDisplayNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}

// MockStatisticsService is a mock implementation of ports.StatisticsService
type MockStatisticsService struct {
	mock.Mock
}

func NewMockStatisticsService() *MockStatisticsService {
	return &MockStatisticsService{}
}

func (m *MockStatisticsService) AvailableAt(ctx context.Context, userIDs []uuid.UUID, at time.Time) (int, error) {
	args := m.Called(ctx, userIDs, at)
	return args.Int(0), args.Error(1)
}

func (m *MockStatisticsService) Timeline(ctx context.Context, userIDs []uuid.UUID, start, end time.Time) ([]domain.Segment, error) {
	args := m.Called(ctx, userIDs, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Segment), args.Error(1)
}

func (m *MockStatisticsService) GetStats(ctx context.Context, params ports.GetStatsParams) (*domain.PresenceStatistics, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PresenceStatistics), args.Error(1)
}

// MockTransactionManager is a mock implementation of ports.TransactionManager
// that runs the callback inline once the expectation is met.
type MockTransactionManager struct {
	mock.Mock
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// MockStatisticsObserver records every observation it receives.
type MockStatisticsObserver struct {
	mu           sync.Mutex
	Observations []Observation
}

type Observation struct {
	Segments int
	Err      error
}

func (m *MockStatisticsObserver) ObserveStatistics(segments int, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Observations = append(m.Observations, Observation{Segments: segments, Err: err})
}

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}
