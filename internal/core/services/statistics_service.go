package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/presence-stats/internal/core/domain"
	apperrors "github.com/lorrc/presence-stats/internal/core/errors"
	"github.com/lorrc/presence-stats/internal/core/ports"
)

// DefaultEpochFloor is the start used when a request leaves it open.
var DefaultEpochFloor = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

// StatisticsOptions holds the collaborators of a StatisticsService that
// have sensible defaults.
type StatisticsOptions struct {
	Calendar   domain.BusinessCalendar // zero value means DefaultBusinessCalendar in UTC
	EpochFloor time.Time
	Clock      ports.Clock
	TxManager  ports.TransactionManager
	Observer   ports.StatisticsObserver
	Logger     *slog.Logger
}

// StatisticsService computes presence statistics from recorded status changes.
type StatisticsService struct {
	statusRepo ports.StatusRecordRepository
	userLookup ports.UserLookupService
	calendar   domain.BusinessCalendar
	epochFloor time.Time
	clock      ports.Clock
	txManager  ports.TransactionManager
	observer   ports.StatisticsObserver
	logger     *slog.Logger

	// unix nanoseconds of the last successful GetStats, 0 before the first
	lastComputed atomic.Int64
}

var _ ports.StatisticsService = (*StatisticsService)(nil)

// NewStatisticsService creates a new statistics service.
func NewStatisticsService(
	statusRepo ports.StatusRecordRepository,
	userLookup ports.UserLookupService,
	opts StatisticsOptions,
) *StatisticsService {
	if opts.Calendar == (domain.BusinessCalendar{}) {
		opts.Calendar = domain.DefaultBusinessCalendar(time.UTC)
	}
	if opts.EpochFloor.IsZero() {
		opts.EpochFloor = DefaultEpochFloor
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &StatisticsService{
		statusRepo: statusRepo,
		userLookup: userLookup,
		calendar:   opts.Calendar,
		epochFloor: opts.EpochFloor,
		clock:      opts.Clock,
		txManager:  opts.TxManager,
		observer:   opts.Observer,
		logger:     opts.Logger.With("component", "statistics_service"),
	}
}

// AvailableAt reconstructs the available count at the instant from all
// history before it.
func (s *StatisticsService) AvailableAt(ctx context.Context, userIDs []uuid.UUID, at time.Time) (int, error) {
	at = storePrecision(at)
	if len(userIDs) == 0 {
		return 0, nil
	}

	history, err := s.statusRepo.ListForUsersBetween(ctx, userIDs, nil, &at)
	if err != nil {
		return 0, apperrors.EventSourceError(err)
	}

	return domain.BaselineCount(history, at), nil
}

// Timeline returns the availability segments covering [start, min(end, now)).
func (s *StatisticsService) Timeline(ctx context.Context, userIDs []uuid.UUID, start, end time.Time) ([]domain.Segment, error) {
	now := s.clock.Now()
	start, end = storePrecision(start), storePrecision(end)

	var segments []domain.Segment
	err := s.readConsistently(ctx, func(ctx context.Context) error {
		baseline, err := s.AvailableAt(ctx, userIDs, start)
		if err != nil {
			return err
		}

		var events []domain.StatusEvent
		if len(userIDs) > 0 {
			events, err = s.statusRepo.ListForUsersBetween(ctx, userIDs, &start, &end)
			if err != nil {
				return apperrors.EventSourceError(err)
			}
		}

		segments = domain.BuildTimeline(baseline, events, start, end, now)

		s.logger.DebugContext(ctx, "timeline built",
			"users", len(userIDs),
			"baseline", baseline,
			"events", len(events),
			"segments", len(segments),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.annotate(ctx, segments); err != nil {
		return nil, err
	}

	return segments, nil
}

// GetStats computes the timeline for the requested window and aggregates it.
func (s *StatisticsService) GetStats(ctx context.Context, params ports.GetStatsParams) (*domain.PresenceStatistics, error) {
	began := time.Now()

	start := s.epochFloor
	if params.Start != nil {
		start = *params.Start
	}
	end := s.clock.Now()
	if params.End != nil {
		end = *params.End
	}
	start, end = storePrecision(start), storePrecision(end)

	segments, err := s.Timeline(ctx, params.UserIDs, start, end)
	if err != nil {
		s.observer.ObserveStatistics(0, time.Since(began), err)
		return nil, err
	}

	stats := domain.Summarize(segments, start, end, s.calendar)
	s.observer.ObserveStatistics(len(segments), time.Since(began), nil)
	s.lastComputed.Store(s.clock.Now().UnixNano())

	s.logger.DebugContext(ctx, "statistics computed",
		"start", start,
		"end", end,
		"total_time", stats.TotalTime,
		"total_time_online", stats.TotalTimeOnline,
		"total_time_online_business", stats.TotalTimeOnlineBusiness,
	)

	return &stats, nil
}

// LastComputedAt returns when GetStats last succeeded. ok is false until
// it has succeeded once.
func (s *StatisticsService) LastComputedAt() (at time.Time, ok bool) {
	nanos := s.lastComputed.Load()
	if nanos == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, nanos).UTC(), true
}

// storePrecision drops sub-millisecond precision, matching what the stores
// keep, so window queries and in-memory comparisons agree on boundaries.
func storePrecision(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}

func (s *StatisticsService) readConsistently(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txManager == nil {
		return fn(ctx)
	}
	return s.txManager.WithReadOnlyTransaction(ctx, fn)
}

// annotate fills in the display name of every triggering event that the
// store did not already resolve.
func (s *StatisticsService) annotate(ctx context.Context, segments []domain.Segment) error {
	if s.userLookup == nil {
		return nil
	}

	var userIDs []uuid.UUID
	for _, segment := range segments {
		if segment.Trigger != nil && segment.Trigger.UserDisplayName == "" {
			userIDs = append(userIDs, segment.Trigger.UserID)
		}
	}
	if len(userIDs) == 0 {
		return nil
	}

	names, err := s.userLookup.GetDisplayNames(ctx, userIDs)
	if err != nil {
		return err
	}

	for _, segment := range segments {
		if segment.Trigger != nil && segment.Trigger.UserDisplayName == "" {
			segment.Trigger.UserDisplayName = names[segment.Trigger.UserID]
		}
	}
	return nil
}

type noopObserver struct{}

func (noopObserver) ObserveStatistics(int, time.Duration, error) {}
