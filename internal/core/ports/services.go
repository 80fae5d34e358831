package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/presence-stats/internal/core/domain"
)

// GetStatsParams defines the input for computing presence statistics.
// A nil Start defaults to the configured epoch floor and a nil End to the
// current time.
type GetStatsParams struct {
	UserIDs []uuid.UUID
	Start   *time.Time
	End     *time.Time
}

// StatisticsService defines the port for presence statistics.
type StatisticsService interface {
	// AvailableAt returns how many of the users were available at the instant.
	AvailableAt(ctx context.Context, userIDs []uuid.UUID, at time.Time) (int, error)
	// Timeline returns the availability segments covering [start, end).
	Timeline(ctx context.Context, userIDs []uuid.UUID, start, end time.Time) ([]domain.Segment, error)
	// GetStats computes the timeline and its aggregates.
	GetStats(ctx context.Context, params GetStatsParams) (*domain.PresenceStatistics, error)
}

// UserLookupService resolves user display names.
type UserLookupService interface {
	GetDisplayNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// StatisticsObserver is notified after every statistics computation.
type StatisticsObserver interface {
	ObserveStatistics(segments int, elapsed time.Duration, err error)
}
