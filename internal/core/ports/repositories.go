package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/presence-stats/internal/core/domain"
)

// StatusRecordRepository is the source of recorded status changes.
type StatusRecordRepository interface {
	// ListForUsersBetween returns the status events of the given users with
	// from <= created_at < to, ordered by created_at and then by insertion
	// order. A nil bound leaves that side of the range open. An empty user
	// set yields no events.
	ListForUsersBetween(ctx context.Context, userIDs []uuid.UUID, from, to *time.Time) ([]domain.StatusEvent, error)
}

// UserRepository provides read access to user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// TransactionManager runs a group of reads against one consistent snapshot.
type TransactionManager interface {
	WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
