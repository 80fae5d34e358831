package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/presence-stats/internal/core/domain"
	"github.com/lorrc/presence-stats/internal/core/ports"
	"github.com/lorrc/presence-stats/internal/core/utils"
)

type StatusRecordRepository struct {
	pool *pgxpool.Pool
}

var _ ports.StatusRecordRepository = (*StatusRecordRepository)(nil)

func NewStatusRecordRepository(pool *pgxpool.Pool) ports.StatusRecordRepository {
	return &StatusRecordRepository{pool: pool}
}

func (r *StatusRecordRepository) ListForUsersBetween(
	ctx context.Context,
	userIDs []uuid.UUID,
	from, to *time.Time,
) ([]domain.StatusEvent, error) {
	if len(userIDs) == 0 {
		return []domain.StatusEvent{}, nil
	}

	const query = `
SELECT s.id, s.user_id, s.status, s.reason, s.created_at, u.full_name, u.email
FROM user_statuses s
LEFT JOIN users u ON u.id = s.user_id
WHERE s.user_id = ANY($1)
  AND ($2::timestamptz IS NULL OR s.created_at >= $2)
  AND ($3::timestamptz IS NULL OR s.created_at < $3)
ORDER BY s.created_at, s.id
`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query,
		utils.ToUUIDs(userIDs),
		utils.ToNullTimestamptz(from),
		utils.ToNullTimestamptz(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.StatusEvent, 0)
	for rows.Next() {
		var (
			id        int64
			userID    pgtype.UUID
			status    string
			reason    pgtype.Text
			createdAt pgtype.Timestamptz
			fullName  pgtype.Text
			email     pgtype.Text
		)
		if err := rows.Scan(&id, &userID, &status, &reason, &createdAt, &fullName, &email); err != nil {
			return nil, err
		}

		event := domain.StatusEvent{
			ID:        id,
			UserID:    userID.Bytes,
			Status:    domain.Status(status),
			Reason:    utils.FromString(reason),
			CreatedAt: createdAt.Time,
		}
		if email.Valid {
			user := domain.User{FullName: utils.FromString(fullName), Email: email.String}
			event.UserDisplayName = user.DisplayName()
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
