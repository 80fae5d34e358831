package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/presence-stats/internal/core/domain"
	apperrors "github.com/lorrc/presence-stats/internal/core/errors"
	"github.com/lorrc/presence-stats/internal/core/ports"
	"github.com/lorrc/presence-stats/internal/core/utils"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
SELECT id, full_name, email, created_at
FROM users
WHERE id = $1
`

	var (
		userID    pgtype.UUID
		fullName  pgtype.Text
		email     string
		createdAt pgtype.Timestamptz
	)
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, utils.ToUUID(id)).
		Scan(&userID, &fullName, &email, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	return &domain.User{
		ID:        userID.Bytes,
		FullName:  utils.FromString(fullName),
		Email:     email,
		CreatedAt: createdAt.Time,
	}, nil
}
