package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	apperrors "github.com/lorrc/presence-stats/internal/core/errors"
	"github.com/lorrc/presence-stats/internal/core/ports"
)

// UserLookupService provides lightweight user details for display.
type UserLookupService struct {
	userRepo ports.UserRepository
}

var _ ports.UserLookupService = (*UserLookupService)(nil)

// NewUserLookupService creates a new UserLookupService.
func NewUserLookupService(userRepo ports.UserRepository) ports.UserLookupService {
	return &UserLookupService{
		userRepo: userRepo,
	}
}

// GetDisplayNames returns the display name of every known user among the
// provided IDs. Unknown users are left out of the result.
func (s *UserLookupService) GetDisplayNames(
	ctx context.Context,
	userIDs []uuid.UUID,
) (map[uuid.UUID]string, error) {
	if len(userIDs) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	uniqueIDs := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id == uuid.Nil {
			continue
		}
		uniqueIDs[id] = struct{}{}
	}

	results := make(map[uuid.UUID]string, len(uniqueIDs))
	for id := range uniqueIDs {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				continue
			}
			return nil, err
		}

		results[id] = user.DisplayName()
	}

	return results, nil
}
