package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the account whose availability is recorded in status events.
type User struct {
	ID        uuid.UUID
	FullName  string
	Email     string
	CreatedAt time.Time
}

// DisplayName returns the name shown next to a status change, falling back
// to the email address when no full name is stored.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Email
}
