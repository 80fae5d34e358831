package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the availability state recorded by a status change.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusUnavailable Status = "UNAVAILABLE"
)

// ReasonNewUser marks the synthetic record written when a user account is
// created. It seeds history and never changes the running count.
const ReasonNewUser = "NEW_USER"

func (s Status) String() string {
	return string(s)
}

// IsAvailable reports whether the status counts a user as present.
// Any status other than AVAILABLE counts as a departure.
func (s Status) IsAvailable() bool {
	return s == StatusAvailable
}

// StatusEvent is a single recorded status change for a user.
type StatusEvent struct {
	ID              int64
	UserID          uuid.UUID
	Status          Status
	Reason          string
	CreatedAt       time.Time
	UserDisplayName string
}

// IsNewUser reports whether the event is a synthetic creation record.
func (e StatusEvent) IsNewUser() bool {
	return e.Reason == ReasonNewUser
}

// Segment is a half-open interval [Start, End) during which the number of
// available users stays constant.
type Segment struct {
	Start   time.Time
	End     time.Time
	Count   int
	Trigger *StatusEvent // nil for the first segment of a timeline
}

// Duration returns End - Start.
func (s Segment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// PresenceStatistics is the aggregate computed over a query window.
type PresenceStatistics struct {
	Segments                []Segment
	TotalTime               time.Duration
	TotalTimeOnline         time.Duration
	TotalTimeOnlineBusiness time.Duration
	BusinessTime            time.Duration
	PercentOnline           decimal.NullDecimal
	PercentOnlineBusiness   decimal.NullDecimal
}
