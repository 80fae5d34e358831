package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/lorrc/presence-stats/internal/core/errors"
)

// DateLayouts are the accepted layouts for window bounds, tried in order.
// Layouts without a zone are read in the caller's location.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Validator validates request data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// UUIDList parses a comma separated list of user IDs. Every invalid entry is
// reported; duplicates are dropped keeping the first occurrence.
func (v *Validator) UUIDList(field string, values ...string) []uuid.UUID {
	ids, invalid := splitUUIDs(values)
	for _, raw := range invalid {
		v.errors.Add(field, fmt.Sprintf("%q is not a valid UUID", raw))
	}
	return ids
}

// Date parses an optional window bound. An empty value yields nil.
func (v *Validator) Date(field, value string, loc *time.Location) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t, err := ParseDate(value, loc)
	if err != nil {
		v.errors.Add(field, "Must be a date such as 2024-01-31 or 2024-01-31 17:00:00")
		return nil
	}
	return &t
}

// ParseDate parses a window bound using DateLayouts.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, value)
}

// ParseUserIDs parses comma separated user IDs, dropping duplicates.
func ParseUserIDs(values ...string) ([]uuid.UUID, error) {
	ids, invalid := splitUUIDs(values)
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidUserID, invalid[0])
	}
	return ids, nil
}

func splitUUIDs(values []string) ([]uuid.UUID, []string) {
	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]struct{})
	var invalid []string

	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				invalid = append(invalid, part)
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, invalid
}
