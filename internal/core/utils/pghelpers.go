package utils

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// FromString converts a pgtype.Text to a domain's primitive string.
// A NULL value is converted to an empty string ("").
func FromString(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// ToNullTimestamptz converts an optional bound to a pgtype.Timestamptz.
// A nil pointer is considered invalid (NULL).
func ToNullTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{
		Time:  *t,
		Valid: true,
	}
}

// ToUUID converts a domain ID to a pgtype.UUID.
// The nil UUID is considered invalid (NULL).
func ToUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{
		Bytes: id,
		Valid: id != uuid.Nil,
	}
}

// ToUUIDs converts a list of domain IDs for use with = ANY($n).
func ToUUIDs(ids []uuid.UUID) []pgtype.UUID {
	out := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		out[i] = ToUUID(id)
	}
	return out
}
