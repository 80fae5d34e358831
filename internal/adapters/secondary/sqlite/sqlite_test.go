package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/presence-stats/internal/core/domain"
	apperrors "github.com/lorrc/presence-stats/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.EnsureSchema(context.Background()))
	return db
}

func ts(value string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New("  ")
	assert.Error(t, err)
}

func TestDB_ListForUsersBetween(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	alice, bob, other := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, db.InsertUser(ctx, domain.User{ID: alice, FullName: "Alice Smith", Email: "alice@example.com"}))
	require.NoError(t, db.InsertUser(ctx, domain.User{ID: bob, Email: "bob@example.com"}))

	insert := func(user uuid.UUID, status domain.Status, reason, when string) {
		_, err := db.InsertStatus(ctx, domain.StatusEvent{UserID: user, Status: status, Reason: reason, CreatedAt: ts(when)})
		require.NoError(t, err)
	}
	insert(alice, domain.StatusUnavailable, domain.ReasonNewUser, "2024-01-01T08:00")
	insert(alice, domain.StatusAvailable, "LOGIN", "2024-01-01T09:00")
	insert(bob, domain.StatusAvailable, "LOGIN", "2024-01-01T09:00")
	insert(alice, domain.StatusUnavailable, "CLIENT_IDLE", "2024-01-01T12:00")
	insert(other, domain.StatusAvailable, "LOGIN", "2024-01-01T10:00")

	users := []uuid.UUID{alice, bob}

	t.Run("open bounds", func(t *testing.T) {
		events, err := db.ListForUsersBetween(ctx, users, nil, nil)
		require.NoError(t, err)
		require.Len(t, events, 4)

		assert.Equal(t, domain.ReasonNewUser, events[0].Reason)
		assert.Equal(t, alice, events[1].UserID)
		assert.Equal(t, bob, events[2].UserID)
		assert.Equal(t, ts("2024-01-01T12:00"), events[3].CreatedAt)
		assert.Equal(t, domain.StatusUnavailable, events[3].Status)
	})

	t.Run("from inclusive to exclusive", func(t *testing.T) {
		from, to := ts("2024-01-01T09:00"), ts("2024-01-01T12:00")

		events, err := db.ListForUsersBetween(ctx, users, &from, &to)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, from, events[0].CreatedAt)
	})

	t.Run("only upper bound", func(t *testing.T) {
		to := ts("2024-01-01T09:00")

		events, err := db.ListForUsersBetween(ctx, users, nil, &to)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.ReasonNewUser, events[0].Reason)
	})

	t.Run("display names", func(t *testing.T) {
		events, err := db.ListForUsersBetween(ctx, []uuid.UUID{alice, bob, other}, nil, nil)
		require.NoError(t, err)
		require.Len(t, events, 5)

		assert.Equal(t, "Alice Smith", events[1].UserDisplayName)
		assert.Equal(t, "bob@example.com", events[2].UserDisplayName)
		assert.Equal(t, "", events[3].UserDisplayName, "status of an unknown user")
	})

	t.Run("empty user set", func(t *testing.T) {
		events, err := db.ListForUsersBetween(ctx, nil, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestDB_GetByID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	id := uuid.New()
	created := ts("2023-06-01T12:00")
	require.NoError(t, db.InsertUser(ctx, domain.User{ID: id, FullName: "Carol", Email: "carol@example.com", CreatedAt: created}))

	user, err := db.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Carol", user.FullName)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.Equal(t, created, user.CreatedAt)

	_, err = db.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestDB_Ping(t *testing.T) {
	assert.NoError(t, openTestDB(t).Ping(context.Background()))
}
