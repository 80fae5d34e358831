package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpAdapter "github.com/lorrc/presence-stats/internal/adapters/primary/http"
	"github.com/lorrc/presence-stats/internal/adapters/secondary/sqlite"
	"github.com/lorrc/presence-stats/internal/config"
	"github.com/lorrc/presence-stats/internal/core/domain"
	apperrors "github.com/lorrc/presence-stats/internal/core/errors"
)

var (
	alice = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	bob   = uuid.MustParse("00000000-0000-0000-0000-0000000000b0")
)

// seededConfig returns a sqlite-backed configuration whose database holds a
// Monday on which alice is available 09:00-16:00 and bob from 10:00.
func seededConfig(t *testing.T) *config.Config {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "presence.db")

	db, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))

	require.NoError(t, db.InsertUser(ctx, domain.User{ID: alice, FullName: "Alice", Email: "alice@example.com"}))
	require.NoError(t, db.InsertUser(ctx, domain.User{ID: bob, Email: "bob@example.com"}))

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, event := range []domain.StatusEvent{
		{UserID: alice, Status: domain.StatusUnavailable, Reason: domain.ReasonNewUser, CreatedAt: day.Add(-time.Hour)},
		{UserID: alice, Status: domain.StatusAvailable, Reason: "LOGIN", CreatedAt: day.Add(9 * time.Hour)},
		{UserID: bob, Status: domain.StatusAvailable, Reason: "LOGIN", CreatedAt: day.Add(10 * time.Hour)},
		{UserID: alice, Status: domain.StatusUnavailable, Reason: "LOGOUT", CreatedAt: day.Add(16 * time.Hour)},
	} {
		_, err := db.InsertStatus(ctx, event)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	return &config.Config{
		Store: config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: path},
		Stats: config.StatsConfig{
			Timezone:   "UTC",
			EpochFloor: "2010-01-01 00:00:00",
			OpenHour:   domain.DefaultOpenHour,
			CloseHour:  domain.DefaultCloseHour,
		},
		Logging: config.LoggingConfig{Level: "info"},
		App:     config.AppConfig{Name: "presencectl", Environment: "test"},
	}
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := buildRoot(&out, func() (*config.Config, error) { return cfg, nil })
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	cfg := seededConfig(t)

	out, err := execute(t, cfg, "stats",
		"--users", alice.String()+","+bob.String(),
		"--start", "2024-01-01",
		"--end", "2024-01-02 00:00",
	)
	require.NoError(t, err)

	var response httpAdapter.StatisticsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))

	require.Len(t, response.Statuses, 4)
	assert.Equal(t, 0, response.Statuses[0].Total)
	assert.Equal(t, "Alice", response.Statuses[1].User)
	assert.Equal(t, "bob@example.com", response.Statuses[2].User)
	assert.Equal(t, "LOGOUT", response.Statuses[3].Reason)
	require.NotNil(t, response.PercentOnline)
	assert.Equal(t, "62.5%", *response.PercentOnline)
	require.NotNil(t, response.PercentOnlineBusiness)
	assert.Equal(t, "93.75%", *response.PercentOnlineBusiness)
}

func TestStatsCommand_Pretty(t *testing.T) {
	cfg := seededConfig(t)

	out, err := execute(t, cfg, "stats", "--users", alice.String(), "--start", "2024-01-01", "--end", "2024-01-02", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"statuses\": [")
}

func TestStatsCommand_RepeatedUsersFlag(t *testing.T) {
	cfg := seededConfig(t)

	out, err := execute(t, cfg, "stats", "--users", alice.String(), "--users", bob.String(), "--start", "2024-01-01", "--end", "2024-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, `"percent_online":"62.5%"`)
}

func TestStatsCommand_InvalidInput(t *testing.T) {
	cfg := seededConfig(t)

	_, err := execute(t, cfg, "stats", "--users", "nope")
	assert.ErrorIs(t, err, apperrors.ErrInvalidUserID)

	_, err = execute(t, cfg, "stats", "--users", alice.String(), "--start", "next tuesday")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDate)
}

func TestStatsCommand_ConfigError(t *testing.T) {
	var out bytes.Buffer
	root := buildRoot(&out, func() (*config.Config, error) { return nil, errors.New("configuration errors") })
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"stats", "--users", alice.String()})

	assert.EqualError(t, root.Execute(), "configuration errors")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "presencectl dev\n", out)
}
