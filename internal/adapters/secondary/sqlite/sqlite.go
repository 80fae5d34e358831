package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lorrc/presence-stats/internal/core/domain"
	apperrors "github.com/lorrc/presence-stats/internal/core/errors"
	"github.com/lorrc/presence-stats/internal/core/ports"
)

// DB reads status records from a SQLite database (modernc.org/sqlite driver,
// CGO-free). Timestamps are stored as unix milliseconds.
type DB struct {
	db *sql.DB
}

var (
	_ ports.StatusRecordRepository = (*DB)(nil)
	_ ports.UserRepository         = (*DB)(nil)
)

// New opens a SQLite database at path. Use ":memory:" for in-memory.
func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	if p == ":memory:" {
		// every connection would otherwise get its own empty database
		d.SetMaxOpenConns(1)
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &DB{db: d}, nil
}

func (s *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users(
			id TEXT PRIMARY KEY,
			full_name TEXT NULL,
			email TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS user_statuses(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_user_statuses_user_created ON user_statuses(user_id, created_at, id);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// InsertUser stores a user account.
func (s *DB) InsertUser(ctx context.Context, user domain.User) error {
	var fullName any
	if user.FullName != "" {
		fullName = user.FullName
	}
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users(id, full_name, email, created_at)
		VALUES(?, ?, ?, ?);`,
		user.ID.String(), fullName, user.Email, createdAt.UnixMilli())
	return err
}

// InsertStatus appends a status change and returns its id.
func (s *DB) InsertStatus(ctx context.Context, event domain.StatusEvent) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_statuses(user_id, status, reason, created_at)
		VALUES(?, ?, ?, ?);`,
		event.UserID.String(), string(event.Status), event.Reason, event.CreatedAt.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *DB) ListForUsersBetween(ctx context.Context, userIDs []uuid.UUID, from, to *time.Time) ([]domain.StatusEvent, error) {
	if len(userIDs) == 0 {
		return []domain.StatusEvent{}, nil
	}

	placeholders := make([]string, len(userIDs))
	args := make([]any, 0, len(userIDs)+4)
	for i, id := range userIDs {
		placeholders[i] = "?"
		args = append(args, id.String())
	}
	fromMs, toMs := unixMilli(from), unixMilli(to)
	args = append(args, fromMs, fromMs, toMs, toMs)

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.status, s.reason, s.created_at, u.full_name, u.email
		FROM user_statuses s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.user_id IN (`+strings.Join(placeholders, ",")+`)
		  AND (? IS NULL OR s.created_at >= ?)
		  AND (? IS NULL OR s.created_at < ?)
		ORDER BY s.created_at, s.id;`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	events := make([]domain.StatusEvent, 0)
	for rows.Next() {
		var (
			ev        domain.StatusEvent
			userID    string
			status    string
			createdAt int64
			fullName  sql.NullString
			email     sql.NullString
		)
		if err := rows.Scan(&ev.ID, &userID, &status, &ev.Reason, &createdAt, &fullName, &email); err != nil {
			return nil, err
		}
		if ev.UserID, err = uuid.Parse(userID); err != nil {
			return nil, err
		}
		ev.Status = domain.Status(status)
		ev.CreatedAt = time.UnixMilli(createdAt).UTC()
		if email.Valid {
			user := domain.User{FullName: fullName.String, Email: email.String}
			ev.UserDisplayName = user.DisplayName()
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *DB) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var (
		user      domain.User
		userID    string
		fullName  sql.NullString
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, created_at
		FROM users
		WHERE id=?;`, id.String()).Scan(&userID, &fullName, &user.Email, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	if user.ID, err = uuid.Parse(userID); err != nil {
		return nil, err
	}
	user.FullName = fullName.String
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &user, nil
}

func unixMilli(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
