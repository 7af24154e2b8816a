package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Side-effect import: registers the pure-Go "sqlite" driver with
	// database/sql. modernc.org/sqlite over mattn/go-sqlite3 so no CGo is
	// needed and cross-compilation stays painless.
	_ "modernc.org/sqlite"

	"github.com/sakif/readmegen/internal/model"
)

// compile-time check that *SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists sessions in a single SQLite file so they survive
// process restarts. This is the "external key-value store" backend — the
// record layout is deliberately flat (one row per session) and nothing but
// this package touches the table.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs the
// schema migration. ":memory:" works for tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("session: opening database: %w", err)
	}

	// Surface a bad path or permissions problem now, not on first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — multiple
	// concurrent requests hit this table.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: setting WAL mode: %w", err)
	}

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id            TEXT PRIMARY KEY,
			oauth_state   TEXT NOT NULL DEFAULT '',
			access_token  TEXT NOT NULL DEFAULT '',
			user_login    TEXT NOT NULL DEFAULT '',
			user_name     TEXT NOT NULL DEFAULT '',
			user_avatar   TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMP NOT NULL,
			expires_at    TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("session: creating sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Session, error) {
	var (
		sess                model.Session
		login, name, avatar string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, oauth_state, access_token, user_login, user_name, user_avatar, created_at, expires_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(
		&sess.ID,
		&sess.OAuthState,
		&sess.AccessToken,
		&login,
		&name,
		&avatar,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: getting session: %w", err)
	}

	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		// Lazy expiry, same contract as the memory backend.
		_, _ = s.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
		return nil, ErrNotFound
	}

	if login != "" {
		sess.User = &model.User{Login: login, DisplayName: name, AvatarURL: avatar}
	}
	return &sess, nil
}

func (s *SQLiteStore) Set(ctx context.Context, sess *model.Session) error {
	var login, name, avatar string
	if sess.User != nil {
		login = sess.User.Login
		name = sess.User.DisplayName
		avatar = sess.User.AvatarURL
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions
		 (id, oauth_state, access_token, user_login, user_name, user_avatar, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.OAuthState,
		sess.AccessToken,
		login,
		name,
		avatar,
		sess.CreatedAt,
		sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("session: storing session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Destroy(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("session: destroying session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.conn.Close() }
