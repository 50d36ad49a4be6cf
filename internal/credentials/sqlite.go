package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/marketpulse/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// schema lists the session table's migrations. Entry i moves the database
// from user_version i to i+1.
var schema = []struct {
	about string
	stmt  string
}{
	{"session table", `CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		token TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		user_json TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`},
}

// SchemaVersion is the user_version of a fully migrated session database.
var SchemaVersion = len(schema)

// SQLiteStore keeps the session in a single-row SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the session database at dbPath.
// Use ":memory:" for an ephemeral database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("credential database path cannot be empty")
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Migrate brings the schema up to SchemaVersion, one transaction per step.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	current, err := s.version(ctx)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("session database is version %d, newer than this client (%d)", current, SchemaVersion)
	}

	for v := current; v < SchemaVersion; v++ {
		if err := s.step(ctx, v+1); err != nil {
			return err
		}
		slog.Debug("Migrated session database", "version", v+1, "change", schema[v].about)
	}
	return nil
}

func (s *SQLiteStore) version(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (s *SQLiteStore) step(ctx context.Context, to int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", to, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schema[to-1].stmt); err != nil {
		return fmt.Errorf("migration %d (%s) failed: %w", to, schema[to-1].about, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", to)); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", to, err)
	}
	return tx.Commit()
}

// Load returns the stored session, or nil when the row is missing or corrupt.
func (s *SQLiteStore) Load(ctx context.Context) (*model.Session, error) {
	var token, userJSON string
	err := s.db.QueryRowContext(ctx, `SELECT token, user_json FROM session WHERE id = 1`).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.Warn("Ignoring unreadable session row", "error", err)
		return nil, nil
	}

	var user model.UserProfile
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		slog.Warn("Ignoring malformed session profile", "error", err)
		return nil, nil
	}

	return usable(&model.Session{Token: token, User: &user}), nil
}

// Save upserts the single session row.
func (s *SQLiteStore) Save(ctx context.Context, session model.Session) error {
	if !session.Valid() {
		return errors.New("refusing to store a session without token and profile")
	}

	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session (id, token, user_json, user_id, saved_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			user_id = excluded.user_id,
			saved_at = excluded.saved_at`,
		session.Token, string(userJSON), session.User.ID)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear deletes the session row.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
