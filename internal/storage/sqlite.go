package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore reads user roles from a SQLite database. Intended for small
// single-node deployments; the schema is created on first use so a fresh
// file works out of the box.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite role store instance.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("connection string is required for SQLite role store")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS user_roles (
		user_id TEXT PRIMARY KEY,
		role    TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// GetRole returns the stored role for the given user id.
func (ss *SQLiteStore) GetRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := ss.db.QueryRowContext(ctx,
		`SELECT role FROM user_roles WHERE user_id = ?`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get role for user %s: %w", userID, err)
	}
	return role, nil
}

// SetRole stores or updates a user's role. Used by deployment tooling and tests.
func (ss *SQLiteStore) SetRole(ctx context.Context, userID, role string) error {
	_, err := ss.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET role = excluded.role`, userID, role)
	if err != nil {
		return fmt.Errorf("failed to set role for user %s: %w", userID, err)
	}
	return nil
}

// Close closes the database connection.
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}
