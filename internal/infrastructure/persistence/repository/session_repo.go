package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
)

// SessionRepository keeps the CLI session entries in sqlite and implements
// port.SessionStore
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) port.SessionStore {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// GetItem returns the value stored under key
func (r *SessionRepository) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := sqlite.ExecutorFor(ctx, r.db).
		QueryRowContext(ctx, `SELECT value FROM session_entries WHERE entry_key = ?`, key).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Failed to read session entry", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("failed to read session entry: %w", err)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value
func (r *SessionRepository) SetItem(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO session_entries (entry_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(entry_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		r.logger.Error("Failed to write session entry", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write session entry: %w", err)
	}
	return nil
}

// RemoveItem deletes key; removing a missing key is not an error
func (r *SessionRepository) RemoveItem(ctx context.Context, key string) error {
	if _, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `DELETE FROM session_entries WHERE entry_key = ?`, key); err != nil {
		r.logger.Error("Failed to remove session entry", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to remove session entry: %w", err)
	}
	return nil
}
