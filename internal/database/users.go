package database

import (
	"context"
	"database/sql"
	"fmt"
)

// UserTimezone returns the owner's resolved IANA timezone identifier.
// ErrNotFound means the user never completed timezone selection; the tick
// driver skips such records instead of failing.
func (db *DB) UserTimezone(ctx context.Context, owner int64) (string, error) {
	var tz string
	err := db.QueryRowContext(ctx,
		`SELECT timezone FROM users WHERE user_id = ?`, owner).Scan(&tz)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get timezone for %d: %w", owner, err)
	}
	return tz, nil
}

// SetUserTimezone stores or replaces the owner's timezone.
func (db *DB) SetUserTimezone(ctx context.Context, owner int64, tz string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (user_id, timezone) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET timezone = excluded.timezone`,
		owner, tz)
	if err != nil {
		return fmt.Errorf("set timezone for %d: %w", owner, err)
	}
	return nil
}
