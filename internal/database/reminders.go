package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"napominator/internal/models"
	"napominator/internal/recurrence"
)

// Stored list columns are comma-joined strings; timestamps in the
// expiration column use the UTC stamp format from the recurrence package.

func joinList(list []string) string {
	return strings.Join(list, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// InsertReminder persists a new reminder and fills in its assigned id.
func (db *DB) InsertReminder(ctx context.Context, r *models.Reminder) error {
	var expiration, chain sql.NullString
	if r.IsEcho() {
		expiration = sql.NullString{String: r.ExpiresAt.UTC().Format(recurrence.StampFormat), Valid: true}
		chain = sql.NullString{String: r.ChainID, Valid: true}
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO reminders (owner_id, label, frequency, dates, times, active,
		                       expiration_time, chain_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Owner, r.Label, r.Frequency, joinList(r.Dates), joinList(r.Times),
		boolToInt(r.Active), expiration, chain,
		r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert reminder id: %w", err)
	}
	r.ID = id
	return nil
}

// QueryActiveReminders returns a snapshot of every active reminder. The
// tick driver works off this snapshot and applies mutations per record.
func (db *DB) QueryActiveReminders(ctx context.Context) ([]models.Reminder, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, label, frequency, dates, times, active,
		       expiration_time, chain_id, last_notice_id
		FROM reminders
		WHERE active = 1
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query active reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// GetReminder loads one reminder by id.
func (db *DB) GetReminder(ctx context.Context, id int64) (*models.Reminder, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, owner_id, label, frequency, dates, times, active,
		       expiration_time, chain_id, last_notice_id
		FROM reminders WHERE id = ?`, id)
	return scanReminder(row)
}

// GetOwnedReminder loads a reminder only if it belongs to the owner.
func (db *DB) GetOwnedReminder(ctx context.Context, id, owner int64) (*models.Reminder, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, owner_id, label, frequency, dates, times, active,
		       expiration_time, chain_id, last_notice_id
		FROM reminders WHERE id = ? AND owner_id = ?`, id, owner)
	return scanReminder(row)
}

// ListOwnerReminders returns the owner's active, non-echo reminders for
// the /list view.
func (db *DB) ListOwnerReminders(ctx context.Context, owner int64) ([]models.Reminder, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner_id, label, frequency, dates, times, active,
		       expiration_time, chain_id, last_notice_id
		FROM reminders
		WHERE owner_id = ? AND active = 1 AND expiration_time IS NULL
		ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// DeleteReminder removes a reminder. A row that is already gone yields
// ErrNotFound, which tick-path callers treat as success.
func (db *DB) DeleteReminder(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOwnedReminder removes a reminder if it belongs to the owner.
func (db *DB) DeleteOwnedReminder(ctx context.Context, id, owner int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete reminder %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpiredEchoes drops every echo whose escalation window has closed.
// Runs at the top of each tick; expired echoes disappear without a notice.
func (db *DB) DeleteExpiredEchoes(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
		DELETE FROM reminders
		WHERE expiration_time IS NOT NULL AND expiration_time < ?`,
		now.UTC().Format(recurrence.StampFormat))
	if err != nil {
		return 0, fmt.Errorf("delete expired echoes: %w", err)
	}
	return res.RowsAffected()
}

// SetLastNotice records the id of the most recent notice message so the
// next fire can delete it.
func (db *DB) SetLastNotice(ctx context.Context, id int64, noticeID int) error {
	res, err := db.ExecContext(ctx,
		`UPDATE reminders SET last_notice_id = ? WHERE id = ?`, noticeID, id)
	if err != nil {
		return fmt.Errorf("set last notice for %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateReminderSchedule rewrites the record's schedule to a single
// date/time pair. Snooze supersedes the due instant in place; the
// escalation expiration, if any, stays untouched.
func (db *DB) UpdateReminderSchedule(ctx context.Context, id int64, date, timeOfDay string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE reminders SET dates = ?, times = ? WHERE id = ?`, date, timeOfDay, id)
	if err != nil {
		return fmt.Errorf("update schedule for %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	var (
		r          models.Reminder
		active     int
		expiration sql.NullString
		chain      sql.NullString
		notice     sql.NullInt64
		dates      string
		times      string
	)
	err := row.Scan(&r.ID, &r.Owner, &r.Label, &r.Frequency, &dates, &times,
		&active, &expiration, &chain, &notice)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan reminder: %w", err)
	}

	r.Dates = splitList(dates)
	r.Times = splitList(times)
	r.Active = active != 0
	r.State = models.StateScheduled
	if expiration.Valid {
		// Persisted compatibility form: an expiration marks an echo.
		expires, err := time.ParseInLocation(recurrence.StampFormat, expiration.String, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("reminder %d has bad expiration %q: %w", r.ID, expiration.String, err)
		}
		r.State = models.StateEscalating
		r.ExpiresAt = expires
		r.ChainID = chain.String
	}
	if notice.Valid {
		id := int(notice.Int64)
		r.LastNoticeID = &id
	}
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
