package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"napominator/internal/models"
	"napominator/internal/recurrence"
)

// AppendHistory records a completed or deleted reminder for the owner's
// audit trail.
func (db *DB) AppendHistory(ctx context.Context, e *models.HistoryEntry) error {
	var chain sql.NullString
	if e.ChainID != "" {
		chain = sql.NullString{String: e.ChainID, Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO reminder_history (reminder_id, owner_id, label, frequency,
		                              dates, times, completed_at, action, chain_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ReminderID, e.Owner, e.Label, e.Frequency,
		joinList(e.Dates), joinList(e.Times),
		e.CompletedAt.UTC().Format(recurrence.StampFormat), e.Action, chain)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// ListHistory returns the owner's history entries, newest first.
func (db *DB) ListHistory(ctx context.Context, owner int64) ([]models.HistoryEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, reminder_id, owner_id, label, frequency, dates, times,
		       completed_at, action, chain_id
		FROM reminder_history
		WHERE owner_id = ?
		ORDER BY id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			e           models.HistoryEntry
			dates       string
			times       string
			completedAt string
			chain       sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ReminderID, &e.Owner, &e.Label, &e.Frequency,
			&dates, &times, &completedAt, &e.Action, &chain); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Dates = splitList(dates)
		e.Times = splitList(times)
		e.ChainID = chain.String
		if ts, err := time.ParseInLocation(recurrence.StampFormat, completedAt, time.UTC); err == nil {
			e.CompletedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
