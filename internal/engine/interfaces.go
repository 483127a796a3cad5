package engine

import (
	"context"
	"time"

	"napominator/internal/models"
)

// Store is the persistent record store the tick driver mutates. Every
// mutation is scoped to a single record; a record that vanished between
// the snapshot and the write surfaces as database.ErrNotFound and is
// treated as success.
type Store interface {
	QueryActiveReminders(ctx context.Context) ([]models.Reminder, error)
	InsertReminder(ctx context.Context, r *models.Reminder) error
	DeleteReminder(ctx context.Context, id int64) error
	DeleteExpiredEchoes(ctx context.Context, now time.Time) (int64, error)
	SetLastNotice(ctx context.Context, id int64, noticeID int) error
}

// TimezoneSource resolves an owner to an IANA timezone identifier.
type TimezoneSource interface {
	UserTimezone(ctx context.Context, owner int64) (string, error)
}

// Controls describes the interactive part of a notice. TargetID is the
// record the snooze and acknowledge buttons act on: the freshly created
// echo when the chain continues, the current record on the terminal
// notice (Terminal true), where acknowledging only flips the button.
type Controls struct {
	TargetID int64
	Terminal bool
}

// Notifier delivers notices to the owner. SendNotice returns the message
// id of the delivered notice; DeleteNotice removal is best-effort.
type Notifier interface {
	SendNotice(ctx context.Context, owner int64, label string, controls Controls) (int, error)
	DeleteNotice(ctx context.Context, owner int64, noticeID int) error
}
