package models

import (
	"time"

	"github.com/google/uuid"

	"napominator/internal/recurrence"
)

// ScheduleState says how a reminder record participates in matching.
// It is chosen by a constructor, never inferred from optional fields.
type ScheduleState int

const (
	// StateScheduled is a normal reminder repeating per its frequency.
	StateScheduled ScheduleState = iota
	// StateEscalating is a short-lived echo inside an escalation window:
	// it re-notifies once and either spawns the next echo or expires.
	StateEscalating
)

// History actions recorded when a reminder leaves the store.
const (
	ActionCompleted = "completed"
	ActionDeleted   = "deleted"
)

// Occurrence is one concrete (date, time) slot of a reminder.
//
// Dates and times are persisted as two independent lists and paired as a
// full Cartesian product: every stored date is tested against every stored
// time, so a reminder with 2 dates and 3 times owns 6 occurrences. The
// lists are never positionally aligned.
type Occurrence struct {
	Date string // DD.MM.YYYY
	Time string // HH:MM
}

// Reminder is a persisted reminder record.
type Reminder struct {
	ID        int64
	Owner     int64
	Label     string
	Frequency string   // recurrence.OneShot or a compact interval spec
	Dates     []string // DD.MM.YYYY, ascending, deduplicated
	Times     []string // HH:MM, in entry order
	Active    bool

	State     ScheduleState
	ExpiresAt time.Time // UTC; meaningful only while State == StateEscalating
	ChainID   string    // escalation chain id, set together with ExpiresAt

	LastNoticeID *int
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// NewScheduled builds a regular reminder owned by the given user.
func NewScheduled(owner int64, label, frequency string, dates, times []string) *Reminder {
	return &Reminder{
		Owner:     owner,
		Label:     label,
		Frequency: frequency,
		Dates:     dates,
		Times:     times,
		Active:    true,
		State:     StateScheduled,
		CreatedAt: time.Now().UTC(),
	}
}

// NewEcho builds the next escalation step for a just-fired reminder. The
// echo is always one-shot with a single occurrence, inherits the chain and
// its expiration, and fires at the given slot.
func NewEcho(src *Reminder, at Occurrence, expiresAt time.Time) *Reminder {
	chain := src.ChainID
	if chain == "" {
		chain = uuid.NewString()
	}
	return &Reminder{
		Owner:     src.Owner,
		Label:     src.Label,
		Frequency: recurrence.OneShot,
		Dates:     []string{at.Date},
		Times:     []string{at.Time},
		Active:    true,
		State:     StateEscalating,
		ExpiresAt: expiresAt.UTC(),
		ChainID:   chain,
		CreatedAt: time.Now().UTC(),
	}
}

// IsEcho reports whether the record is a transient escalation step.
func (r *Reminder) IsEcho() bool {
	return r.State == StateEscalating
}

// IsOneShot reports whether the reminder does not repeat.
func (r *Reminder) IsOneShot() bool {
	return r.Frequency == recurrence.OneShot
}

// Interval returns the parsed repeat interval.
func (r *Reminder) Interval() recurrence.Interval {
	return recurrence.ParseFrequency(r.Frequency)
}

// Matches reports whether the occurrence is one of the reminder's slots.
func (r *Reminder) Matches(at Occurrence) bool {
	return contains(r.Dates, at.Date) && contains(r.Times, at.Time)
}

// IsLastSlot reports whether the occurrence is the final scheduled slot:
// the last stored date combined with the last stored time. Firing it
// retires the record (rollover for recurring, deletion for one-shot).
func (r *Reminder) IsLastSlot(at Occurrence) bool {
	if len(r.Dates) == 0 || len(r.Times) == 0 {
		return false
	}
	return r.Dates[len(r.Dates)-1] == at.Date && r.Times[len(r.Times)-1] == at.Time
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// HistoryEntry is an audit row written when a reminder is completed or
// removed by its owner.
type HistoryEntry struct {
	ID          int64
	ReminderID  int64
	Owner       int64
	Label       string
	Frequency   string
	Dates       []string
	Times       []string
	CompletedAt time.Time
	Action      string
	ChainID     string
}
