// Package engine implements the due-reminder matching engine: on every
// poll tick it decides which stored reminders are due in their owner's
// local time, drives the bounded escalation chain of echo reminders, and
// rolls recurring reminders over to their next cycle.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"napominator/internal/database"
	"napominator/internal/models"
	"napominator/internal/recurrence"
)

// Options tune the escalation sequence.
type Options struct {
	// EchoOffset is the delay between consecutive escalation notices.
	EchoOffset time.Duration
	// EchoExpiration is the escalation window measured from first fire.
	EchoExpiration time.Duration
}

// DefaultOptions returns the stock 15min/1h escalation schedule.
func DefaultOptions() Options {
	return Options{
		EchoOffset:     15 * time.Minute,
		EchoExpiration: time.Hour,
	}
}

// Engine is the per-tick state machine over active reminders.
type Engine struct {
	store     Store
	timezones TimezoneSource
	notifier  Notifier
	opts      Options
	metrics   *Metrics
	logger    *zerolog.Logger

	// fired remembers which (record, occurrence) pairs already fired so
	// that two ticks inside the same calendar minute cannot spawn two
	// echo chains. Entries are pruned a couple of minutes after firing.
	fired map[string]time.Time
}

// New creates an engine. metrics may be nil.
func New(store Store, timezones TimezoneSource, notifier Notifier, opts Options, metrics *Metrics, logger *zerolog.Logger) *Engine {
	if opts.EchoOffset <= 0 {
		opts.EchoOffset = DefaultOptions().EchoOffset
	}
	if opts.EchoExpiration <= 0 {
		opts.EchoExpiration = DefaultOptions().EchoExpiration
	}
	return &Engine{
		store:     store,
		timezones: timezones,
		notifier:  notifier,
		opts:      opts,
		metrics:   metrics,
		logger:    logger,
		fired:     make(map[string]time.Time),
	}
}

// Tick runs one matching pass at the given instant. Ticks are serialized
// by the scheduler, so Tick never runs concurrently with itself. A failure
// on one record never aborts the remaining records.
func (e *Engine) Tick(ctx context.Context, nowUTC time.Time) {
	start := time.Now()

	expired, err := e.store.DeleteExpiredEchoes(ctx, nowUTC)
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to delete expired echoes")
	} else if expired > 0 {
		e.logger.Info().Int64("count", expired).Msg("expired echoes removed")
		e.metrics.AddExpired(expired)
	}

	reminders, err := e.store.QueryActiveReminders(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to fetch active reminders")
		return
	}
	e.metrics.SetActive(len(reminders))

	for i := range reminders {
		select {
		case <-ctx.Done():
			e.logger.Info().Int("remaining", len(reminders)-i).Msg("tick interrupted")
			return
		default:
		}

		r := &reminders[i]
		if err := e.process(ctx, r, nowUTC); err != nil {
			e.logger.Error().Err(err).
				Int64("reminder_id", r.ID).
				Int64("owner", r.Owner).
				Msg("failed to process reminder")
		}
	}

	e.pruneFired(nowUTC)
	e.metrics.ObserveTick(time.Since(start).Seconds())
}

// process matches one reminder against the current instant and fires it
// when due. Missing or invalid owner timezones skip the record only.
func (e *Engine) process(ctx context.Context, r *models.Reminder, nowUTC time.Time) error {
	tzName, err := e.timezones.UserTimezone(ctx, r.Owner)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			e.logger.Debug().Int64("owner", r.Owner).Msg("owner has no timezone, skipping")
			return nil
		}
		return fmt.Errorf("resolve timezone: %w", err)
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		e.logger.Warn().Str("timezone", tzName).Int64("owner", r.Owner).
			Msg("owner has unloadable timezone, skipping")
		return nil
	}

	nowLocal := nowUTC.In(loc)
	at := models.Occurrence{
		Date: nowLocal.Format(recurrence.FullDateFormat),
		Time: nowLocal.Format(recurrence.TimeFormat),
	}
	if !r.Matches(at) {
		return nil
	}
	if e.alreadyFired(r.ID, at) {
		return nil
	}

	if err := e.fire(ctx, r, at, loc); err != nil {
		return err
	}
	e.markFired(r.ID, at, nowUTC)
	e.metrics.IncDue()
	return nil
}

// fire handles one due occurrence: replaces the previous notice, advances
// the escalation chain and, on the final slot, retires the record.
//
// Ordering matters for transport failures: the follow-up echo is created
// first because its id is embedded in the notice controls, but a failed
// send rolls that echo back and leaves the record untouched, so the next
// tick inside the due minute retries the whole step.
func (e *Engine) fire(ctx context.Context, r *models.Reminder, at models.Occurrence, loc *time.Location) error {
	fireInstant, err := time.ParseInLocation(
		recurrence.FullDateFormat+" "+recurrence.TimeFormat,
		at.Date+" "+at.Time, loc)
	if err != nil {
		return fmt.Errorf("parse occurrence: %w", err)
	}
	fireUTC := fireInstant.UTC()

	expiresAt := r.ExpiresAt
	if !r.IsEcho() {
		expiresAt = fireUTC.Add(e.opts.EchoExpiration)
	}

	if r.LastNoticeID != nil {
		if err := e.notifier.DeleteNotice(ctx, r.Owner, *r.LastNoticeID); err != nil {
			e.logger.Debug().Err(err).Int("notice_id", *r.LastNoticeID).
				Msg("failed to delete previous notice")
		}
	}

	var echo *models.Reminder
	controls := Controls{TargetID: r.ID, Terminal: true}

	if nextFire := fireUTC.Add(e.opts.EchoOffset); nextFire.Before(expiresAt) {
		nextLocal := nextFire.In(loc)
		echo = models.NewEcho(r, models.Occurrence{
			Date: nextLocal.Format(recurrence.FullDateFormat),
			Time: nextLocal.Format(recurrence.TimeFormat),
		}, expiresAt)
		if err := e.store.InsertReminder(ctx, echo); err != nil {
			return fmt.Errorf("create echo: %w", err)
		}
		controls = Controls{TargetID: echo.ID}
	}

	noticeID, err := e.notifier.SendNotice(ctx, r.Owner, r.Label, controls)
	if err != nil {
		e.metrics.IncNotice("failed")
		if echo != nil {
			if derr := e.store.DeleteReminder(ctx, echo.ID); derr != nil && !errors.Is(derr, database.ErrNotFound) {
				e.logger.Error().Err(derr).Int64("echo_id", echo.ID).
					Msg("failed to roll back echo after send failure")
			}
		}
		return fmt.Errorf("send notice: %w", err)
	}
	e.metrics.IncNotice("sent")
	if echo != nil {
		e.metrics.IncEchoCreated()
	}

	if err := e.store.SetLastNotice(ctx, controls.TargetID, noticeID); err != nil && !errors.Is(err, database.ErrNotFound) {
		e.logger.Warn().Err(err).Int64("reminder_id", controls.TargetID).
			Msg("failed to record notice id")
	}

	if r.IsLastSlot(at) {
		if !r.IsEcho() && !r.IsOneShot() {
			e.rollover(ctx, r, loc)
		}
		// The original is retired unconditionally once its grid has
		// fired; the echo chain lives on with its own lifetime.
		if err := e.store.DeleteReminder(ctx, r.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
			e.logger.Error().Err(err).Int64("reminder_id", r.ID).
				Msg("failed to retire fired reminder")
		}
	}

	e.logger.Info().
		Int64("reminder_id", r.ID).
		Int64("owner", r.Owner).
		Str("date", at.Date).
		Str("time", at.Time).
		Bool("terminal", controls.Terminal).
		Msg("reminder fired")
	return nil
}

// rollover inserts the next cycle of a recurring reminder: both lists are
// shifted independently, so an interval with date and time components
// moves the whole Cartesian grid.
func (e *Engine) rollover(ctx context.Context, r *models.Reminder, loc *time.Location) {
	iv := r.Interval()

	dates, err := recurrence.ShiftDates(r.Dates, iv, loc)
	if err != nil {
		e.logger.Error().Err(err).Int64("reminder_id", r.ID).Msg("rollover: bad dates")
		return
	}
	times, err := recurrence.ShiftTimes(r.Times, iv, loc)
	if err != nil {
		e.logger.Error().Err(err).Int64("reminder_id", r.ID).Msg("rollover: bad times")
		return
	}

	next := models.NewScheduled(r.Owner, r.Label, r.Frequency, dates, times)
	if err := e.store.InsertReminder(ctx, next); err != nil {
		e.logger.Error().Err(err).Int64("reminder_id", r.ID).Msg("rollover: insert failed")
		return
	}
	e.metrics.IncRollover()

	e.logger.Info().
		Int64("reminder_id", r.ID).
		Int64("next_id", next.ID).
		Strs("dates", dates).
		Strs("times", times).
		Msg("recurring reminder rolled over")
}

func firedKey(id int64, at models.Occurrence) string {
	return fmt.Sprintf("%d@%s %s", id, at.Date, at.Time)
}

func (e *Engine) alreadyFired(id int64, at models.Occurrence) bool {
	_, ok := e.fired[firedKey(id, at)]
	return ok
}

func (e *Engine) markFired(id int64, at models.Occurrence, nowUTC time.Time) {
	e.fired[firedKey(id, at)] = nowUTC
}

// pruneFired drops fire-memory entries once their minute is safely past.
func (e *Engine) pruneFired(nowUTC time.Time) {
	for key, at := range e.fired {
		if nowUTC.Sub(at) > 2*time.Minute {
			delete(e.fired, key)
		}
	}
}
