package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"napominator/internal/models"
	"napominator/internal/recurrence"
)

// handleSnooze reschedules the pending record to a later single slot:
// snooze_<5|15|60|tomorrow>_<id>. Tomorrow means next day 09:00 in the
// owner's timezone.
func (b *Bot) handleSnooze(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	parts := strings.Split(cq.Data, "_")
	if len(parts) != 3 {
		_ = b.answerCallback(cq.ID, "")
		return
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		_ = b.answerCallback(cq.ID, "")
		return
	}

	loc, err := b.ownerLocation(ctx, cq.From.ID)
	if err != nil {
		_ = b.answerCallback(cq.ID, "Часовой пояс не настроен")
		return
	}

	now := time.Now().In(loc)
	var at time.Time
	var label string
	if parts[1] == "tomorrow" {
		tomorrow := now.AddDate(0, 0, 1)
		at = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 9, 0, 0, 0, loc)
		label = "завтра в 09:00"
	} else {
		minutes, err := strconv.Atoi(parts[1])
		if err != nil {
			_ = b.answerCallback(cq.ID, "")
			return
		}
		at = now.Add(time.Duration(minutes) * time.Minute)
		label = "на " + parts[1] + " мин"
	}

	err = b.store.UpdateReminderSchedule(ctx, id,
		at.Format(recurrence.FullDateFormat), at.Format(recurrence.TimeFormat))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("reminder_id", id).Msg("snooze failed")
		_ = b.answerCallback(cq.ID, "Напоминание не найдено.")
		return
	}

	_ = b.answerCallback(cq.ID, "Отложено "+label)
	b.editMarkup(cq, donedKeyboard(id))
}

// handleNoticeDone acknowledges a notice: the pending echo is removed and
// the completion lands in history.
func (b *Bot) handleNoticeDone(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	id, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, "delete_"), 10, 64)
	if err != nil {
		_ = b.answerCallback(cq.ID, "")
		return
	}

	owner := cq.From.ID
	r, err := b.store.GetOwnedReminder(ctx, id, owner)
	if err != nil {
		_ = b.answerCallback(cq.ID, "Напоминание не найдено.")
		return
	}
	if err := b.store.DeleteOwnedReminder(ctx, id, owner); err != nil {
		_ = b.answerCallback(cq.ID, "Напоминание не найдено.")
		return
	}
	b.appendHistory(ctx, r, models.ActionCompleted)

	b.editMarkup(cq, donedKeyboard(id))
	_ = b.answerCallback(cq.ID, "Напоминание успешно выполнено.")
}

// handleNoticeLast acknowledges the terminal notice. The record behind it
// is already retired, so only the button changes.
func (b *Bot) handleNoticeLast(cq *tgbotapi.CallbackQuery) {
	id, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, "last_"), 10, 64)
	if err != nil {
		_ = b.answerCallback(cq.ID, "")
		return
	}
	b.editMarkup(cq, donedKeyboard(id))
	_ = b.answerCallback(cq.ID, "Напоминание отмечено как выполненное.")
}

func (b *Bot) handleCitySelected(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	idx, err := strconv.Atoi(strings.TrimPrefix(cq.Data, "city_"))
	if err != nil || idx < 0 || idx >= len(cityTimezones) {
		_ = b.answerCallback(cq.ID, "")
		return
	}
	city := cityTimezones[idx]

	owner := cq.From.ID
	if err := b.store.SetUserTimezone(ctx, owner, city.Zone); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("owner", owner).Msg("failed to set timezone")
		_ = b.answerCallback(cq.ID, "Не удалось сохранить часовой пояс.")
		return
	}
	b.timezones.Invalidate(ctx, owner)
	b.state.reset(owner)

	_ = b.answerCallback(cq.ID, "")
	b.reply(cq.Message.Chat.ID, "Часовой пояс успешно установлен!")
	b.sendMainMenu(cq.Message.Chat.ID)
}

func (b *Bot) editMarkup(cq *tgbotapi.CallbackQuery, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageReplyMarkup(cq.Message.Chat.ID, cq.Message.MessageID, markup)
	_, _ = b.tg.Request(edit)
}
