package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"napominator/internal/models"
)

func (b *Bot) handleList(ctx context.Context, chatID, owner int64) {
	reminders, err := b.store.ListOwnerReminders(ctx, owner)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list reminders")
		b.reply(chatID, "Не удалось получить список уведомлений.")
		return
	}
	if len(reminders) == 0 {
		b.reply(chatID, "У вас нет активных уведомлений.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Ваши активные уведомления:\n")
	for i := range reminders {
		r := &reminders[i]
		sb.WriteString(fmt.Sprintf(
			"Название: %s\nЧастота: %s\nДаты: %s\nВремя: %s\nКоманда для удаления: /delete%d\n\n",
			r.Label, r.Frequency,
			strings.Join(r.Dates, ","), strings.Join(r.Times, ","), r.ID))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleDeleteCommand(ctx context.Context, msg *tgbotapi.Message) {
	idStr := strings.TrimPrefix(strings.TrimSpace(msg.Text), "/delete")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "Неверный формат команды.")
		return
	}

	owner := msg.From.ID
	r, err := b.store.GetOwnedReminder(ctx, id, owner)
	if err != nil {
		b.reply(msg.Chat.ID, "Напоминание не найдено или не принадлежит вам.")
		return
	}
	if err := b.store.DeleteOwnedReminder(ctx, id, owner); err != nil {
		b.reply(msg.Chat.ID, "Напоминание не найдено или не принадлежит вам.")
		return
	}
	b.appendHistory(ctx, r, models.ActionDeleted)

	b.handleList(ctx, msg.Chat.ID, owner)
}

func (b *Bot) handleHistory(ctx context.Context, chatID, owner int64) {
	entries, err := b.store.ListHistory(ctx, owner)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load history")
		b.reply(chatID, "Не удалось получить историю.")
		return
	}
	if len(entries) == 0 {
		b.reply(chatID, "История пока пуста.")
		return
	}

	data, err := b.exporter.ExportHistory(entries)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to export history")
		b.reply(chatID, "Не удалось сформировать файл истории.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "history.xlsx",
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("📊 История напоминаний: %d записей", len(entries))
	if _, err := b.tg.Send(doc); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send history document")
	}
}

func (b *Bot) startCitySelection(chatID, owner int64) {
	st := b.state.get(owner)
	st.Step = stepNone

	out := tgbotapi.NewMessage(chatID,
		"Пожалуйста, выберите ваш город, соответствующий вашему часовому поясу, из списка:")
	out.ReplyMarkup = cityKeyboard(true)
	_, _ = b.tg.Send(out)
}

func (b *Bot) appendHistory(ctx context.Context, r *models.Reminder, action string) {
	entry := &models.HistoryEntry{
		ReminderID:  r.ID,
		Owner:       r.Owner,
		Label:       r.Label,
		Frequency:   r.Frequency,
		Dates:       r.Dates,
		Times:       r.Times,
		CompletedAt: time.Now().UTC(),
		Action:      action,
		ChainID:     r.ChainID,
	}
	if err := b.store.AppendHistory(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Int64("reminder_id", r.ID).
			Str("action", action).
			Msg("failed to append history")
	}
}
