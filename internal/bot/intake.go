package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"napominator/internal/models"
	"napominator/internal/recurrence"
)

// startIntake opens the creation dialog. Owners without a timezone are
// routed to city selection first: matching is undefined without one.
func (b *Bot) startIntake(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.timezones.UserTimezone(ctx, msg.From.ID); err != nil {
		b.startCitySelection(msg.Chat.ID, msg.From.ID)
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, "Выберите быстрый шаблон или создайте свое напоминание:")
	out.ReplyMarkup = quickTemplatesKeyboard
	_, _ = b.tg.Send(out)
}

// handleQuickTemplate computes the template's single occurrence in the
// owner's timezone and asks for a label.
func (b *Bot) handleQuickTemplate(ctx context.Context, cq *tgbotapi.CallbackQuery, st *userState) {
	loc, err := b.ownerLocation(ctx, cq.From.ID)
	if err != nil {
		_ = b.answerCallback(cq.ID, "Сначала выберите часовой пояс")
		b.startCitySelection(cq.Message.Chat.ID, cq.From.ID)
		return
	}

	now := time.Now().In(loc)
	var at time.Time
	var name string
	switch cq.Data {
	case "quick_in_1h":
		at, name = now.Add(time.Hour), "Напоминание через 1 час"
	case "quick_in_2h":
		at, name = now.Add(2*time.Hour), "Напоминание через 2 часа"
	case "quick_tomorrow_9":
		tomorrow := now.AddDate(0, 0, 1)
		at = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 9, 0, 0, 0, loc)
		name = "Напоминание завтра в 9:00"
	case "quick_tomorrow_18":
		tomorrow := now.AddDate(0, 0, 1)
		at = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 18, 0, 0, 0, loc)
		name = "Напоминание завтра в 18:00"
	case "quick_in_1week":
		at, name = now.AddDate(0, 0, 7), "Напоминание через неделю"
	default:
		_ = b.answerCallback(cq.ID, "Неизвестный шаблон")
		return
	}
	_ = b.answerCallback(cq.ID, "")

	st.Draft = reminderDraft{
		Frequency: recurrence.OneShot,
		Date:      at.Format(recurrence.FullDateFormat),
		Time:      at.Format(recurrence.TimeFormat),
	}
	st.Step = stepQuickName

	b.replyMarkdown(cq.Message.Chat.ID, fmt.Sprintf(
		"Шаблон: *%s*\nДата: *%s*\nВремя: *%s*\n\nВведите название напоминания:",
		name, st.Draft.Date, st.Draft.Time), cancelKeyboard)
}

func (b *Bot) handleQuickNameInput(ctx context.Context, msg *tgbotapi.Message, st *userState, text string) {
	r := models.NewScheduled(msg.From.ID, text, st.Draft.Frequency,
		[]string{st.Draft.Date}, []string{st.Draft.Time})
	if err := b.store.InsertReminder(ctx, r); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to insert quick reminder")
		b.reply(msg.Chat.ID, "Не удалось сохранить напоминание, попробуйте еще раз.")
		return
	}
	b.state.reset(msg.From.ID)

	b.replyMarkdown(msg.Chat.ID, fmt.Sprintf(
		"Напоминание успешно добавлено!\n\nНазвание: *%s*\n\nНапоминание сработает: *%s в %s*",
		text, st.Draft.Date, st.Draft.Time), nil)
}

func (b *Bot) handleNameInput(msg *tgbotapi.Message, st *userState, text string) {
	st.Draft.Label = text
	st.Step = stepFrequency
	b.replyMarkdown(msg.Chat.ID, fmt.Sprintf(
		"Название уведомления: *%s*\n\nВведите частоту уведомления (%s для одноразового или, например, '1min 1h 1d 1m 1y'):",
		text, recurrence.OneShot), cancelKeyboard)
}

func (b *Bot) handleFrequencyInput(msg *tgbotapi.Message, st *userState, text string) {
	freq := strings.ToLower(strings.TrimSpace(text))
	if !recurrence.ValidFrequency(freq) {
		b.replyMarkdown(msg.Chat.ID, fmt.Sprintf(
			"Название уведомления: *%s*\n\nПожалуйста, введите частоту в формате '%s' или '1min 1h 1d 1m 1y' (можно указать только часть):",
			st.Draft.Label, recurrence.OneShot), cancelKeyboard)
		return
	}

	st.Draft.Frequency = freq
	st.Step = stepDate
	b.replyMarkdown(msg.Chat.ID, fmt.Sprintf(
		"Название уведомления: *%s*\nЧастота: *%s*\n\nВведите даты в формате ДД.ММ или ДД.ММ.ГГГГ (можно несколько через запятую, например 15.10,16.10):",
		st.Draft.Label, freq), cancelKeyboard)
}

func (b *Bot) handleDateInput(msg *tgbotapi.Message, st *userState, text string) {
	tokens := strings.Split(text, ",")
	resolved := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		date, _, err := recurrence.ResolveDate(tok)
		if err != nil {
			b.replyMarkdown(msg.Chat.ID, fmt.Sprintf(
				"Название уведомления: *%s*\nЧастота: *%s*\n\nПожалуйста, введите даты в формате ДД.ММ или ДД.ММ.ГГГГ (можно несколько через запятую, например 15.10,16.10):",
				st.Draft.Label, st.Draft.Frequency), cancelKeyboard)
			return
		}
		resolved = append(resolved, date)
	}

	st.Draft.Dates = resolved
	st.Step = stepTime
	b.replyMarkdown(msg.Chat.ID, fmt.Sprintf(
		"Название уведомления: *%s*\nЧастота: *%s*\nДаты: *%s*\n\nВыберите популярное время или введите свое в формате ЧЧ:ММ:",
		st.Draft.Label, st.Draft.Frequency, strings.Join(resolved, ",")), popularTimesKeyboard)
}

// handleTimeButton closes the dialog with one of the popular times.
func (b *Bot) handleTimeButton(ctx context.Context, cq *tgbotapi.CallbackQuery, st *userState) {
	if st.Step != stepTime {
		_ = b.answerCallback(cq.ID, "")
		return
	}

	if cq.Data == "time_custom" {
		_ = b.answerCallback(cq.ID, "")
		b.replyMarkdown(cq.Message.Chat.ID, fmt.Sprintf(
			"Название уведомления: *%s*\nЧастота: *%s*\nДаты: *%s*\n\nВведите время в формате ЧЧ:ММ (можно несколько через запятую):",
			st.Draft.Label, st.Draft.Frequency, strings.Join(st.Draft.Dates, ",")), cancelKeyboard)
		return
	}

	selected := strings.TrimPrefix(cq.Data, "time_")
	if err := b.createReminder(ctx, cq.From.ID, cq.Message.Chat.ID, st, []string{selected}); err != nil {
		_ = b.answerCallback(cq.ID, "")
		return
	}
	_ = b.answerCallback(cq.ID, "Напоминание создано!")
}

func (b *Bot) handleTimeInput(ctx context.Context, msg *tgbotapi.Message, st *userState, text string) {
	tokens := strings.Split(text, ",")
	times := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if err := recurrence.ValidTime(tok); err != nil {
			b.replyMarkdown(msg.Chat.ID, fmt.Sprintf(
				"Название уведомления: *%s*\nЧастота: *%s*\nДаты: *%s*\n\nПожалуйста, введите время в формате ЧЧ:ММ (можно несколько через запятую):",
				st.Draft.Label, st.Draft.Frequency, strings.Join(st.Draft.Dates, ",")), cancelKeyboard)
			return
		}
		times = append(times, tok)
	}

	_ = b.createReminder(ctx, msg.From.ID, msg.Chat.ID, st, times)
}

// createReminder finalizes the drafted dates against the current instant
// and persists the record.
func (b *Bot) createReminder(ctx context.Context, owner, chatID int64, st *userState, times []string) error {
	loc, err := b.ownerLocation(ctx, owner)
	if err != nil {
		b.reply(chatID, "Сначала выберите часовой пояс.")
		b.startCitySelection(chatID, owner)
		return err
	}

	nowUTC := time.Now().UTC()
	var dates []string
	seen := make(map[string]struct{})
	for _, date := range st.Draft.Dates {
		for _, timeOfDay := range times {
			finalized, err := recurrence.FinalizeDate(date, timeOfDay, nowUTC, loc)
			if err != nil {
				b.reply(chatID, "Не удалось обработать дату, начните заново.")
				b.state.reset(owner)
				return err
			}
			if _, ok := seen[finalized]; !ok {
				seen[finalized] = struct{}{}
				dates = append(dates, finalized)
			}
		}
	}
	sortDates(dates)

	r := models.NewScheduled(owner, st.Draft.Label, st.Draft.Frequency, dates, times)
	if err := b.store.InsertReminder(ctx, r); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to insert reminder")
		b.reply(chatID, "Не удалось сохранить напоминание, попробуйте еще раз.")
		return err
	}
	b.state.reset(owner)

	b.replyMarkdown(chatID, fmt.Sprintf(
		"Напоминание успешно добавлено!\n\nНазвание: *%s*\nЧастота: *%s*\nДаты: *%s*\nВремя: *%s*",
		st.Draft.Label, st.Draft.Frequency,
		strings.Join(dates, ","), strings.Join(times, ",")), nil)
	return nil
}

func (b *Bot) ownerLocation(ctx context.Context, owner int64) (*time.Location, error) {
	tz, err := b.timezones.UserTimezone(ctx, owner)
	if err != nil {
		return nil, err
	}
	return time.LoadLocation(tz)
}

// sortDates orders DD.MM.YYYY strings chronologically. Lexical order would
// interleave months.
func sortDates(dates []string) {
	sort.Slice(dates, func(i, j int) bool {
		a, errA := time.Parse(recurrence.FullDateFormat, dates[i])
		b, errB := time.Parse(recurrence.FullDateFormat, dates[j])
		if errA != nil || errB != nil {
			return dates[i] < dates[j]
		}
		return a.Before(b)
	})
}
