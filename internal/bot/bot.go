// Package bot is the Telegram transport: the intake dialog for creating
// reminders, list/delete/history commands, timezone selection, and the
// Notifier implementation the matching engine delivers notices through.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"napominator/internal/models"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// Store is the persistence surface the dialog works against.
type Store interface {
	InsertReminder(ctx context.Context, r *models.Reminder) error
	ListOwnerReminders(ctx context.Context, owner int64) ([]models.Reminder, error)
	GetOwnedReminder(ctx context.Context, id, owner int64) (*models.Reminder, error)
	DeleteOwnedReminder(ctx context.Context, id, owner int64) error
	UpdateReminderSchedule(ctx context.Context, id int64, date, timeOfDay string) error
	SetUserTimezone(ctx context.Context, owner int64, tz string) error
	AppendHistory(ctx context.Context, e *models.HistoryEntry) error
	ListHistory(ctx context.Context, owner int64) ([]models.HistoryEntry, error)
}

// Timezones resolves owner timezones, with invalidation after a change.
type Timezones interface {
	UserTimezone(ctx context.Context, owner int64) (string, error)
	Invalidate(ctx context.Context, owner int64)
}

// HistoryExporter renders history entries into a downloadable document.
type HistoryExporter interface {
	ExportHistory(entries []models.HistoryEntry) ([]byte, error)
}

// Bot is the Telegram frontend of the reminder service.
type Bot struct {
	tg        telegramClient
	store     Store
	timezones Timezones
	exporter  HistoryExporter
	state     *stateStore
	logger    *zerolog.Logger
}

func New(token string, debug bool, store Store, timezones Timezones, exporter HistoryExporter, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = debug
	return newBot(&realTelegramClient{api: api}, store, timezones, exporter, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, store Store, timezones Timezones, exporter HistoryExporter, logger *zerolog.Logger) (*Bot, error) {
	return newBot(tg, store, timezones, exporter, logger)
}

func newBot(tg telegramClient, store Store, timezones Timezones, exporter HistoryExporter, logger *zerolog.Logger) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	return &Bot{
		tg:        tg,
		store:     store,
		timezones: timezones,
		exporter:  exporter,
		state:     newStateStore(),
		logger:    logger,
	}, nil
}

// Notifier returns the engine-facing notice sender backed by this bot's
// Telegram connection.
func (b *Bot) Notifier() *Notifier {
	return &Notifier{tg: b.tg, logger: b.logger}
}

// Start polls updates until the context is canceled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("reminder bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			updateCtx := l.WithContext(ctx)
			b.handleUpdate(updateCtx, &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Str("text", update.Message.Text).
			Msg("handling message")
		b.handleMessage(ctx, update.Message)
		return
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)

	// Menu buttons and commands interrupt any active dialog.
	switch {
	case strings.HasPrefix(text, "/start"):
		b.state.reset(msg.From.ID)
		b.handleStart(ctx, msg)
		return
	case text == "+":
		b.state.reset(msg.From.ID)
		b.startIntake(ctx, msg)
		return
	case text == buttonList || strings.HasPrefix(text, "/list"):
		b.handleList(ctx, msg.Chat.ID, msg.From.ID)
		return
	case text == buttonHistory || strings.HasPrefix(text, "/history"):
		b.handleHistory(ctx, msg.Chat.ID, msg.From.ID)
		return
	case text == buttonSetCity:
		b.startCitySelection(msg.Chat.ID, msg.From.ID)
		return
	case strings.HasPrefix(text, "/delete"):
		b.handleDeleteCommand(ctx, msg)
		return
	case strings.HasPrefix(text, "/cancel"):
		b.state.reset(msg.From.ID)
		b.reply(msg.Chat.ID, "Операция отменена.")
		b.sendMainMenu(msg.Chat.ID)
		return
	}

	st := b.state.get(msg.From.ID)
	switch st.Step {
	case stepName:
		b.handleNameInput(msg, st, text)
	case stepQuickName:
		b.handleQuickNameInput(ctx, msg, st, text)
	case stepFrequency:
		b.handleFrequencyInput(msg, st, text)
	case stepDate:
		b.handleDateInput(msg, st, text)
	case stepTime:
		b.handleTimeInput(ctx, msg, st, text)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	data := cq.Data

	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	st := b.state.get(userID)

	switch {
	case strings.HasPrefix(data, "snooze_"):
		b.handleSnooze(ctx, cq)
	case strings.HasPrefix(data, "delete_"):
		b.handleNoticeDone(ctx, cq)
	case strings.HasPrefix(data, "last_"):
		b.handleNoticeLast(cq)
	case strings.HasPrefix(data, "doned_"):
		_ = b.answerCallback(cq.ID, "")
	case strings.HasPrefix(data, "city_"):
		b.handleCitySelected(ctx, cq)
	case data == "cancel_city":
		b.state.reset(userID)
		_ = b.answerCallback(cq.ID, "")
		b.reply(chatID, "Выбор часового пояса отменен.")
		b.sendMainMenu(chatID)
	case strings.HasPrefix(data, "quick_"):
		b.handleQuickTemplate(ctx, cq, st)
	case data == "custom_reminder":
		_ = b.answerCallback(cq.ID, "")
		st.Step = stepName
		b.reply(chatID, "Введите название уведомления:")
	case strings.HasPrefix(data, "time_"):
		b.handleTimeButton(ctx, cq, st)
	case data == "cancel":
		b.state.reset(userID)
		_ = b.answerCallback(cq.ID, "")
		b.reply(chatID, "Создание уведомления отменено.")
		b.sendMainMenu(chatID)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.timezones.UserTimezone(ctx, msg.From.ID); err != nil {
		b.startCitySelection(msg.Chat.ID, msg.From.ID)
		return
	}
	b.sendMainMenu(msg.Chat.ID)
}

func (b *Bot) sendMainMenu(chatID int64) {
	out := tgbotapi.NewMessage(chatID, "Выбери действие:")
	out.ReplyMarkup = mainMenu
	_, _ = b.tg.Send(out)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) replyMarkdown(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, _ = b.tg.Send(msg)
}

func (b *Bot) answerCallback(id, text string) error {
	_, err := b.tg.Request(tgbotapi.NewCallback(id, text))
	return err
}
