package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"napominator/internal/engine"
)

// Notifier delivers engine notices over Telegram. The owner id doubles as
// the private chat id.
type Notifier struct {
	tg     telegramClient
	logger *zerolog.Logger
}

// SendNotice sends the notice with snooze/done controls and returns the
// message id for later replacement.
func (n *Notifier) SendNotice(_ context.Context, owner int64, label string, controls engine.Controls) (int, error) {
	msg := tgbotapi.NewMessage(owner, fmt.Sprintf("🔔 Напоминание: *%s*", label))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = noticeKeyboard(controls)

	sent, err := n.tg.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send notice to %d: %w", owner, err)
	}
	return sent.MessageID, nil
}

// DeleteNotice removes a superseded notice message. Callers treat failure
// as non-fatal; the message may already be gone.
func (n *Notifier) DeleteNotice(_ context.Context, owner int64, noticeID int) error {
	if _, err := n.tg.Request(tgbotapi.NewDeleteMessage(owner, noticeID)); err != nil {
		return fmt.Errorf("delete notice %d for %d: %w", noticeID, owner, err)
	}
	return nil
}
