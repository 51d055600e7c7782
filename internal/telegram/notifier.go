package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
)

// Notifier delivers rendered reminder text to a chat via the Telegram API.
// It implements reminder.Notifier.
type Notifier struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewNotifier creates a Notifier over an existing bot instance.
func NewNotifier(b *bot.Bot, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		bot:    b,
		logger: logger.With("component", "notifier"),
	}
}

// Notify sends the rendered text to the chat, surfacing the link on its own
// line when present.
func (n *Notifier) Notify(ctx context.Context, chatID int64, text, link string) error {
	if link != "" {
		text = text + "\n" + link
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send notification to chat %d: %w", chatID, err)
	}

	n.logger.Debug("Notification sent", "chat_id", chatID)
	return nil
}
