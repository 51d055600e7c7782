// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// FlowReset creates a middleware that discards any active dialogue draft
// before the command handler runs. A command sent mid-flow is an implicit
// cancel; the draft is dropped without a dedicated warning and the command
// dispatches normally.
func FlowReset(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message != nil {
				chatID := update.Message.Chat.ID
				if promptIDs, ok := deps.Conversations.Abandon(chatID); ok {
					log := deps.Logger.With("middleware", "FlowReset")
					log.InfoContext(ctx, "Command interrupted active flow", "chat_id", chatID)
					deleteMessages(ctx, b, log, chatID, promptIDs)
				}
			}
			next(ctx, b, update)
		}
	}
}
