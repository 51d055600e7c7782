package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/Kengston/banhBao/internal/conversation"
)

// sendFlowResult sends a conversation turn's reply. While the flow is still
// in progress the prompt's message id is recorded in the draft; once the
// flow ends the accumulated prompts are cleaned up.
func sendFlowResult(ctx context.Context, b *bot.Bot, deps HandlerDeps, log *slog.Logger, chatID int64, res conversation.Result) {
	msg, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: res.Reply})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send flow reply", "error", err, "chat_id", chatID)
		return
	}

	if !res.Done {
		deps.Conversations.TrackPrompt(chatID, msg.ID)
		return
	}
	deleteMessages(ctx, b, log, chatID, res.CleanupIDs)
}

// deleteMessages best-effort removes flow prompt messages. Telegram may
// refuse (old messages, missing rights); that is only logged.
func deleteMessages(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, messageIDs []int) {
	if len(messageIDs) == 0 {
		return
	}
	if _, err := b.DeleteMessages(ctx, &bot.DeleteMessagesParams{ChatID: chatID, MessageIDs: messageIDs}); err != nil {
		log.DebugContext(ctx, "Failed to delete flow prompts", "error", err, "chat_id", chatID, "count", len(messageIDs))
	}
}
