package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTextHandler returns the default handler for plain text messages. Text
// from a chat with an active flow advances that flow; anything else is
// ignored. Unregistered command-marker text mid-flow ends up here as well
// and is handled by the flow as an implicit cancel.
func NewTextHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps}.Handle
}

type textHandler struct {
	deps HandlerDeps
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")

	if update.Message == nil || update.Message.Text == "" {
		return
	}
	chatID := update.Message.Chat.ID

	res, ok := h.deps.Conversations.HandleText(chatID, update.Message.Text)
	if !ok {
		log.DebugContext(ctx, "Text outside any flow, ignoring", "chat_id", chatID)
		return
	}

	sendFlowResult(ctx, b, h.deps, log, chatID, res)
}
