package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewCreateHandler returns a handler for the /create command, which starts
// the event creation flow.
func NewCreateHandler(deps HandlerDeps) bot.HandlerFunc {
	return createHandler{deps}.Handle
}

type createHandler struct {
	deps HandlerDeps
}

func (h createHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "create")

	if update.Message == nil {
		log.WarnContext(ctx, "Create handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Starting create flow", "chat_id", chatID)
	res := h.deps.Conversations.StartCreate(chatID)
	sendFlowResult(ctx, b, h.deps, log, chatID, res)
}
