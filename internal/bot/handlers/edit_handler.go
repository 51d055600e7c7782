package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewEditHandler returns a handler for the /edit command, which starts the
// event editing flow.
func NewEditHandler(deps HandlerDeps) bot.HandlerFunc {
	return editHandler{deps}.Handle
}

type editHandler struct {
	deps HandlerDeps
}

func (h editHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "edit")

	if update.Message == nil {
		log.WarnContext(ctx, "Edit handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Starting edit flow", "chat_id", chatID)
	res := h.deps.Conversations.StartEdit(chatID)
	sendFlowResult(ctx, b, h.deps, log, chatID, res)
}
