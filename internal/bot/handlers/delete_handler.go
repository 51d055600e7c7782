package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDeleteHandler returns a handler for the /delete command, which starts
// the event deletion flow.
func NewDeleteHandler(deps HandlerDeps) bot.HandlerFunc {
	return deleteHandler{deps}.Handle
}

type deleteHandler struct {
	deps HandlerDeps
}

func (h deleteHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "delete")

	if update.Message == nil {
		log.WarnContext(ctx, "Delete handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Starting delete flow", "chat_id", chatID)
	res := h.deps.Conversations.StartDelete(chatID)
	sendFlowResult(ctx, b, h.deps, log, chatID, res)
}
