package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewCancelHandler returns a handler for the /cancel command, which aborts
// any dialogue flow in progress.
func NewCancelHandler(deps HandlerDeps) bot.HandlerFunc {
	return cancelHandler{deps}.Handle
}

type cancelHandler struct {
	deps HandlerDeps
}

func (h cancelHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cancel")

	if update.Message == nil {
		log.WarnContext(ctx, "Cancel handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	res := h.deps.Conversations.CancelFlow(chatID)
	sendFlowResult(ctx, b, h.deps, log, chatID, res)
}
