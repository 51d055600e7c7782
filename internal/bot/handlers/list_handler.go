package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewListHandler returns a handler for the /list command, which shows the
// chat's upcoming events in due-date order.
func NewListHandler(deps HandlerDeps) bot.HandlerFunc {
	return listHandler{deps}.Handle
}

type listHandler struct {
	deps HandlerDeps
}

func (h listHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "list")

	if update.Message == nil {
		log.WarnContext(ctx, "List handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	events := h.deps.Store.ListForChat(chatID)
	text := h.deps.Config.Messages.NoEvents
	if len(events) > 0 {
		text = h.deps.Config.Messages.ListHeader + h.deps.Conversations.RenderList(events)
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send event list", "error", err, "chat_id", chatID)
	}
}
