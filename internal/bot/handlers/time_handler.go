package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTimeHandler returns a handler for the /time command, which replies with
// the current time in the operating timezone.
func NewTimeHandler(deps HandlerDeps) bot.HandlerFunc {
	return timeHandler{deps}.Handle
}

type timeHandler struct {
	deps HandlerDeps
}

func (h timeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "time")

	if update.Message == nil {
		log.WarnContext(ctx, "Time handler received update with nil message", "update_id", update.ID)
		return
	}

	now := time.Now().In(h.deps.Location)
	_, offsetSeconds := now.Zone()
	text := fmt.Sprintf(h.deps.Config.Messages.CurrentTime,
		now.Format("15:04:05, 02 Jan 2006"), offsetSeconds/3600)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send time message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
