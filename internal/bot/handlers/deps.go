package handlers

import (
	"log/slog"
	"time"

	"github.com/Kengston/banhBao/internal/config"
	"github.com/Kengston/banhBao/internal/conversation"
	"github.com/Kengston/banhBao/internal/event"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger        *slog.Logger
	Config        *config.Config
	Store         *event.Store
	Conversations *conversation.Manager
	Location      *time.Location
}
