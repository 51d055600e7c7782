// Package bot implements the core bot lifecycle and component orchestration.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/Kengston/banhBao/internal/config"
	"github.com/Kengston/banhBao/internal/reminder"
	"github.com/Kengston/banhBao/internal/server"
)

// shutdownTimeout bounds cleanup calls made after the run context is gone.
const shutdownTimeout = 5 * time.Second

// Bot represents the main application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	tgBot     *tgbot.Bot
	scheduler *reminder.Scheduler
	server    *server.Server
}

// NewBot creates a new instance of the bot with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	tgBot *tgbot.Bot,
	scheduler *reminder.Scheduler,
	srv *server.Server,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		tgBot:     tgBot,
		scheduler: scheduler,
		server:    srv,
	}
}

// webhookMode reports whether a public base URL is configured.
func (b *Bot) webhookMode() bool {
	return b.cfg.Server.BaseURL != ""
}

// WebhookURL builds the externally reachable webhook URL.
func WebhookURL(cfg config.ServerConfig) string {
	return strings.TrimRight(cfg.BaseURL, "/") + "/webhook/" + cfg.WebhookSecret
}

// Run starts all components and blocks until the context is cancelled or an
// error occurs, handling graceful shutdown.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if b.webhookMode() {
			return b.runWebhookListener(gCtx)
		}
		return b.runPollingListener(gCtx)
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		return b.server.Run(gCtx)
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// runPollingListener runs the Telegram long-polling loop. Any leftover
// webhook must be removed first or getUpdates is rejected.
func (b *Bot) runPollingListener(ctx context.Context) error {
	if _, err := b.tgBot.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{
		DropPendingUpdates: b.cfg.Telegram.DropPendingUpdates,
	}); err != nil {
		b.logger.Warn("Failed to delete webhook before polling", "error", err)
	}

	b.logger.Info("Starting Telegram listener (long polling)...")
	b.tgBot.Start(ctx)
	b.logger.Info("Telegram listener stopped.")

	if ctx.Err() == nil {
		return fmt.Errorf("telegram listener stopped unexpectedly")
	}
	return nil
}

// runWebhookListener registers the webhook and processes updates delivered
// through the HTTP front door, removing the webhook again on shutdown.
func (b *Bot) runWebhookListener(ctx context.Context) error {
	url := WebhookURL(b.cfg.Server)
	ok, err := b.tgBot.SetWebhook(ctx, &tgbot.SetWebhookParams{
		URL:                url,
		DropPendingUpdates: b.cfg.Telegram.DropPendingUpdates,
		AllowedUpdates:     []string{"message"},
	})
	if err != nil || !ok {
		return fmt.Errorf("failed to set webhook %q: %w", url, err)
	}
	b.logger.Info("Webhook registered", "url", url)

	b.tgBot.StartWebhook(ctx)
	b.logger.Info("Telegram webhook listener stopped.")

	cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if _, err := b.tgBot.DeleteWebhook(cleanupCtx, &tgbot.DeleteWebhookParams{}); err != nil {
		b.logger.Error("Failed to delete webhook on shutdown", "error", err)
	}

	if ctx.Err() == nil {
		return fmt.Errorf("telegram webhook listener stopped unexpectedly")
	}
	return nil
}
