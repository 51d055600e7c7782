// Package main contains the entrypoint for the reminder bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/Kengston/banhBao/internal/bot"
	"github.com/Kengston/banhBao/internal/bot/handlers"
	"github.com/Kengston/banhBao/internal/config"
	"github.com/Kengston/banhBao/internal/conversation"
	"github.com/Kengston/banhBao/internal/event"
	"github.com/Kengston/banhBao/internal/logger"
	"github.com/Kengston/banhBao/internal/reminder"
	"github.com/Kengston/banhBao/internal/server"
	"github.com/Kengston/banhBao/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// store, scheduler, conversation manager, transport), handles graceful
// shutdown, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	loc := cfg.Location()
	log.Info("Operating timezone resolved", "timezone", cfg.Timezone)

	store := event.NewStore(cfg.Storage.Path, loc, log)
	// Rewrite files loaded from a legacy schema in the current format.
	store.Flush()

	// The notifier needs the bot instance, which needs the handlers, which
	// need the conversation manager, which needs the scheduler. Break the
	// cycle by wiring the notifier into the scheduler after the bot exists.
	var notifier deferredNotifier
	sched, err := reminder.NewScheduler(log, loc, store, &notifier, cfg.Messages)
	if err != nil {
		log.Error("Failed to create reminder scheduler", "error", err)
		return 1
	}

	conversations := conversation.NewManager(log, store, sched, loc, cfg.Messages)

	hDeps := handlers.HandlerDeps{
		Logger:        log,
		Config:        cfg,
		Store:         store,
		Conversations: conversations,
		Location:      loc,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewTextHandler(hDeps)),
		tgbot.WithHTTPClient(cfg.Telegram.PollTimeout, http.DefaultClient),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}
	notifier.set(telegram.NewNotifier(tg, log))

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	// The job table is fully derivable from the store: plan every event,
	// dropping the ones whose reminder instant has already passed.
	sched.PlanAll()

	var webhookHandler http.HandlerFunc
	if cfg.Server.BaseURL != "" {
		webhookHandler = tg.WebhookHandler()
	}
	srv := server.New(log, cfg.Server, webhookHandler)

	app := bot.NewBot(log, cfg, tg, sched, srv)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}

// deferredNotifier lets the scheduler be constructed before the Telegram bot
// exists. set must be called before the scheduler starts firing.
type deferredNotifier struct {
	inner reminder.Notifier
}

func (d *deferredNotifier) set(n reminder.Notifier) {
	d.inner = n
}

func (d *deferredNotifier) Notify(ctx context.Context, chatID int64, text, link string) error {
	if d.inner == nil {
		return errors.New("notifier not initialized")
	}
	return d.inner.Notify(ctx, chatID, text, link)
}
