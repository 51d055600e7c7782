// Package config manages application configuration from default values,
// an optional config.yaml file, and BOT_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrConfiguration indicates a problem loading or validating configuration.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration for all components of the bot:
// logging, Telegram transport, HTTP front door, event storage, and the
// user-visible message catalog.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Messages Messages       `mapstructure:"messages"`

	// Timezone is the single operating timezone in which all user-facing
	// date/time text is interpreted and displayed.
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// LogConfig defines structured logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig defines Telegram transport settings.
type TelegramConfig struct {
	Token              string        `mapstructure:"token" validate:"required"`
	PollTimeout        time.Duration `mapstructure:"poll_timeout" validate:"min=1s,max=1m"`
	DropPendingUpdates bool          `mapstructure:"drop_pending_updates"`
}

// ServerConfig defines the HTTP front door. When BaseURL is set the bot runs
// in webhook mode with the webhook registered at BaseURL + /webhook/{secret};
// otherwise it falls back to long polling and the server only serves the
// health endpoint.
type ServerConfig struct {
	ListenAddr    string `mapstructure:"listen_addr" validate:"required"`
	BaseURL       string `mapstructure:"base_url" validate:"omitempty,url"`
	WebhookSecret string `mapstructure:"webhook_secret" validate:"required"`
}

// StorageConfig defines event persistence settings.
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// Messages defines all user-visible bot text. Entries containing %s or %d verbs
// are fmt templates filled in by the handlers.
type Messages struct {
	Welcome string `mapstructure:"welcome" validate:"required"`
	Help    string `mapstructure:"help" validate:"required"`

	AskDateTime     string `mapstructure:"ask_datetime" validate:"required"`
	InvalidDateTime string `mapstructure:"invalid_datetime" validate:"required"`
	DateTimeInPast  string `mapstructure:"datetime_in_past" validate:"required"`
	AskTitle        string `mapstructure:"ask_title" validate:"required"`
	EmptyTitle      string `mapstructure:"empty_title" validate:"required"`
	AskLink         string `mapstructure:"ask_link" validate:"required"`
	InvalidLink     string `mapstructure:"invalid_link" validate:"required"`

	EventCreated string `mapstructure:"event_created" validate:"required"`
	EventUpdated string `mapstructure:"event_updated" validate:"required"`
	EventDeleted string `mapstructure:"event_deleted" validate:"required"`

	AskSelection     string `mapstructure:"ask_selection" validate:"required"`
	SelectionNoMatch string `mapstructure:"selection_no_match" validate:"required"`
	AskField         string `mapstructure:"ask_field" validate:"required"`
	InvalidField     string `mapstructure:"invalid_field" validate:"required"`
	AskNewValue      string `mapstructure:"ask_new_value" validate:"required"`

	NoEvents      string `mapstructure:"no_events" validate:"required"`
	EventNotFound string `mapstructure:"event_not_found" validate:"required"`
	ListHeader    string `mapstructure:"list_header" validate:"required"`

	FlowCancelled   string `mapstructure:"flow_cancelled" validate:"required"`
	NothingToCancel string `mapstructure:"nothing_to_cancel" validate:"required"`

	Reminder    string `mapstructure:"reminder" validate:"required"`
	CurrentTime string `mapstructure:"current_time" validate:"required"`
}

// redact shortens a secret for log output.
func redact(s string) string {
	if len(s) <= 8 {
		return "..."
	}
	return s[:8] + "..."
}

// String implements fmt.Stringer without exposing the bot token.
func (c TelegramConfig) String() string {
	return fmt.Sprintf("TelegramConfig{Token: %s, PollTimeout: %s}", redact(c.Token), c.PollTimeout)
}
