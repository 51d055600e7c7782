package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from:
// 1. Default values
// 2. The config file at path (optional, YAML)
// 3. BOT_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults need an explicit binding for Unmarshal to see
	// their environment values.
	_ = v.BindEnv("telegram.token")
	_ = v.BindEnv("server.base_url")

	// The config file is optional; defaults plus environment are enough.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// Validate checks the complete configuration, including that the configured
// timezone actually resolves.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %v", c.Timezone, err)
	}
	return nil
}

// Location resolves the operating timezone. Validate must have passed first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// setDefaults registers default values for all optional parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("timezone", DefaultTimezone)

	v.SetDefault("telegram.poll_timeout", DefaultPollTimeout)
	v.SetDefault("telegram.drop_pending_updates", DefaultDropPendingUpdates)

	v.SetDefault("server.listen_addr", DefaultListenAddr)
	v.SetDefault("server.webhook_secret", DefaultWebhookSecret)

	v.SetDefault("storage.path", DefaultStoragePath)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.ask_datetime", DefaultMessages.AskDateTime)
	v.SetDefault("messages.invalid_datetime", DefaultMessages.InvalidDateTime)
	v.SetDefault("messages.datetime_in_past", DefaultMessages.DateTimeInPast)
	v.SetDefault("messages.ask_title", DefaultMessages.AskTitle)
	v.SetDefault("messages.empty_title", DefaultMessages.EmptyTitle)
	v.SetDefault("messages.ask_link", DefaultMessages.AskLink)
	v.SetDefault("messages.invalid_link", DefaultMessages.InvalidLink)
	v.SetDefault("messages.event_created", DefaultMessages.EventCreated)
	v.SetDefault("messages.event_updated", DefaultMessages.EventUpdated)
	v.SetDefault("messages.event_deleted", DefaultMessages.EventDeleted)
	v.SetDefault("messages.ask_selection", DefaultMessages.AskSelection)
	v.SetDefault("messages.selection_no_match", DefaultMessages.SelectionNoMatch)
	v.SetDefault("messages.ask_field", DefaultMessages.AskField)
	v.SetDefault("messages.invalid_field", DefaultMessages.InvalidField)
	v.SetDefault("messages.ask_new_value", DefaultMessages.AskNewValue)
	v.SetDefault("messages.no_events", DefaultMessages.NoEvents)
	v.SetDefault("messages.event_not_found", DefaultMessages.EventNotFound)
	v.SetDefault("messages.list_header", DefaultMessages.ListHeader)
	v.SetDefault("messages.flow_cancelled", DefaultMessages.FlowCancelled)
	v.SetDefault("messages.nothing_to_cancel", DefaultMessages.NothingToCancel)
	v.SetDefault("messages.reminder", DefaultMessages.Reminder)
	v.SetDefault("messages.current_time", DefaultMessages.CurrentTime)
}
