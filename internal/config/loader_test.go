package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kengston/banhBao/internal/config"
)

func TestLoad_DefaultsWithTokenFromEnv(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123456:test-token")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Telegram.Token != "123456:test-token" {
		t.Errorf("Token = %q, want env value", cfg.Telegram.Token)
	}
	if cfg.Timezone != config.DefaultTimezone {
		t.Errorf("Timezone = %q, want %q", cfg.Timezone, config.DefaultTimezone)
	}
	if cfg.Log.Level != config.DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, config.DefaultLogLevel)
	}
	if cfg.Storage.Path != config.DefaultStoragePath {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, config.DefaultStoragePath)
	}
	if cfg.Messages.AskDateTime == "" {
		t.Error("message defaults not applied")
	}
}

func TestLoad_MissingTokenFails(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "")

	if _, err := config.Load(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Fatal("Load succeeded without a bot token")
	}
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123456:test-token")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "timezone: Europe/Berlin\nlog:\n  level: debug\nstorage:\n  path: /tmp/other.json\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "Europe/Berlin" {
		t.Errorf("Timezone = %q, want Europe/Berlin", cfg.Timezone)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Storage.Path != "/tmp/other.json" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
}

func TestLoad_InvalidTimezoneFails(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123456:test-token")
	t.Setenv("BOT_TIMEZONE", "Not/AZone")

	if _, err := config.Load(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Fatal("Load succeeded with an unresolvable timezone")
	}
}

func TestLocation_ResolvesOperatingTimezone(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123456:test-token")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	loc := cfg.Location()
	want := time.Date(2030, 1, 1, 10, 0, 0, 0, loc)
	// Asia/Ho_Chi_Minh is UTC+7 year-round.
	if got := want.UTC().Hour(); got != 3 {
		t.Errorf("10:00 local = %02d:00 UTC, want 03:00", got)
	}
}
