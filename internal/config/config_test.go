package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/nodian/internal/config"
)

func writeConfig(t *testing.T, home string, data map[string]any) {
	t.Helper()

	configPath := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("failed to create config directory: %v", err)
	}

	raw, err := yaml.Marshal(data)
	if err != nil {
		t.Fatalf("failed to marshal config data: %v", err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func TestEnsureConfigExistsCreatesDefaults(t *testing.T) {
	home := t.TempDir()

	if err := config.EnsureConfigExists(home); err != nil {
		t.Fatalf("EnsureConfigExists returned error: %v", err)
	}

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got, want := cfg.RootPath(), filepath.Join(home, "nodian"); got != want {
		t.Fatalf("RootPath() = %q, want %q", got, want)
	}
	if got, want := cfg.SessionPath(), filepath.Join(home, ".nodian", "open_files.json"); got != want {
		t.Fatalf("SessionPath() = %q, want %q", got, want)
	}
	if got, want := cfg.DatabasePath(), filepath.Join(home, ".nodian", "nodian.db"); got != want {
		t.Fatalf("DatabasePath() = %q, want %q", got, want)
	}
	if !cfg.Persist() {
		t.Fatalf("expected session persistence enabled by default")
	}
	if got, want := cfg.LogPath(), filepath.Join(home, ".nodian", "nodian.log"); got != want {
		t.Fatalf("LogPath() = %q, want %q", got, want)
	}
}

func TestLoadReadsValues(t *testing.T) {
	home := t.TempDir()
	root := filepath.Join(t.TempDir(), "notes")
	writeConfig(t, home, map[string]any{
		"root_dir":         root,
		"persist_session":  false,
		"log_level":        "debug",
		"refresh_interval": "2s",
		"preview_width":    100,
	})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.RootPath() != root {
		t.Fatalf("RootPath() = %q, want %q", cfg.RootPath(), root)
	}
	if cfg.Persist() {
		t.Fatalf("expected persistence disabled")
	}
	if cfg.LogLevel != "DEBUG" {
		t.Fatalf("LogLevel = %q, want DEBUG", cfg.LogLevel)
	}
	if cfg.RefreshInterval != 2*time.Second {
		t.Fatalf("RefreshInterval = %v, want 2s", cfg.RefreshInterval)
	}
	if cfg.PreviewWidth != 100 {
		t.Fatalf("PreviewWidth = %d, want 100", cfg.PreviewWidth)
	}
}

func TestLoadRejectsInvalidLevel(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{"log_level": "chatty"})

	_, err := config.Load(home)
	var initErr *config.ConfigInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("Load returned %v, want ConfigInitError", err)
	}
}

func TestApplyOverridesOnlyUsesSetKeys(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{"root_dir": "notes", "log_level": "warn"})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	v := viper.New()
	v.Set("root_dir", "elsewhere")
	if err := cfg.ApplyOverrides(v); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}

	if got, want := cfg.RootPath(), filepath.Join(home, "elsewhere"); got != want {
		t.Fatalf("RootPath() = %q, want %q", got, want)
	}
	if cfg.LogLevel != "WARN" {
		t.Fatalf("LogLevel = %q, want WARN kept from file", cfg.LogLevel)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	cfg := config.Default(home)
	cfg.RefreshInterval = 1500 * time.Millisecond

	if err := cfg.ChangeRoot("journal"); err != nil {
		t.Fatalf("ChangeRoot returned error: %v", err)
	}

	loaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.RootDir != "journal" {
		t.Fatalf("RootDir = %q, want %q", loaded.RootDir, "journal")
	}
	if loaded.RefreshInterval != cfg.RefreshInterval {
		t.Fatalf("RefreshInterval = %v, want %v", loaded.RefreshInterval, cfg.RefreshInterval)
	}

	if err := cfg.ChangeRoot("  "); err == nil {
		t.Fatalf("ChangeRoot accepted an empty root")
	}
}
