package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Wiki.DefaultLanguage != "en" {
		t.Errorf("Wiki.DefaultLanguage = %s, want 'en'", cfg.Wiki.DefaultLanguage)
	}
	if cfg.Wiki.SecondaryLanguage != "hi" {
		t.Errorf("Wiki.SecondaryLanguage = %s, want 'hi'", cfg.Wiki.SecondaryLanguage)
	}
	if cfg.Wiki.Debounce != 300*time.Millisecond {
		t.Errorf("Wiki.Debounce = %v, want 300ms", cfg.Wiki.Debounce)
	}
	if cfg.Wiki.SuggestionLimit != 8 {
		t.Errorf("Wiki.SuggestionLimit = %d, want 8", cfg.Wiki.SuggestionLimit)
	}
	if cfg.Wiki.ThumbnailSize != 80 {
		t.Errorf("Wiki.ThumbnailSize = %d, want 80", cfg.Wiki.ThumbnailSize)
	}
	if cfg.Wiki.TrendingLimit != 10 {
		t.Errorf("Wiki.TrendingLimit = %d, want 10", cfg.Wiki.TrendingLimit)
	}
	if cfg.Wiki.RelatedLimit != 5 {
		t.Errorf("Wiki.RelatedLimit = %d, want 5", cfg.Wiki.RelatedLimit)
	}
	if cfg.Wiki.HTTPTimeout != 30*time.Second {
		t.Errorf("Wiki.HTTPTimeout = %v, want 30s", cfg.Wiki.HTTPTimeout)
	}
	if cfg.Wiki.UserAgent == "" {
		t.Error("Wiki.UserAgent should not be empty")
	}
	if cfg.Wiki.Language != "" {
		t.Errorf("Wiki.Language = %q, want empty so the locale decides", cfg.Wiki.Language)
	}

	if cfg.Search.Engine != "bleve" {
		t.Errorf("Search.Engine = %s, want 'bleve'", cfg.Search.Engine)
	}
	if !cfg.History.Enabled {
		t.Error("History should be enabled by default")
	}
	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Wiki.Debounce != 300*time.Millisecond {
		t.Errorf("Wiki.Debounce = %v, want 300ms", cfg.Wiki.Debounce)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[wiki]
language = "hi"
http_timeout = "60s"
debounce = "150ms"
user_agent = "test-agent"

[history]
path = "/tmp/wkpd-history.db"

[ui.colors]
primary = "#FF0000"
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Wiki.Language != "hi" {
		t.Errorf("Wiki.Language = %s, want 'hi'", cfg.Wiki.Language)
	}
	if cfg.Wiki.HTTPTimeout != 60*time.Second {
		t.Errorf("Wiki.HTTPTimeout = %v, want 60s", cfg.Wiki.HTTPTimeout)
	}
	if cfg.Wiki.Debounce != 150*time.Millisecond {
		t.Errorf("Wiki.Debounce = %v, want 150ms", cfg.Wiki.Debounce)
	}
	if cfg.Wiki.UserAgent != "test-agent" {
		t.Errorf("Wiki.UserAgent = %s, want 'test-agent'", cfg.Wiki.UserAgent)
	}
	if cfg.Wiki.SuggestionLimit != 8 {
		t.Errorf("Wiki.SuggestionLimit = %d, want default 8 to survive", cfg.Wiki.SuggestionLimit)
	}
	if cfg.History.Path != "/tmp/wkpd-history.db" {
		t.Errorf("History.Path = %s, want '/tmp/wkpd-history.db'", cfg.History.Path)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := defaultConfig()
	cfg.Wiki.UserAgent = "test-save-agent"
	cfg.Wiki.Debounce = 500 * time.Millisecond
	cfg.History.Path = "/test/history.db"
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(tmpDir, "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.History.Path != cfg.History.Path {
		t.Errorf("Loaded History.Path = %s, want %s", loaded.History.Path, cfg.History.Path)
	}
	if loaded.Wiki.UserAgent != cfg.Wiki.UserAgent {
		t.Errorf("Loaded Wiki.UserAgent = %s, want %s", loaded.Wiki.UserAgent, cfg.Wiki.UserAgent)
	}
	if loaded.Wiki.Debounce != cfg.Wiki.Debounce {
		t.Errorf("Loaded Wiki.Debounce = %v, want %v", loaded.Wiki.Debounce, cfg.Wiki.Debounce)
	}
	if loaded.Keys.Modifier != cfg.Keys.Modifier {
		t.Errorf("Loaded Keys.Modifier = %s, want %s", loaded.Keys.Modifier, cfg.Keys.Modifier)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Fatal("GenerateDefaultConfig() did not create file")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Generated config has Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Wiki.TrendingLimit != 10 {
		t.Errorf("Generated config has Wiki.TrendingLimit = %d, want 10", cfg.Wiki.TrendingLimit)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	if got := expandPath("~/x/history.db"); got != filepath.Join(home, "x", "history.db") {
		t.Errorf("expandPath(~/x/history.db) = %s", got)
	}
	if got := expandPath("/abs/path.db"); got != "/abs/path.db" {
		t.Errorf("expandPath(/abs/path.db) = %s", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %s, want empty", got)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.History.Enabled {
		t.Error("TestConfig should disable history")
	}
	if cfg.Wiki.UserAgent != "wkpd-test/1.0" {
		t.Errorf("TestConfig Wiki.UserAgent = %s, want 'wkpd-test/1.0'", cfg.Wiki.UserAgent)
	}
}
