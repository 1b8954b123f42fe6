package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ledger.File != "data/users.json" {
		t.Errorf("ledger file = %q", cfg.Ledger.File)
	}
	if cfg.Ledger.StartingBalance != 100 {
		t.Errorf("starting balance = %v, want 100", cfg.Ledger.StartingBalance)
	}
	if cfg.DataSource.Provider != "twelvedata" || cfg.DataSource.BaseURL != "https://api.twelvedata.com" {
		t.Errorf("unexpected data source %+v", cfg.DataSource)
	}
	if cfg.Bot.PromptTimeoutSeconds != 30 {
		t.Errorf("prompt timeout = %d", cfg.Bot.PromptTimeoutSeconds)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: from-file
data_source:
  provider: yahoo
ledger:
  starting_balance: 250
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("LEDGER_FILE", "/tmp/ledger.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("env should override token, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Ledger.File != "/tmp/ledger.json" {
		t.Errorf("ledger file = %q", cfg.Ledger.File)
	}
	if cfg.Ledger.StartingBalance != 250 {
		t.Errorf("starting balance = %v", cfg.Ledger.StartingBalance)
	}
	if cfg.DataSource.BaseURL != "" {
		t.Errorf("yahoo provider should not get a twelvedata base url, got %q", cfg.DataSource.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "telegram: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"no token", func(c *Config) { c.Telegram.BotToken = "" }, true},
		{"twelvedata without key", func(c *Config) { c.DataSource.APIKey = "" }, true},
		{"yahoo without key", func(c *Config) { c.DataSource.Provider = "yahoo"; c.DataSource.APIKey = "" }, false},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, true},
		{"zero balance", func(c *Config) { c.Ledger.StartingBalance = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			cfg.Telegram.BotToken = "token"
			cfg.DataSource.APIKey = "key"
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
