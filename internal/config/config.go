package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LogConfig defines the logger options.
type LogConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Format      string `yaml:"format"`      // json or console
	OutputFile  string `yaml:"output_file"` // optional rotated file
	Environment string `yaml:"environment"` // dev or prod
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		BotName  string `yaml:"bot_name"`
		APIBase  string `yaml:"api_base"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"` // twelvedata or yahoo
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Ledger struct {
		File            string  `yaml:"file"`
		StartingBalance float64 `yaml:"starting_balance"`
	} `yaml:"ledger"`
	QuoteCache struct {
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		TTLSeconds    int    `yaml:"ttl_seconds"`
	} `yaml:"quote_cache"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Schedule struct {
		LeaderboardCron string `yaml:"leaderboard_cron"`
		SweepCron       string `yaml:"sweep_cron"`
	} `yaml:"schedule"`
	Leaderboard struct {
		ChatID string `yaml:"chat_id"`
		Size   int    `yaml:"size"`
	} `yaml:"leaderboard"`
	Bot struct {
		PromptTimeoutSeconds int `yaml:"prompt_timeout_seconds"`
	} `yaml:"bot"`
	Log   LogConfig `yaml:"log"`
	Proxy string    `yaml:"proxy"`
}

// Load reads .env (if any), the YAML file, then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	// .env only seeds the process environment; real env vars win.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_BOT_NAME"); v != "" {
		cfg.Telegram.BotName = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("TWELVEDATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("LEDGER_FILE"); v != "" {
		cfg.Ledger.File = v
	}
	if v := os.Getenv("STARTING_BALANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ledger.StartingBalance = f
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.QuoteCache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.QuoteCache.RedisPassword = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("LEADERBOARD_CHAT_ID"); v != "" {
		cfg.Leaderboard.ChatID = v
	}
	if v := os.Getenv("CRON_LEADERBOARD"); v != "" {
		cfg.Schedule.LeaderboardCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Telegram.APIBase == "" {
		cfg.Telegram.APIBase = "https://api.telegram.org"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "twelvedata"
	}
	if cfg.DataSource.BaseURL == "" && cfg.DataSource.Provider == "twelvedata" {
		cfg.DataSource.BaseURL = "https://api.twelvedata.com"
	}
	if cfg.Ledger.File == "" {
		cfg.Ledger.File = "data/users.json"
	}
	if cfg.Ledger.StartingBalance == 0 {
		cfg.Ledger.StartingBalance = 100
	}
	if cfg.QuoteCache.TTLSeconds == 0 {
		cfg.QuoteCache.TTLSeconds = 60
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trades.db"
	}
	if cfg.Schedule.LeaderboardCron == "" {
		cfg.Schedule.LeaderboardCron = "0 0 21 * * 1-5"
	}
	if cfg.Schedule.SweepCron == "" {
		cfg.Schedule.SweepCron = "*/15 * * * * *"
	}
	if cfg.Leaderboard.Size == 0 {
		cfg.Leaderboard.Size = 10
	}
	if cfg.Bot.PromptTimeoutSeconds == 0 {
		cfg.Bot.PromptTimeoutSeconds = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	switch c.DataSource.Provider {
	case "twelvedata":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for twelvedata")
		}
	case "yahoo":
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.Ledger.StartingBalance <= 0 {
		return fmt.Errorf("ledger.starting_balance must be positive")
	}
	if c.Leaderboard.Size <= 0 {
		return fmt.Errorf("leaderboard.size must be positive")
	}
	return nil
}
