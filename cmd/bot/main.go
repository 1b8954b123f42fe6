package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"DayTrader/internal/bot"
	"DayTrader/internal/collector"
	"DayTrader/internal/config"
	"DayTrader/internal/ledger"
	"DayTrader/internal/logger"
	"DayTrader/internal/notifier"
	"DayTrader/internal/recorder"
	"DayTrader/internal/scheduler"
	"DayTrader/internal/trade"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("config validation", zap.Error(err))
	}
	log.Info("DayTrader starting", zap.String("config", cfgPath))

	// Market data
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "yahoo":
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	default:
		fetcher = collector.NewTwelveDataFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	}
	log.Info("data source", zap.String("provider", fetcher.Name()))

	quotes := fetcher
	if cfg.QuoteCache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.QuoteCache.RedisAddr,
			Password: cfg.QuoteCache.RedisPassword,
			DB:       cfg.QuoteCache.RedisDB,
		})
		cached := collector.NewCachedFetcher(fetcher, rdb, time.Duration(cfg.QuoteCache.TTLSeconds)*time.Second, log)
		defer cached.Close()
		quotes = cached
		log.Info("quote cache enabled", zap.String("redis", cfg.QuoteCache.RedisAddr), zap.Int("ttl_seconds", cfg.QuoteCache.TTLSeconds))
	}

	// Ledger
	store, err := ledger.NewStore(cfg.Ledger.File, cfg.Ledger.StartingBalance, log)
	if err != nil {
		log.Fatal("init ledger", zap.Error(err))
	}

	// Trade journal
	rec := openRecorder(cfg, log)
	defer rec.Close()

	engine := trade.NewEngine(store, quotes, rec, log)
	b := bot.New(engine, fetcher, bot.Options{
		BotName:         cfg.Telegram.BotName,
		PromptTimeout:   time.Duration(cfg.Bot.PromptTimeoutSeconds) * time.Second,
		LeaderboardSize: cfg.Leaderboard.Size,
	}, log)

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.APIBase, cfg.Proxy, log)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, b, tn, cfg.Leaderboard.ChatID, log)
	if err := sched.RegisterAll(cfg.Schedule.LeaderboardCron, cfg.Schedule.SweepCron); err != nil {
		log.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, b.Handle)
	log.Info("telegram polling started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping")
	cancel()
}

// openRecorder prefers Postgres, then SQLite, and falls back to a no-op journal.
func openRecorder(cfg *config.Config, log *zap.Logger) recorder.Recorder {
	if cfg.Database.PostgresDSN != "" {
		pr, err := recorder.NewPostgresRecorder(cfg.Database.PostgresDSN, log)
		if err == nil {
			log.Info("trade journal", zap.String("backend", "postgres"))
			return pr
		}
		log.Warn("init postgres recorder failed", zap.Error(err))
	}
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err == nil {
			log.Info("trade journal", zap.String("backend", "sqlite"), zap.String("path", cfg.Database.SQLitePath))
			return sr
		}
		log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
	}
	return recorder.NewNoopRecorder()
}
