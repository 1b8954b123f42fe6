package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"DayTrader/internal/bot"
	"DayTrader/internal/model"
)

// Sender delivers scheduled posts.
type Sender interface {
	SendWithRetry(ctx context.Context, reply model.Reply, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Bot      *bot.Bot
	Notifier Sender
	ChatID   string // leaderboard destination; empty disables the post
	Ctx      context.Context
	log      *zap.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, b *bot.Bot, sender Sender, chatID string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Bot:      b,
		Notifier: sender,
		ChatID:   chatID,
		Ctx:      ctx,
		log:      logger,
	}
}

// RegisterAll registers the leaderboard post and the prompt sweep.
func (s *Scheduler) RegisterAll(leaderboardCron, sweepCron string) error {
	if s.ChatID != "" && leaderboardCron != "" {
		if _, err := s.Cron.AddFunc(leaderboardCron, s.PostLeaderboard); err != nil {
			return fmt.Errorf("register leaderboard task: %w", err)
		}
	} else {
		s.log.Info("leaderboard post disabled (no chat id)")
	}
	if sweepCron != "" {
		if _, err := s.Cron.AddFunc(sweepCron, s.sweepPrompts); err != nil {
			return fmt.Errorf("register prompt sweep: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// PostLeaderboard sends the current standings to the configured chat.
func (s *Scheduler) PostLeaderboard() {
	s.log.Info("posting leaderboard", zap.String("chat", s.ChatID))
	text := s.Bot.LeaderboardText(s.Ctx)
	if err := s.Notifier.SendWithRetry(s.Ctx, model.Reply{ChatID: s.ChatID, Text: text}, 3); err != nil {
		s.log.Error("send leaderboard", zap.Error(err))
	}
}

func (s *Scheduler) sweepPrompts() {
	if n := s.Bot.Prompts.Sweep(); n > 0 {
		s.log.Debug("expired buy prompts dropped", zap.Int("count", n))
	}
}
