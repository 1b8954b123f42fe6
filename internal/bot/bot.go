// Package bot turns chat messages and button presses into trades and replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"DayTrader/internal/calculator"
	"DayTrader/internal/collector"
	"DayTrader/internal/model"
	"DayTrader/internal/notifier"
	"DayTrader/internal/trade"
)

const (
	defaultHistory = 10
	maxHistory     = 50
)

// Options tunes the bot.
type Options struct {
	BotName         string
	PromptTimeout   time.Duration
	LeaderboardSize int
}

// Bot routes commands to the trade engine.
type Bot struct {
	Engine  *trade.Engine
	Series  collector.Fetcher
	Prompts *PromptBook

	botName         string
	leaderboardSize int
	log             *zap.Logger
	now             func() time.Time
}

// New creates a bot. series serves the stock command; trades quote through the engine.
func New(engine *trade.Engine, series collector.Fetcher, opts Options, logger *zap.Logger) *Bot {
	if opts.PromptTimeout <= 0 {
		opts.PromptTimeout = 30 * time.Second
	}
	if opts.LeaderboardSize <= 0 {
		opts.LeaderboardSize = 10
	}
	return &Bot{
		Engine:          engine,
		Series:          series,
		Prompts:         NewPromptBook(opts.PromptTimeout),
		botName:         opts.BotName,
		leaderboardSize: opts.LeaderboardSize,
		log:             logger,
		now:             time.Now,
	}
}

// Handle processes one incoming update. A nil reply means stay silent.
func (b *Bot) Handle(ctx context.Context, in model.Incoming) *model.Reply {
	if in.IsCallback() {
		return b.handleButton(in)
	}

	cmd, args, ok := parseCommand(in.Text, b.botName)
	if !ok {
		return b.handlePromptAnswer(ctx, in)
	}

	var text string
	switch cmd {
	case "help", "start":
		text = notifier.FormatHelp(b.Engine.Ledger.StartingBalance())
	case "user", "portfolio":
		text = b.cmdUser(ctx, in, args)
	case "stock":
		return b.cmdStock(ctx, in, args)
	case "buy":
		text = b.cmdTrade(ctx, in, model.SideBuy, args)
	case "sell":
		text = b.cmdTrade(ctx, in, model.SideSell, args)
	case "history":
		text = b.cmdHistory(in, args)
	case "top", "leaderboard":
		text = b.LeaderboardText(ctx)
	default:
		text = notifier.FormatHelp(b.Engine.Ledger.StartingBalance())
	}
	return &model.Reply{ChatID: in.ChatID, Text: text}
}

func (b *Bot) cmdUser(ctx context.Context, in model.Incoming, args []string) string {
	target := in.From
	switch {
	case len(in.Mentions) > 0:
		target = in.Mentions[0]
	case len(in.MentionNames) > 0 || (len(args) > 0 && strings.HasPrefix(args[0], "@")):
		name := ""
		if len(in.MentionNames) > 0 {
			name = in.MentionNames[0]
		} else {
			name = args[0]
		}
		u, found, err := b.Engine.Ledger.Lookup(name)
		if err != nil {
			b.log.Error("lookup user", zap.String("name", name), zap.Error(err))
			return "❌ Error loading portfolio."
		}
		if !found {
			return notifier.FormatNoPortfolio("@" + strings.TrimPrefix(name, "@"))
		}
		target = u
	}

	view, err := b.Engine.Portfolio(ctx, target)
	if err != nil {
		b.log.Error("portfolio", zap.String("user", target.ID), zap.Error(err))
		return "❌ Error loading portfolio."
	}
	return notifier.FormatPortfolio(target.Label(), view, b.now())
}

func (b *Bot) cmdStock(ctx context.Context, in model.Incoming, args []string) *model.Reply {
	usage := &model.Reply{ChatID: in.ChatID, Text: notifier.FormatStockUsage(collector.Intervals)}
	if len(args) == 0 {
		return usage
	}
	symbol := model.NormalizeSymbol(args[0])
	interval := collector.DefaultInterval
	outputsize := collector.DefaultOutputSize
	if len(args) > 1 {
		interval = strings.ToLower(args[1])
		if !collector.ValidInterval(interval) {
			usage.Text = fmt.Sprintf("❌ Unsupported interval %s.\n\n", html.EscapeString(args[1])) + usage.Text
			return usage
		}
	}
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 1 || n > collector.MaxOutputSize {
			usage.Text = fmt.Sprintf("❌ outputsize must be between 1 and %d.\n\n", collector.MaxOutputSize) + usage.Text
			return usage
		}
		outputsize = n
	}

	reply := &model.Reply{ChatID: in.ChatID}
	bars, err := b.Series.FetchSeries(ctx, symbol, interval, outputsize)
	if err != nil && !errors.Is(err, collector.ErrNoData) {
		b.log.Warn("fetch series", zap.String("symbol", symbol), zap.String("interval", interval), zap.Error(err))
		reply.Text = fmt.Sprintf("Error getting requested stock (%s).", html.EscapeString(symbol))
		return reply
	}
	if len(bars) == 0 {
		reply.Text = "No data found for that symbol."
		return reply
	}
	metrics, err := calculator.Summarize(symbol, interval, bars)
	if err != nil {
		b.log.Warn("summarize series", zap.String("symbol", symbol), zap.Error(err))
		reply.Text = fmt.Sprintf("Error getting requested stock (%s).", html.EscapeString(symbol))
		return reply
	}
	reply.Text = notifier.FormatStockMetrics(metrics)
	reply.Buttons = []model.Button{{
		Label: "Buy Stock",
		Data:  encodeBuyButton(in.From.ID, symbol, metrics.CurrentPrice),
	}}
	return reply
}

func (b *Bot) cmdTrade(ctx context.Context, in model.Incoming, side model.Side, args []string) string {
	command := strings.ToLower(string(side))
	if len(args) < 2 {
		return notifier.FormatTradeUsage(command)
	}
	symbol := model.NormalizeSymbol(args[0])
	shares, err := strconv.ParseFloat(args[1], 64)
	if err != nil || math.IsNaN(shares) || math.IsInf(shares, 0) {
		return "Please enter a valid number of shares."
	}

	var res *model.TradeResult
	if side == model.SideBuy {
		res, err = b.Engine.Buy(ctx, in.From, symbol, shares)
	} else {
		res, err = b.Engine.Sell(ctx, in.From, symbol, shares)
	}
	if err != nil {
		return b.tradeError(in.From, symbol, err)
	}
	if side == model.SideBuy {
		return notifier.FormatBought(res)
	}
	return notifier.FormatSold(res)
}

// tradeError maps engine failures to user-facing text.
func (b *Bot) tradeError(user model.User, symbol string, err error) string {
	var fundsErr *trade.InsufficientFundsError
	var sharesErr *trade.InsufficientSharesError
	switch {
	case errors.As(err, &fundsErr):
		return fmt.Sprintf("❌ Not enough money. That costs %s but your balance is %s.",
			notifier.Money(fundsErr.Cost), notifier.Money(fundsErr.Balance))
	case errors.As(err, &sharesErr):
		return fmt.Sprintf("❌ You only have %s shares of %s available.",
			notifier.Shares(sharesErr.Available), html.EscapeString(sharesErr.Symbol))
	case errors.Is(err, trade.ErrNotHeld):
		return fmt.Sprintf("❌ You don't own any shares of %s.", html.EscapeString(symbol))
	case errors.Is(err, trade.ErrInvalidShares):
		return "Please enter a valid number of shares."
	case errors.Is(err, trade.ErrInvalidSymbol):
		return "❌ Please provide a stock symbol."
	case errors.Is(err, trade.ErrQuoteUnavailable):
		b.log.Warn("trade quote", zap.String("user", user.ID), zap.String("symbol", symbol), zap.Error(err))
		return fmt.Sprintf("Error getting requested stock (%s).", html.EscapeString(symbol))
	default:
		b.log.Error("trade failed", zap.String("user", user.ID), zap.String("symbol", symbol), zap.Error(err))
		return "❌ Error processing the trade."
	}
}

func (b *Bot) cmdHistory(in model.Incoming, args []string) string {
	limit := defaultHistory
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = min(n, maxHistory)
		}
	}
	trades, err := b.Engine.History(in.From.ID, limit)
	if err != nil {
		b.log.Error("trade history", zap.String("user", in.From.ID), zap.Error(err))
		return "❌ Error loading trade history."
	}
	return notifier.FormatHistory(in.From.Label(), trades)
}

// LeaderboardText renders the current top accounts.
func (b *Bot) LeaderboardText(ctx context.Context) string {
	standings, err := b.Engine.Leaderboard(ctx, b.leaderboardSize)
	if err != nil {
		b.log.Error("leaderboard", zap.Error(err))
		return "❌ Error loading leaderboard."
	}
	return notifier.FormatLeaderboard(standings, b.now())
}

func (b *Bot) handleButton(in model.Incoming) *model.Reply {
	btn, err := decodeBuyButton(in.CallbackData)
	if err != nil {
		b.log.Warn("bad callback", zap.String("user", in.From.ID), zap.Error(err))
		return &model.Reply{Toast: "This button no longer works."}
	}
	if in.From.ID != btn.OwnerID {
		return &model.Reply{Toast: "You can't use this button!"}
	}
	b.Prompts.Open(in.ChatID, in.From.ID, btn.Symbol, btn.Price)
	return &model.Reply{
		ChatID: in.ChatID,
		Text:   fmt.Sprintf("How many shares of %s would you like to buy?", html.EscapeString(btn.Symbol)),
	}
}

// handlePromptAnswer treats a plain message as the answer to an open Buy
// Stock prompt. Buys execute at the latest close; the reply quotes the
// button's price.
func (b *Bot) handlePromptAnswer(ctx context.Context, in model.Incoming) *model.Reply {
	p, ok := b.Prompts.Take(in.ChatID, in.From.ID)
	if !ok {
		return nil
	}
	reply := &model.Reply{ChatID: in.ChatID}

	shares, err := strconv.ParseFloat(strings.TrimSpace(in.Text), 64)
	if err != nil || math.IsNaN(shares) || math.IsInf(shares, 0) {
		reply.Text = "Error processing your purchase."
		return reply
	}
	if shares <= 0 {
		reply.Text = "Please enter a valid number of shares."
		return reply
	}

	_, err = b.Engine.Buy(ctx, in.From, p.Symbol, shares)
	if err != nil {
		b.log.Info("button purchase failed", zap.String("user", in.From.ID), zap.String("symbol", p.Symbol), zap.Error(err))
	}
	reply.Text = notifier.FormatButtonPurchase(err == nil, shares, p.Symbol, p.Price)
	return reply
}
