package trade

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"DayTrader/internal/ledger"
	"DayTrader/internal/model"
	"DayTrader/internal/recorder"
)

// QuoteSource returns the latest closing price for a symbol.
type QuoteSource interface {
	FetchLatestClose(ctx context.Context, symbol string) (float64, error)
}

// Engine applies buys and sells to the ledger at provider prices.
type Engine struct {
	Ledger   *ledger.Store
	Quotes   QuoteSource
	Recorder recorder.Recorder

	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewEngine creates an Engine. rec may be a NoopRecorder.
func NewEngine(store *ledger.Store, quotes QuoteSource, rec recorder.Recorder, logger *zap.Logger) *Engine {
	return &Engine{
		Ledger:   store,
		Quotes:   quotes,
		Recorder: rec,
		log:      logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Quote fetches a validated price for symbol.
func (e *Engine) Quote(ctx context.Context, symbol string) (float64, error) {
	price, err := e.Quotes.FetchLatestClose(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrQuoteUnavailable, symbol, err)
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: %s: bad price %v", ErrQuoteUnavailable, symbol, price)
	}
	return price, nil
}

func validate(symbol string, shares float64) (string, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return "", ErrInvalidSymbol
	}
	if shares <= 0 || math.IsNaN(shares) || math.IsInf(shares, 0) {
		return "", fmt.Errorf("%w: %v", ErrInvalidShares, shares)
	}
	return symbol, nil
}

// Buy purchases shares of symbol at the latest close.
func (e *Engine) Buy(ctx context.Context, user model.User, symbol string, shares float64) (*model.TradeResult, error) {
	symbol, err := validate(symbol, shares)
	if err != nil {
		return nil, err
	}
	price, err := e.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromFloat(shares)
	cost := decimal.NewFromFloat(price).Mul(qty)

	acct, err := e.Ledger.Update(user, func(a *model.UserAccount) error {
		balance := decimal.NewFromFloat(a.Balance)
		if balance.LessThan(cost) {
			return &InsufficientFundsError{Symbol: symbol, Cost: cost.InexactFloat64(), Balance: a.Balance}
		}
		a.Balance = balance.Sub(cost).InexactFloat64()
		a.Holdings[symbol] = decimal.NewFromFloat(a.Holdings[symbol]).Add(qty).InexactFloat64()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.finish(user, model.SideBuy, symbol, shares, price, cost, acct), nil
}

// Sell disposes of shares of a held symbol at the latest close.
func (e *Engine) Sell(ctx context.Context, user model.User, symbol string, shares float64) (*model.TradeResult, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}

	// Check the holding before spending a provider call.
	acct, err := e.Ledger.Fetch(user)
	if err != nil {
		return nil, err
	}
	if err := checkHolding(acct, symbol, shares); err != nil {
		return nil, err
	}

	price, err := e.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromFloat(shares)
	proceeds := decimal.NewFromFloat(price).Mul(qty)

	acct, err = e.Ledger.Update(user, func(a *model.UserAccount) error {
		if err := checkHolding(*a, symbol, shares); err != nil {
			return err
		}
		remaining := decimal.NewFromFloat(a.Holdings[symbol]).Sub(qty)
		if remaining.Sign() <= 0 {
			delete(a.Holdings, symbol)
		} else {
			a.Holdings[symbol] = remaining.InexactFloat64()
		}
		a.Balance = decimal.NewFromFloat(a.Balance).Add(proceeds).InexactFloat64()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.finish(user, model.SideSell, symbol, shares, price, proceeds, acct), nil
}

func checkHolding(acct model.UserAccount, symbol string, shares float64) error {
	held, ok := acct.Holdings[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotHeld, symbol)
	}
	if math.IsNaN(shares) || math.IsInf(shares, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidShares, shares)
	}
	if shares <= 0 || decimal.NewFromFloat(shares).GreaterThan(decimal.NewFromFloat(held)) {
		return &InsufficientSharesError{Symbol: symbol, Requested: shares, Available: held}
	}
	return nil
}

func (e *Engine) finish(user model.User, side model.Side, symbol string, shares, price float64, amount decimal.Decimal, acct model.UserAccount) *model.TradeResult {
	res := &model.TradeResult{
		ID:           e.newID(),
		UserID:       user.ID,
		Side:         side,
		Symbol:       symbol,
		Shares:       shares,
		Price:        price,
		Amount:       amount.InexactFloat64(),
		BalanceAfter: acct.Balance,
		SharesAfter:  acct.Holdings[symbol],
		ExecutedAt:   e.now(),
	}
	e.log.Info("trade executed",
		zap.String("user", user.ID),
		zap.String("side", string(side)),
		zap.String("symbol", symbol),
		zap.Float64("shares", shares),
		zap.Float64("price", price),
		zap.Float64("balance", acct.Balance))

	// The ledger is the source of truth; a journal failure does not undo the trade.
	if err := e.Recorder.RecordTrade(res); err != nil {
		e.log.Error("record trade", zap.String("id", res.ID), zap.Error(err))
	}
	return res
}
