package trade

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"DayTrader/internal/model"
)

// Portfolio values the user's holdings at latest closes. A holding whose
// quote fails is reported with Err set and left out of TotalWorth.
func (e *Engine) Portfolio(ctx context.Context, user model.User) (*model.PortfolioView, error) {
	acct, err := e.Ledger.Fetch(user)
	if err != nil {
		return nil, err
	}

	view := &model.PortfolioView{
		UserID:      user.ID,
		Balance:     acct.Balance,
		TotalShares: acct.TotalShares(),
	}
	worth := decimal.Zero
	for _, sym := range sortedSymbols(acct.Holdings) {
		hv := model.HoldingValue{Symbol: sym, Shares: acct.Holdings[sym]}
		price, err := e.Quote(ctx, sym)
		if err != nil {
			e.log.Warn("price holding", zap.String("symbol", sym), zap.Error(err))
			hv.Err = err
		} else {
			value := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(hv.Shares))
			hv.Price = price
			hv.Value = value.InexactFloat64()
			worth = worth.Add(value)
		}
		view.Holdings = append(view.Holdings, hv)
	}
	view.TotalWorth = worth.InexactFloat64()
	return view, nil
}

// Leaderboard ranks every account by cash plus holdings value, best first.
// Each symbol is quoted once. limit <= 0 returns everyone.
func (e *Engine) Leaderboard(ctx context.Context, limit int) ([]model.Standing, error) {
	accounts, err := e.Ledger.Accounts()
	if err != nil {
		return nil, err
	}

	prices := map[string]float64{}
	for _, acct := range accounts {
		for sym := range acct.Holdings {
			if _, seen := prices[sym]; seen {
				continue
			}
			price, err := e.Quote(ctx, sym)
			if err != nil {
				e.log.Warn("leaderboard quote", zap.String("symbol", sym), zap.Error(err))
				price = 0
			}
			prices[sym] = price
		}
	}

	standings := make([]model.Standing, 0, len(accounts))
	for id, acct := range accounts {
		worth := decimal.Zero
		for sym, n := range acct.Holdings {
			worth = worth.Add(decimal.NewFromFloat(prices[sym]).Mul(decimal.NewFromFloat(n)))
		}
		total := worth.Add(decimal.NewFromFloat(acct.Balance))
		standings = append(standings, model.Standing{
			UserID:   id,
			Username: acct.Username,
			Balance:  acct.Balance,
			Worth:    worth.InexactFloat64(),
			Total:    total.InexactFloat64(),
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Total != standings[j].Total {
			return standings[i].Total > standings[j].Total
		}
		return standings[i].UserID < standings[j].UserID
	})
	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}
	return standings, nil
}

// History returns the user's most recent journal entries.
func (e *Engine) History(userID string, limit int) ([]model.TradeResult, error) {
	return e.Recorder.RecentTrades(userID, limit)
}

func sortedSymbols(h model.Holdings) []string {
	syms := make([]string, 0, len(h))
	for sym := range h {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}
