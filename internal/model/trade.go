package model

import "time"

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeResult describes an executed trade.
type TradeResult struct {
	ID           string
	UserID       string
	Side         Side
	Symbol       string
	Shares       float64
	Price        float64
	Amount       float64
	BalanceAfter float64
	SharesAfter  float64
	ExecutedAt   time.Time
}

// HoldingValue is one line of a portfolio valuation.
type HoldingValue struct {
	Symbol string
	Shares float64
	Price  float64
	Value  float64
	Err    error // quote failure; Value is 0
}

// PortfolioView is a valued snapshot of one account.
type PortfolioView struct {
	UserID      string
	Balance     float64
	TotalShares float64
	TotalWorth  float64
	Holdings    []HoldingValue
}

// Standing is one row of the leaderboard.
type Standing struct {
	UserID   string
	Username string
	Balance  float64
	Worth    float64
	Total    float64
}
