package recorder

import "DayTrader/internal/model"

// Recorder is the append-only trade journal.
type Recorder interface {
	RecordTrade(trade *model.TradeResult) error
	// RecentTrades returns the user's newest trades first.
	RecentTrades(userID string, limit int) ([]model.TradeResult, error)
	Close() error
}
