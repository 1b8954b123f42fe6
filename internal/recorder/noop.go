package recorder

import "DayTrader/internal/model"

// NoopRecorder is used when no journal database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTrade(_ *model.TradeResult) error { return nil }
func (n *NoopRecorder) RecentTrades(_ string, _ int) ([]model.TradeResult, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
