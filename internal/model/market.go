package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds a provider time series for one symbol, oldest bar first.
type PriceSeries struct {
	Symbol    string
	Interval  string
	Bars      []OHLCV
	FetchedAt time.Time
}

// StockMetrics is the summary shown by the stock command.
type StockMetrics struct {
	Symbol       string
	Interval     string
	Bars         int
	CurrentPrice float64
	MonthChange  float64 // percent
	PeriodChange float64 // percent, first bar to last
	High         float64
	Low          float64
	SMA20        float64 // 0 when fewer than 20 bars
	RSI14        float64
	From         time.Time
	To           time.Time
}
