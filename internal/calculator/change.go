package calculator

import (
	"errors"
	"sort"

	"DayTrader/internal/model"
)

// MonthLookback is how many bars back the one-month reference sits.
const MonthLookback = 30

// PercentChange returns (current - ref) / ref * 100.
func PercentChange(current, ref float64) float64 {
	if ref == 0 {
		return 0
	}
	return (current - ref) / ref * 100
}

// Summarize computes the stock command metrics. Bars are sorted in place, oldest first.
func Summarize(symbol, interval string, bars []model.OHLCV) (*model.StockMetrics, error) {
	if len(bars) == 0 {
		return nil, errors.New("no bars provided")
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	n := len(bars)
	current := bars[n-1].Close

	monthRef := bars[0].Close
	if n >= MonthLookback {
		monthRef = bars[n-MonthLookback].Close
	}

	m := &model.StockMetrics{
		Symbol:       model.NormalizeSymbol(symbol),
		Interval:     interval,
		Bars:         n,
		CurrentPrice: current,
		MonthChange:  PercentChange(current, monthRef),
		PeriodChange: PercentChange(current, bars[0].Close),
		From:         bars[0].Time,
		To:           bars[n-1].Time,
	}

	m.High, m.Low, _ = HighLow(bars)
	if sma, err := SMA(bars, 20); err == nil {
		m.SMA20 = sma
	}
	m.RSI14, _ = RSI(bars, 14)
	return m, nil
}
