package calculator

import (
	"errors"

	"DayTrader/internal/model"
)

// ErrNotEnoughData is returned when a series is shorter than the indicator period.
var ErrNotEnoughData = errors.New("not enough data")

// SMA computes the simple moving average of the last period closes.
func SMA(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period {
		return 0, ErrNotEnoughData
	}
	sum := 0.0
	for _, b := range bars[len(bars)-period:] {
		sum += b.Close
	}
	return sum / float64(period), nil
}

func closes(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
