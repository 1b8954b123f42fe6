package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"DayTrader/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	mu     sync.Mutex
	Prices map[string]float64
	Series map[string][]model.OHLCV
	Err    error
	Calls  int
}

// NewMockFetcher creates a MockFetcher quoting the given prices.
func NewMockFetcher(prices map[string]float64) *MockFetcher {
	return &MockFetcher{Prices: prices, Series: map[string][]model.OHLCV{}}
}

func (m *MockFetcher) Name() string { return "mock" }

// SetPrice changes the quote for symbol.
func (m *MockFetcher) SetPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prices[model.NormalizeSymbol(symbol)] = price
}

func (m *MockFetcher) FetchSeries(_ context.Context, symbol, _ string, outputsize int) ([]model.OHLCV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	symbol = model.NormalizeSymbol(symbol)
	if bars, ok := m.Series[symbol]; ok {
		if len(bars) > outputsize {
			bars = bars[len(bars)-outputsize:]
		}
		return bars, nil
	}
	price, ok := m.Prices[symbol]
	if !ok {
		return nil, nil
	}
	return generateMockBars(price, outputsize), nil
}

func (m *MockFetcher) FetchLatestClose(_ context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return 0, m.Err
	}
	price, ok := m.Prices[model.NormalizeSymbol(symbol)]
	if !ok {
		return 0, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	return price, nil
}

// generateMockBars produces a gently rising series ending exactly at lastPrice.
func generateMockBars(lastPrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := lastPrice * (1 - float64(count-1-i)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
