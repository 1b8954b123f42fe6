package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"DayTrader/internal/model"
)

// ErrNoData is returned when a provider answers with an empty series.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchSeries returns up to outputsize bars, oldest first.
	FetchSeries(ctx context.Context, symbol, interval string, outputsize int) ([]model.OHLCV, error)
	// FetchLatestClose returns the most recent closing price; always > 0 on success.
	FetchLatestClose(ctx context.Context, symbol string) (float64, error)
	Name() string
}

// Intervals lists the supported bar sizes in display order.
var Intervals = []string{"1min", "5min", "15min", "30min", "45min", "1h", "2h", "4h", "1day", "1week", "1month"}

const (
	DefaultInterval   = "1day"
	DefaultOutputSize = 365
	MaxOutputSize     = 5000
)

// ValidInterval reports whether interval is one of Intervals.
func ValidInterval(interval string) bool {
	for _, i := range Intervals {
		if i == interval {
			return true
		}
	}
	return false
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func lastClose(bars []model.OHLCV, symbol string) (float64, error) {
	if len(bars) == 0 {
		return 0, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	price := bars[len(bars)-1].Close
	if price <= 0 {
		return 0, fmt.Errorf("%s: non-positive close %v", symbol, price)
	}
	return price, nil
}
