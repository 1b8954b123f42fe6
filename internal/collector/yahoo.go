package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"DayTrader/internal/model"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API. No key needed.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: "https://query1.finance.yahoo.com",
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooInterval maps our interval names to Yahoo's. Sizes Yahoo lacks
// are built by merging that many consecutive bars of the fetched size.
var yahooInterval = map[string]struct {
	code  string
	bar   time.Duration
	merge int
}{
	"1min":   {"1m", time.Minute, 1},
	"5min":   {"5m", 5 * time.Minute, 1},
	"15min":  {"15m", 15 * time.Minute, 1},
	"30min":  {"30m", 30 * time.Minute, 1},
	"45min":  {"15m", 15 * time.Minute, 3},
	"1h":     {"60m", time.Hour, 1},
	"2h":     {"60m", time.Hour, 2},
	"4h":     {"60m", time.Hour, 4},
	"1day":   {"1d", 24 * time.Hour, 1},
	"1week":  {"1wk", 7 * 24 * time.Hour, 1},
	"1month": {"1mo", 31 * 24 * time.Hour, 1},
}

// yahooRange picks the smallest Yahoo range that covers count bars.
// Intraday bars only count trading hours, so they get a 4x margin.
func yahooRange(bar time.Duration, count int) string {
	span := bar * time.Duration(count)
	if bar < 24*time.Hour {
		span *= 4
	} else {
		span = span * 3 / 2
	}
	day := 24 * time.Hour
	switch {
	case span <= day:
		return "1d"
	case span <= 5*day:
		return "5d"
	case span <= 31*day:
		return "1mo"
	case span <= 92*day:
		return "3mo"
	case span <= 183*day:
		return "6mo"
	case span <= 366*day:
		return "1y"
	case span <= 2*366*day:
		return "2y"
	case span <= 5*366*day:
		return "5y"
	case span <= 10*366*day:
		return "10y"
	default:
		return "max"
	}
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		strings.TrimRight(f.BaseURL, "/"), url.PathEscape(model.NormalizeSymbol(symbol)), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == 0 {
			continue // null bar (holiday, halted)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (f *YahooFetcher) FetchSeries(ctx context.Context, symbol, interval string, outputsize int) ([]model.OHLCV, error) {
	iv, ok := yahooInterval[interval]
	if !ok {
		return nil, fmt.Errorf("yahoo: unsupported interval %q", interval)
	}
	bars, err := f.fetchChart(ctx, symbol, iv.code, yahooRange(iv.bar, outputsize*iv.merge))
	if err != nil {
		return nil, err
	}
	bars = mergeBars(bars, iv.merge)
	if len(bars) > outputsize {
		bars = bars[len(bars)-outputsize:]
	}
	return bars, nil
}

// mergeBars folds every n consecutive bars of one trading day into a single
// bar stamped with its first bar's time. A day's trailing partial group
// still becomes a bar.
func mergeBars(bars []model.OHLCV, n int) []model.OHLCV {
	if n <= 1 || len(bars) == 0 {
		return bars
	}
	out := make([]model.OHLCV, 0, len(bars)/n+1)
	var cur model.OHLCV
	size := 0
	for _, b := range bars {
		if size > 0 && (size == n || !sameDay(cur.Time, b.Time)) {
			out = append(out, cur)
			size = 0
		}
		if size == 0 {
			cur = b
		} else {
			cur.High = max(cur.High, b.High)
			cur.Low = min(cur.Low, b.Low)
			cur.Close = b.Close
			cur.Volume += b.Volume
		}
		size++
	}
	return append(out, cur)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (f *YahooFetcher) FetchLatestClose(ctx context.Context, symbol string) (float64, error) {
	bars, err := f.fetchChart(ctx, symbol, "1d", "5d")
	if err != nil {
		return 0, err
	}
	return lastClose(bars, symbol)
}
