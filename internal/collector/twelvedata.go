package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"DayTrader/internal/model"
)

// TwelveDataFetcher implements Fetcher using the Twelve Data time_series API.
type TwelveDataFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewTwelveDataFetcher creates a new fetcher with optional proxy support.
func NewTwelveDataFetcher(baseURL, apiKey, proxyURL string) *TwelveDataFetcher {
	return &TwelveDataFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *TwelveDataFetcher) Name() string { return "twelvedata" }

// tdSeries is the time_series response. Numbers arrive as strings.
type tdSeries struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

func (f *TwelveDataFetcher) FetchSeries(ctx context.Context, symbol, interval string, outputsize int) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", model.NormalizeSymbol(symbol))
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("apikey", f.APIKey)
	endpoint := f.BaseURL + "/time_series?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvedata fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twelvedata read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twelvedata: status %d, body: %s", resp.StatusCode, string(body))
	}

	var series tdSeries
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("twelvedata decode: %w", err)
	}
	if series.Status == "error" {
		return nil, fmt.Errorf("twelvedata api error %d: %s", series.Code, series.Message)
	}

	bars := make([]model.OHLCV, 0, len(series.Values))
	for _, v := range series.Values {
		ts, err := parseTDTime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("twelvedata datetime %q: %w", v.Datetime, err)
		}
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("twelvedata close %q: %w", v.Close, err)
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   parseOptional(v.Open),
			High:   parseOptional(v.High),
			Low:    parseOptional(v.Low),
			Close:  c,
			Volume: parseOptional(v.Volume),
		})
	}

	// Twelve Data returns newest first.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (f *TwelveDataFetcher) FetchLatestClose(ctx context.Context, symbol string) (float64, error) {
	bars, err := f.FetchSeries(ctx, symbol, DefaultInterval, 1)
	if err != nil {
		return 0, err
	}
	return lastClose(bars, symbol)
}

func parseTDTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseOptional(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
