package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"DayTrader/internal/model"
)

func TestYahooRange(t *testing.T) {
	tests := []struct {
		bar   time.Duration
		count int
		want  string
	}{
		{24 * time.Hour, 1, "5d"},
		{24 * time.Hour, 20, "1mo"},
		{24 * time.Hour, 365, "2y"},
		{7 * 24 * time.Hour, 52, "2y"},
		{time.Minute, 60, "1d"},
		{24 * time.Hour, 5000, "max"},
	}
	for _, tt := range tests {
		if got := yahooRange(tt.bar, tt.count); got != tt.want {
			t.Errorf("yahooRange(%v, %d) = %s, want %s", tt.bar, tt.count, got, tt.want)
		}
	}
}

func TestYahoo_FetchSeriesSkipsNullBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/AAPL") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"chart": {"result": [{
			"timestamp": [1709251200, 1709337600, 1709510400],
			"indicators": {"quote": [{
				"open":   [1, null, 3],
				"high":   [1, null, 3],
				"low":    [1, null, 3],
				"close":  [1.5, null, 3.5],
				"volume": [10, null, 30]
			}]}
		}], "error": null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	bars, err := f.FetchSeries(context.Background(), "aapl", "1day", 10)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected null bar skipped, got %d bars", len(bars))
	}

	price, err := f.FetchLatestClose(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchLatestClose: %v", err)
	}
	if price != 3.5 {
		t.Errorf("latest close = %v", price)
	}
}

func TestYahoo_UnsupportedInterval(t *testing.T) {
	f := NewYahooFetcher("")
	if _, err := f.FetchSeries(context.Background(), "AAPL", "3day", 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestYahoo_FetchSeriesMergesHourlyBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if iv := r.URL.Query().Get("interval"); iv != "60m" {
			http.Error(w, "unexpected interval "+iv, http.StatusBadRequest)
			return
		}
		// four hourly bars on 2024-03-04, one on 2024-03-05
		w.Write([]byte(`{"chart": {"result": [{
			"timestamp": [1709562600, 1709566200, 1709569800, 1709573400, 1709649000],
			"indicators": {"quote": [{
				"open":   [1, 2, 3, 4, 5],
				"high":   [2, 5, 4, 6, 7],
				"low":    [0.5, 1.5, 2.5, 3, 4.5],
				"close":  [1.5, 2.5, 3.5, 4.5, 5.5],
				"volume": [10, 20, 30, 40, 50]
			}]}
		}], "error": null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	bars, err := f.FetchSeries(context.Background(), "AAPL", "2h", 10)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	want := []struct {
		ts                             int64
		open, high, low, close, volume float64
	}{
		{1709562600, 1, 5, 0.5, 2.5, 30},
		{1709569800, 3, 6, 2.5, 4.5, 70},
		{1709649000, 5, 7, 4.5, 5.5, 50},
	}
	if len(bars) != len(want) {
		t.Fatalf("got %d bars, want %d: %+v", len(bars), len(want), bars)
	}
	for i, w := range want {
		b := bars[i]
		if b.Time.Unix() != w.ts || b.Open != w.open || b.High != w.high || b.Low != w.low || b.Close != w.close || b.Volume != w.volume {
			t.Errorf("bar %d = %+v, want %+v", i, b, w)
		}
	}

	bars, err = f.FetchSeries(context.Background(), "AAPL", "4h", 1)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 5.5 {
		t.Errorf("4h tail = %+v", bars)
	}
}

func TestMergeBars(t *testing.T) {
	start := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	var bars []model.OHLCV
	for i := 0; i < 7; i++ {
		v := float64(i + 1)
		bars = append(bars, model.OHLCV{
			Time: start.Add(time.Duration(i) * 15 * time.Minute),
			Open: v, High: v + 1, Low: v - 0.5, Close: v + 0.5, Volume: 100,
		})
	}

	if got := mergeBars(bars, 1); len(got) != 7 {
		t.Errorf("merge of 1 changed the series: %d bars", len(got))
	}

	got := mergeBars(bars, 3)
	if len(got) != 3 {
		t.Fatalf("got %d bars, want 3", len(got))
	}
	first := got[0]
	if !first.Time.Equal(start) || first.Open != 1 || first.High != 4 || first.Low != 0.5 || first.Close != 3.5 || first.Volume != 300 {
		t.Errorf("first 45min bar = %+v", first)
	}
	if last := got[2]; last.Open != 7 || last.Close != 7.5 || last.Volume != 100 {
		t.Errorf("partial trailing bar = %+v", last)
	}
}
