package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"DayTrader/internal/model"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "db", "trades.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	trades := []model.TradeResult{
		{ID: "a", UserID: "1", Side: model.SideBuy, Symbol: "TSLA", Shares: 2, Price: 10, Amount: 20, BalanceAfter: 80, SharesAfter: 2, ExecutedAt: base},
		{ID: "b", UserID: "1", Side: model.SideSell, Symbol: "TSLA", Shares: 1, Price: 12, Amount: 12, BalanceAfter: 92, SharesAfter: 1, ExecutedAt: base.Add(time.Hour)},
		{ID: "c", UserID: "2", Side: model.SideBuy, Symbol: "AAPL", Shares: 1, Price: 5, Amount: 5, BalanceAfter: 95, SharesAfter: 1, ExecutedAt: base.Add(2 * time.Hour)},
	}
	for i := range trades {
		if err := r.RecordTrade(&trades[i]); err != nil {
			t.Fatalf("RecordTrade: %v", err)
		}
	}

	got, err := r.RecentTrades("1", 10)
	if err != nil {
		t.Fatalf("RecentTrades: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trades for user 1, got %d", len(got))
	}
	if got[0].ID != "b" || got[0].Side != model.SideSell {
		t.Errorf("expected newest first, got %+v", got[0])
	}
	if !got[1].ExecutedAt.Equal(base) {
		t.Errorf("timestamp round trip: %v", got[1].ExecutedAt)
	}

	limited, err := r.RecentTrades("1", 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("limit not applied: %v, %v", limited, err)
	}
}

func TestSQLiteRecorder_DuplicateID(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "trades.db"), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	tr := &model.TradeResult{ID: "x", UserID: "1", Side: model.SideBuy, Symbol: "A", Shares: 1, Price: 1, Amount: 1, ExecutedAt: time.Now()}
	if err := r.RecordTrade(tr); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordTrade(tr); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordTrade(&model.TradeResult{}); err != nil {
		t.Error(err)
	}
	got, err := r.RecentTrades("1", 5)
	if err != nil || got != nil {
		t.Errorf("got %v, %v", got, err)
	}
}
