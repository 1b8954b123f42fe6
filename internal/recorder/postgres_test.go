package recorder

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"DayTrader/internal/model"
)

// go test -v --run TestPostgresRecorder with POSTGRES_TEST_DSN pointing at a scratch database.
func TestPostgresRecorder(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	r, err := NewPostgresRecorder(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("NewPostgresRecorder: %v", err)
	}
	defer r.Close()

	user := "test-" + uuid.NewString()
	tr := &model.TradeResult{
		ID: uuid.NewString(), UserID: user, Side: model.SideBuy, Symbol: "TSLA",
		Shares: 1.5, Price: 10, Amount: 15, BalanceAfter: 85, SharesAfter: 1.5,
		ExecutedAt: time.Now().UTC(),
	}
	if err := r.RecordTrade(tr); err != nil {
		t.Fatalf("RecordTrade: %v", err)
	}
	got, err := r.RecentTrades(user, 5)
	if err != nil {
		t.Fatalf("RecentTrades: %v", err)
	}
	if len(got) != 1 || got[0].ID != tr.ID || got[0].Shares != 1.5 {
		t.Errorf("unexpected trades %+v", got)
	}
	r.DB.Where("user_id = ?", user).Delete(&TradeRecord{})
}

func TestTradeRecordConversion(t *testing.T) {
	tr := model.TradeResult{ID: "id", UserID: "u", Side: model.SideSell, Symbol: "AAPL", Shares: 2, Price: 3, Amount: 6, BalanceAfter: 9, SharesAfter: 0, ExecutedAt: time.Unix(100, 0)}
	if back := toRecord(&tr).toResult(); back != tr {
		t.Errorf("conversion mismatch: %+v != %+v", back, tr)
	}
}
