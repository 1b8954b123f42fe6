package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"DayTrader/internal/model"
)

// SQLiteRecorder persists the trade journal to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets ledgerctl read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			user_id       TEXT NOT NULL,
			side          TEXT NOT NULL,
			symbol        TEXT NOT NULL,
			shares        REAL NOT NULL,
			price         REAL NOT NULL,
			amount        REAL NOT NULL,
			balance_after REAL,
			shares_after  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_user_ts ON trades(user_id, timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTrade(t *model.TradeResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(id, timestamp, user_id, side, symbol, shares, price, amount, balance_after, shares_after)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.ExecutedAt.UnixNano(), t.UserID, string(t.Side), t.Symbol,
		t.Shares, t.Price, t.Amount, t.BalanceAfter, t.SharesAfter,
	)
	return err
}

func (r *SQLiteRecorder) RecentTrades(userID string, limit int) ([]model.TradeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, user_id, side, symbol, shares, price, amount, balance_after, shares_after
		FROM trades WHERE user_id = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []model.TradeResult
	for rows.Next() {
		var (
			t    model.TradeResult
			ts   int64
			side string
		)
		if err := rows.Scan(&t.ID, &ts, &t.UserID, &side, &t.Symbol,
			&t.Shares, &t.Price, &t.Amount, &t.BalanceAfter, &t.SharesAfter); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Side = model.Side(side)
		t.ExecutedAt = time.Unix(0, ts)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
