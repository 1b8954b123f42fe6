package recorder

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"DayTrader/internal/model"
)

// TradeRecord is the journal row stored in Postgres.
type TradeRecord struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	UserID       string    `gorm:"type:text;not null;index:idx_trade_user_time"`
	Side         string    `gorm:"type:varchar(4);not null"`
	Symbol       string    `gorm:"type:varchar(16);not null;index"`
	Shares       float64   `gorm:"type:numeric;not null"`
	Price        float64   `gorm:"type:numeric;not null"`
	Amount       float64   `gorm:"type:numeric;not null"`
	BalanceAfter float64   `gorm:"type:numeric"`
	SharesAfter  float64   `gorm:"type:numeric"`
	ExecutedAt   time.Time `gorm:"not null;index:idx_trade_user_time"`
	RecordedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (TradeRecord) TableName() string {
	return "trade_record"
}

func toRecord(t *model.TradeResult) *TradeRecord {
	return &TradeRecord{
		ID:           t.ID,
		UserID:       t.UserID,
		Side:         string(t.Side),
		Symbol:       t.Symbol,
		Shares:       t.Shares,
		Price:        t.Price,
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		SharesAfter:  t.SharesAfter,
		ExecutedAt:   t.ExecutedAt,
	}
}

func (r TradeRecord) toResult() model.TradeResult {
	return model.TradeResult{
		ID:           r.ID,
		UserID:       r.UserID,
		Side:         model.Side(r.Side),
		Symbol:       r.Symbol,
		Shares:       r.Shares,
		Price:        r.Price,
		Amount:       r.Amount,
		BalanceAfter: r.BalanceAfter,
		SharesAfter:  r.SharesAfter,
		ExecutedAt:   r.ExecutedAt,
	}
}

// PostgresRecorder persists the trade journal through GORM.
type PostgresRecorder struct {
	DB  *gorm.DB
	log *zap.Logger
}

// NewPostgresRecorder connects and auto-migrates the trade table.
func NewPostgresRecorder(dsn string, logger *zap.Logger) (*PostgresRecorder, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return newGormRecorder(db, logger)
}

func newGormRecorder(db *gorm.DB, logger *zap.Logger) (*PostgresRecorder, error) {
	if err := db.AutoMigrate(&TradeRecord{}); err != nil {
		return nil, fmt.Errorf("auto-migrate trade table: %w", err)
	}
	logger.Info("postgres recorder ready")
	return &PostgresRecorder{DB: db, log: logger}, nil
}

func (p *PostgresRecorder) RecordTrade(t *model.TradeResult) error {
	return p.DB.Create(toRecord(t)).Error
}

func (p *PostgresRecorder) RecentTrades(userID string, limit int) ([]model.TradeResult, error) {
	var rows []TradeRecord
	err := p.DB.
		Where("user_id = ?", userID).
		Order("executed_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.TradeResult, len(rows))
	for i, r := range rows {
		out[i] = r.toResult()
	}
	return out, nil
}

func (p *PostgresRecorder) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	p.log.Info("closing postgres recorder")
	return db.Close()
}
