package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

// tradeRow is the trades table. The feed may redeliver, so inserts
// conflict-skip on trade_id.
type tradeRow struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	TradeID     string          `gorm:"column:trade_id;size:64;uniqueIndex"`
	Symbol      string          `gorm:"column:symbol;size:32;index"`
	BuyOrderID  string          `gorm:"column:buy_order_id;size:64"`
	SellOrderID string          `gorm:"column:sell_order_id;size:64"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(24,8)"`
	Qty         decimal.Decimal `gorm:"column:qty;type:numeric(24,8)"`
	Seq         uint64          `gorm:"column:seq"`
	ExecutedAt  time.Time       `gorm:"column:executed_at"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
}

func (tradeRow) TableName() string {
	return "trades"
}

func rowFromTrade(t model.TradeEvent) tradeRow {
	return tradeRow{
		TradeID:     t.TradeID,
		Symbol:      t.Symbol,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Price:       t.Price,
		Qty:         t.Qty,
		Seq:         t.Seq,
		ExecutedAt:  t.ExecutedAt,
	}
}

func (r tradeRow) toTrade() model.TradeEvent {
	return model.TradeEvent{
		TradeID:     r.TradeID,
		Symbol:      r.Symbol,
		BuyOrderID:  r.BuyOrderID,
		SellOrderID: r.SellOrderID,
		Price:       r.Price,
		Qty:         r.Qty,
		Seq:         r.Seq,
		ExecutedAt:  r.ExecutedAt,
	}
}

type TradeSQLRepo struct {
	db *gorm.DB
}

func NewTradeSQLRepo(db *gorm.DB) *TradeSQLRepo {
	return &TradeSQLRepo{
		db: db,
	}
}

func (s *TradeSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *TradeSQLRepo) Create(ctx context.Context, trade *model.TradeEvent) error {
	row := rowFromTrade(*trade)
	return s.dbWithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "trade_id"}}, DoNothing: true}).
		Create(&row).Error
}

func (s *TradeSQLRepo) BulkCreate(ctx context.Context, trades []model.TradeEvent) error {
	if len(trades) == 0 {
		return nil
	}
	rows := make([]tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, rowFromTrade(t))
	}
	return s.dbWithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "trade_id"}}, DoNothing: true}).
		CreateInBatches(rows, 500).Error
}

func (s *TradeSQLRepo) ListBySymbol(ctx context.Context, symbol string, limit int) ([]model.TradeEvent, error) {
	var rows []tradeRow
	err := s.dbWithContext(ctx).
		Where("symbol = ?", symbol).
		Order("seq DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.TradeEvent, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toTrade())
	}
	return out, nil
}
