package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type orderEventRow struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	EventID   string          `gorm:"column:event_id;size:128;uniqueIndex"`
	OrderID   string          `gorm:"column:order_id;size:64;index"`
	Symbol    string          `gorm:"column:symbol;size:32"`
	ExecType  string          `gorm:"column:exec_type;size:24"`
	Status    string          `gorm:"column:status;size:24"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(24,8)"`
	Qty       decimal.Decimal `gorm:"column:qty;type:numeric(24,8)"`
	LastPrice decimal.Decimal `gorm:"column:last_price;type:numeric(24,8)"`
	LastQty   decimal.Decimal `gorm:"column:last_qty;type:numeric(24,8)"`
	Timestamp time.Time       `gorm:"column:ts"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (orderEventRow) TableName() string {
	return "order_events"
}

func rowFromEvent(ev *model.OrderEvent) orderEventRow {
	return orderEventRow{
		EventID:   ev.EventID,
		OrderID:   ev.OrderID,
		Symbol:    ev.Symbol,
		ExecType:  string(ev.ExecType),
		Status:    string(ev.Status),
		Price:     ev.Price,
		Qty:       ev.Qty,
		LastPrice: ev.LastPrice,
		LastQty:   ev.LastQty,
		Timestamp: ev.Timestamp,
	}
}

type OrderEventSQLRepo struct {
	db *gorm.DB
}

func NewOrderEventSQLRepo(db *gorm.DB) *OrderEventSQLRepo {
	return &OrderEventSQLRepo{
		db: db,
	}
}

func (s *OrderEventSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *OrderEventSQLRepo) Create(ctx context.Context, ev *model.OrderEvent) error {
	row := rowFromEvent(ev)
	return s.dbWithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(&row).Error
}

func (s *OrderEventSQLRepo) BulkCreate(ctx context.Context, evs []*model.OrderEvent) error {
	if len(evs) == 0 {
		return nil
	}
	rows := make([]orderEventRow, 0, len(evs))
	for _, ev := range evs {
		rows = append(rows, rowFromEvent(ev))
	}
	return s.dbWithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		CreateInBatches(rows, 500).Error
}
