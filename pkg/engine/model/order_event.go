package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent is one entry in the append-only per-order history: New,
// Trade, Canceled or Rejected. Events are never mutated after they
// are recorded.
type OrderEvent struct {
	EventID   string
	OrderID   string
	Symbol    string
	ExecType  OrderExecType
	Status    OrderStatus
	Price     decimal.Decimal
	Qty       decimal.Decimal
	LastPrice decimal.Decimal
	LastQty   decimal.Decimal
	Timestamp time.Time
}

func NewOrderEvent(order Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:   fmt.Sprintf("%s-%s-%d", order.OrderID, order.ExecType, ts.UnixNano()),
		OrderID:   order.OrderID,
		Symbol:    order.Symbol,
		ExecType:  order.ExecType,
		Status:    order.Status,
		Price:     order.Price,
		Qty:       order.Quantity,
		LastPrice: order.LastPrice,
		LastQty:   order.LastQuantity,
		Timestamp: ts,
	}
}
