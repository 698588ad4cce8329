package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddOrder is an order submission. OrderID may be left empty, in
// which case the engine assigns one. TransactTime is likewise
// engine-assigned when zero.
type AddOrder struct {
	OrderID      string
	Account      string
	Symbol       string
	Side         OrderSide
	Type         OrderType
	TimeInForce  OrderTimeInForce
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time
}

type CancelOrder struct {
	OrderID string
	Symbol  string
}
