package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingNew      OrderStatus = "PendingNew"
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusCanceled        OrderStatus = "Canceled"
	OrderStatusRejected        OrderStatus = "Rejected"
)

type OrderExecType string

const (
	ExecTypeNew      OrderExecType = "New"
	ExecTypeTrade    OrderExecType = "Trade"
	ExecTypeCanceled OrderExecType = "Canceled"
	ExecTypeRejected OrderExecType = "Rejected"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

type OrderTimeInForce string

const (
	OrderTimeInForceGTC OrderTimeInForce = "GTC"
	OrderTimeInForceIOC OrderTimeInForce = "IOC"
	OrderTimeInForceFOK OrderTimeInForce = "FOK"
)

// Order is the engine-side order record tracked across its lifecycle.
// Prices and quantities are decimals at this layer; the book itself
// works in integer ticks.
type Order struct {
	// init info
	OrderID      string
	Account      string
	Symbol       string
	Side         OrderSide
	Type         OrderType
	TimeInForce  OrderTimeInForce
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time

	// calculated info
	Status         OrderStatus
	ExecType       OrderExecType
	CumQuantity    decimal.Decimal
	LeavesQuantity decimal.Decimal
	LastQuantity   decimal.Decimal
	LastPrice      decimal.Decimal
}

// CanCancel reports whether the order is still live on the book.
func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusPendingNew, OrderStatusNew, OrderStatusPartiallyFilled:
		return true
	}
	return false
}

// ApplyFill updates the running fill totals after one trade.
func (o *Order) ApplyFill(price, qty decimal.Decimal) {
	o.ExecType = ExecTypeTrade
	o.LastPrice = price
	o.LastQuantity = qty
	o.CumQuantity = o.CumQuantity.Add(qty)
	o.LeavesQuantity = o.Quantity.Sub(o.CumQuantity)
	if o.LeavesQuantity.IsZero() {
		o.Status = OrderStatusFilled
	} else {
		o.Status = OrderStatusPartiallyFilled
	}
}
