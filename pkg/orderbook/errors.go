package orderbook

import "errors"

var (
	ErrInvalidOrder     = errors.New("invalid order")
	ErrDuplicateOrderID = errors.New("duplicate order id")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCorruptSnapshot  = errors.New("corrupt snapshot")
)
