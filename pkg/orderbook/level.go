package orderbook

import "github.com/gammazero/deque"

// priceLevel is the FIFO queue of resting orders at one price.
// totalQty is kept in sync with the sum of the queued orders' Qty.
// An empty level never stays in a book side.
type priceLevel struct {
	price    int64
	orders   deque.Deque[*Order]
	totalQty int64
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{price: price}
}

func (l *priceLevel) push(o *Order) {
	l.orders.PushBack(o)
	l.totalQty += o.Qty
}

// front returns the oldest resting order without removing it.
func (l *priceLevel) front() *Order {
	return l.orders.Front()
}

func (l *priceLevel) popFront() *Order {
	o := l.orders.PopFront()
	l.totalQty -= o.Qty
	return o
}

// remove takes an order out of the queue wherever it sits, used by
// cancel. Reports whether the id was found at this level.
func (l *priceLevel) remove(orderID string) bool {
	i := l.orders.Index(func(o *Order) bool { return o.ID == orderID })
	if i < 0 {
		return false
	}
	o := l.orders.Remove(i)
	l.totalQty -= o.Qty
	return true
}

func (l *priceLevel) empty() bool {
	return l.orders.Len() == 0
}
