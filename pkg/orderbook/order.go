package orderbook

import "time"

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

func (s Side) opposite() Side {
	if s == BUY {
		return SELL
	}
	return BUY
}

type OrderType string

const (
	LIMIT  OrderType = "LIMIT"
	MARKET OrderType = "MARKET"
)

type TimeInForce string

const (
	GTC TimeInForce = "GTC"
	IOC TimeInForce = "IOC"
	FOK TimeInForce = "FOK"
)

// Order is a single order in the book. Price is in ticks, never a float.
// Qty is the remaining quantity, it only ever decreases; an order with
// Qty == 0 never rests in a price level.
type Order struct {
	ID          string
	Symbol      string
	Side        Side
	Price       int64
	Qty         int64
	Type        OrderType
	TimeInForce TimeInForce
	Timestamp   time.Time

	// seq is assigned by the book at submission and is the FIFO
	// tie-break within a price level.
	seq uint64
}

// Seq returns the arrival sequence number assigned by the book.
func (o *Order) Seq() uint64 {
	return o.seq
}
