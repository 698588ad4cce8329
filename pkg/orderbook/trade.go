package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable execution record. Price is always the maker's
// price, the order that was already resting on the book.
type Trade struct {
	BuyOrderID  string
	SellOrderID string
	Price       int64
	Qty         int64
	Seq         uint64
	Timestamp   time.Time
}

// tradeLog is the append-only execution history of one book. It is
// guarded by the owning book's lock and holds no lock of its own.
type tradeLog struct {
	trades []Trade
}

func (tl *tradeLog) append(trades ...Trade) {
	tl.trades = append(tl.trades, trades...)
}

func (tl *tradeLog) len() int {
	return len(tl.trades)
}

// recent returns up to n trades, newest first.
func (tl *tradeLog) recent(n int) []Trade {
	if n <= 0 {
		return nil
	}
	if n > len(tl.trades) {
		n = len(tl.trades)
	}
	out := make([]Trade, 0, n)
	for i := len(tl.trades) - 1; i >= len(tl.trades)-n; i-- {
		out = append(out, tl.trades[i])
	}
	return out
}

// all returns a copy of the full log in execution order.
func (tl *tradeLog) all() []Trade {
	out := make([]Trade, len(tl.trades))
	copy(out, tl.trades)
	return out
}

// weightedAvgPrice computes sum(price*qty)/sum(qty) over trades whose
// price falls in [lo, hi]. An empty range yields zero, not an error.
// The notional accumulates as a decimal: price*qty products can
// exceed int64 over a long session.
func (tl *tradeLog) weightedAvgPrice(lo, hi int64) decimal.Decimal {
	notional := decimal.Zero
	var volume int64
	for _, t := range tl.trades {
		if t.Price < lo || t.Price > hi {
			continue
		}
		notional = notional.Add(decimal.NewFromInt(t.Price).Mul(decimal.NewFromInt(t.Qty)))
		volume += t.Qty
	}
	if volume == 0 {
		return decimal.Zero
	}
	return notional.Div(decimal.NewFromInt(volume))
}
