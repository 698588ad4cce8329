package orderbook

import (
	"fmt"
	"time"
)

// SnapshotOrder is one resting order as persisted. Seq is kept so a
// restored book reproduces the original FIFO order exactly.
type SnapshotOrder struct {
	ID          string      `json:"id"`
	Side        Side        `json:"side"`
	Price       int64       `json:"price"`
	Qty         int64       `json:"qty"`
	TimeInForce TimeInForce `json:"time_in_force"`
	Seq         uint64      `json:"seq"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Snapshot is a consistent copy of one book: both sides best-first
// with FIFO order preserved inside each price level, the trade log,
// and the sequence counters. Restoring it yields a book whose
// subsequent matching behaves identically to the original.
type Snapshot struct {
	Symbol   string          `json:"symbol"`
	Seq      uint64          `json:"seq"`
	TradeSeq uint64          `json:"trade_seq"`
	Bids     []SnapshotOrder `json:"bids"`
	Asks     []SnapshotOrder `json:"asks"`
	Trades   []Trade         `json:"trades"`
	TakenAt  time.Time       `json:"taken_at"`
}

// Snapshot copies the book state under the read lock. The caller
// hands the result to a snapshot store; persistence I/O never runs
// inside the book's critical section and never mutates live state.
func (ob *OrderBook) Snapshot() *Snapshot {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	return &Snapshot{
		Symbol:   ob.symbol,
		Seq:      ob.seq,
		TradeSeq: ob.tradeSeq,
		Bids:     dumpSide(ob.bids),
		Asks:     dumpSide(ob.asks),
		Trades:   ob.trades.all(),
		TakenAt:  time.Now(),
	}
}

func dumpSide(s *bookSide) []SnapshotOrder {
	var out []SnapshotOrder
	s.tree.Ascend(func(lvl *priceLevel) bool {
		for i := 0; i < lvl.orders.Len(); i++ {
			o := lvl.orders.At(i)
			out = append(out, SnapshotOrder{
				ID:          o.ID,
				Side:        o.Side,
				Price:       o.Price,
				Qty:         o.Qty,
				TimeInForce: o.TimeInForce,
				Seq:         o.seq,
				Timestamp:   o.Timestamp,
			})
		}
		return true
	})
	return out
}

// RestoreOrderBook rebuilds a book from a snapshot. The snapshot is
// structurally validated first; a violation fails with
// ErrCorruptSnapshot and no book is produced.
func RestoreOrderBook(snap *Snapshot) (*OrderBook, error) {
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	ob := NewOrderBook(snap.Symbol)
	ob.seq = snap.Seq
	ob.tradeSeq = snap.TradeSeq
	ob.trades.append(snap.Trades...)

	for _, so := range snap.Bids {
		ob.restoreResting(so)
	}
	for _, so := range snap.Asks {
		ob.restoreResting(so)
	}
	return ob, nil
}

func (ob *OrderBook) restoreResting(so SnapshotOrder) {
	o := &Order{
		ID:          so.ID,
		Symbol:      ob.symbol,
		Side:        so.Side,
		Price:       so.Price,
		Qty:         so.Qty,
		Type:        LIMIT,
		TimeInForce: so.TimeInForce,
		Timestamp:   so.Timestamp,
		seq:         so.Seq,
	}
	ob.sideOf(o.Side).insert(o)
	ob.ordersByID[o.ID] = o
}

func validateSnapshot(snap *Snapshot) error {
	if snap == nil || snap.Symbol == "" {
		return fmt.Errorf("%w: missing symbol", ErrCorruptSnapshot)
	}

	seen := make(map[string]struct{}, len(snap.Bids)+len(snap.Asks))
	check := func(side Side, orders []SnapshotOrder) error {
		prev := int64(0)
		for i, so := range orders {
			if so.ID == "" {
				return fmt.Errorf("%w: order without id", ErrCorruptSnapshot)
			}
			if _, dup := seen[so.ID]; dup {
				return fmt.Errorf("%w: duplicate order id %s", ErrCorruptSnapshot, so.ID)
			}
			seen[so.ID] = struct{}{}
			if so.Side != side {
				return fmt.Errorf("%w: order %s on wrong side", ErrCorruptSnapshot, so.ID)
			}
			if so.Price <= 0 || so.Qty <= 0 {
				return fmt.Errorf("%w: order %s price=%d qty=%d", ErrCorruptSnapshot, so.ID, so.Price, so.Qty)
			}
			if so.Seq == 0 || so.Seq > snap.Seq {
				return fmt.Errorf("%w: order %s seq %d out of range", ErrCorruptSnapshot, so.ID, so.Seq)
			}
			// Best-first ordering: bids non-increasing, asks
			// non-decreasing.
			if i > 0 {
				if side == BUY && so.Price > prev {
					return fmt.Errorf("%w: bids out of order at %d", ErrCorruptSnapshot, so.Price)
				}
				if side == SELL && so.Price < prev {
					return fmt.Errorf("%w: asks out of order at %d", ErrCorruptSnapshot, so.Price)
				}
			}
			prev = so.Price
		}
		return nil
	}

	if err := check(BUY, snap.Bids); err != nil {
		return err
	}
	if err := check(SELL, snap.Asks); err != nil {
		return err
	}

	// The crossed-book invariant must hold in persisted state too.
	if len(snap.Bids) > 0 && len(snap.Asks) > 0 && snap.Bids[0].Price >= snap.Asks[0].Price {
		return fmt.Errorf("%w: crossed book, bid %d >= ask %d", ErrCorruptSnapshot, snap.Bids[0].Price, snap.Asks[0].Price)
	}
	return nil
}
