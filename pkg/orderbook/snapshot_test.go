package orderbook

import (
	"errors"
	"testing"
)

func buildBook(t *testing.T) *OrderBook {
	t.Helper()
	ob := NewOrderBook("TEST")

	orders := []*Order{
		{ID: "B1", Side: BUY, Price: 100, Qty: 10, Type: LIMIT},
		{ID: "B2", Side: BUY, Price: 100, Qty: 5, Type: LIMIT},
		{ID: "B3", Side: BUY, Price: 99, Qty: 7, Type: LIMIT},
		{ID: "S1", Side: SELL, Price: 101, Qty: 4, Type: LIMIT},
		{ID: "S2", Side: SELL, Price: 103, Qty: 9, Type: LIMIT},
	}
	for _, o := range orders {
		if _, err := ob.AddOrder(o); err != nil {
			t.Fatalf("add %s: %v", o.ID, err)
		}
	}
	return ob
}

func TestSnapshotShape(t *testing.T) {
	ob := buildBook(t)
	snap := ob.Snapshot()

	if snap.Symbol != "TEST" {
		t.Errorf("symbol: %s", snap.Symbol)
	}
	if len(snap.Bids) != 3 || len(snap.Asks) != 2 {
		t.Fatalf("expected 3 bids / 2 asks, got %d/%d", len(snap.Bids), len(snap.Asks))
	}
	// Best first, FIFO within each level.
	if snap.Bids[0].ID != "B1" || snap.Bids[1].ID != "B2" || snap.Bids[2].ID != "B3" {
		t.Errorf("bid order wrong: %+v", snap.Bids)
	}
	if snap.Asks[0].ID != "S1" || snap.Asks[1].ID != "S2" {
		t.Errorf("ask order wrong: %+v", snap.Asks)
	}
	if snap.Seq != 5 {
		t.Errorf("expected seq 5, got %d", snap.Seq)
	}
}

func TestSnapshotIsConsistentCopy(t *testing.T) {
	ob := buildBook(t)
	snap := ob.Snapshot()

	// Mutating the live book must not leak into the snapshot.
	ob.CancelOrder("B1")
	ob.AddOrder(&Order{ID: "S3", Side: SELL, Price: 101, Qty: 2, Type: LIMIT})

	if len(snap.Bids) != 3 || len(snap.Asks) != 2 {
		t.Fatalf("snapshot changed after the fact: %d bids / %d asks", len(snap.Bids), len(snap.Asks))
	}
	if snap.Bids[0].Qty != 10 {
		t.Errorf("snapshot qty changed: %d", snap.Bids[0].Qty)
	}
}

func TestRestorePreservesFIFO(t *testing.T) {
	ob := buildBook(t)

	restored, err := RestoreOrderBook(ob.Snapshot())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	// The taker sweeps the 100 level: B1 before B2.
	trades, err := restored.AddOrder(&Order{ID: "S9", Side: SELL, Price: 100, Qty: 15, Type: LIMIT})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %+v", trades)
	}
	if trades[0].BuyOrderID != "B1" || trades[0].Qty != 10 {
		t.Errorf("expected B1 first for 10, got %+v", trades[0])
	}
	if trades[1].BuyOrderID != "B2" || trades[1].Qty != 5 {
		t.Errorf("expected B2 second for 5, got %+v", trades[1])
	}
}

func TestRestoreContinuesSequences(t *testing.T) {
	ob := NewOrderBook("TEST")
	ob.AddOrder(&Order{ID: "S1", Side: SELL, Price: 100, Qty: 5, Type: LIMIT})
	ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 100, Qty: 5, Type: LIMIT})

	restored, err := RestoreOrderBook(ob.Snapshot())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.TradeCount() != 1 {
		t.Fatalf("expected restored trade log of 1, got %d", restored.TradeCount())
	}

	restored.AddOrder(&Order{ID: "S2", Side: SELL, Price: 100, Qty: 5, Type: LIMIT})
	restored.AddOrder(&Order{ID: "B2", Side: BUY, Price: 100, Qty: 5, Type: LIMIT})

	trades := restored.RecentTrades(1)
	if len(trades) != 1 || trades[0].Seq != 2 {
		t.Fatalf("expected trade seq to continue at 2, got %+v", trades)
	}
}

func TestRestoreRejectsCorruptSnapshots(t *testing.T) {
	base := func() *Snapshot {
		return buildBook(t).Snapshot()
	}

	cases := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"missing symbol", func(s *Snapshot) { s.Symbol = "" }},
		{"empty order id", func(s *Snapshot) { s.Bids[0].ID = "" }},
		{"duplicate order id", func(s *Snapshot) { s.Bids[1].ID = s.Bids[0].ID }},
		{"wrong side", func(s *Snapshot) { s.Bids[0].Side = SELL }},
		{"non-positive qty", func(s *Snapshot) { s.Asks[0].Qty = 0 }},
		{"non-positive price", func(s *Snapshot) { s.Asks[0].Price = -1 }},
		{"zero seq", func(s *Snapshot) { s.Bids[0].Seq = 0 }},
		{"seq beyond book", func(s *Snapshot) { s.Bids[0].Seq = s.Seq + 1 }},
		{"bids out of order", func(s *Snapshot) { s.Bids[0].Price = 1 }},
		{"asks out of order", func(s *Snapshot) { s.Asks[0].Price = 9_999 }},
		{"crossed book", func(s *Snapshot) {
			for i := range s.Bids {
				s.Bids[i].Price = 500
			}
			for i := range s.Asks {
				s.Asks[i].Price = 400
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := base()
			tc.mutate(snap)
			if _, err := RestoreOrderBook(snap); !errors.Is(err, ErrCorruptSnapshot) {
				t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
			}
		})
	}

	if _, err := RestoreOrderBook(nil); !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("nil snapshot: expected ErrCorruptSnapshot, got %v", err)
	}
}

func TestRestoreEmptyBook(t *testing.T) {
	ob := NewOrderBook("TEST")

	restored, err := RestoreOrderBook(ob.Snapshot())
	if err != nil {
		t.Fatalf("restore empty: %v", err)
	}
	if _, ok := restored.BestBid(); ok {
		t.Error("restored empty book has a bid")
	}
	if _, ok := restored.BestAsk(); ok {
		t.Error("restored empty book has an ask")
	}
}
