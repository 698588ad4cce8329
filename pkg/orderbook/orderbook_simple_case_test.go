package orderbook

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSimpleMatch(t *testing.T) {
	ob := NewOrderBook("TEST")

	sell := &Order{ID: "1", Side: SELL, Price: 99, Qty: 50, Type: LIMIT}
	if _, err := ob.AddOrder(sell); err != nil {
		t.Fatalf("add sell: %v", err)
	}

	buy := &Order{ID: "2", Side: BUY, Price: 100, Qty: 30, Type: LIMIT}
	trades, err := ob.AddOrder(buy)
	if err != nil {
		t.Fatalf("add buy: %v", err)
	}

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	match := trades[0]
	if match.BuyOrderID != "2" || match.SellOrderID != "1" {
		t.Errorf("incorrect order IDs in trade: %+v", match)
	}
	// Execution at the maker's price, not the taker's limit.
	if match.Price != 99 || match.Qty != 30 {
		t.Errorf("incorrect price/qty: %+v", match)
	}
	if sell.Qty != 20 {
		t.Errorf("expected sell remainder 20, got %d", sell.Qty)
	}
	if _, sellQty := ob.QuantityAt(99); sellQty != 20 {
		t.Errorf("expected 20 resting at 99, got %d", sellQty)
	}
}

func TestNoMatchDueToPrice(t *testing.T) {
	ob := NewOrderBook("TEST")

	trades, err := ob.AddOrder(&Order{ID: "S1", Side: SELL, Price: 100, Qty: 10, Type: LIMIT})
	if err != nil || len(trades) != 0 {
		t.Fatalf("expected no trades, got %v %v", trades, err)
	}
	trades, err = ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 98, Qty: 10, Type: LIMIT})
	if err != nil || len(trades) != 0 {
		t.Fatalf("expected no trades, got %v %v", trades, err)
	}

	bid, _ := ob.BestBid()
	ask, _ := ob.BestAsk()
	if bid != 98 || ask != 100 {
		t.Errorf("expected 98/100, got %d/%d", bid, ask)
	}
}

func TestFIFOMatch(t *testing.T) {
	ob := NewOrderBook("TEST")

	// Two sells at the same price, id 5 first.
	ob.AddOrder(&Order{ID: "5", Side: SELL, Price: 102, Qty: 30, Type: LIMIT})
	ob.AddOrder(&Order{ID: "6", Side: SELL, Price: 102, Qty: 30, Type: LIMIT})

	trades, err := ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 103, Qty: 50, Type: LIMIT})
	if err != nil {
		t.Fatalf("add buy: %v", err)
	}

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].SellOrderID != "5" || trades[0].Qty != 30 {
		t.Errorf("expected first trade against 5 for 30, got %+v", trades[0])
	}
	if trades[1].SellOrderID != "6" || trades[1].Qty != 20 {
		t.Errorf("expected second trade against 6 for 20, got %+v", trades[1])
	}
	if _, sellQty := ob.QuantityAt(102); sellQty != 10 {
		t.Errorf("expected 10 left at 102, got %d", sellQty)
	}
}

func TestMultiLevelMatch(t *testing.T) {
	ob := NewOrderBook("TEST")

	for i, price := range []int64{101, 102, 103} {
		ob.AddOrder(&Order{ID: fmt.Sprintf("S%d", i+1), Side: SELL, Price: price, Qty: 5, Type: LIMIT})
	}

	trades, _ := ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 105, Qty: 15, Type: LIMIT})
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	// Best price always first, regardless of arrival order.
	if trades[0].Price != 101 || trades[1].Price != 102 || trades[2].Price != 103 {
		t.Errorf("expected matching from best price, got %+v", trades)
	}
	if _, ok := ob.BestAsk(); ok {
		t.Error("ask side should be empty")
	}
}

func TestMarketOrderNeverRests(t *testing.T) {
	ob := NewOrderBook("TEST")

	ob.AddOrder(&Order{ID: "S1", Side: SELL, Price: 100, Qty: 5, Type: LIMIT})

	trades, err := ob.AddOrder(&Order{ID: "B1", Side: BUY, Qty: 10, Type: MARKET})
	if err != nil {
		t.Fatalf("market buy: %v", err)
	}
	if len(trades) != 1 || trades[0].Qty != 5 || trades[0].Price != 100 {
		t.Fatalf("expected one trade of 5 at 100, got %+v", trades)
	}
	if bid, ok := ob.BestBid(); ok {
		t.Errorf("market remainder must not rest, found bid at %d", bid)
	}
}

func TestIOCPartialMatch(t *testing.T) {
	ob := NewOrderBook("TEST")

	ob.AddOrder(&Order{ID: "S1", Side: SELL, Price: 100, Qty: 5, Type: LIMIT})

	trades, _ := ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 101, Qty: 10, Type: LIMIT, TimeInForce: IOC})
	if len(trades) != 1 || trades[0].Qty != 5 {
		t.Fatalf("expected partial IOC match of 5, got %+v", trades)
	}
	if _, ok := ob.BestBid(); ok {
		t.Error("IOC remainder must not rest")
	}
}

func TestFOKRejectPartial(t *testing.T) {
	ob := NewOrderBook("TEST")

	ob.AddOrder(&Order{ID: "S1", Side: SELL, Price: 100, Qty: 5, Type: LIMIT})

	trades, err := ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 101, Qty: 10, Type: LIMIT, TimeInForce: FOK})
	if err != nil {
		t.Fatalf("fok: %v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("expected no fills for unfillable FOK, got %+v", trades)
	}
	// The resting sell is untouched.
	if _, sellQty := ob.QuantityAt(100); sellQty != 5 {
		t.Errorf("expected resting sell untouched, got %d", sellQty)
	}
}

func TestFOKFullMatch(t *testing.T) {
	ob := NewOrderBook("TEST")

	ob.AddOrder(&Order{ID: "S1", Side: SELL, Price: 100, Qty: 5, Type: LIMIT})
	ob.AddOrder(&Order{ID: "S2", Side: SELL, Price: 101, Qty: 5, Type: LIMIT})

	trades, _ := ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 101, Qty: 10, Type: LIMIT, TimeInForce: FOK})
	if len(trades) != 2 {
		t.Fatalf("expected FOK to fill across levels, got %+v", trades)
	}
}

func TestDuplicateOrderID(t *testing.T) {
	ob := NewOrderBook("TEST")

	if _, err := ob.AddOrder(&Order{ID: "1", Side: BUY, Price: 100, Qty: 10, Type: LIMIT}); err != nil {
		t.Fatalf("first add: %v", err)
	}

	_, err := ob.AddOrder(&Order{ID: "1", Side: SELL, Price: 101, Qty: 10, Type: LIMIT})
	if !errors.Is(err, ErrDuplicateOrderID) {
		t.Fatalf("expected ErrDuplicateOrderID, got %v", err)
	}

	// The rejected order must not have touched the book.
	buyQty, sellQty := ob.QuantityAt(100)
	if buyQty != 10 || sellQty != 0 {
		t.Errorf("book changed by rejected order: buy=%d sell=%d", buyQty, sellQty)
	}
	if _, ok := ob.BestAsk(); ok {
		t.Error("rejected order rested on ask side")
	}
}

func TestInvalidOrder(t *testing.T) {
	ob := NewOrderBook("TEST")

	cases := []*Order{
		{ID: "", Side: BUY, Price: 100, Qty: 10, Type: LIMIT},
		{ID: "1", Side: BUY, Price: 100, Qty: 0, Type: LIMIT},
		{ID: "2", Side: BUY, Price: 100, Qty: -5, Type: LIMIT},
		{ID: "3", Side: BUY, Price: 0, Qty: 10, Type: LIMIT},
		{ID: "4", Side: BUY, Price: -1, Qty: 10, Type: LIMIT},
		{ID: "5", Side: "HOLD", Price: 100, Qty: 10, Type: LIMIT},
	}
	for _, c := range cases {
		if _, err := ob.AddOrder(c); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("order %+v: expected ErrInvalidOrder, got %v", c, err)
		}
	}

	if bids, asks := ob.Depth(1); len(bids) != 0 || len(asks) != 0 {
		t.Error("invalid orders must not touch the book")
	}
}

func TestQuantityAt(t *testing.T) {
	ob := NewOrderBook("TEST")

	ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 100, Qty: 10, Type: LIMIT})
	ob.AddOrder(&Order{ID: "B2", Side: BUY, Price: 100, Qty: 7, Type: LIMIT})
	ob.AddOrder(&Order{ID: "S1", Side: SELL, Price: 105, Qty: 3, Type: LIMIT})

	buyQty, sellQty := ob.QuantityAt(100)
	if buyQty != 17 || sellQty != 0 {
		t.Errorf("at 100: got buy=%d sell=%d", buyQty, sellQty)
	}
	buyQty, sellQty = ob.QuantityAt(105)
	if buyQty != 0 || sellQty != 3 {
		t.Errorf("at 105: got buy=%d sell=%d", buyQty, sellQty)
	}
	buyQty, sellQty = ob.QuantityAt(42)
	if buyQty != 0 || sellQty != 0 {
		t.Errorf("at 42: got buy=%d sell=%d", buyQty, sellQty)
	}
}

func TestRecentTradesNewestFirst(t *testing.T) {
	ob := NewOrderBook("TEST")

	for i := 1; i <= 3; i++ {
		ob.AddOrder(&Order{ID: fmt.Sprintf("S%d", i), Side: SELL, Price: int64(100 + i), Qty: 1, Type: LIMIT})
	}
	ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 110, Qty: 3, Type: LIMIT})

	recent := ob.RecentTrades(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(recent))
	}
	if recent[0].Price != 103 || recent[1].Price != 102 {
		t.Errorf("expected newest first (103 then 102), got %+v", recent)
	}

	if got := ob.RecentTrades(100); len(got) != 3 {
		t.Errorf("expected all 3 trades, got %d", len(got))
	}
	if got := ob.RecentTrades(0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
}

func TestWeightedAvgPrice(t *testing.T) {
	ob := NewOrderBook("TEST")

	ob.AddOrder(&Order{ID: "S1", Side: SELL, Price: 100, Qty: 10, Type: LIMIT})
	ob.AddOrder(&Order{ID: "S2", Side: SELL, Price: 102, Qty: 30, Type: LIMIT})
	ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 102, Qty: 40, Type: LIMIT})

	// (100*10 + 102*30) / 40 = 101.5
	avg := ob.WeightedAvgPrice(90, 110)
	if avg.String() != "101.5" {
		t.Errorf("expected 101.5, got %s", avg)
	}

	// Only the 102 executions.
	avg = ob.WeightedAvgPrice(101, 110)
	if avg.String() != "102" {
		t.Errorf("expected 102, got %s", avg)
	}

	// Empty range yields zero, not an error.
	if avg := ob.WeightedAvgPrice(200, 300); !avg.IsZero() {
		t.Errorf("expected zero for empty range, got %s", avg)
	}
}

func TestWeightedAvgPriceLargeNotional(t *testing.T) {
	// price*qty summed over these trades is far beyond int64; the
	// average must still come out exact.
	price := int64(math.MaxInt64 / 2)
	var tl tradeLog
	for i := 0; i < 4; i++ {
		tl.append(Trade{Price: price, Qty: 3})
	}

	avg := tl.weightedAvgPrice(0, math.MaxInt64)
	if !avg.Equal(decimal.NewFromInt(price)) {
		t.Fatalf("expected avg %d, got %s", price, avg)
	}
}

func TestTradeCallback(t *testing.T) {
	ob := NewOrderBook("TEST")

	var got []Trade
	ob.RegisterTradeCallback(func(trades []Trade) {
		got = append(got, trades...)
	})

	ob.AddOrder(&Order{ID: "S1", Side: SELL, Price: 99, Qty: 10, Type: LIMIT})
	ob.AddOrder(&Order{ID: "B1", Side: BUY, Price: 100, Qty: 10, Type: LIMIT})

	if len(got) != 1 || got[0].Qty != 10 || got[0].Price != 99 {
		t.Fatalf("callback saw %+v", got)
	}
}

func TestHighVolumeOrders(t *testing.T) {
	ob := NewOrderBook("TEST")

	num := 10_000
	trade := 0
	ob.RegisterTradeCallback(func(results []Trade) {
		trade += len(results)
	})

	for i := 0; i < num; i++ {
		side := BUY
		if i%2 == 0 {
			side = SELL
		}
		_, err := ob.AddOrder(&Order{
			ID:    fmt.Sprintf("ORD-%d", i),
			Side:  side,
			Price: 100,
			Qty:   10,
			Type:  LIMIT,
		})
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	if trade != num/2 {
		t.Errorf("expected %d matches, got %d", num/2, trade)
	}
}

func TestConcurrentOrders(t *testing.T) {
	ob := NewOrderBook("TEST")

	var wg sync.WaitGroup
	addOrder := func(id string, side Side) {
		defer wg.Done()
		ob.AddOrder(&Order{ID: id, Side: side, Price: 100, Qty: 10, Type: LIMIT})
	}

	n := 1000
	for i := 0; i < n; i++ {
		wg.Add(2)
		go addOrder(fmt.Sprintf("B-%d", i), BUY)
		go addOrder(fmt.Sprintf("S-%d", i), SELL)
	}
	wg.Wait()

	// Everything at one price: both sides fully cross.
	buyQty, sellQty := ob.QuantityAt(100)
	if buyQty != 0 || sellQty != 0 {
		t.Errorf("expected fully crossed book, got buy=%d sell=%d", buyQty, sellQty)
	}
}

func BenchmarkOrderBookMatch(b *testing.B) {
	ob := NewOrderBook("BENCH")

	for i := 0; i < 10_000; i++ {
		ob.AddOrder(&Order{
			ID:    fmt.Sprintf("SELL-%d", i),
			Side:  SELL,
			Price: 100 + int64(i%5),
			Qty:   10,
			Type:  LIMIT,
		})
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ob.AddOrder(&Order{
			ID:    fmt.Sprintf("BUY-%d", i),
			Side:  BUY,
			Price: 101,
			Qty:   10,
			Type:  LIMIT,
		})
	}
}
