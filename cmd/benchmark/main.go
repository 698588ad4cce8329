package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// Replays synthetic order flow against a single book and reports
// throughput plus total matched quantity.
func main() {
	book := orderbook.NewOrderBook("BENCH")

	var matchCount, matchQty int64
	book.RegisterTradeCallback(func(trades []orderbook.Trade) {
		for _, t := range trades {
			matchCount++
			matchQty += t.Qty
		}
	})

	const num = 1_000_000
	const mid = 10_000

	start := time.Now()
	for i := 0; i < num; i++ {
		side := orderbook.BUY
		offset := -rand.Int63n(5)
		if i%2 == 0 {
			side = orderbook.SELL
			offset = rand.Int63n(5)
		}
		_, err := book.AddOrder(&orderbook.Order{
			ID:    fmt.Sprintf("ORD-%d", i),
			Side:  side,
			Price: mid + offset,
			Qty:   1 + rand.Int63n(100),
			Type:  orderbook.LIMIT,
		})
		if err != nil {
			panic(err)
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("orders=%d elapsed=%s rate=%.0f orders/s\n", num, elapsed, float64(num)/elapsed.Seconds())
	fmt.Printf("matches=%d matchedQty=%d trades_logged=%d\n", matchCount, matchQty, book.TradeCount())

	bids, asks := book.Depth(5)
	fmt.Printf("top bids: %+v\n", bids)
	fmt.Printf("top asks: %+v\n", asks)
}
