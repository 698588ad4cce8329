package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeEvent is the settlement/market-data view of one execution,
// published to the trade feed. Downstream consumers (ledger, market
// data) read this stream; they never reach into the book.
type TradeEvent struct {
	TradeID     string          `json:"trade_id"`
	Symbol      string          `json:"symbol"`
	BuyOrderID  string          `json:"buy_order_id"`
	SellOrderID string          `json:"sell_order_id"`
	Price       decimal.Decimal `json:"price"`
	Qty         decimal.Decimal `json:"qty"`
	Seq         uint64          `json:"seq"`
	ExecutedAt  time.Time       `json:"executed_at"`
}
