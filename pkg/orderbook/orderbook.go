package orderbook

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// OrderBook is a continuous limit-order book for a single symbol with
// price-time priority matching. One write lock serializes submissions
// and cancels; read queries share a read lock and always observe a
// fully applied state, never a half-updated level mid-match.
type OrderBook struct {
	symbol string

	bids *bookSide
	asks *bookSide

	// ordersByID indexes resting orders for duplicate checks and
	// O(1) cancel lookup.
	ordersByID map[string]*Order

	seq      uint64
	tradeSeq uint64
	trades   tradeLog

	callbacks []func([]Trade)

	mu sync.RWMutex
}

func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		symbol:     symbol,
		bids:       newBookSide(BUY),
		asks:       newBookSide(SELL),
		ordersByID: make(map[string]*Order),
	}
}

func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

// RegisterTradeCallback adds a callback invoked with the trades of
// each matching pass. Callbacks run inside the book's critical
// section and must not call back into the book.
func (ob *OrderBook) RegisterTradeCallback(fn func([]Trade)) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.callbacks = append(ob.callbacks, fn)
}

// AddOrder validates an incoming order, matches it against the
// opposing side and rests any remainder. It returns the trades in
// execution order; the order's Qty afterwards is the resting
// remainder (0 when fully filled). A rejected order leaves the book
// completely unchanged.
func (ob *OrderBook) AddOrder(order *Order) ([]Trade, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if err := ob.validate(order); err != nil {
		return nil, err
	}

	ob.seq++
	order.seq = ob.seq
	if order.Timestamp.IsZero() {
		order.Timestamp = time.Now()
	}
	if order.TimeInForce == "" {
		order.TimeInForce = GTC
	}

	if order.Type == MARKET {
		// A market order is a limit order at the worst acceptable
		// price. It never rests.
		order.Price = math.MaxInt64
		if order.Side == SELL {
			order.Price = 0
		}
	}

	if order.TimeInForce == FOK && ob.fillableQty(order) < order.Qty {
		// Not fully fillable: kill without touching the book.
		return nil, nil
	}

	trades := ob.match(order)

	if order.Qty > 0 && order.Type != MARKET && order.TimeInForce != IOC && order.TimeInForce != FOK {
		ob.sideOf(order.Side).insert(order)
		ob.ordersByID[order.ID] = order
	}

	if len(trades) > 0 {
		ob.trades.append(trades...)
		for _, cb := range ob.callbacks {
			cb(trades)
		}
	}

	return trades, nil
}

// CancelOrder removes a resting order entirely. Cancel is not
// idempotent: once an order is gone (filled, cancelled or never
// known) a further cancel fails with ErrOrderNotFound.
func (ob *OrderBook) CancelOrder(orderID string) error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	order, ok := ob.ordersByID[orderID]
	if !ok {
		return fmt.Errorf("cancel %s: %w", orderID, ErrOrderNotFound)
	}
	if !ob.sideOf(order.Side).remove(order) {
		return fmt.Errorf("cancel %s: %w", orderID, ErrOrderNotFound)
	}
	delete(ob.ordersByID, orderID)
	return nil
}

func (ob *OrderBook) validate(order *Order) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("%w: missing order id", ErrInvalidOrder)
	}
	if order.Side != BUY && order.Side != SELL {
		return fmt.Errorf("%w: side %q", ErrInvalidOrder, order.Side)
	}
	if order.Qty <= 0 {
		return fmt.Errorf("%w: qty %d", ErrInvalidOrder, order.Qty)
	}
	if order.Type != MARKET && order.Price <= 0 {
		return fmt.Errorf("%w: price %d", ErrInvalidOrder, order.Price)
	}
	if _, exists := ob.ordersByID[order.ID]; exists {
		return fmt.Errorf("order %s: %w", order.ID, ErrDuplicateOrderID)
	}
	return nil
}

func (ob *OrderBook) sideOf(s Side) *bookSide {
	if s == BUY {
		return ob.bids
	}
	return ob.asks
}

// crosses reports whether a taker at price can trade against the
// counter side's best price.
func crosses(side Side, takerPrice, counterPrice int64) bool {
	if side == BUY {
		return takerPrice >= counterPrice
	}
	return takerPrice <= counterPrice
}

// match walks the opposing side from the best level, trading against
// the oldest order at each level. The loop terminates because every
// iteration strictly reduces either the taker's Qty or the resting
// quantity on the counter side.
func (ob *OrderBook) match(order *Order) []Trade {
	counter := ob.sideOf(order.Side.opposite())

	var trades []Trade
	for order.Qty > 0 {
		lvl, ok := counter.best()
		if !ok || !crosses(order.Side, order.Price, lvl.price) {
			break
		}

		maker := lvl.front()
		tradeQty := order.Qty
		if maker.Qty < tradeQty {
			tradeQty = maker.Qty
		}

		order.Qty -= tradeQty
		maker.Qty -= tradeQty
		lvl.totalQty -= tradeQty

		ob.tradeSeq++
		t := Trade{
			Price:     lvl.price, // maker price, never the taker's limit
			Qty:       tradeQty,
			Seq:       ob.tradeSeq,
			Timestamp: time.Now(),
		}
		if order.Side == BUY {
			t.BuyOrderID, t.SellOrderID = order.ID, maker.ID
		} else {
			t.BuyOrderID, t.SellOrderID = maker.ID, order.ID
		}
		trades = append(trades, t)

		if maker.Qty == 0 {
			lvl.popFront()
			delete(ob.ordersByID, maker.ID)
			if lvl.empty() {
				counter.removeLevel(lvl)
			}
		}
		// A partially filled maker stays at the front of its level;
		// the taker is exhausted and the loop ends.
	}
	return trades
}

// fillableQty sums the counter-side quantity at prices the order
// crosses, stopping early once the order's Qty is covered. Used by
// the FOK pre-check.
func (ob *OrderBook) fillableQty(order *Order) int64 {
	counter := ob.sideOf(order.Side.opposite())

	var total int64
	counter.tree.Ascend(func(lvl *priceLevel) bool {
		if !crosses(order.Side, order.Price, lvl.price) {
			return false
		}
		total += lvl.totalQty
		return total < order.Qty
	})
	return total
}

// QuantityAt returns the aggregate resting quantity at a price on
// both sides.
func (ob *OrderBook) QuantityAt(price int64) (buyQty, sellQty int64) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.bids.quantityAt(price), ob.asks.quantityAt(price)
}

// BestBid returns the highest resting bid price, false when the bid
// side is empty.
func (ob *OrderBook) BestBid() (int64, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.bids.bestPrice()
}

// BestAsk returns the lowest resting ask price, false when the ask
// side is empty.
func (ob *OrderBook) BestAsk() (int64, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.asks.bestPrice()
}

// Depth returns up to n aggregated levels per side, best first.
func (ob *OrderBook) Depth(n int) (bids, asks []Level) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.bids.depth(n), ob.asks.depth(n)
}

// RecentTrades returns up to n trades, newest first.
func (ob *OrderBook) RecentTrades(n int) []Trade {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.trades.recent(n)
}

// TradeCount returns the number of executed trades.
func (ob *OrderBook) TradeCount() int {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.trades.len()
}

// WeightedAvgPrice is sum(price*qty)/sum(qty) over trades executed in
// the price range [lo, hi]. An empty range yields zero.
func (ob *OrderBook) WeightedAvgPrice(lo, hi int64) decimal.Decimal {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.trades.weightedAvgPrice(lo, hi)
}
