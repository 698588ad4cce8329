package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/eventstore"
	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/engine/riskrule"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/joripage/matching-engine/pkg/snapshot"
)

// TradePublisher feeds executions to downstream consumers (settlement
// ledger, market data). Publishing is best-effort from the matching
// path's point of view: a feed error is logged, never rolled back.
type TradePublisher interface {
	PublishTrades(ctx context.Context, symbol string, trades []model.TradeEvent) error
}

type Config struct {
	// PriceScale is the number of decimal places carried by one
	// price tick. Scale 2 means price 101.25 becomes 10125 ticks.
	PriceScale int32
}

// Engine is the order-management layer over the per-symbol books:
// risk checks in front, execution reports and the trade feed behind.
type Engine struct {
	cfg     *Config
	gateway OrderGateway
	books   *orderbook.Manager
	events  eventstore.EventStore

	rules     []riskrule.RiskRule
	feed      TradePublisher
	snapshots snapshot.Store

	// orders holds every order ever accepted, so a reused id is
	// caught even after the original left the book.
	orders sync.Map // orderID -> *model.Order

	// symLocks serializes engine-side record keeping per symbol;
	// the books themselves hold their own locks.
	symLocks sync.Map // symbol -> *sync.Mutex
}

func NewEngine(cfg *Config, gateway OrderGateway) *Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Engine{
		cfg:     cfg,
		gateway: gateway,
		books:   orderbook.NewManager(),
		events:  eventstore.NewInMemoryEventStore(),
	}
}

func (e *Engine) AddRiskRule(rule riskrule.RiskRule) {
	e.rules = append(e.rules, rule)
}

func (e *Engine) SetTradeFeed(feed TradePublisher) {
	e.feed = feed
}

func (e *Engine) SetSnapshotStore(store snapshot.Store) {
	e.snapshots = store
}

func (e *Engine) Start(ctx context.Context) error {
	return e.gateway.Start(ctx)
}

// Book exposes the read-only query surface of one symbol's book.
func (e *Engine) Book(symbol string) *orderbook.OrderBook {
	return e.books.Book(symbol)
}

func (e *Engine) symLock(symbol string) *sync.Mutex {
	if mu, ok := e.symLocks.Load(symbol); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := e.symLocks.LoadOrStore(symbol, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// AddOrder validates, risk-checks and matches one order. On success
// the returned record reflects the post-match state: Filled,
// PartiallyFilled or New (resting). A rejected order leaves the book
// unchanged.
func (e *Engine) AddOrder(ctx context.Context, add *model.AddOrder) (*model.Order, error) {
	order := orderFromAdd(add)

	// Reserve the id before any other work; a concurrent submission
	// with the same id must lose even while this one is still in
	// flight. Reject paths release the reservation.
	if _, dup := e.orders.LoadOrStore(order.OrderID, order); dup {
		return nil, fmt.Errorf("order %s: %w", order.OrderID, orderbook.ErrDuplicateOrderID)
	}

	for _, rule := range e.rules {
		if err := rule.Check(order); err != nil {
			e.orders.Delete(order.OrderID)
			e.reject(ctx, order)
			return nil, fmt.Errorf("%w: %v", errRiskRejected, err)
		}
	}

	bookOrder, err := e.toBookOrder(order)
	if err != nil {
		e.orders.Delete(order.OrderID)
		e.reject(ctx, order)
		return nil, err
	}

	mu := e.symLock(order.Symbol)
	mu.Lock()
	defer mu.Unlock()

	trades, err := e.books.AddOrder(bookOrder)
	if err != nil {
		e.orders.Delete(order.OrderID)
		order.Status = model.OrderStatusRejected
		order.ExecType = model.ExecTypeRejected
		return nil, err
	}

	order.Status = model.OrderStatusNew
	order.ExecType = model.ExecTypeNew
	now := time.Now()
	e.events.AddEvent(model.NewOrderEvent(*order, now))
	e.gateway.OnOrderReport(ctx, *order)

	e.processTrades(ctx, order.Symbol, trades)

	// A non-resting remainder (market, IOC, failed FOK) is cancelled.
	if bookOrder.Qty > 0 && !resting(order) {
		order.LeavesQuantity = decimal.Zero
		order.Status = model.OrderStatusCanceled
		order.ExecType = model.ExecTypeCanceled
		e.events.AddEvent(model.NewOrderEvent(*order, time.Now()))
		e.gateway.OnOrderReport(ctx, *order)
	}

	report := *order
	return &report, nil
}

// CancelOrder removes all remaining quantity of a live order. A
// second cancel of the same id fails: the order is no longer found.
func (e *Engine) CancelOrder(ctx context.Context, cancel *model.CancelOrder) error {
	val, ok := e.orders.Load(cancel.OrderID)
	if !ok {
		return fmt.Errorf("cancel %s: %w", cancel.OrderID, orderbook.ErrOrderNotFound)
	}
	order := val.(*model.Order)

	mu := e.symLock(order.Symbol)
	mu.Lock()
	defer mu.Unlock()

	if !order.CanCancel() {
		return fmt.Errorf("cancel %s in status %s: %w", cancel.OrderID, order.Status, errInvalidOrderStatus)
	}

	if err := e.books.CancelOrder(order.Symbol, order.OrderID); err != nil {
		return err
	}

	order.LeavesQuantity = decimal.Zero
	order.Status = model.OrderStatusCanceled
	order.ExecType = model.ExecTypeCanceled
	e.events.AddEvent(model.NewOrderEvent(*order, time.Now()))
	e.gateway.OnOrderReport(ctx, *order)
	return nil
}

// Order returns a copy of the engine's record for an order id.
func (e *Engine) Order(orderID string) (*model.Order, error) {
	val, ok := e.orders.Load(orderID)
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, orderbook.ErrOrderNotFound)
	}
	order := *val.(*model.Order)
	return &order, nil
}

func (e *Engine) reject(ctx context.Context, order *model.Order) {
	order.Status = model.OrderStatusRejected
	order.ExecType = model.ExecTypeRejected
	e.events.AddEvent(model.NewOrderEvent(*order, time.Now()))
	e.gateway.OnOrderReport(ctx, *order)
}

func (e *Engine) processTrades(ctx context.Context, symbol string, trades []orderbook.Trade) {
	if len(trades) == 0 {
		return
	}

	feed := make([]model.TradeEvent, 0, len(trades))
	for _, t := range trades {
		price := e.priceFromTicks(t.Price)
		qty := decimal.NewFromInt(t.Qty)

		for _, id := range []string{t.BuyOrderID, t.SellOrderID} {
			val, ok := e.orders.Load(id)
			if !ok {
				zap.S().Warnf("trade references unknown order %s", id)
				continue
			}
			o := val.(*model.Order)
			o.ApplyFill(price, qty)
			e.events.AddEvent(model.NewOrderEvent(*o, t.Timestamp))
			e.gateway.OnOrderReport(ctx, *o)
		}

		feed = append(feed, model.TradeEvent{
			TradeID:     uuid.New().String(),
			Symbol:      symbol,
			BuyOrderID:  t.BuyOrderID,
			SellOrderID: t.SellOrderID,
			Price:       price,
			Qty:         qty,
			Seq:         t.Seq,
			ExecutedAt:  t.Timestamp,
		})
	}

	if e.feed != nil {
		if err := e.feed.PublishTrades(ctx, symbol, feed); err != nil {
			zap.S().Errorf("publish trades for %s: %v", symbol, err)
		}
	}
}

// QuantityAt reports the resting quantity on both sides at a price.
func (e *Engine) QuantityAt(symbol string, price decimal.Decimal) (buyQty, sellQty decimal.Decimal, err error) {
	ticks, err := e.priceToTicks(price)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	b, s := e.books.Book(symbol).QuantityAt(ticks)
	return decimal.NewFromInt(b), decimal.NewFromInt(s), nil
}

// RecentTrades returns up to n executions for a symbol, newest first.
func (e *Engine) RecentTrades(symbol string, n int) []model.TradeEvent {
	trades := e.books.Book(symbol).RecentTrades(n)
	out := make([]model.TradeEvent, 0, len(trades))
	for _, t := range trades {
		out = append(out, model.TradeEvent{
			Symbol:      symbol,
			BuyOrderID:  t.BuyOrderID,
			SellOrderID: t.SellOrderID,
			Price:       e.priceFromTicks(t.Price),
			Qty:         decimal.NewFromInt(t.Qty),
			Seq:         t.Seq,
			ExecutedAt:  t.Timestamp,
		})
	}
	return out
}

// WeightedAvgPrice is the volume-weighted average execution price
// over the [lo, hi] price range, zero when nothing traded there.
func (e *Engine) WeightedAvgPrice(symbol string, lo, hi decimal.Decimal) (decimal.Decimal, error) {
	loTicks, err := e.priceToTicks(lo)
	if err != nil {
		return decimal.Zero, err
	}
	hiTicks, err := e.priceToTicks(hi)
	if err != nil {
		return decimal.Zero, err
	}
	avg := e.books.Book(symbol).WeightedAvgPrice(loTicks, hiTicks)
	return avg.Shift(-e.cfg.PriceScale), nil
}

// SnapshotAll persists every live book. Each snapshot is copied
// under the book's read lock; the store I/O runs outside it, so a
// slow disk never blocks order flow.
func (e *Engine) SnapshotAll(ctx context.Context) error {
	if e.snapshots == nil {
		return nil
	}
	for _, symbol := range e.books.Symbols() {
		snap := e.books.Book(symbol).Snapshot()
		if err := e.snapshots.Save(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

// Recover rebuilds books from persisted snapshots. Symbols without a
// snapshot start cold. Order records for resting orders are recreated
// with their remaining quantity so they stay cancellable.
func (e *Engine) Recover(ctx context.Context, symbols []string) error {
	if e.snapshots == nil {
		return nil
	}
	for _, symbol := range symbols {
		snap, err := e.snapshots.Load(ctx, symbol)
		if err != nil {
			if errors.Is(err, snapshot.ErrSnapshotNotFound) {
				continue
			}
			return err
		}
		if err := e.books.Restore(snap); err != nil {
			return err
		}
		for _, so := range append(append([]orderbook.SnapshotOrder{}, snap.Bids...), snap.Asks...) {
			e.restoreOrderRecord(symbol, so)
		}
	}
	return nil
}

func (e *Engine) restoreOrderRecord(symbol string, so orderbook.SnapshotOrder) {
	qty := decimal.NewFromInt(so.Qty)
	order := &model.Order{
		OrderID:        so.ID,
		Symbol:         symbol,
		Side:           model.OrderSide(so.Side),
		Type:           model.OrderTypeLimit,
		TimeInForce:    model.OrderTimeInForce(so.TimeInForce),
		Price:          e.priceFromTicks(so.Price),
		Quantity:       qty,
		TransactTime:   so.Timestamp,
		Status:         model.OrderStatusNew,
		ExecType:       model.ExecTypeNew,
		LeavesQuantity: qty,
	}
	e.orders.Store(order.OrderID, order)
}

func orderFromAdd(add *model.AddOrder) *model.Order {
	orderID := add.OrderID
	if orderID == "" {
		orderID = uuid.New().String()
	}
	transactTime := add.TransactTime
	if transactTime.IsZero() {
		transactTime = time.Now()
	}
	tif := add.TimeInForce
	if tif == "" {
		tif = model.OrderTimeInForceGTC
	}
	return &model.Order{
		OrderID:        orderID,
		Account:        add.Account,
		Symbol:         add.Symbol,
		Side:           add.Side,
		Type:           add.Type,
		TimeInForce:    tif,
		Price:          add.Price,
		Quantity:       add.Quantity,
		TransactTime:   transactTime,
		Status:         model.OrderStatusPendingNew,
		LeavesQuantity: add.Quantity,
	}
}

func (e *Engine) toBookOrder(order *model.Order) (*orderbook.Order, error) {
	if !order.Quantity.IsInteger() || !order.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity %s", orderbook.ErrInvalidOrder, order.Quantity)
	}

	var ticks int64
	if order.Type != model.OrderTypeMarket {
		var err error
		ticks, err = e.priceToTicks(order.Price)
		if err != nil {
			return nil, err
		}
	}

	return &orderbook.Order{
		ID:          order.OrderID,
		Symbol:      order.Symbol,
		Side:        orderbook.Side(order.Side),
		Price:       ticks,
		Qty:         order.Quantity.IntPart(),
		Type:        orderbook.OrderType(order.Type),
		TimeInForce: orderbook.TimeInForce(order.TimeInForce),
		Timestamp:   order.TransactTime,
	}, nil
}

func (e *Engine) priceToTicks(price decimal.Decimal) (int64, error) {
	shifted := price.Shift(e.cfg.PriceScale)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: price %s below tick resolution", orderbook.ErrInvalidOrder, price)
	}
	return shifted.IntPart(), nil
}

func (e *Engine) priceFromTicks(ticks int64) decimal.Decimal {
	return decimal.NewFromInt(ticks).Shift(-e.cfg.PriceScale)
}

// resting reports whether the engine record is still live on a book.
func resting(order *model.Order) bool {
	if order.Type == model.OrderTypeMarket {
		return false
	}
	switch order.TimeInForce {
	case model.OrderTimeInForceIOC, model.OrderTimeInForceFOK:
		return false
	}
	switch order.Status {
	case model.OrderStatusNew, model.OrderStatusPartiallyFilled:
		return true
	}
	return false
}
