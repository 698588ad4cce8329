package orderbook

import "sync"

// Manager holds one book per symbol. Books share no mutable state, so
// independent symbols match fully in parallel.
type Manager struct {
	books     sync.Map // symbol -> *OrderBook
	mu        sync.Mutex
	callbacks []func(symbol string, trades []Trade)
}

func NewManager() *Manager {
	return &Manager{}
}

// Book returns the book for a symbol, creating it on first use.
func (m *Manager) Book(symbol string) *OrderBook {
	if val, ok := m.books.Load(symbol); ok {
		return val.(*OrderBook)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.books.Load(symbol); ok {
		return val.(*OrderBook)
	}

	book := NewOrderBook(symbol)
	for _, cb := range m.callbacks {
		cb := cb
		book.RegisterTradeCallback(func(trades []Trade) {
			cb(symbol, trades)
		})
	}
	m.books.Store(symbol, book)
	return book
}

func (m *Manager) AddOrder(order *Order) ([]Trade, error) {
	return m.Book(order.Symbol).AddOrder(order)
}

func (m *Manager) CancelOrder(symbol, orderID string) error {
	return m.Book(symbol).CancelOrder(orderID)
}

// RegisterTradeCallback attaches a callback to every existing and
// future book.
func (m *Manager) RegisterTradeCallback(cb func(symbol string, trades []Trade)) {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, cb)
	m.mu.Unlock()

	m.books.Range(func(k, v any) bool {
		symbol := k.(string)
		v.(*OrderBook).RegisterTradeCallback(func(trades []Trade) {
			cb(symbol, trades)
		})
		return true
	})
}

// Restore replaces the book for the snapshot's symbol.
func (m *Manager) Restore(snap *Snapshot) error {
	book, err := RestoreOrderBook(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cb := range m.callbacks {
		cb := cb
		symbol := snap.Symbol
		book.RegisterTradeCallback(func(trades []Trade) {
			cb(symbol, trades)
		})
	}
	m.books.Store(snap.Symbol, book)
	return nil
}

// Symbols lists the symbols with a live book.
func (m *Manager) Symbols() []string {
	var out []string
	m.books.Range(func(k, _ any) bool {
		out = append(out, k.(string))
		return true
	})
	return out
}
