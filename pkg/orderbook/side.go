package orderbook

import "github.com/google/btree"

// Level is one aggregated price level as seen by read queries.
type Level struct {
	Price  int64
	Qty    int64
	Orders int
}

// bookSide indexes price levels so that the best price is the tree
// minimum: bids order by descending price, asks by ascending price.
type bookSide struct {
	side   Side
	tree   *btree.BTreeG[*priceLevel]
	levels map[int64]*priceLevel
}

const btreeDegree = 32

func newBookSide(side Side) *bookSide {
	less := func(a, b *priceLevel) bool { return a.price < b.price }
	if side == BUY {
		less = func(a, b *priceLevel) bool { return a.price > b.price }
	}
	return &bookSide{
		side:   side,
		tree:   btree.NewG(btreeDegree, less),
		levels: make(map[int64]*priceLevel),
	}
}

// best returns the best price level on this side, false when empty.
func (s *bookSide) best() (*priceLevel, bool) {
	return s.tree.Min()
}

func (s *bookSide) bestPrice() (int64, bool) {
	lvl, ok := s.tree.Min()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

// insert rests an order at the back of its price level's FIFO,
// creating the level on first use.
func (s *bookSide) insert(o *Order) {
	lvl, ok := s.levels[o.Price]
	if !ok {
		lvl = newPriceLevel(o.Price)
		s.levels[o.Price] = lvl
		s.tree.ReplaceOrInsert(lvl)
	}
	lvl.push(o)
}

func (s *bookSide) removeLevel(lvl *priceLevel) {
	s.tree.Delete(lvl)
	delete(s.levels, lvl.price)
}

// remove takes a resting order out of its level, dropping the level
// when it becomes empty. Reports whether the id was found.
func (s *bookSide) remove(o *Order) bool {
	lvl, ok := s.levels[o.Price]
	if !ok {
		return false
	}
	if !lvl.remove(o.ID) {
		return false
	}
	if lvl.empty() {
		s.removeLevel(lvl)
	}
	return true
}

// quantityAt returns the aggregate resting quantity at a price, 0 if
// no level exists.
func (s *bookSide) quantityAt(price int64) int64 {
	lvl, ok := s.levels[price]
	if !ok {
		return 0
	}
	return lvl.totalQty
}

// depth returns up to n levels from best to worst.
func (s *bookSide) depth(n int) []Level {
	if n <= 0 {
		return nil
	}
	out := make([]Level, 0, n)
	s.tree.Ascend(func(lvl *priceLevel) bool {
		out = append(out, Level{
			Price:  lvl.price,
			Qty:    lvl.totalQty,
			Orders: lvl.orders.Len(),
		})
		return len(out) < n
	})
	return out
}

func (s *bookSide) empty() bool {
	return s.tree.Len() == 0
}
