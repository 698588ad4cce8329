package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// PebbleStore keeps snapshots in a pebble key-value store, one key
// per symbol, synced on every save.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("%w: open pebble: %v", ErrPersistenceFailure, err)
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func bookKey(symbol string) []byte {
	return []byte("book:" + symbol)
}

func (s *PebbleStore) Save(_ context.Context, snap *orderbook.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistenceFailure, snap.Symbol, err)
	}
	if err := s.db.Set(bookKey(snap.Symbol), data, pebble.Sync); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrPersistenceFailure, snap.Symbol, err)
	}
	return nil
}

func (s *PebbleStore) Load(_ context.Context, symbol string) (*orderbook.Snapshot, error) {
	val, closer, err := s.db.Get(bookKey(symbol))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrPersistenceFailure, symbol, err)
	}
	defer closer.Close()

	data := make([]byte, len(val))
	copy(data, val)
	return decodeSnapshot(symbol, data)
}
