// Package snapshot persists order-book snapshots to a durable medium
// and loads them back for recovery. Stores never touch live book
// state: a failed save or load surfaces an error and nothing else.
package snapshot

import (
	"context"
	"errors"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

var (
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
)

type Store interface {
	Save(ctx context.Context, snap *orderbook.Snapshot) error

	// Load returns ErrSnapshotNotFound when the symbol was never
	// persisted and orderbook.ErrCorruptSnapshot when the stored
	// bytes fail structural validation.
	Load(ctx context.Context, symbol string) (*orderbook.Snapshot, error)
}
