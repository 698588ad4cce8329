package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// FileStore writes one JSON file per symbol. Saves go through a temp
// file plus rename so a crashed save never leaves a torn snapshot.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(symbol string) string {
	return filepath.Join(s.dir, symbol+".snapshot.json")
}

func (s *FileStore) Save(_ context.Context, snap *orderbook.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistenceFailure, snap.Symbol, err)
	}

	tmp, err := os.CreateTemp(s.dir, snap.Symbol+".snapshot-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrPersistenceFailure, snap.Symbol, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", ErrPersistenceFailure, snap.Symbol, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrPersistenceFailure, snap.Symbol, err)
	}
	if err := os.Rename(tmp.Name(), s.path(snap.Symbol)); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrPersistenceFailure, snap.Symbol, err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, symbol string) (*orderbook.Snapshot, error) {
	data, err := os.ReadFile(s.path(symbol))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistenceFailure, symbol, err)
	}
	return decodeSnapshot(symbol, data)
}

// decodeSnapshot unmarshals and structurally validates snapshot
// bytes, shared by every store implementation.
func decodeSnapshot(symbol string, data []byte) (*orderbook.Snapshot, error) {
	var snap orderbook.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", orderbook.ErrCorruptSnapshot, symbol, err)
	}
	if snap.Symbol != symbol {
		return nil, fmt.Errorf("%w: snapshot for %s holds symbol %s", orderbook.ErrCorruptSnapshot, symbol, snap.Symbol)
	}
	// RestoreOrderBook runs full validation; doing it here means a
	// corrupt snapshot is reported by Load, before any restore.
	if _, err := orderbook.RestoreOrderBook(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
