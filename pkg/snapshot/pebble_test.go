package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

func newTestPebbleStore(t *testing.T) *PebbleStore {
	t.Helper()
	store, err := NewPebbleStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPebbleStoreRoundtrip(t *testing.T) {
	store := newTestPebbleStore(t)

	snap := testSnapshot(t, "BTCUSD")
	require.NoError(t, store.Save(context.Background(), snap))

	loaded, err := store.Load(context.Background(), "BTCUSD")
	require.NoError(t, err)

	assert.Equal(t, snap.Symbol, loaded.Symbol)
	assert.Equal(t, snap.Seq, loaded.Seq)
	assertSameOrders(t, snap.Bids, loaded.Bids)
	assertSameOrders(t, snap.Asks, loaded.Asks)
}

func TestPebbleStoreSymbolsAreIndependent(t *testing.T) {
	store := newTestPebbleStore(t)

	require.NoError(t, store.Save(context.Background(), testSnapshot(t, "BTCUSD")))
	require.NoError(t, store.Save(context.Background(), testSnapshot(t, "ETHUSD")))

	btc, err := store.Load(context.Background(), "BTCUSD")
	require.NoError(t, err)
	eth, err := store.Load(context.Background(), "ETHUSD")
	require.NoError(t, err)

	assert.Equal(t, "BTCUSD", btc.Symbol)
	assert.Equal(t, "ETHUSD", eth.Symbol)
}

func TestPebbleStoreNotFound(t *testing.T) {
	store := newTestPebbleStore(t)

	_, err := store.Load(context.Background(), "MISSING")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestPebbleStoreCorruptData(t *testing.T) {
	store := newTestPebbleStore(t)

	require.NoError(t, store.db.Set(bookKey("BAD"), []byte("not json"), nil))

	_, err := store.Load(context.Background(), "BAD")
	assert.ErrorIs(t, err, orderbook.ErrCorruptSnapshot)
}
