package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// RedisStore keeps snapshots in redis for warm-standby recovery. It
// is not a durability primary; pair it with FileStore or PebbleStore
// when the snapshot must survive a redis restart.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "matching:snapshot:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) key(symbol string) string {
	return s.keyPrefix + symbol
}

func (s *RedisStore) Save(ctx context.Context, snap *orderbook.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistenceFailure, snap.Symbol, err)
	}
	if err := s.client.Set(ctx, s.key(snap.Symbol), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrPersistenceFailure, snap.Symbol, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, symbol string) (*orderbook.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrPersistenceFailure, symbol, err)
	}
	return decodeSnapshot(symbol, data)
}
