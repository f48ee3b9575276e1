package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Query cache key pattern:
// - query:{operation}:{params...} - TTL from CACHE_TTL

const queryKeyPrefix = "query:"

// QueryStore is a query.Store backed by Redis, shared by every API node.
type QueryStore struct {
	client *goredis.Client
}

func NewQueryStore(client *goredis.Client) *QueryStore {
	return &QueryStore{client: client}
}

func (s *QueryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, queryKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *QueryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, queryKeyPrefix+key, value, ttl).Err()
}

// DeletePrefix removes the exact key and everything nested under it. Nested
// keys are found with SCAN, so this never blocks the server the way KEYS does.
func (s *QueryStore) DeletePrefix(ctx context.Context, prefix string) error {
	exact := queryKeyPrefix + prefix
	keysToDelete := []string{exact}

	iter := s.client.Scan(ctx, 0, exact+":*", 100).Iterator()
	for iter.Next(ctx) {
		keysToDelete = append(keysToDelete, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, keysToDelete...).Err()
}
