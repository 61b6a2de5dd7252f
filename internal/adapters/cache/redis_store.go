package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "facility:kv:"

// RedisFlatStore keeps flat-store values as plain Redis strings without expiry.
type RedisFlatStore struct {
	client *redis.Client
}

func NewRedisFlatStore(client *redis.Client) *RedisFlatStore {
	return &RedisFlatStore{client: client}
}

func (s *RedisFlatStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *RedisFlatStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, keyPrefix+key, value, 0).Err()
}
