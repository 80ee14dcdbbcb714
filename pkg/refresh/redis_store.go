package refresh

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
)

// RedisStore keeps tokens in Redis with a TTL matching their expiry.
//
// Usage:
//
//	rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{"localhost:6379"}})
//	store := refresh.NewRedisStore(rdb, "")
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store using client. An empty prefix uses
// constants.TokenCacheKeyPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = constants.TokenCacheKeyPrefix
	}

	return &RedisStore{client: client, prefix: prefix}
}

// Load implements TokenStore.
func (s *RedisStore) Load(ctx context.Context, key string) (*Token, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, constants.ErrTokenNotFound
		}

		return nil, fmt.Errorf("loading token from redis: %w", err)
	}

	var token Token

	err = json.Unmarshal(data, &token)
	if err != nil {
		return nil, fmt.Errorf("decoding token from redis: %w", err)
	}

	return &token, nil
}

// Save implements TokenStore. Expired tokens are not stored.
func (s *RedisStore) Save(ctx context.Context, key string, token *Token) error {
	ttl := token.ttl()
	if ttl < 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	err = s.client.Set(ctx, s.prefix+key, data, ttl).Err()
	if err != nil {
		return fmt.Errorf("saving token to redis: %w", err)
	}

	return nil
}

// Delete implements TokenStore.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	if err != nil {
		return fmt.Errorf("deleting token from redis: %w", err)
	}

	return nil
}
