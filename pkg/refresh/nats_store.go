package refresh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
)

// NATSStore keeps tokens in a NATS JetStream key-value bucket. Expiry is checked on load since
// bucket TTLs apply to the whole bucket.
type NATSStore struct {
	kv jetstream.KeyValue
}

// NewNATSStore creates a store on an existing bucket.
func NewNATSStore(kv jetstream.KeyValue) *NATSStore {
	return &NATSStore{kv: kv}
}

// OpenNATSStore creates or updates the bucket and returns a store on it. ttl bounds how long
// any token is kept; zero keeps tokens until they are replaced.
func OpenNATSStore(ctx context.Context, js jetstream.JetStream, bucket string, ttl time.Duration) (*NATSStore, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "partner center access tokens",
		TTL:         ttl,
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("opening token bucket %q: %w", bucket, err)
	}

	return NewNATSStore(kv), nil
}

// Load implements TokenStore.
func (s *NATSStore) Load(ctx context.Context, key string) (*Token, error) {
	entry, err := s.kv.Get(ctx, natsKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return nil, constants.ErrTokenNotFound
		}

		return nil, fmt.Errorf("loading token from nats: %w", err)
	}

	var token Token

	err = json.Unmarshal(entry.Value(), &token)
	if err != nil {
		return nil, fmt.Errorf("decoding token from nats: %w", err)
	}

	if token.ttl() < 0 {
		return nil, constants.ErrTokenNotFound
	}

	return &token, nil
}

// Save implements TokenStore. Expired tokens are not stored.
func (s *NATSStore) Save(ctx context.Context, key string, token *Token) error {
	if token.ttl() < 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	_, err = s.kv.Put(ctx, natsKey(key), data)
	if err != nil {
		return fmt.Errorf("saving token to nats: %w", err)
	}

	return nil
}

// Delete implements TokenStore.
func (s *NATSStore) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, natsKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting token from nats: %w", err)
	}

	return nil
}

// natsKey maps key onto the characters allowed in bucket keys.
func natsKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '/', r == '=', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}
