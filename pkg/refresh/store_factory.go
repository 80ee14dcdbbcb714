package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
)

// StoreType represents the type of token store backend.
type StoreType string

const (
	// StoreTypeRedis keeps tokens in Redis.
	StoreTypeRedis StoreType = "redis"

	// StoreTypeNATS keeps tokens in a NATS JetStream key-value bucket.
	StoreTypeNATS StoreType = "nats"

	// StoreTypeFile keeps tokens in a locked local file.
	StoreTypeFile StoreType = "file"

	// StoreTypeNone disables sharing.
	StoreTypeNone StoreType = "none"
)

// Static errors for err113 compliance.
var (
	ErrRedisAddrRequired    = errors.New("redis address required for redis token store")
	ErrNATSURLRequired      = errors.New("NATS URL required for NATS token store")
	ErrFilePathRequired     = errors.New("file path required for file token store")
	ErrUnsupportedStoreType = errors.New("unsupported token store type")
)

// DefaultNATSBucket is the bucket used when StoreConfig.NATSBucket is empty.
const DefaultNATSBucket = "partnercenter-tokens"

// StoreConfig configures a token store backend.
type StoreConfig struct {
	Type StoreType

	RedisAddr   string
	RedisPrefix string

	NATSURL    string
	NATSBucket string
	NATSTTL    time.Duration

	FilePath string
}

// CloseFunc releases the connections held by a store.
type CloseFunc func() error

func noClose() error { return nil }

// NewStoreFromConfig creates a token store from configuration. The returned CloseFunc must be
// called once the store is no longer used.
func NewStoreFromConfig(ctx context.Context, config *StoreConfig) (TokenStore, CloseFunc, error) {
	if config == nil {
		return NoopStore{}, noClose, nil
	}

	switch config.Type {
	case StoreTypeRedis:
		if config.RedisAddr == "" {
			return nil, nil, ErrRedisAddrRequired
		}

		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{config.RedisAddr},
		})

		return NewRedisStore(client, config.RedisPrefix), client.Close, nil

	case StoreTypeNATS:
		if config.NATSURL == "" {
			return nil, nil, ErrNATSURLRequired
		}

		return openNATS(ctx, config)

	case StoreTypeFile:
		if config.FilePath == "" {
			return nil, nil, ErrFilePathRequired
		}

		return NewFileStore(config.FilePath), noClose, nil

	case StoreTypeNone, "":
		return NoopStore{}, noClose, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedStoreType, config.Type)
	}
}

func openNATS(ctx context.Context, config *StoreConfig) (TokenStore, CloseFunc, error) {
	conn, err := nats.Connect(config.NATSURL, nats.Name(constants.DefaultClientName))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()

		return nil, nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	bucket := config.NATSBucket
	if bucket == "" {
		bucket = DefaultNATSBucket
	}

	store, err := OpenNATSStore(ctx, js, bucket, config.NATSTTL)
	if err != nil {
		conn.Close()

		return nil, nil, err
	}

	return store, func() error {
		return conn.Drain()
	}, nil
}

// NoopStore never holds a token.
type NoopStore struct{}

// Load always returns constants.ErrTokenNotFound.
func (NoopStore) Load(context.Context, string) (*Token, error) {
	return nil, constants.ErrTokenNotFound
}

// Save does nothing.
func (NoopStore) Save(context.Context, string, *Token) error { return nil }

// Delete does nothing.
func (NoopStore) Delete(context.Context, string) error { return nil }

// StoreChain implements a chain of token stores (L1, L2, etc.).
type StoreChain struct {
	stores []TokenStore
}

// NewStoreChain creates a new store chain. Earlier stores are consulted first.
func NewStoreChain(stores ...TokenStore) *StoreChain {
	return &StoreChain{stores: stores}
}

// Load returns the first valid token found and copies it into the earlier stores.
func (c *StoreChain) Load(ctx context.Context, key string) (*Token, error) {
	var errs []error

	for i, store := range c.stores {
		token, err := store.Load(ctx, key)
		if err != nil {
			if !errors.Is(err, constants.ErrTokenNotFound) {
				errs = append(errs, err)
			}

			continue
		}

		if !token.Valid(0) {
			continue
		}

		for j := range i {
			_ = c.stores[j].Save(ctx, key, token)
		}

		return token, nil
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return nil, constants.ErrTokenNotFound
}

// Save stores the token in all stores.
func (c *StoreChain) Save(ctx context.Context, key string, token *Token) error {
	var errs []error

	for _, store := range c.stores {
		err := store.Save(ctx, key, token)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Delete removes the token from all stores.
func (c *StoreChain) Delete(ctx context.Context, key string) error {
	var errs []error

	for _, store := range c.stores {
		err := store.Delete(ctx, key)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
