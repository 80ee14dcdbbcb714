package refresh

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
)

// exerciseStore runs the behaviour every TokenStore shares.
func exerciseStore(t *testing.T, store TokenStore) {
	t.Helper()

	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	require.ErrorIs(t, err, constants.ErrTokenNotFound)

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, store.Save(ctx, "tenant:one", &Token{AccessToken: "one", ExpiresAt: expiry}))
	require.NoError(t, store.Save(ctx, "tenant:two", &Token{AccessToken: "two"}))

	token, err := store.Load(ctx, "tenant:one")
	require.NoError(t, err)
	assert.Equal(t, "one", token.AccessToken)
	assert.True(t, expiry.Equal(token.ExpiresAt))

	token, err = store.Load(ctx, "tenant:two")
	require.NoError(t, err)
	assert.Equal(t, "two", token.AccessToken)
	assert.True(t, token.ExpiresAt.IsZero())

	require.NoError(t, store.Delete(ctx, "tenant:one"))
	require.NoError(t, store.Delete(ctx, "tenant:one"))

	_, err = store.Load(ctx, "tenant:one")
	require.ErrorIs(t, err, constants.ErrTokenNotFound)
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, "")
	exerciseStore(t, store)

	t.Run("ttl follows expiry", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, store.Save(ctx, "ttl", &Token{AccessToken: "abc", ExpiresAt: time.Now().Add(time.Minute)}))

		ttl := server.TTL(constants.TokenCacheKeyPrefix + "ttl")
		assert.Greater(t, ttl, 50*time.Second)
		assert.LessOrEqual(t, ttl, time.Minute)

		server.FastForward(2 * time.Minute)

		_, err := store.Load(ctx, "ttl")
		require.ErrorIs(t, err, constants.ErrTokenNotFound)
	})

	t.Run("expired tokens are skipped", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, store.Save(ctx, "old", &Token{AccessToken: "abc", ExpiresAt: time.Now().Add(-time.Minute)}))
		assert.False(t, server.Exists(constants.TokenCacheKeyPrefix+"old"))
	})

	t.Run("custom prefix", func(t *testing.T) {
		prefixed := NewRedisStore(client, "custom:")
		require.NoError(t, prefixed.Save(context.Background(), "key", &Token{AccessToken: "abc"}))
		assert.True(t, server.Exists("custom:key"))
	})

	t.Run("corrupt entry", func(t *testing.T) {
		require.NoError(t, server.Set(constants.TokenCacheKeyPrefix+"corrupt", "{not json"))

		_, err := store.Load(context.Background(), "corrupt")
		require.Error(t, err)
		assert.NotErrorIs(t, err, constants.ErrTokenNotFound)
	})
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", constants.TokenFileName)
	store := NewFileStore(path)

	exerciseStore(t, store)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())
	assert.Equal(t, path, store.Path())

	t.Run("shared between instances", func(t *testing.T) {
		ctx := context.Background()
		other := NewFileStore(path)

		require.NoError(t, store.Save(ctx, "shared", &Token{AccessToken: "abc"}))

		token, err := other.Load(ctx, "shared")
		require.NoError(t, err)
		assert.Equal(t, "abc", token.AccessToken)
	})

	t.Run("concurrent writers keep every key", func(t *testing.T) {
		ctx := context.Background()

		var wg sync.WaitGroup

		for _, key := range []string{"a", "b", "c", "d", "e"} {
			wg.Add(1)

			go func() {
				defer wg.Done()

				assert.NoError(t, NewFileStore(path).Save(ctx, key, &Token{AccessToken: key}))
			}()
		}

		wg.Wait()

		for _, key := range []string{"a", "b", "c", "d", "e"} {
			token, err := store.Load(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key, token.AccessToken)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		corrupt := filepath.Join(t.TempDir(), "corrupt.yaml")
		require.NoError(t, os.WriteFile(corrupt, []byte("tokens: [unclosed"), constants.ConfigFilePerm))

		_, err := NewFileStore(corrupt).Load(context.Background(), "any")
		require.Error(t, err)
	})
}

func TestNATSStore(t *testing.T) {
	t.Parallel()

	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}

	conn, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	js, err := jetstream.New(conn)
	require.NoError(t, err)

	ctx := context.Background()
	bucket := "partnercenter-test-" + time.Now().Format("150405")

	store, err := OpenNATSStore(ctx, js, bucket, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = js.DeleteKeyValue(ctx, bucket) })

	exerciseStore(t, store)
}

func TestNATSKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"tenant":                      "tenant",
		"partnercenter:token:tenant":  "partnercenter_token_tenant",
		"app-id/tenant.example.com":   "app-id/tenant.example.com",
		"space and *wildcards* > all": "space_and__wildcards____all",
	}

	for in, want := range tests {
		assert.Equal(t, want, natsKey(in), in)
	}
}
