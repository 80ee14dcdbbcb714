package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/partnercenter/internal/transport"
)

func get(t *testing.T, client *http.Client, url string) (*http.Response, error) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)

	return client.Do(req)
}

func TestNew_WithoutMiddlewareReturnsBase(t *testing.T) {
	t.Parallel()

	base := http.DefaultTransport
	assert.Same(t, base, transport.New(base, transport.Config{}))
}

func TestNewRateLimit_SpacesAttempts(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := transport.NewHTTPClient(transport.NewRateLimit(http.DefaultTransport, 20, 1), time.Second)

	start := time.Now()

	for range 3 {
		resp, err := get(t, client, server.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	// Two of the three requests wait for a token at 20 per second.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestNewRateLimit_ContextCancelled(t *testing.T) {
	t.Parallel()

	rt := transport.NewRateLimit(http.DefaultTransport, 0.001, 1)
	client := &http.Client{Transport: rt}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err = client.Do(req)
	if resp != nil {
		_ = resp.Body.Close()
	}

	require.Error(t, err)
}

func TestNewBreaker_OpensAfterConsecutiveServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var transitions []gobreaker.State

	rt := transport.NewBreaker(http.DefaultTransport, transport.BreakerConfig{
		ConsecutiveFailures: 2,
		Timeout:             time.Minute,
		OnStateChange: func(_ string, _, to gobreaker.State) {
			transitions = append(transitions, to)
		},
	})
	client := &http.Client{Transport: rt}

	for range 2 {
		resp, err := get(t, client, server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp, err := get(t, client, server.URL)
	if resp != nil {
		_ = resp.Body.Close()
	}

	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
}

func TestNewBreaker_ClientErrorsDoNotCount(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := &http.Client{Transport: transport.NewBreaker(http.DefaultTransport, transport.BreakerConfig{
		ConsecutiveFailures: 1,
		Timeout:             time.Minute,
	})}

	for range 3 {
		resp, err := get(t, client, server.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, int32(3), calls.Load())
}
