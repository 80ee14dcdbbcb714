package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures NewBreaker.
type BreakerConfig struct {
	// Name identifies the breaker in state change notifications.
	Name string
	// ConsecutiveFailures opens the breaker. Zero disables the breaker.
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before a probe is let through.
	Timeout time.Duration
	// MaxRequests is the number of probes allowed while half open.
	MaxRequests uint32
	// OnStateChange is notified of every transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// errServerFailure marks a 5xx response as a failure for the breaker. It never leaves
// this package.
var errServerFailure = errors.New("server failure")

// breakerTransport counts transport errors and 5xx responses as failures. While open it
// fails attempts with gobreaker.ErrOpenState without contacting the service.
type breakerTransport struct {
	breaker *gobreaker.CircuitBreaker[*http.Response]
	next    http.RoundTripper
}

// NewBreaker wraps next in a circuit breaker. A zero ConsecutiveFailures returns next unchanged.
func NewBreaker(next http.RoundTripper, cfg BreakerConfig) http.RoundTripper {
	if cfg.ConsecutiveFailures == 0 {
		return next
	}

	name := cfg.Name
	if name == "" {
		name = "partnercenter"
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: cfg.OnStateChange,
	}

	return &breakerTransport{
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		next:    next,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.breaker.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req) //nolint:bodyclose // returned to the caller
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerFailure
		}

		return resp, nil
	})

	if errors.Is(err, errServerFailure) {
		return resp, nil
	}

	return resp, err
}
