package transport

import (
	"net/http"
	"time"
)

// Config selects the middleware applied by New.
type Config struct {
	RateLimit float64
	RateBurst int
	Breaker   BreakerConfig
}

// New returns base wrapped with the configured middleware. Every attempt waits for a rate
// limit token before it reaches the breaker.
func New(base http.RoundTripper, cfg Config) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	rt := NewBreaker(base, cfg.Breaker)

	return NewRateLimit(rt, cfg.RateLimit, cfg.RateBurst)
}

// NewHTTPClient returns an http.Client using rt with a per-attempt timeout.
func NewHTTPClient(rt http.RoundTripper, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: rt,
		Timeout:   timeout,
	}
}
