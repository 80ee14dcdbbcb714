// Package transport provides http.RoundTripper middleware used under the retry loop.
package transport

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a request could not obtain a rate limit token.
var ErrRateLimited = errors.New("rate limit exceeded")

// rateLimitTransport waits for a token before every attempt.
type rateLimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimit wraps next so that at most requestsPerSecond attempts are sent, with bursts of
// up to burst. A non-positive rate returns next unchanged.
func NewRateLimit(next http.RoundTripper, requestsPerSecond float64, burst int) http.RoundTripper {
	if requestsPerSecond <= 0 {
		return next
	}

	if burst <= 0 {
		burst = 1
	}

	return &rateLimitTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	err := t.limiter.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}

		return nil, errors.Join(ErrRateLimited, err)
	}

	return t.next.RoundTrip(req)
}
