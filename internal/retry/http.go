package retry

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// HTTPOptions configures NewHTTPClient.
type HTTPOptions struct {
	// OnAttempt is called before every attempt with its zero-based index.
	OnAttempt func(attempt int)
	// OnRetry is called when a failed attempt will be retried, with the index of that attempt
	// and the wait before the next one.
	OnRetry func(attempt int, statusCode int, err error, wait time.Duration)
}

// NewHTTPClient returns a retryablehttp client for a single call. It shares the connection
// pool of base and applies policy: attempts stop at the first non-retryable outcome, or when
// the policy refuses another attempt, and the last response or transport error is returned
// unmodified.
//
// The returned client tracks attempts of one call and must not be reused for another.
func NewHTTPClient(base *http.Client, policy partner.RetryPolicy, opts HTTPOptions) *retryablehttp.Client {
	client := &retryablehttp.Client{
		HTTPClient:   base,
		RetryMax:     policy.MaxRetries(),
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	var (
		failed  = -1
		lastErr error
	)

	client.RequestLogHook = func(_ retryablehttp.Logger, _ *http.Request, attempt int) {
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt)
		}
	}

	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		failed++
		lastErr = err

		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		if !IsRetryable(resp, err) {
			return false, nil
		}

		return policy.ShouldRetry(failed + 1), nil
	}

	client.Backoff = func(_, _ time.Duration, attempt int, resp *http.Response) time.Duration {
		wait := policy.BackOffTime(attempt)

		if opts.OnRetry != nil {
			statusCode := 0
			if resp != nil {
				statusCode = resp.StatusCode
			}

			opts.OnRetry(attempt, statusCode, lastErr, wait)
		}

		return wait
	}

	return client
}
