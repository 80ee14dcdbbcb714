package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// Operation is a fallible call executed by Do.
type Operation[T any] func(ctx context.Context) (T, error)

// Option configures Do.
type Option func(*options)

type options struct {
	retryable func(error) bool
	notify    func(attempt int, err error, wait time.Duration)
}

// WithRetryable sets the predicate that decides whether an error may be retried. By default
// every error except context cancellation is retried.
func WithRetryable(retryable func(error) bool) Option {
	return func(o *options) {
		if retryable != nil {
			o.retryable = retryable
		}
	}
}

// WithNotify registers a callback invoked before every retry with the index of the attempt
// that failed, its error, and the wait that follows.
func WithNotify(notify func(attempt int, err error, wait time.Duration)) Option {
	return func(o *options) {
		o.notify = notify
	}
}

// IsTransient is the default retry predicate.
func IsTransient(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Do runs op up to policy.MaxRetries()+1 times, waiting policy.BackOffTime(n) after attempt n
// fails. A non-retryable error is returned immediately. When attempts run out, the last result
// and error are returned as they are.
func Do[T any](ctx context.Context, policy partner.RetryPolicy, op Operation[T], opts ...Option) (T, error) {
	cfg := &options{retryable: IsTransient}
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		last    T
		attempt int
	)

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(NewBackOff(policy)),
		backoff.WithMaxTries(uint(policy.MaxRetries()) + 1), //nolint:gosec // MaxRetries is never negative
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if cfg.notify != nil {
				cfg.notify(attempt-1, err, wait)
			}
		}),
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++

		result, opErr := op(ctx)
		last = result

		if opErr == nil {
			return struct{}{}, nil
		}

		if !cfg.retryable(opErr) {
			return struct{}{}, backoff.Permanent(opErr)
		}

		return struct{}{}, opErr
	}, retryOpts...)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}

		return last, err
	}

	return last, nil
}
