package partner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Retry policy kinds accepted by PolicyFromConfig.
const (
	RetryPolicyLinear      = "linear"
	RetryPolicyExponential = "exponential"
)

// exponentialUnit is the base interval of the exponential policy.
const exponentialUnit = 500 * time.Millisecond

// maxExponent bounds the exponent so the computed duration cannot overflow.
const maxExponent = 32

// Static errors for err113 compliance.
var (
	ErrUnknownRetryPolicy = errors.New("unknown retry policy")
	ErrNegativeMaxRetries = errors.New("max retries must not be negative")
)

// RetryPolicy decides whether another attempt may be made and how long to wait before it.
// The attempt argument is the zero-based index of an attempt: 0 is the first attempt.
type RetryPolicy interface {
	// ShouldRetry reports whether attempt may be made.
	ShouldRetry(attempt int) bool
	// BackOffTime is the delay inserted after attempt fails.
	BackOffTime(attempt int) time.Duration
	// MaxRetries is the number of attempts allowed after the first one.
	MaxRetries() int
}

// LinearRetryPolicy waits the same amount of time before every retry.
type LinearRetryPolicy struct {
	backOff    time.Duration
	maxRetries int
}

// Linear returns a policy that waits backOff between attempts and allows maxRetries retries.
func Linear(backOff time.Duration, maxRetries int) *LinearRetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}

	if backOff < 0 {
		backOff = 0
	}

	return &LinearRetryPolicy{backOff: backOff, maxRetries: maxRetries}
}

// ShouldRetry implements RetryPolicy.
func (p *LinearRetryPolicy) ShouldRetry(attempt int) bool {
	return attempt <= p.maxRetries
}

// BackOffTime implements RetryPolicy.
func (p *LinearRetryPolicy) BackOffTime(int) time.Duration {
	return p.backOff
}

// MaxRetries implements RetryPolicy.
func (p *LinearRetryPolicy) MaxRetries() int {
	return p.maxRetries
}

// String describes the policy.
func (p *LinearRetryPolicy) String() string {
	return fmt.Sprintf("linear(backoff=%s, max_retries=%d)", p.backOff, p.maxRetries)
}

// ExponentialBackOffPolicy waits (2^n - 1) * 0.5s after attempt n:
// 0s, 0.5s, 1.5s, 3.5s, 7.5s, 15.5s, ...
type ExponentialBackOffPolicy struct {
	maxRetries int
}

// ExponentialBackOff returns an exponential policy allowing maxRetries retries.
func ExponentialBackOff(maxRetries int) *ExponentialBackOffPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &ExponentialBackOffPolicy{maxRetries: maxRetries}
}

// ShouldRetry implements RetryPolicy.
func (p *ExponentialBackOffPolicy) ShouldRetry(attempt int) bool {
	return attempt <= p.maxRetries
}

// BackOffTime implements RetryPolicy.
func (p *ExponentialBackOffPolicy) BackOffTime(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	if attempt > maxExponent {
		attempt = maxExponent
	}

	return time.Duration((int64(1)<<attempt)-1) * exponentialUnit
}

// MaxRetries implements RetryPolicy.
func (p *ExponentialBackOffPolicy) MaxRetries() int {
	return p.maxRetries
}

// String describes the policy.
func (p *ExponentialBackOffPolicy) String() string {
	return fmt.Sprintf("exponential(max_retries=%d)", p.maxRetries)
}

// PolicyFromConfig builds a policy from its configuration name. backOff is only used by the
// linear policy. An empty kind selects the exponential policy.
func PolicyFromConfig(kind string, backOff time.Duration, maxRetries int) (RetryPolicy, error) {
	if maxRetries < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeMaxRetries, maxRetries)
	}

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case RetryPolicyLinear:
		return Linear(backOff, maxRetries), nil
	case RetryPolicyExponential, "":
		return ExponentialBackOff(maxRetries), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRetryPolicy, kind)
	}
}
