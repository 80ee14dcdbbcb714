package retry

import (
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// policyBackOff adapts a partner.RetryPolicy to backoff.BackOff. Each call to NextBackOff
// corresponds to one failed attempt.
type policyBackOff struct {
	policy  partner.RetryPolicy
	attempt int
}

// NewBackOff returns a backoff.BackOff that waits policy.BackOffTime(n) after attempt n fails
// and stops once the policy refuses the next attempt.
func NewBackOff(policy partner.RetryPolicy) backoff.BackOff {
	return &policyBackOff{policy: policy}
}

// NextBackOff implements backoff.BackOff.
func (b *policyBackOff) NextBackOff() time.Duration {
	failed := b.attempt
	if !b.policy.ShouldRetry(failed + 1) {
		return backoff.Stop
	}

	b.attempt++

	return b.policy.BackOffTime(failed)
}

// Reset implements backoff.BackOff.
func (b *policyBackOff) Reset() {
	b.attempt = 0
}
