// Package retry executes fallible calls under a partner.RetryPolicy.
//
// HTTP calls go through a per-call go-retryablehttp client; other calls (token endpoints,
// shared caches) go through Do, which is built on cenkalti/backoff.
package retry

import (
	"context"
	"errors"
	"net/http"
)

// IsRetryableStatus reports whether a response with the given status may be retried.
// Successful responses and the client errors 400, 401, 403, 404 and 409 are final; every
// other status is retried.
func IsRetryableStatus(statusCode int) bool {
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return false
	}

	switch statusCode {
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusConflict:
		return false
	default:
		return true
	}
}

// IsRetryable classifies the outcome of one attempt. Transport errors are retried unless
// they come from a cancelled context.
func IsRetryable(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	if resp == nil {
		return true
	}

	return IsRetryableStatus(resp.StatusCode)
}
