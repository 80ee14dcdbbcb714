// Package metrics records Prometheus metrics for client calls.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
)

// Refresh results.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshSkipped = "no_handlers"
)

// ErrMetricRegistrationFailed is returned when a collector cannot be registered.
var ErrMetricRegistrationFailed = errors.New("metric registration failed")

// Client holds the collectors of a partner client. A nil *Client records nothing.
type Client struct {
	requests  *prometheus.CounterVec
	attempts  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Collectors that are already
// registered (by another client sharing reg) are reused. A nil reg returns a nil *Client.
func New(reg prometheus.Registerer) (*Client, error) {
	if reg == nil {
		return nil, nil //nolint:nilnil // a nil client disables metrics
	}

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partner_client_requests_total",
			Help: "Total number of calls by method and outcome (error category, success or transport error)",
		},
		[]string{"method", "outcome"},
	)

	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partner_client_attempts_total",
			Help: "Total number of HTTP attempts, including retries",
		},
		[]string{"method"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partner_client_request_duration_seconds",
			Help:    "Call duration in seconds, including retries and back-off",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	refreshes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partner_client_credential_refresh_total",
			Help: "Total number of credential refreshes by result",
		},
		[]string{"result"},
	)

	var err error

	if requests, err = register(reg, requests); err != nil {
		return nil, fmt.Errorf("failed to register partner_client_requests_total: %w", err)
	}

	if attempts, err = register(reg, attempts); err != nil {
		return nil, fmt.Errorf("failed to register partner_client_attempts_total: %w", err)
	}

	if duration, err = register(reg, duration); err != nil {
		return nil, fmt.Errorf("failed to register partner_client_request_duration_seconds: %w", err)
	}

	if refreshes, err = register(reg, refreshes); err != nil {
		return nil, fmt.Errorf("failed to register partner_client_credential_refresh_total: %w", err)
	}

	return &Client{
		requests:  requests,
		attempts:  attempts,
		duration:  duration,
		refreshes: refreshes,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		existing, ok := already.ExistingCollector.(C)
		if ok {
			return existing, nil
		}
	}

	return collector, fmt.Errorf("%w: %w", ErrMetricRegistrationFailed, err)
}

// RecordCall records a finished call.
func (c *Client) RecordCall(method, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}

	c.requests.WithLabelValues(method, outcome).Inc()
	c.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordAttempt records one HTTP attempt.
func (c *Client) RecordAttempt(method string) {
	if c == nil {
		return
	}

	c.attempts.WithLabelValues(method).Inc()
}

// RecordRefresh records a credential refresh.
func (c *Client) RecordRefresh(result string) {
	if c == nil {
		return
	}

	c.refreshes.WithLabelValues(result).Inc()
}
