package partner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultExpiryBuffer is subtracted from a token's lifetime so that a token is replaced
// before the service starts rejecting it.
const DefaultExpiryBuffer = 30 * time.Second

// refreshKey is the singleflight key used for credential refreshes.
const refreshKey = "refresh"

// Static errors for err113 compliance.
var (
	ErrNoRefreshHandlers = errors.New("no credential refresh handlers registered")
	ErrRefreshFailed     = errors.New("credential refresh handler failed")
)

// NoExpiry is the expiry used for tokens that never expire.
var NoExpiry = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// RefreshFunc installs fresh credentials. It is expected to call Credentials.Update;
// a returned error is logged but the outcome is decided by re-checking expiry.
type RefreshFunc func(ctx context.Context, creds *Credentials, requestContext RequestContext) error

// Credentials holds the bearer token used to authenticate calls together with the
// ordered list of handlers invoked when the token has expired.
//
// Credentials is safe for concurrent use. Concurrent refreshes are coalesced so that the
// handler chain runs once for all calls that observed the same expired token.
type Credentials struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	buffer    time.Duration
	now       func() time.Time

	handlersMu sync.RWMutex
	handlers   []RefreshFunc

	group singleflight.Group
}

// CredentialsOption configures Credentials.
type CredentialsOption func(*Credentials)

// WithExpiryBuffer sets how long before ExpiresAt the token is already treated as expired.
func WithExpiryBuffer(buffer time.Duration) CredentialsOption {
	return func(c *Credentials) {
		if buffer >= 0 {
			c.buffer = buffer
		}
	}
}

// WithClock replaces the time source, mostly useful in tests.
func WithClock(now func() time.Time) CredentialsOption {
	return func(c *Credentials) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRefreshHandlers registers refresh handlers at construction time.
func WithRefreshHandlers(handlers ...RefreshFunc) CredentialsOption {
	return func(c *Credentials) {
		c.handlers = append(c.handlers, handlers...)
	}
}

// NewCredentials creates credentials for the given token and expiry.
func NewCredentials(token string, expiresAt time.Time, opts ...CredentialsOption) *Credentials {
	creds := &Credentials{
		token:     token,
		expiresAt: expiresAt,
		buffer:    DefaultExpiryBuffer,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(creds)
	}

	return creds
}

// NewStaticCredentials creates credentials for a token that never expires.
func NewStaticCredentials(token string, opts ...CredentialsOption) *Credentials {
	return NewCredentials(token, NoExpiry, opts...)
}

// Token returns the current bearer token.
func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

// ExpiresAt returns the current token expiry.
func (c *Credentials) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.expiresAt
}

// ExpiryBuffer returns the configured expiry buffer.
func (c *Credentials) ExpiryBuffer() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.buffer
}

// IsExpired reports whether now + ExpiryBuffer >= ExpiresAt.
func (c *Credentials) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return !c.now().Add(c.buffer).Before(c.expiresAt)
}

// Update installs a new token and expiry.
func (c *Credentials) Update(token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.expiresAt = expiresAt
}

// OnRefresh appends handlers to the refresh chain. Handlers run in registration order.
func (c *Credentials) OnRefresh(handlers ...RefreshFunc) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	c.handlers = append(c.handlers, handlers...)
}

// RefreshHandlers returns a copy of the registered refresh chain.
func (c *Credentials) RefreshHandlers() []RefreshFunc {
	c.handlersMu.RLock()
	defer c.handlersMu.RUnlock()

	handlers := make([]RefreshFunc, len(c.handlers))
	copy(handlers, c.handlers)

	return handlers
}

// HasRefreshHandlers reports whether at least one handler is registered.
func (c *Credentials) HasRefreshHandlers() bool {
	c.handlersMu.RLock()
	defer c.handlersMu.RUnlock()

	return len(c.handlers) > 0
}

// Refresh runs every registered handler once, in order, passing the credentials and the
// request context. Handler errors do not stop the chain; they are joined and returned so the
// caller can log them. Callers decide success by checking IsExpired afterwards.
//
// Calls that arrive while a refresh is running wait for it instead of starting another one.
// If the token was already replaced by the time the chain would start, no handler runs.
// A waiter whose own ctx is still live does not inherit the cancellation of the call that ran
// the chain: it runs the chain again with its own ctx and request context.
func (c *Credentials) Refresh(ctx context.Context, requestContext RequestContext) error {
	handlers := c.RefreshHandlers()
	if len(handlers) == 0 {
		return ErrNoRefreshHandlers
	}

	for {
		var led bool

		_, err, _ := c.group.Do(refreshKey, func() (interface{}, error) {
			led = true

			return nil, c.runHandlers(ctx, handlers, requestContext)
		})

		if led || err == nil || ctx.Err() != nil || !isContextError(err) {
			return err
		}
	}
}

func (c *Credentials) runHandlers(ctx context.Context, handlers []RefreshFunc, requestContext RequestContext) error {
	if !c.IsExpired() {
		return nil
	}

	var errs []error

	for index, handler := range handlers {
		err := handler(ctx, c, requestContext)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: handler %d: %w", ErrRefreshFailed, index, err))
		}
	}

	return errors.Join(errs...)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
