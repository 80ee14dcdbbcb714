package refresh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/internal/retry"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// defaultMaxRetries is the number of token endpoint retries when no policy is configured.
const defaultMaxRetries = 2

// Option configures the refresh handlers of this package.
type Option func(*options)

type options struct {
	policy     partner.RetryPolicy
	logger     partner.Logger
	httpClient *http.Client
}

func newOptions(opts []Option) *options {
	o := &options{
		policy: partner.ExponentialBackOff(defaultMaxRetries),
		logger: partner.NopLogger(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithRetryPolicy sets the policy used to retry token endpoint failures.
func WithRetryPolicy(policy partner.RetryPolicy) Option {
	return func(o *options) {
		if policy != nil {
			o.policy = policy
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger partner.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHTTPClient sets the HTTP client used to reach the token endpoint.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// fetchFunc retrieves a fresh OAuth2 token.
type fetchFunc func(ctx context.Context) (*oauth2.Token, error)

// FromTokenSource returns a refresh handler installing tokens from source. Transient token
// endpoint failures are retried.
//
// The handler runs when the credentials consider the token expired, which happens ExpiryBuffer
// before the real expiry. A caching source must therefore hand out a new token at least that
// early, for example oauth2.ReuseTokenSourceWithExpiry with the same buffer.
func FromTokenSource(source oauth2.TokenSource, opts ...Option) partner.RefreshFunc {
	if source == nil {
		return failing(constants.ErrNoTokenSource)
	}

	return fromFetch(func(context.Context) (*oauth2.Token, error) {
		return source.Token()
	}, newOptions(opts))
}

// ClientCredentials returns a refresh handler fetching a new token from the client credentials
// flow on every refresh.
func ClientCredentials(config *clientcredentials.Config, opts ...Option) partner.RefreshFunc {
	if config == nil {
		return failing(constants.ErrNoTokenSource)
	}

	o := newOptions(opts)

	return fromFetch(func(ctx context.Context) (*oauth2.Token, error) {
		if o.httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
		}

		return config.Token(ctx)
	}, o)
}

func fromFetch(fetch fetchFunc, o *options) partner.RefreshFunc {
	return func(ctx context.Context, creds *partner.Credentials, requestContext partner.RequestContext) error {
		token, err := retry.Do(ctx, o.policy, retry.Operation[*oauth2.Token](fetch),
			retry.WithRetryable(isTransientTokenError),
			retry.WithNotify(func(attempt int, err error, wait time.Duration) {
				o.logger.Debug("Retrying token request", map[string]interface{}{
					"attempt":    attempt,
					"error":      err.Error(),
					"wait":       wait.String(),
					"request_id": requestContext.RequestID.String(),
				})
			}),
		)
		if err != nil {
			return fmt.Errorf("fetching token: %w", err)
		}

		if token == nil || token.AccessToken == "" {
			return constants.ErrEmptyTokenSource
		}

		err = install(creds, &Token{AccessToken: token.AccessToken, ExpiresAt: token.Expiry})
		if err != nil {
			return err
		}

		o.logger.Debug("Installed new access token", map[string]interface{}{
			"expires_at": token.Expiry,
			"request_id": requestContext.RequestID.String(),
		})

		return nil
	}
}

// isTransientTokenError retries token endpoint failures that a later attempt may not see.
// Rejected credentials are final.
func isTransientTokenError(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response == nil {
			return false
		}

		return retry.IsRetryableStatus(retrieveErr.Response.StatusCode)
	}

	return retry.IsTransient(err)
}

func failing(err error) partner.RefreshFunc {
	return func(context.Context, *partner.Credentials, partner.RequestContext) error {
		return err
	}
}
