package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sony/gobreaker/v2"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	pchttp "github.com/fivetwenty-io/partnercenter/internal/http"
	"github.com/fivetwenty-io/partnercenter/internal/metrics"
	"github.com/fivetwenty-io/partnercenter/internal/transport"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// Client implements the partner.Client interface.
type Client struct {
	httpClient *pchttp.Client
	logger     partner.Logger

	// Resource clients
	customers     partner.CustomersClient
	subscriptions partner.SubscriptionsClient
	invoices      partner.InvoicesClient
}

// New creates a new client from config.
func New(ctx context.Context, config *partner.Config) (*Client, error) {
	if config == nil {
		config = &partner.Config{}
	}

	endpoint, err := normalizeEndpoint(config.Endpoint)
	if err != nil {
		return nil, err
	}

	credentials, err := createCredentials(config)
	if err != nil {
		return nil, err
	}

	policy, err := createRetryPolicy(config)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = partner.NopLogger()
	}

	collectors, err := metrics.New(config.MetricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	if config.RateLimit < 0 {
		return nil, constants.ErrInvalidRateLimit
	}

	opts := createHTTPClientOptions(config, logger)
	opts = append(opts,
		pchttp.WithRetryPolicy(policy),
		pchttp.WithMetrics(collectors),
	)

	httpClient := pchttp.NewClient(endpoint, credentials, opts...)

	client := newFromHTTPClient(httpClient, logger)

	logger.Debug("Client created", map[string]interface{}{
		"endpoint": endpoint,
		"retry":    fmt.Sprint(policy),
		"locale":   httpClient.RequestContext().Locale,
	})

	if credentials.Token() == "" {
		refreshErr := credentials.Refresh(ctx, httpClient.RequestContext())
		if credentials.IsExpired() {
			return nil, fmt.Errorf("authenticating: %w", errors.Join(constants.ErrNoCredentials, refreshErr))
		}
	}

	return client, nil
}

// NewWithHTTPClient creates a client on top of an existing HTTP client.
func NewWithHTTPClient(httpClient *pchttp.Client) *Client {
	return newFromHTTPClient(httpClient, partner.NopLogger())
}

func newFromHTTPClient(httpClient *pchttp.Client, logger partner.Logger) *Client {
	return &Client{
		httpClient:    httpClient,
		logger:        logger,
		customers:     NewCustomersClient(httpClient),
		subscriptions: NewSubscriptionsClient(httpClient),
		invoices:      NewInvoicesClient(httpClient),
	}
}

// normalizeEndpoint trims a trailing slash and adds https:// when no scheme is present.
func normalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = constants.DefaultEndpoint
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidEndpoint, endpoint)
	}

	return strings.TrimRight(endpoint, "/"), nil
}

// createCredentials builds the credentials from config. Supplied credentials are used as they
// are; they own their refresh chain, so config.RefreshHandlers must be empty.
func createCredentials(config *partner.Config) (*partner.Credentials, error) {
	if config.Credentials != nil {
		if len(config.RefreshHandlers) > 0 {
			return nil, constants.ErrHandlersWithCredentials
		}

		return config.Credentials, nil
	}

	if config.AccessToken == "" && len(config.RefreshHandlers) == 0 {
		return nil, constants.ErrNoCredentials
	}

	opts := []partner.CredentialsOption{partner.WithRefreshHandlers(config.RefreshHandlers...)}
	if config.ExpiryBuffer > 0 {
		opts = append(opts, partner.WithExpiryBuffer(config.ExpiryBuffer))
	}

	switch {
	case config.AccessToken == "":
		// Fetched by New before the first call.
		return partner.NewCredentials("", config.TokenExpiresAt, opts...), nil
	case config.TokenExpiresAt.IsZero():
		return partner.NewStaticCredentials(config.AccessToken, opts...), nil
	default:
		return partner.NewCredentials(config.AccessToken, config.TokenExpiresAt, opts...), nil
	}
}

// createRetryPolicy returns the configured policy, or the default exponential policy.
func createRetryPolicy(config *partner.Config) (partner.RetryPolicy, error) {
	if config.RetryPolicy != nil {
		return config.RetryPolicy, nil
	}

	if config.RetryKind == "" && config.RetryMax == 0 && config.RetryBackOff == 0 {
		return partner.ExponentialBackOff(partner.DefaultMaxRetries), nil
	}

	backOff := config.RetryBackOff
	if backOff == 0 {
		backOff = constants.DefaultLinearBackOff
	}

	policy, err := partner.PolicyFromConfig(config.RetryKind, backOff, config.RetryMax)
	if err != nil {
		return nil, fmt.Errorf("creating retry policy: %w", err)
	}

	return policy, nil
}

// createHTTPClientOptions creates HTTP client options from config.
func createHTTPClientOptions(config *partner.Config, logger partner.Logger) []pchttp.Option {
	locale := config.Locale
	if locale == "" {
		locale = partner.DefaultLocale
	}

	breakerTimeout := config.BreakerTimeout
	if breakerTimeout == 0 {
		breakerTimeout = constants.CircuitBreakerTimeout
	}

	roundTripper := transport.New(config.Transport, transport.Config{
		RateLimit: config.RateLimit,
		RateBurst: config.RateBurst,
		Breaker: transport.BreakerConfig{
			ConsecutiveFailures: config.BreakerFailures,
			Timeout:             breakerTimeout,
			MaxRequests:         constants.CircuitBreakerHalfOpenRequests,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed", map[string]interface{}{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
			},
		},
	})

	clientName := config.PartnerCenterClient
	if clientName == "" {
		clientName = constants.DefaultClientName
	}

	opts := []pchttp.Option{
		pchttp.WithHTTPClient(transport.NewHTTPClient(roundTripper, config.HTTPTimeout)),
		pchttp.WithLogger(logger),
		pchttp.WithDebug(config.Debug),
		pchttp.WithClientName(clientName),
		pchttp.WithRequestContext(partner.NewRequestContext(locale)),
		pchttp.WithInterceptors(config.Interceptors),
	}

	if config.Codec != nil {
		opts = append(opts, pchttp.WithCodec(config.Codec))
	}

	if config.TracerProvider != nil {
		opts = append(opts, pchttp.WithTracerProvider(config.TracerProvider))
	}

	return opts
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *pchttp.Client {
	return c.httpClient
}

// Customers implements partner.Client.
func (c *Client) Customers() partner.CustomersClient {
	return c.customers
}

// Subscriptions implements partner.Client.
func (c *Client) Subscriptions() partner.SubscriptionsClient {
	return c.subscriptions
}

// Invoices implements partner.Client.
func (c *Client) Invoices() partner.InvoicesClient {
	return c.invoices
}

// Credentials implements partner.Client.
func (c *Client) Credentials() *partner.Credentials {
	return c.httpClient.Credentials()
}

// RequestContext implements partner.Client.
func (c *Client) RequestContext() partner.RequestContext {
	return c.httpClient.RequestContext()
}

// WithRequestContext implements partner.Client.
func (c *Client) WithRequestContext(requestContext partner.RequestContext) partner.Client {
	return c.WithContext(requestContext)
}

// WithContext is WithRequestContext returning the concrete type.
func (c *Client) WithContext(requestContext partner.RequestContext) *Client {
	return newFromHTTPClient(c.httpClient.WithContext(requestContext), c.logger)
}
