package partner

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// CustomersClient manages the partner's customers. Customer listings are seek based.
type CustomersClient interface {
	Get(ctx context.Context, customerID string) (*Customer, error)
	Create(ctx context.Context, customer *Customer) (*Customer, error)
	Delete(ctx context.Context, customerID string) error
	List(ctx context.Context, size int) (*PageEnumerator[Customer], error)
}

// SubscriptionsClient manages the subscriptions of a customer.
type SubscriptionsClient interface {
	Get(ctx context.Context, customerID, subscriptionID string) (*Subscription, error)
	List(ctx context.Context, customerID string) (*SubscriptionList, error)
	// Update patches the subscription. The subscription's etag is sent as If-Match so that
	// concurrent modifications are rejected by the service.
	Update(ctx context.Context, customerID string, subscription *Subscription) (*Subscription, error)
}

// InvoicesClient reads the partner's invoices. Invoice listings are offset based.
type InvoicesClient interface {
	Get(ctx context.Context, invoiceID string) (*Invoice, error)
	Exists(ctx context.Context, invoiceID string) (bool, error)
	List(ctx context.Context, size, offset int, filter *Filter) (*PageEnumerator[Invoice], error)
}

// Client is the entry point to the service.
type Client interface {
	Customers() CustomersClient
	Subscriptions() SubscriptionsClient
	Invoices() InvoicesClient

	// Credentials returns the credentials shared by every call of the client.
	Credentials() *Credentials
	// RequestContext returns the context attached to calls that do not carry their own.
	RequestContext() RequestContext
	// WithRequestContext returns a client sharing everything with this one except the
	// request context.
	WithRequestContext(requestContext RequestContext) Client
}

// Config represents client configuration for building a partner.Client.
//
// # Authentication
//
// Calls are authenticated with a bearer token. Either provide Credentials directly, or
// AccessToken with an optional TokenExpiresAt (a zero expiry means the token never expires).
// RefreshHandlers are registered on the credentials New builds and run when the token has expired;
// supplied Credentials keep their own chain and cannot be combined with RefreshHandlers;
// without any handler an expired token fails every call with an Unauthorized error. When
// no token is available at all, New runs the refresh chain once before returning.
//
// # Retries
//
// RetryPolicy wins over RetryKind/RetryBackOff/RetryMax. Without either, calls use an
// exponential back-off with DefaultMaxRetries retries.
type Config struct {
	// Endpoint: base URL of the service (e.g. "https://api.partnercenter.microsoft.com").
	Endpoint string
	// PartnerCenterClient: sent as MS-PartnerCenter-Client to identify the calling application.
	PartnerCenterClient string
	// Locale: sent as X-Locale. Defaults to DefaultLocale.
	Locale string

	// AccessToken: initial bearer token.
	AccessToken string
	// TokenExpiresAt: expiry of AccessToken. Zero means it never expires.
	TokenExpiresAt time.Time
	// ExpiryBuffer: how long before expiry a token is treated as expired.
	ExpiryBuffer time.Duration
	// Credentials: shared credentials; takes precedence over AccessToken.
	Credentials *Credentials
	// RefreshHandlers: refresh chain of the credentials built from AccessToken. Must be empty
	// when Credentials is set.
	RefreshHandlers []RefreshFunc

	RetryPolicy  RetryPolicy
	RetryKind    string
	RetryBackOff time.Duration
	RetryMax     int

	// HTTPTimeout: per-attempt timeout of the underlying http.Client. Zero means none.
	HTTPTimeout time.Duration
	// Transport: base round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// Codec: payload serializer. Defaults to JSON.
	Codec Codec

	Logger Logger
	// Debug: log every request and response at debug level.
	Debug bool

	// RateLimit: maximum requests per second. Zero disables rate limiting.
	RateLimit float64
	RateBurst int

	// BreakerFailures: consecutive failures that open the circuit breaker. Zero disables it.
	BreakerFailures uint32
	// BreakerTimeout: how long the breaker stays open before letting a probe through.
	BreakerTimeout time.Duration

	// MetricsRegisterer: where call metrics are registered. Nil disables metrics.
	MetricsRegisterer prometheus.Registerer
	// TracerProvider: source of call spans. Nil uses the global provider.
	TracerProvider trace.TracerProvider

	Interceptors *InterceptorChain
}

// DefaultMaxRetries is the retry count used when none is configured.
const DefaultMaxRetries = 3
