package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and token files.
	ConfigFilePerm = 0600
)

// Service endpoint.
const (
	// DefaultEndpoint is the public service endpoint.
	DefaultEndpoint = "https://api.partnercenter.microsoft.com"

	// DefaultClientName is sent as MS-PartnerCenter-Client when none is configured.
	DefaultClientName = "partnercenter-go"
)

// Request headers.
const (
	HeaderAuthorization     = "Authorization"
	HeaderAccept            = "Accept"
	HeaderContentType       = "Content-Type"
	HeaderRequestID         = "MS-RequestId"
	HeaderCorrelationID     = "MS-CorrelationId"
	HeaderLocale            = "X-Locale"
	HeaderPartnerClient     = "MS-PartnerCenter-Client"
	HeaderIfMatch           = "If-Match"
	HeaderUserAgent         = "User-Agent"
	HeaderContinuationToken = "MS-ContinuationToken"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "

	// MediaTypeJSON is the accepted and sent media type.
	MediaTypeJSON = "application/json"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default per-attempt timeout of the CLI.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for token endpoint calls.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry defaults.
const (
	// DefaultRetryMax is the default number of retries after the first attempt.
	DefaultRetryMax = 3

	// DefaultLinearBackOff is the wait of the linear policy when none is configured.
	DefaultLinearBackOff = 10 * time.Second

	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// Circuit breaker and rate limit defaults.
const (
	// CircuitBreakerThreshold is the number of consecutive failures that opens the breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerTimeout is how long the breaker stays open.
	CircuitBreakerTimeout = 30 * time.Second

	// CircuitBreakerHalfOpenRequests is the number of probes allowed while half open.
	CircuitBreakerHalfOpenRequests = 1

	// DefaultRateBurst is the burst used when a rate limit is set without one.
	DefaultRateBurst = 1
)

// Pagination and display limits.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 100

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// StringTruncationLength is the default length for truncating strings in tables.
	StringTruncationLength = 60
)

// API paths.
const (
	PathCustomers     = "/v1/customers"
	PathCustomer      = "/v1/customers/%s"
	PathSubscriptions = "/v1/customers/%s/subscriptions"
	PathSubscription  = "/v1/customers/%s/subscriptions/%s"
	PathInvoices      = "/v1/invoices"
	PathInvoice       = "/v1/invoices/%s"
)

// Token cache.
const (
	// TokenCacheKeyPrefix prefixes keys of shared token snapshots.
	TokenCacheKeyPrefix = "partnercenter:token:"

	// TokenFileName is the name of the CLI token file in the config directory.
	TokenFileName = "token.yaml"

	// ConfigDirName is the CLI configuration directory under the user config dir.
	ConfigDirName = "partnercenter"
)

// Format constants.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// NotAvailable is displayed when a value is missing.
const NotAvailable = "N/A"
