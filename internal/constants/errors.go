package constants

import "errors"

// Configuration errors.
var (
	ErrNoEndpoint              = errors.New("no service endpoint configured")
	ErrInvalidEndpoint         = errors.New("invalid service endpoint")
	ErrNoCredentials           = errors.New("no access token or credentials configured")
	ErrHandlersWithCredentials = errors.New("refresh handlers must be registered on the supplied credentials")
	ErrInvalidOutputFormat     = errors.New("invalid output format")
	ErrInvalidRateLimit        = errors.New("rate limit must not be negative")
)

// Token errors.
var (
	ErrTokenNotFound    = errors.New("no stored token found, run 'partner login' first")
	ErrEmptyToken       = errors.New("token must not be empty")
	ErrEmptyTokenSource = errors.New("token source returned an empty access token")
	ErrNoTokenSource    = errors.New("no token source configured")
)

// Request errors.
var (
	ErrEmptyPath        = errors.New("request path must not be empty")
	ErrEmptyResourceID  = errors.New("resource id must not be empty")
	ErrNilBody          = errors.New("request body must not be nil")
	ErrNilFetcher       = errors.New("page fetcher must not be nil")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)
