// Package http executes authenticated calls against the service: it checks and refreshes
// credentials, builds the request, sends it under the retry policy and turns failed responses
// into categorized errors.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/internal/metrics"
	"github.com/fivetwenty-io/partnercenter/internal/retry"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// tracerName is the instrumentation scope of call spans.
const tracerName = "github.com/fivetwenty-io/partnercenter"

// Client is the HTTP client for the service.
type Client struct {
	baseURL        string
	credentials    *partner.Credentials
	httpClient     *http.Client
	policy         partner.RetryPolicy
	codec          partner.Codec
	requestContext partner.RequestContext
	clientName     string
	interceptors   *partner.InterceptorChain
	logger         partner.Logger
	debug          bool
	metrics        *metrics.Client
	tracer         trace.Tracer
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger partner.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(policy partner.RetryPolicy) Option {
	return func(c *Client) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// WithRetryConfig sets a linear retry policy.
func WithRetryConfig(maxRetries int, backOff time.Duration) Option {
	return WithRetryPolicy(partner.Linear(backOff, maxRetries))
}

// WithHTTPClient sets the underlying http.Client. Its transport is shared by every call.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCodec sets the payload codec.
func WithCodec(codec partner.Codec) Option {
	return func(c *Client) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithRequestContext sets the context used by requests that do not carry their own.
func WithRequestContext(requestContext partner.RequestContext) Option {
	return func(c *Client) {
		c.requestContext = requestContext
	}
}

// WithClientName sets the MS-PartnerCenter-Client header value.
func WithClientName(name string) Option {
	return func(c *Client) {
		c.clientName = name
	}
}

// WithInterceptors sets the request and response interceptors.
func WithInterceptors(chain *partner.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Client) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracerProvider sets the source of call spans.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Client) {
		if provider != nil {
			c.tracer = provider.Tracer(tracerName)
		}
	}
}

// NewClient creates a new HTTP client. Nil credentials send requests without authentication.
func NewClient(baseURL string, credentials *partner.Credentials, opts ...Option) *Client {
	client := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		credentials:    credentials,
		httpClient:     &http.Client{},
		policy:         partner.ExponentialBackOff(constants.DefaultRetryMax),
		codec:          partner.DefaultCodec(),
		requestContext: partner.NewRequestContext(partner.DefaultLocale),
		clientName:     constants.DefaultClientName,
		logger:         partner.NopLogger(),
		tracer:         otel.GetTracerProvider().Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Request represents an HTTP request.
type Request struct {
	Method string
	// Path is relative to the base URL, or an absolute URL as found in collection links.
	// It may carry a query string; Query is merged into it.
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
	// ETag is sent as If-Match when non-empty.
	ETag string
	// Context overrides the client's request context for this call.
	Context *partner.RequestContext
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Context is the resolved request context the call was sent with.
	Context partner.RequestContext
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Credentials returns the credentials used by the client.
func (c *Client) Credentials() *partner.Credentials {
	return c.credentials
}

// Codec returns the payload codec.
func (c *Client) Codec() partner.Codec {
	return c.codec
}

// RequestContext returns the default request context.
func (c *Client) RequestContext() partner.RequestContext {
	return c.requestContext
}

// WithContext returns a copy of the client using requestContext by default. The copy shares
// the credentials, transport and collectors.
func (c *Client) WithContext(requestContext partner.RequestContext) *Client {
	clone := *c
	clone.requestContext = requestContext

	return &clone
}

// Do executes a request. A non-2xx response returns both the response and a
// *partner.PartnerError; a transport failure that outlasted the retries is returned as it is.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	requestContext := c.requestContext
	if req.Context != nil {
		requestContext = *req.Context
	}

	requestContext = requestContext.Resolve()

	ctx, span := c.startSpan(ctx, req.Method, requestContext)
	defer span.End()

	start := time.Now()

	resp, err := c.do(ctx, req, requestContext)

	c.finish(span, req.Method, resp, err, time.Since(start))

	return resp, err
}

func (c *Client) do(ctx context.Context, req *Request, requestContext partner.RequestContext) (*Response, error) {
	err := c.ensureCredentials(ctx, requestContext)
	if err != nil {
		return nil, err
	}

	outgoing, err := c.buildRequest(req, requestContext)
	if err != nil {
		return nil, err
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, outgoing)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":         outgoing.Method,
			"url":            outgoing.URL,
			"request_id":     requestContext.RequestID.String(),
			"correlation_id": requestContext.CorrelationID.String(),
		})
	}

	httpResp, err := c.execute(ctx, outgoing)
	if err != nil {
		c.logger.Error("HTTP request failed", map[string]interface{}{
			"method":     outgoing.Method,
			"url":        outgoing.URL,
			"request_id": requestContext.RequestID.String(),
			"error":      err.Error(),
		})

		_ = c.interceptors.ExecuteResponseInterceptors(ctx, outgoing, &partner.Response{Error: err})

		return nil, err
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Context:    requestContext,
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status_code": resp.StatusCode,
			"body_size":   len(body),
			"request_id":  requestContext.RequestID.String(),
		})
	}

	// The response is final once received; interceptor failures are only logged.
	err = c.interceptors.ExecuteResponseInterceptors(ctx, outgoing, &partner.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	})
	if err != nil {
		c.logger.Warn("Response interceptor failed", map[string]interface{}{
			"method":      outgoing.Method,
			"url":         outgoing.URL,
			"status_code": resp.StatusCode,
			"request_id":  requestContext.RequestID.String(),
			"error":       err.Error(),
		})
	}

	return resp, handleResponse(resp)
}

// execute sends the request under the retry policy.
func (c *Client) execute(ctx context.Context, outgoing *partner.Request) (*http.Response, error) {
	var body interface{}
	if outgoing.Body != nil {
		body = outgoing.Body
	}

	retryReq, err := retryablehttp.NewRequestWithContext(ctx, outgoing.Method, outgoing.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	retryReq.Header = outgoing.Headers

	client := retry.NewHTTPClient(c.httpClient, c.policy, retry.HTTPOptions{
		OnAttempt: func(int) {
			c.metrics.RecordAttempt(outgoing.Method)
		},
		OnRetry: func(attempt, statusCode int, err error, wait time.Duration) {
			fields := map[string]interface{}{
				"method":      outgoing.Method,
				"url":         outgoing.URL,
				"attempt":     attempt,
				"status_code": statusCode,
				"wait":        wait.String(),
				"request_id":  outgoing.Context.RequestID.String(),
			}
			if err != nil {
				fields["error"] = err.Error()
			}

			c.logger.Debug("Retrying request", fields)
		},
	})

	return client.Do(retryReq)
}

// handleResponse turns a non-2xx response into a categorized error.
func handleResponse(resp *Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	return partner.NewErrorFromResponse(resp.StatusCode, resp.Body, resp.Context)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodHead,
		Path:   path,
	})
}
