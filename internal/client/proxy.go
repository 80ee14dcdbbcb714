package client

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	pchttp "github.com/fivetwenty-io/partnercenter/internal/http"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// ServiceProxy sends calls to one resource path and decodes responses into T.
//
// RequestID, CorrelationID and ETag may be changed between calls; every call captures their
// values when it is sent. A proxy must not be mutated while one of its calls is running.
type ServiceProxy[T any] struct {
	client  *pchttp.Client
	path    string
	query   url.Values
	headers map[string]string

	requestID     uuid.UUID
	correlationID uuid.UUID
	etag          string
}

// NewServiceProxy creates a proxy for path. path may be relative to the service endpoint or
// an absolute link URI.
func NewServiceProxy[T any](client *pchttp.Client, path string) *ServiceProxy[T] {
	return &ServiceProxy[T]{
		client:  client,
		path:    path,
		headers: map[string]string{},
	}
}

// SetRequestID sets the request id of the following calls. uuid.Nil restores the default.
func (p *ServiceProxy[T]) SetRequestID(id uuid.UUID) *ServiceProxy[T] {
	p.requestID = id

	return p
}

// SetCorrelationID sets the correlation id of the following calls.
func (p *ServiceProxy[T]) SetCorrelationID(id uuid.UUID) *ServiceProxy[T] {
	p.correlationID = id

	return p
}

// SetETag sets the entity tag sent as If-Match. An empty tag sends no If-Match header.
func (p *ServiceProxy[T]) SetETag(etag string) *ServiceProxy[T] {
	p.etag = etag

	return p
}

// SetQuery sets query parameters added to every call.
func (p *ServiceProxy[T]) SetQuery(query url.Values) *ServiceProxy[T] {
	p.query = query

	return p
}

// SetHeader sets an extra header sent with every call.
func (p *ServiceProxy[T]) SetHeader(key, value string) *ServiceProxy[T] {
	p.headers[key] = value

	return p
}

// RequestID returns the configured request id.
func (p *ServiceProxy[T]) RequestID() uuid.UUID {
	return p.requestID
}

// CorrelationID returns the configured correlation id.
func (p *ServiceProxy[T]) CorrelationID() uuid.UUID {
	return p.correlationID
}

// ETag returns the configured entity tag.
func (p *ServiceProxy[T]) ETag() string {
	return p.etag
}

// Get retrieves the resource.
func (p *ServiceProxy[T]) Get(ctx context.Context) (T, error) {
	return p.sendAndDecode(ctx, http.MethodGet, nil)
}

// Post creates a resource from body.
func (p *ServiceProxy[T]) Post(ctx context.Context, body interface{}) (T, error) {
	return p.sendAndDecode(ctx, http.MethodPost, body)
}

// Put replaces the resource with body.
func (p *ServiceProxy[T]) Put(ctx context.Context, body interface{}) (T, error) {
	return p.sendAndDecode(ctx, http.MethodPut, body)
}

// Patch updates the resource with body.
func (p *ServiceProxy[T]) Patch(ctx context.Context, body interface{}) (T, error) {
	return p.sendAndDecode(ctx, http.MethodPatch, body)
}

// Delete deletes the resource.
func (p *ServiceProxy[T]) Delete(ctx context.Context) error {
	_, err := p.send(ctx, http.MethodDelete, nil)

	return err
}

// Head checks the resource without reading a body.
func (p *ServiceProxy[T]) Head(ctx context.Context) (http.Header, error) {
	resp, err := p.send(ctx, http.MethodHead, nil)
	if err != nil {
		return nil, err
	}

	return resp.Headers, nil
}

func (p *ServiceProxy[T]) sendAndDecode(ctx context.Context, method string, body interface{}) (T, error) {
	resp, err := p.send(ctx, method, body)
	if err != nil {
		var zero T

		return zero, err
	}

	return Decode[T](p.client.Codec(), resp)
}

func (p *ServiceProxy[T]) send(ctx context.Context, method string, body interface{}) (*pchttp.Response, error) {
	if method != http.MethodGet && method != http.MethodHead && method != http.MethodDelete && body == nil {
		return nil, constants.ErrNilBody
	}

	requestContext := p.client.RequestContext()

	if p.requestID != uuid.Nil {
		requestContext = requestContext.WithRequestID(p.requestID)
	}

	if p.correlationID != uuid.Nil {
		requestContext = requestContext.WithCorrelationID(p.correlationID)
	}

	headers := make(map[string]string, len(p.headers))
	for key, value := range p.headers {
		headers[key] = value
	}

	return p.client.Do(ctx, &pchttp.Request{
		Method:  method,
		Path:    p.path,
		Query:   p.query,
		Body:    body,
		Headers: headers,
		ETag:    p.etag,
		Context: &requestContext,
	})
}

// Decode decodes a successful response body into T. An empty body decodes to the zero value;
// a body that cannot be decoded is a ResponseParsing error carrying the call's context.
func Decode[T any](codec partner.Codec, resp *pchttp.Response) (T, error) {
	var result T

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return result, nil
	}

	err := codec.Unmarshal(resp.Body, &result)
	if err != nil {
		var zero T

		return zero, partner.NewParsingError(resp.StatusCode, err, resp.Context)
	}

	return result, nil
}
