package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/internal/metrics"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// ensureCredentials refreshes expired credentials. It returns an Unauthorized error when they
// are still expired afterwards; no request must be sent in that case.
func (c *Client) ensureCredentials(ctx context.Context, requestContext partner.RequestContext) error {
	if c.credentials == nil || !c.credentials.IsExpired() {
		return nil
	}

	if !c.credentials.HasRefreshHandlers() {
		c.metrics.RecordRefresh(metrics.RefreshSkipped)

		return partner.NewUnauthorizedError(requestContext, partner.ErrNoRefreshHandlers)
	}

	c.logger.Debug("Refreshing expired credentials", map[string]interface{}{
		"expires_at": c.credentials.ExpiresAt(),
		"request_id": requestContext.RequestID.String(),
	})

	err := c.credentials.Refresh(ctx, requestContext)
	if err != nil {
		c.logger.Warn("Credential refresh handler failed", map[string]interface{}{
			"error":      err.Error(),
			"request_id": requestContext.RequestID.String(),
		})
	}

	if c.credentials.IsExpired() {
		c.metrics.RecordRefresh(metrics.RefreshFailure)

		return partner.NewUnauthorizedError(requestContext, err)
	}

	c.metrics.RecordRefresh(metrics.RefreshSuccess)

	return nil
}

// buildRequest resolves the URL, encodes the body and sets the standard headers.
func (c *Client) buildRequest(req *Request, requestContext partner.RequestContext) (*partner.Request, error) {
	if req.Path == "" {
		return nil, constants.ErrEmptyPath
	}

	fullURL, err := c.resolveURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var body []byte

	if req.Body != nil {
		switch payload := req.Body.(type) {
		case []byte:
			body = payload
		default:
			body, err = c.codec.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request body: %w", err)
			}
		}
	}

	headers := make(http.Header)

	if c.credentials != nil {
		headers.Set(constants.HeaderAuthorization, constants.BearerPrefix+c.credentials.Token())
	}

	headers.Set(constants.HeaderAccept, constants.MediaTypeJSON)

	if body != nil {
		headers.Set(constants.HeaderContentType, c.codec.ContentType())
	}

	headers.Set(constants.HeaderRequestID, requestContext.RequestID.String())
	headers.Set(constants.HeaderCorrelationID, requestContext.CorrelationID.String())
	headers.Set(constants.HeaderLocale, requestContext.Locale)

	if c.clientName != "" {
		headers.Set(constants.HeaderPartnerClient, c.clientName)
	}

	if req.ETag != "" {
		headers.Set(constants.HeaderIfMatch, QuoteETag(req.ETag))
	}

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	return &partner.Request{
		Method:   req.Method,
		URL:      fullURL,
		Headers:  headers,
		Body:     body,
		Context:  requestContext,
		Metadata: map[string]interface{}{},
	}, nil
}

// resolveURL joins path to the base URL, unless it is already absolute, and merges query.
func (c *Client) resolveURL(path string, query url.Values) (string, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		raw = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrInvalidEndpoint, err)
	}

	if len(query) > 0 {
		merged := parsed.Query()

		for key, values := range query {
			merged.Del(key)

			for _, value := range values {
				merged.Add(key, value)
			}
		}

		parsed.RawQuery = merged.Encode()
	}

	return parsed.String(), nil
}

// QuoteETag returns etag as a quoted entity tag. Tags that are already quoted, including weak
// tags, are returned unchanged.
func QuoteETag(etag string) string {
	if strings.HasPrefix(etag, `"`) || strings.HasPrefix(etag, `W/"`) {
		return etag
	}

	return `"` + etag + `"`
}
