package partner

import (
	"github.com/google/uuid"
)

// DefaultLocale is used when a RequestContext carries no locale.
const DefaultLocale = "en-US"

// RequestContext identifies one logical call scope. The values are sent with every request
// and attached to every PartnerError so failures can be correlated with server-side logs.
//
// A nil RequestID or CorrelationID means a fresh value is generated for each call at send time.
type RequestContext struct {
	RequestID     uuid.UUID `json:"requestId"     yaml:"request_id"`
	CorrelationID uuid.UUID `json:"correlationId" yaml:"correlation_id"`
	Locale        string    `json:"locale"        yaml:"locale"`
}

// NewRequestContext creates a context with a new correlation id. The request id is left nil
// so that every call made with the context gets its own.
func NewRequestContext(locale string) RequestContext {
	if locale == "" {
		locale = DefaultLocale
	}

	return RequestContext{
		CorrelationID: uuid.New(),
		Locale:        locale,
	}
}

// WithRequestID returns a copy of the context using the given request id.
func (c RequestContext) WithRequestID(id uuid.UUID) RequestContext {
	c.RequestID = id

	return c
}

// WithCorrelationID returns a copy of the context using the given correlation id.
func (c RequestContext) WithCorrelationID(id uuid.UUID) RequestContext {
	c.CorrelationID = id

	return c
}

// Resolve fills in the ids a call needs before it is sent. The receiver is not modified.
func (c RequestContext) Resolve() RequestContext {
	if c.RequestID == uuid.Nil {
		c.RequestID = uuid.New()
	}

	if c.CorrelationID == uuid.Nil {
		c.CorrelationID = uuid.New()
	}

	if c.Locale == "" {
		c.Locale = DefaultLocale
	}

	return c
}
