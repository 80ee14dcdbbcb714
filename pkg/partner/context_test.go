package partner_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

func TestRequestContext(t *testing.T) {
	t.Parallel()

	base := partner.NewRequestContext("")
	assert.Equal(t, partner.DefaultLocale, base.Locale)
	assert.Equal(t, uuid.Nil, base.RequestID)
	assert.NotEqual(t, uuid.Nil, base.CorrelationID)

	first := base.Resolve()
	second := base.Resolve()
	assert.NotEqual(t, uuid.Nil, first.RequestID)
	assert.NotEqual(t, first.RequestID, second.RequestID, "every call gets its own request id")
	assert.Equal(t, base.CorrelationID, first.CorrelationID)
	assert.Equal(t, uuid.Nil, base.RequestID, "Resolve does not modify the receiver")

	requestID := uuid.New()
	fixed := base.WithRequestID(requestID).Resolve()
	assert.Equal(t, requestID, fixed.RequestID)

	empty := partner.RequestContext{}.Resolve()
	assert.NotEqual(t, uuid.Nil, empty.CorrelationID)
	assert.Equal(t, partner.DefaultLocale, empty.Locale)

	correlationID := uuid.New()
	assert.Equal(t, correlationID, base.WithCorrelationID(correlationID).CorrelationID)
}
