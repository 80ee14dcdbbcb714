package http

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fivetwenty-io/partnercenter/internal/metrics"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

func (c *Client) startSpan(
	ctx context.Context,
	method string,
	requestContext partner.RequestContext,
) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "partnercenter "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("partner.request_id", requestContext.RequestID.String()),
			attribute.String("partner.correlation_id", requestContext.CorrelationID.String()),
			attribute.String("partner.locale", requestContext.Locale),
		),
	)
}

// finish records the outcome of a call on its span and in the metrics.
func (c *Client) finish(span trace.Span, method string, resp *Response, err error, elapsed time.Duration) {
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}

	outcome := metrics.OutcomeSuccess

	if err != nil {
		category := partner.CategoryOf(err)
		if category != "" {
			outcome = string(category)
			span.SetAttributes(attribute.String("partner.error_category", outcome))
		} else {
			outcome = metrics.OutcomeTransportError
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if resp != nil {
		span.SetStatus(codes.Ok, strconv.Itoa(resp.StatusCode))
	}

	c.metrics.RecordCall(method, outcome, elapsed)
}
