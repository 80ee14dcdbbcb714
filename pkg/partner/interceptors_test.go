package partner_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

var errRejected = errors.New("rejected")

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	t.Parallel()

	chain := partner.NewInterceptorChain()

	var executionOrder []string

	chain.AddRequestInterceptor(func(context.Context, *partner.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})
	chain.AddRequestInterceptor(func(context.Context, *partner.Request) error {
		executionOrder = append(executionOrder, "second")

		return errRejected
	})
	chain.AddRequestInterceptor(func(context.Context, *partner.Request) error {
		executionOrder = append(executionOrder, "third")

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &partner.Request{Method: http.MethodGet, URL: "/test"})
	require.ErrorIs(t, err, errRejected)
	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	t.Parallel()

	chain := partner.NewInterceptorChain()

	var statuses []int

	chain.AddResponseInterceptor(func(_ context.Context, _ *partner.Request, resp *partner.Response) error {
		statuses = append(statuses, resp.StatusCode)

		return nil
	})

	err := chain.ExecuteResponseInterceptors(context.Background(), &partner.Request{}, &partner.Response{StatusCode: http.StatusOK})
	require.NoError(t, err)
	assert.Equal(t, []int{http.StatusOK}, statuses)
}

func TestInterceptorChain_Nil(t *testing.T) {
	t.Parallel()

	var chain *partner.InterceptorChain

	require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), &partner.Request{}))
	require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), &partner.Request{}, &partner.Response{}))
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := partner.HeaderInterceptor(map[string]string{"X-Custom-Header": "custom-value"})

	req := &partner.Request{}
	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer

	logger := partner.NewZerologLogger(zerolog.New(&buffer).Level(zerolog.DebugLevel))
	req := &partner.Request{Method: http.MethodGet, URL: "https://api.example.com/v1/customers", Context: partner.NewRequestContext("")}

	require.NoError(t, partner.LoggingInterceptor(logger)(context.Background(), req))
	require.NoError(t, partner.LoggingResponseInterceptor(logger)(context.Background(), req, &partner.Response{StatusCode: http.StatusNotFound}))

	output := buffer.String()
	assert.Contains(t, output, `"message":"API Request"`)
	assert.Contains(t, output, `"level":"error"`)
	assert.Contains(t, output, `"status_code":404`)
}
