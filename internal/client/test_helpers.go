package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// TestToken is the bearer token used by test clients.
const TestToken = "test-token"

// NewTestClient creates a client for baseURL with a static token and a fast retry policy.
func NewTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(context.Background(), &partner.Config{
		Endpoint:    baseURL,
		AccessToken: TestToken,
		RetryPolicy: partner.Linear(time.Millisecond, 1),
	})
	require.NoError(t, err)

	return client
}

// WriteJSON writes body as a JSON response with the given status.
func WriteJSON(t *testing.T, writer http.ResponseWriter, status int, body interface{}) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if body != nil {
		assert.NoError(t, json.NewEncoder(writer).Encode(body))
	}
}

// FaultBody is a fault payload as returned by the service.
func FaultBody(code, description string) map[string]interface{} {
	return map[string]interface{}{
		"code":        code,
		"description": description,
		"data":        []string{},
		"source":      "PartnerFD",
	}
}

// TestGetOperation represents a generic get operation test case.
type TestGetOperation[TResponse any] struct {
	Name         string
	ID           string
	ExpectedPath string
	StatusCode   int
	Response     interface{}
	WantCategory partner.ErrorCategory
	Validate     func(*testing.T, *TResponse)
}

// RunGetTests runs a series of get operation tests.
func RunGetTests[TResponse any](
	t *testing.T,
	tests []TestGetOperation[TResponse],
	getFunc func(*Client) func(context.Context, string) (*TResponse, error),
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodGet, request.Method)
				assert.Equal(t, "Bearer "+TestToken, request.Header.Get("Authorization"))
				WriteJSON(t, writer, testCase.StatusCode, testCase.Response)
			}))
			defer server.Close()

			client := NewTestClient(t, server.URL)

			result, err := getFunc(client)(context.Background(), testCase.ID)

			if testCase.WantCategory != "" {
				require.Error(t, err)
				assert.Equal(t, testCase.WantCategory, partner.CategoryOf(err))
				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)

			if testCase.Validate != nil {
				testCase.Validate(t, result)
			}
		})
	}
}
