package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// offsetServer serves total invoices, page by page, without any links in the payload.
func offsetServer(t *testing.T, total int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, constants.PathInvoices, request.URL.Path)

		size, _ := strconv.Atoi(request.URL.Query().Get(partner.QueryParamSize))
		offset, _ := strconv.Atoi(request.URL.Query().Get(partner.QueryParamOffset))

		items := []partner.Invoice{}
		for index := offset; index < min(offset+size, total); index++ {
			items = append(items, partner.Invoice{ID: fmt.Sprintf("inv-%d", index)})
		}

		WriteJSON(t, writer, http.StatusOK, partner.InvoiceList{TotalCount: total, Items: items})
	}))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestOffsetPagination(t *testing.T) {
	t.Parallel()

	t.Run("walks every page", func(t *testing.T) {
		t.Parallel()

		server := offsetServer(t, 10)
		defer server.Close()

		client := NewTestClient(t, server.URL)

		pages, err := client.Invoices().List(context.Background(), 4, 0, nil)
		require.NoError(t, err)

		assert.True(t, pages.HasValue())
		assert.True(t, pages.IsFirstPage())
		assert.False(t, pages.IsLastPage())
		assert.Len(t, pages.Current().Items, 4)

		require.NoError(t, pages.Next(context.Background()))
		assert.False(t, pages.IsFirstPage())
		assert.False(t, pages.IsLastPage())
		assert.Equal(t, "inv-4", pages.Current().Items[0].ID)

		require.NoError(t, pages.Next(context.Background()))
		assert.True(t, pages.IsLastPage())
		assert.Len(t, pages.Current().Items, 2)

		require.NoError(t, pages.Next(context.Background()))
		assert.False(t, pages.HasValue())
	})

	t.Run("moves back with previous", func(t *testing.T) {
		t.Parallel()

		server := offsetServer(t, 10)
		defer server.Close()

		client := NewTestClient(t, server.URL)

		pages, err := client.Invoices().List(context.Background(), 4, 4, nil)
		require.NoError(t, err)
		assert.False(t, pages.IsFirstPage())

		require.NoError(t, pages.Previous(context.Background()))
		assert.True(t, pages.IsFirstPage())
		assert.Equal(t, "inv-0", pages.Current().Items[0].ID)
	})

	t.Run("collects all items", func(t *testing.T) {
		t.Parallel()

		server := offsetServer(t, 10)
		defer server.Close()

		client := NewTestClient(t, server.URL)

		pages, err := client.Invoices().List(context.Background(), 3, 0, nil)
		require.NoError(t, err)

		items, err := pages.All(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 10)
		assert.Equal(t, "inv-9", items[9].ID)
	})

	t.Run("sends the filter", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.JSONEq(t,
				`{"Field":"InvoiceType","Value":"Recurring","Operator":"equals"}`,
				request.URL.Query().Get(partner.QueryParamFilter),
			)
			WriteJSON(t, writer, http.StatusOK, partner.InvoiceList{})
		}))
		defer server.Close()

		client := NewTestClient(t, server.URL)

		pages, err := client.Invoices().List(context.Background(), 0, 0, &partner.Filter{
			Field:    "InvoiceType",
			Value:    "Recurring",
			Operator: partner.FilterOperatorEquals,
		})
		require.NoError(t, err)
		assert.False(t, pages.HasValue())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSeekPagination(t *testing.T) {
	t.Parallel()

	t.Run("follows the continuation token header", func(t *testing.T) {
		t.Parallel()

		var requests int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&requests, 1)
			assert.Equal(t, constants.PathCustomers, request.URL.Path)

			switch request.Header.Get(constants.HeaderContinuationToken) {
			case "":
				assert.Empty(t, request.URL.Query().Get(partner.QueryParamSeekOperation))
				writer.Header().Set(constants.HeaderContinuationToken, "page-2")
				WriteJSON(t, writer, http.StatusOK, partner.CustomerList{
					ResourceCollection: partner.ResourceCollection[partner.Customer]{
						TotalCount: 2,
						Items:      []partner.Customer{{ID: "c1"}, {ID: "c2"}},
					},
				})
			case "page-2":
				assert.Equal(t, string(partner.SeekNext), request.URL.Query().Get(partner.QueryParamSeekOperation))
				WriteJSON(t, writer, http.StatusOK, partner.CustomerList{
					ResourceCollection: partner.ResourceCollection[partner.Customer]{
						TotalCount: 1,
						Items:      []partner.Customer{{ID: "c3"}},
					},
				})
			default:
				t.Errorf("unexpected token %q", request.Header.Get(constants.HeaderContinuationToken))
			}
		}))
		defer server.Close()

		client := NewTestClient(t, server.URL)

		pages, err := client.Customers().List(context.Background(), 2)
		require.NoError(t, err)
		assert.False(t, pages.IsLastPage())

		next := pages.Current().Links.Next
		require.NotNil(t, next)
		assert.Equal(t, "page-2", next.Header(partner.HeaderContinuationToken))

		items, err := pages.All(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "c3", items[2].ID)
		assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	})

	t.Run("uses the body token when the header is missing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Header.Get(constants.HeaderContinuationToken) == "" {
				WriteJSON(t, writer, http.StatusOK, map[string]interface{}{
					"totalCount":        1,
					"items":             []partner.Customer{{ID: "c1"}},
					"continuationToken": "from-body",
					"links": map[string]interface{}{
						"next": map[string]string{"uri": "/v1/customers?size=1&seekOperation=Next", "method": "GET"},
					},
				})

				return
			}

			assert.Equal(t, "from-body", request.Header.Get(constants.HeaderContinuationToken))
			WriteJSON(t, writer, http.StatusOK, partner.CustomerList{})
		}))
		defer server.Close()

		client := NewTestClient(t, server.URL)

		pages, err := client.Customers().List(context.Background(), 1)
		require.NoError(t, err)

		require.NoError(t, pages.Next(context.Background()))
		assert.False(t, pages.HasValue())
	})
}

func TestPagination_LinksRelativeToAPIRoot(t *testing.T) {
	t.Parallel()

	t.Run("seek", func(t *testing.T) {
		t.Parallel()

		var (
			mu    sync.Mutex
			paths []string
		)

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			mu.Lock()
			paths = append(paths, request.URL.Path)
			mu.Unlock()

			if request.Header.Get(constants.HeaderContinuationToken) == "" {
				writer.Header().Set(constants.HeaderContinuationToken, "page-2")
				WriteJSON(t, writer, http.StatusOK, map[string]interface{}{
					"totalCount": 1,
					"items":      []partner.Customer{{ID: "c1"}},
					"links": map[string]interface{}{
						"next": map[string]string{"uri": "/customers?size=1&seekOperation=Next", "method": "GET"},
					},
				})

				return
			}

			WriteJSON(t, writer, http.StatusOK, partner.CustomerList{
				ResourceCollection: partner.ResourceCollection[partner.Customer]{
					TotalCount: 1,
					Items:      []partner.Customer{{ID: "c2"}},
				},
			})
		}))
		defer server.Close()

		client := NewTestClient(t, server.URL)

		pages, err := client.Customers().List(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "/v1/customers?size=1&seekOperation=Next", pages.Current().Links.Next.URI)

		require.NoError(t, pages.Next(context.Background()))
		assert.Equal(t, "c2", pages.Current().Items[0].ID)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{constants.PathCustomers, constants.PathCustomers}, paths)
	})

	t.Run("offset", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, constants.PathInvoices, request.URL.Path)

			offset, _ := strconv.Atoi(request.URL.Query().Get(partner.QueryParamOffset))
			links := map[string]interface{}{
				"self": map[string]string{"uri": fmt.Sprintf("/invoices?size=1&offset=%d", offset), "method": "GET"},
			}

			if offset == 0 {
				links["next"] = map[string]string{"uri": "invoices?size=1&offset=1", "method": "GET"}
			} else {
				links["previous"] = map[string]string{"uri": "/invoices?size=1&offset=0", "method": "GET"}
			}

			WriteJSON(t, writer, http.StatusOK, map[string]interface{}{
				"totalCount": 2,
				"items":      []partner.Invoice{{ID: fmt.Sprintf("inv-%d", offset)}},
				"links":      links,
			})
		}))
		defer server.Close()

		client := NewTestClient(t, server.URL)

		pages, err := client.Invoices().List(context.Background(), 1, 0, nil)
		require.NoError(t, err)

		items, err := pages.All(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "inv-1", items[1].ID)
	})
}

func TestUnderRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		root string
		uri  string
		want string
	}{
		{"/v1", "/customers?size=1", "/v1/customers?size=1"},
		{"/v1", "customers", "/v1/customers"},
		{"/v1", "/v1/customers", "/v1/customers"},
		{"/v1", "https://api.example.com/customers", "https://api.example.com/customers"},
		{"", "/customers", "/customers"},
		{"/v1", "", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, underRoot(tt.root, tt.uri), tt.uri)
	}

	assert.Equal(t, "/v1", apiRoot("/v1/customers?size=5"))
	assert.Equal(t, "/v2.1", apiRoot("https://api.example.com/v2.1/invoices"))
	assert.Empty(t, apiRoot("/customers"))
	assert.Empty(t, apiRoot("/values"))
}

func TestAttachContinuationToken(t *testing.T) {
	t.Parallel()

	page := &partner.SeekBasedResourceCollection[partner.Customer]{
		ResourceCollection: partner.ResourceCollection[partner.Customer]{
			Links: partner.StandardResourceLinks{
				Self: &partner.Link{URI: "/v1/customers?size=5&seekOperation=Next"},
			},
		},
	}

	attachContinuationToken(page, "token-1", "/ignored")

	require.NotNil(t, page.Links.Next)
	assert.Equal(t, "/v1/customers?size=5", page.Links.Next.URI)
	assert.Equal(t, "token-1", page.Links.Next.Header(partner.HeaderContinuationToken))
	assert.Nil(t, page.Links.Previous)

	empty := &partner.SeekBasedResourceCollection[partner.Customer]{}
	attachContinuationToken(empty, "", "/v1/customers")
	assert.Nil(t, empty.Links.Next)
}
