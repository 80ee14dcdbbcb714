package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	pchttp "github.com/fivetwenty-io/partnercenter/internal/http"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// CustomersClient implements partner.CustomersClient.
type CustomersClient struct {
	httpClient *pchttp.Client
}

// NewCustomersClient creates a new customers client.
func NewCustomersClient(httpClient *pchttp.Client) *CustomersClient {
	return &CustomersClient{
		httpClient: httpClient,
	}
}

// Get implements partner.CustomersClient.Get.
func (c *CustomersClient) Get(ctx context.Context, customerID string) (*partner.Customer, error) {
	if customerID == "" {
		return nil, constants.ErrEmptyResourceID
	}

	path := fmt.Sprintf(constants.PathCustomer, url.PathEscape(customerID))

	customer, err := NewServiceProxy[partner.Customer](c.httpClient, path).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return &customer, nil
}

// Create implements partner.CustomersClient.Create.
func (c *CustomersClient) Create(ctx context.Context, customer *partner.Customer) (*partner.Customer, error) {
	if customer == nil {
		return nil, constants.ErrNilBody
	}

	created, err := NewServiceProxy[partner.Customer](c.httpClient, constants.PathCustomers).Post(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}

	return &created, nil
}

// Delete implements partner.CustomersClient.Delete.
func (c *CustomersClient) Delete(ctx context.Context, customerID string) error {
	if customerID == "" {
		return constants.ErrEmptyResourceID
	}

	path := fmt.Sprintf(constants.PathCustomer, url.PathEscape(customerID))

	err := NewServiceProxy[struct{}](c.httpClient, path).Delete(ctx)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	return nil
}

// List implements partner.CustomersClient.List. Customers are paged with continuation tokens.
func (c *CustomersClient) List(ctx context.Context, size int) (*partner.PageEnumerator[partner.Customer], error) {
	if size <= 0 {
		size = constants.DefaultPageSize
	}

	first, err := FirstSeekPage[partner.Customer](ctx, c.httpClient, constants.PathCustomers, size)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}

	return partner.NewPageEnumerator[partner.Customer](
		NewSeekFetcher[partner.Customer](c.httpClient),
		&first.ResourceCollection,
	), nil
}
