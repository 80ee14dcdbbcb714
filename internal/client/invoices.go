package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	pchttp "github.com/fivetwenty-io/partnercenter/internal/http"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// InvoicesClient implements partner.InvoicesClient.
type InvoicesClient struct {
	httpClient *pchttp.Client
}

// NewInvoicesClient creates a new invoices client.
func NewInvoicesClient(httpClient *pchttp.Client) *InvoicesClient {
	return &InvoicesClient{
		httpClient: httpClient,
	}
}

// Get implements partner.InvoicesClient.Get.
func (c *InvoicesClient) Get(ctx context.Context, invoiceID string) (*partner.Invoice, error) {
	if invoiceID == "" {
		return nil, constants.ErrEmptyResourceID
	}

	path := fmt.Sprintf(constants.PathInvoice, url.PathEscape(invoiceID))

	invoice, err := NewServiceProxy[partner.Invoice](c.httpClient, path).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return &invoice, nil
}

// Exists implements partner.InvoicesClient.Exists. A missing invoice is not an error.
func (c *InvoicesClient) Exists(ctx context.Context, invoiceID string) (bool, error) {
	if invoiceID == "" {
		return false, constants.ErrEmptyResourceID
	}

	path := fmt.Sprintf(constants.PathInvoice, url.PathEscape(invoiceID))

	_, err := NewServiceProxy[struct{}](c.httpClient, path).Head(ctx)
	if err != nil {
		if partner.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("checking invoice: %w", err)
	}

	return true, nil
}

// List implements partner.InvoicesClient.List. Invoices are paged by offset.
func (c *InvoicesClient) List(
	ctx context.Context,
	size, offset int,
	filter *partner.Filter,
) (*partner.PageEnumerator[partner.Invoice], error) {
	if size <= 0 {
		size = constants.DefaultPageSize
	}

	first, err := FirstOffsetPage[partner.Invoice](ctx, c.httpClient, constants.PathInvoices, size, offset, filter)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	return partner.NewPageEnumerator[partner.Invoice](NewOffsetFetcher[partner.Invoice](c.httpClient), first), nil
}
