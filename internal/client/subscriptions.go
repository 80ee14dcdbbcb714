package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	pchttp "github.com/fivetwenty-io/partnercenter/internal/http"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// SubscriptionsClient implements partner.SubscriptionsClient.
type SubscriptionsClient struct {
	httpClient *pchttp.Client
}

// NewSubscriptionsClient creates a new subscriptions client.
func NewSubscriptionsClient(httpClient *pchttp.Client) *SubscriptionsClient {
	return &SubscriptionsClient{
		httpClient: httpClient,
	}
}

// Get implements partner.SubscriptionsClient.Get.
func (c *SubscriptionsClient) Get(ctx context.Context, customerID, subscriptionID string) (*partner.Subscription, error) {
	if customerID == "" || subscriptionID == "" {
		return nil, constants.ErrEmptyResourceID
	}

	path := fmt.Sprintf(constants.PathSubscription, url.PathEscape(customerID), url.PathEscape(subscriptionID))

	subscription, err := NewServiceProxy[partner.Subscription](c.httpClient, path).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting subscription: %w", err)
	}

	return &subscription, nil
}

// List implements partner.SubscriptionsClient.List.
func (c *SubscriptionsClient) List(ctx context.Context, customerID string) (*partner.SubscriptionList, error) {
	if customerID == "" {
		return nil, constants.ErrEmptyResourceID
	}

	path := fmt.Sprintf(constants.PathSubscriptions, url.PathEscape(customerID))

	list, err := NewServiceProxy[partner.SubscriptionList](c.httpClient, path).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}

	return &list, nil
}

// Update implements partner.SubscriptionsClient.Update.
func (c *SubscriptionsClient) Update(
	ctx context.Context,
	customerID string,
	subscription *partner.Subscription,
) (*partner.Subscription, error) {
	if subscription == nil {
		return nil, constants.ErrNilBody
	}

	if customerID == "" || subscription.ID == "" {
		return nil, constants.ErrEmptyResourceID
	}

	path := fmt.Sprintf(constants.PathSubscription, url.PathEscape(customerID), url.PathEscape(subscription.ID))

	updated, err := NewServiceProxy[partner.Subscription](c.httpClient, path).
		SetETag(subscription.Attributes.Etag).
		Patch(ctx, subscription)
	if err != nil {
		return nil, fmt.Errorf("updating subscription: %w", err)
	}

	return &updated, nil
}
