package partnerclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/fivetwenty-io/partnercenter/internal/client"
	"github.com/fivetwenty-io/partnercenter/internal/constants"
	pchttp "github.com/fivetwenty-io/partnercenter/internal/http"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
	"github.com/fivetwenty-io/partnercenter/pkg/refresh"
)

// DefaultScope is the OAuth2 scope granting access to the service.
const DefaultScope = "https://api.partnercenter.microsoft.com/.default"

// ErrForeignClient is returned by the generic helpers for clients not created by this package.
var ErrForeignClient = errors.New("client was not created by partnerclient")

// New creates a new Partner Center API client.
func New(ctx context.Context, config *partner.Config) (partner.Client, error) {
	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithToken creates a client authenticated with a token that never expires.
func NewWithToken(ctx context.Context, endpoint, token string) (partner.Client, error) {
	return New(ctx, &partner.Config{
		Endpoint:    endpoint,
		AccessToken: token,
	})
}

// NewWithClientCredentials creates a client fetching its tokens from tokenURL with the OAuth2
// client credentials flow. Without scopes, DefaultScope is requested.
func NewWithClientCredentials(
	ctx context.Context,
	endpoint, tokenURL, clientID, clientSecret string,
	scopes ...string,
) (partner.Client, error) {
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}

	oauth := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}

	return New(ctx, &partner.Config{
		Endpoint:        endpoint,
		RefreshHandlers: []partner.RefreshFunc{refresh.ClientCredentials(oauth)},
	})
}

func httpClientOf(c partner.Client) (*pchttp.Client, error) {
	owner, ok := c.(interface{ HTTPClient() *pchttp.Client })
	if !ok {
		return nil, ErrForeignClient
	}

	return owner.HTTPClient(), nil
}

// Get fetches the resource at path and decodes it as T. It reaches resources that have no
// typed client.
func Get[T any](ctx context.Context, c partner.Client, path string) (*T, error) {
	httpClient, err := httpClientOf(c)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return nil, constants.ErrEmptyPath
	}

	resource, err := client.NewServiceProxy[T](httpClient, path).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", path, err)
	}

	return &resource, nil
}

// Head reports the headers of the resource at path.
func Head(ctx context.Context, c partner.Client, path string) (http.Header, error) {
	httpClient, err := httpClientOf(c)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return nil, constants.ErrEmptyPath
	}

	headers, err := client.NewServiceProxy[struct{}](httpClient, path).Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}

	return headers, nil
}

// ListOffset enumerates the offset based collection at path.
func ListOffset[T any](
	ctx context.Context,
	c partner.Client,
	path string,
	size, offset int,
	filter *partner.Filter,
) (*partner.PageEnumerator[T], error) {
	httpClient, err := httpClientOf(c)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return nil, constants.ErrEmptyPath
	}

	if size <= 0 {
		size = constants.DefaultPageSize
	}

	first, err := client.FirstOffsetPage[T](ctx, httpClient, path, size, offset, filter)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	return partner.NewPageEnumerator[T](client.NewOffsetFetcher[T](httpClient), first), nil
}

// ListSeek enumerates the collection at path using continuation tokens.
func ListSeek[T any](ctx context.Context, c partner.Client, path string, size int) (*partner.PageEnumerator[T], error) {
	httpClient, err := httpClientOf(c)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return nil, constants.ErrEmptyPath
	}

	if size <= 0 {
		size = constants.DefaultPageSize
	}

	first, err := client.FirstSeekPage[T](ctx, httpClient, path, size)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	return partner.NewPageEnumerator[T](client.NewSeekFetcher[T](httpClient), &first.ResourceCollection), nil
}
