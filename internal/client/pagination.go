package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	pchttp "github.com/fivetwenty-io/partnercenter/internal/http"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// OffsetFetcher fetches pages of an offset based collection.
type OffsetFetcher[T any] struct {
	client *pchttp.Client
}

// NewOffsetFetcher creates an offset page fetcher.
func NewOffsetFetcher[T any](client *pchttp.Client) *OffsetFetcher[T] {
	return &OffsetFetcher[T]{client: client}
}

// FetchPage implements partner.PageFetcher. The operation is implied by the link.
func (f *OffsetFetcher[T]) FetchPage(
	ctx context.Context,
	link partner.Link,
	_ partner.SeekOperation,
) (*partner.ResourceCollection[T], error) {
	proxy := NewServiceProxy[partner.ResourceCollection[T]](f.client, link.URI)
	for _, header := range link.Headers {
		proxy.SetHeader(header.Key, header.Value)
	}

	page, err := proxy.Get(ctx)
	if err != nil {
		return nil, err
	}

	rootLinks(&page.Links, apiRoot(link.URI))
	fillOffsetLinks(&page, link.URI)

	return &page, nil
}

// FirstOffsetPage fetches the first page of an offset based collection at path.
func FirstOffsetPage[T any](
	ctx context.Context,
	client *pchttp.Client,
	path string,
	size, offset int,
	filter *partner.Filter,
) (*partner.ResourceCollection[T], error) {
	query, err := partner.OffsetQuery(size, offset, filter, client.Codec())
	if err != nil {
		return nil, fmt.Errorf("encoding filter: %w", err)
	}

	uri := path
	if encoded := query.Encode(); encoded != "" {
		uri += "?" + encoded
	}

	return NewOffsetFetcher[T](client).FetchPage(ctx, partner.Link{URI: uri, Method: http.MethodGet}, partner.SeekNext)
}

// fillOffsetLinks computes the links of a page the service returned without any.
func fillOffsetLinks[T any](page *partner.ResourceCollection[T], uri string) {
	links := page.Links
	if links.Self != nil || links.Next != nil || links.Previous != nil {
		return
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return
	}

	query := parsed.Query()

	size, _ := strconv.Atoi(query.Get(partner.QueryParamSize))
	if size <= 0 {
		size = len(page.Items)
	}

	offset, _ := strconv.Atoi(query.Get(partner.QueryParamOffset))

	page.Links = partner.OffsetLinks(uri, size, offset, page.TotalCount)
}

// SeekFetcher fetches pages of a collection navigated with continuation tokens.
type SeekFetcher[T any] struct {
	client *pchttp.Client
}

// NewSeekFetcher creates a seek page fetcher.
func NewSeekFetcher[T any](client *pchttp.Client) *SeekFetcher[T] {
	return &SeekFetcher[T]{client: client}
}

// FetchPage implements partner.PageFetcher. The link's continuation token header is sent
// together with the seekOperation query parameter.
func (f *SeekFetcher[T]) FetchPage(
	ctx context.Context,
	link partner.Link,
	operation partner.SeekOperation,
) (*partner.ResourceCollection[T], error) {
	page, err := f.fetch(ctx, link, operation)
	if err != nil {
		return nil, err
	}

	return &page.ResourceCollection, nil
}

func (f *SeekFetcher[T]) fetch(
	ctx context.Context,
	link partner.Link,
	operation partner.SeekOperation,
) (*partner.SeekBasedResourceCollection[T], error) {
	proxy := NewServiceProxy[partner.SeekBasedResourceCollection[T]](f.client, link.URI)
	for _, header := range link.Headers {
		proxy.SetHeader(header.Key, header.Value)
	}

	if link.Header(partner.HeaderContinuationToken) != "" {
		proxy.SetQuery(url.Values{partner.QueryParamSeekOperation: []string{string(operation)}})
	}

	resp, err := proxy.send(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	page, err := Decode[partner.SeekBasedResourceCollection[T]](f.client.Codec(), resp)
	if err != nil {
		return nil, err
	}

	rootLinks(&page.Links, apiRoot(link.URI))

	token := resp.Headers.Get(constants.HeaderContinuationToken)
	if token == "" {
		token = page.ContinuationToken
	}

	attachContinuationToken(&page, token, link.URI)

	return &page, nil
}

// FirstSeekPage fetches the first page of a seek based collection at path.
func FirstSeekPage[T any](
	ctx context.Context,
	client *pchttp.Client,
	path string,
	size int,
) (*partner.SeekBasedResourceCollection[T], error) {
	uri := path
	if size > 0 {
		uri += "?" + url.Values{partner.QueryParamSize: []string{strconv.Itoa(size)}}.Encode()
	}

	return NewSeekFetcher[T](client).fetch(ctx, partner.Link{URI: uri, Method: http.MethodGet}, partner.SeekNext)
}

// attachContinuationToken makes the token travel with the page's navigation links. When the
// service returned a token but no next link, the next link points back at the collection.
func attachContinuationToken[T any](page *partner.SeekBasedResourceCollection[T], token, uri string) {
	page.ContinuationToken = token
	if token == "" {
		return
	}

	links := &page.Links

	if links.Next == nil {
		base := uri
		if links.Self != nil && links.Self.URI != "" {
			base = links.Self.URI
		}

		links.Next = &partner.Link{URI: stripSeekOperation(base), Method: http.MethodGet}
	}

	next := links.Next.WithHeader(partner.HeaderContinuationToken, token)
	links.Next = &next

	if links.Previous != nil {
		previous := links.Previous.WithHeader(partner.HeaderContinuationToken, token)
		links.Previous = &previous
	}
}

func stripSeekOperation(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	query := parsed.Query()
	query.Del(partner.QueryParamSeekOperation)
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// apiRoot returns the leading version segment of uri's path, such as "/v1", or "" when the path
// does not start with one.
func apiRoot(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}

	segment, _, _ := strings.Cut(strings.TrimLeft(parsed.Path, "/"), "/")
	if len(segment) < 2 || segment[0] != 'v' {
		return ""
	}

	for _, r := range segment[1:] {
		if (r < '0' || r > '9') && r != '.' {
			return ""
		}
	}

	return "/" + segment
}

// rootLinks rewrites the service's navigation links, which are relative to the API root, into
// paths relative to the endpoint.
func rootLinks(links *partner.StandardResourceLinks, root string) {
	for _, link := range []*partner.Link{links.Self, links.Next, links.Previous} {
		if link != nil {
			link.URI = underRoot(root, link.URI)
		}
	}
}

// underRoot prefixes a relative uri with root unless it already starts with it.
func underRoot(root, uri string) string {
	if root == "" || uri == "" {
		return uri
	}

	parsed, err := url.Parse(uri)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return uri
	}

	path := "/" + strings.TrimLeft(parsed.Path, "/")
	if path == root || strings.HasPrefix(path, root+"/") {
		return uri
	}

	return root + "/" + strings.TrimLeft(uri, "/")
}
