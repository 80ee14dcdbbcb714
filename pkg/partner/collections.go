package partner

import (
	"net/url"
	"strconv"
)

// Pagination query parameters and headers.
const (
	QueryParamSize          = "size"
	QueryParamOffset        = "offset"
	QueryParamFilter        = "filter"
	QueryParamSeekOperation = "seekOperation"

	HeaderContinuationToken = "MS-ContinuationToken"
)

// SeekOperation is the direction of a seek-based page request.
type SeekOperation string

// Seek directions.
const (
	SeekNext     SeekOperation = "Next"
	SeekPrevious SeekOperation = "Previous"
)

// KeyValuePair is a header carried by a link.
type KeyValuePair struct {
	Key   string `json:"key"   yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Link is a navigable URI returned by the service.
type Link struct {
	URI     string         `json:"uri"               yaml:"uri"`
	Method  string         `json:"method,omitempty"  yaml:"method,omitempty"`
	Headers []KeyValuePair `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Header returns the value of the link header with the given key.
func (l Link) Header(key string) string {
	for _, header := range l.Headers {
		if header.Key == key {
			return header.Value
		}
	}

	return ""
}

// WithHeader returns a copy of the link with the header set.
func (l Link) WithHeader(key, value string) Link {
	headers := make([]KeyValuePair, 0, len(l.Headers)+1)

	for _, header := range l.Headers {
		if header.Key != key {
			headers = append(headers, header)
		}
	}

	l.Headers = append(headers, KeyValuePair{Key: key, Value: value})

	return l
}

// StandardResourceLinks are the navigation links of a collection.
type StandardResourceLinks struct {
	Self     *Link `json:"self,omitempty"     yaml:"self,omitempty"`
	Next     *Link `json:"next,omitempty"     yaml:"next,omitempty"`
	Previous *Link `json:"previous,omitempty" yaml:"previous,omitempty"`
}

// ResourceAttributes are the common attributes the service attaches to resources.
type ResourceAttributes struct {
	ObjectType string `json:"objectType,omitempty" yaml:"object_type,omitempty"`
	Etag       string `json:"etag,omitempty"       yaml:"etag,omitempty"`
}

// ResourceCollection is one page of a list response.
type ResourceCollection[T any] struct {
	TotalCount int                   `json:"totalCount" yaml:"total_count"`
	Items      []T                   `json:"items"      yaml:"items"`
	Links      StandardResourceLinks `json:"links"      yaml:"links"`
	Attributes ResourceAttributes    `json:"attributes" yaml:"attributes"`
}

// IsEmpty reports whether the page holds no items.
func (c *ResourceCollection[T]) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// SeekBasedResourceCollection is a page fetched with a continuation token. The token is read
// from the MS-ContinuationToken response header.
type SeekBasedResourceCollection[T any] struct {
	ResourceCollection[T] `yaml:",inline"`

	ContinuationToken string `json:"continuationToken,omitempty" yaml:"continuation_token,omitempty"`
}

// Filter is a simple field filter serialized into the filter query parameter.
type Filter struct {
	Field    string `json:"Field"`
	Value    string `json:"Value"`
	Operator string `json:"Operator"`
}

// Filter operators.
const (
	FilterOperatorEquals     = "equals"
	FilterOperatorStartsWith = "starts_with"
	FilterOperatorSubstring  = "substring"
)

// OffsetQuery returns the query parameters of an offset page request. The filter, when given,
// is JSON serialized with codec; url.Values takes care of URL encoding.
func OffsetQuery(size, offset int, filter *Filter, codec Codec) (url.Values, error) {
	query := url.Values{}

	if size > 0 {
		query.Set(QueryParamSize, strconv.Itoa(size))
	}

	if offset > 0 {
		query.Set(QueryParamOffset, strconv.Itoa(offset))
	}

	if filter != nil {
		if codec == nil {
			codec = DefaultCodec()
		}

		encoded, err := codec.Marshal(filter)
		if err != nil {
			return nil, err
		}

		query.Set(QueryParamFilter, string(encoded))
	}

	return query, nil
}

// OffsetLinks computes the links of an offset page from its size, offset and total count.
// base is the collection path and may carry extra query parameters (such as a filter) which
// are preserved. Links that cannot exist are nil.
func OffsetLinks(base string, size, offset, totalCount int) StandardResourceLinks {
	links := StandardResourceLinks{
		Self: offsetLink(base, size, offset),
	}

	if size <= 0 {
		return links
	}

	if offset+size < totalCount {
		links.Next = offsetLink(base, size, offset+size)
	}

	if offset > 0 {
		links.Previous = offsetLink(base, size, max(0, offset-size))
	}

	return links
}

func offsetLink(base string, size, offset int) *Link {
	parsed, err := url.Parse(base)
	if err != nil {
		return &Link{URI: base, Method: "GET"}
	}

	query := parsed.Query()

	if size > 0 {
		query.Set(QueryParamSize, strconv.Itoa(size))
	}

	query.Set(QueryParamOffset, strconv.Itoa(offset))
	parsed.RawQuery = query.Encode()

	return &Link{URI: parsed.String(), Method: "GET"}
}
