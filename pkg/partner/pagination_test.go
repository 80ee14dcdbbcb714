package partner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

var errFetch = errors.New("fetch failed")

type testResource struct {
	ID   string
	Name string
}

// mockPages serves pages keyed by link URI.
type mockPages struct {
	pages      map[string]*partner.ResourceCollection[testResource]
	operations []partner.SeekOperation
	fail       bool
}

func (m *mockPages) FetchPage(
	_ context.Context,
	link partner.Link,
	operation partner.SeekOperation,
) (*partner.ResourceCollection[testResource], error) {
	m.operations = append(m.operations, operation)

	if m.fail {
		return nil, errFetch
	}

	return m.pages[link.URI], nil
}

func threePages() *mockPages {
	page := func(ids []string, previous, next string) *partner.ResourceCollection[testResource] {
		collection := &partner.ResourceCollection[testResource]{TotalCount: len(ids)}
		for _, id := range ids {
			collection.Items = append(collection.Items, testResource{ID: id, Name: "Resource " + id})
		}

		if previous != "" {
			collection.Links.Previous = &partner.Link{URI: previous}
		}

		if next != "" {
			collection.Links.Next = &partner.Link{URI: next}
		}

		return collection
	}

	return &mockPages{pages: map[string]*partner.ResourceCollection[testResource]{
		"/p1": page([]string{"1", "2"}, "", "/p2"),
		"/p2": page([]string{"3", "4"}, "/p1", "/p3"),
		"/p3": page([]string{"5"}, "/p2", ""),
	}}
}

func TestPageEnumerator_Navigation(t *testing.T) {
	t.Parallel()

	fetcher := threePages()
	ctx := context.Background()

	enumerator := partner.NewPageEnumerator[testResource](fetcher, fetcher.pages["/p1"])
	assert.True(t, enumerator.HasValue())
	assert.True(t, enumerator.IsFirstPage())
	assert.False(t, enumerator.IsLastPage())

	require.NoError(t, enumerator.Next(ctx))
	assert.Equal(t, "3", enumerator.Current().Items[0].ID)
	assert.False(t, enumerator.IsFirstPage())
	assert.False(t, enumerator.IsLastPage())

	require.NoError(t, enumerator.Previous(ctx))
	assert.True(t, enumerator.IsFirstPage())

	require.NoError(t, enumerator.Next(ctx))
	require.NoError(t, enumerator.Next(ctx))
	assert.True(t, enumerator.IsLastPage())
	assert.Len(t, enumerator.Current().Items, 1)

	// Moving past the last page exhausts the enumerator.
	require.NoError(t, enumerator.Next(ctx))
	assert.False(t, enumerator.HasValue())
	assert.True(t, enumerator.IsLastPage())
	assert.Empty(t, enumerator.Current().Items)

	require.NoError(t, enumerator.Previous(ctx))
	assert.False(t, enumerator.HasValue())

	assert.Equal(t,
		[]partner.SeekOperation{partner.SeekNext, partner.SeekPrevious, partner.SeekNext, partner.SeekNext},
		fetcher.operations,
	)
}

func TestPageEnumerator_PreviousBeforeFirst(t *testing.T) {
	t.Parallel()

	fetcher := threePages()

	enumerator := partner.NewPageEnumerator[testResource](fetcher, fetcher.pages["/p1"])
	require.NoError(t, enumerator.Previous(context.Background()))

	assert.False(t, enumerator.HasValue())
	assert.True(t, enumerator.IsFirstPage())
	assert.Empty(t, fetcher.operations)
}

func TestPageEnumerator_All(t *testing.T) {
	t.Parallel()

	fetcher := threePages()

	items, err := partner.NewPageEnumerator[testResource](fetcher, fetcher.pages["/p1"]).All(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "5", items[4].ID)
}

func TestPageEnumerator_ForEachStopsOnError(t *testing.T) {
	t.Parallel()

	fetcher := threePages()

	var seen []string

	err := partner.NewPageEnumerator[testResource](fetcher, fetcher.pages["/p1"]).
		ForEach(context.Background(), func(item testResource) error {
			seen = append(seen, item.ID)
			if item.ID == "3" {
				return errFetch
			}

			return nil
		})
	require.ErrorIs(t, err, errFetch)
	assert.Equal(t, []string{"1", "2", "3"}, seen)
}

func TestPageEnumerator_FetchError(t *testing.T) {
	t.Parallel()

	fetcher := threePages()
	enumerator := partner.NewPageEnumerator[testResource](fetcher, fetcher.pages["/p1"])
	fetcher.fail = true

	err := enumerator.Next(context.Background())
	require.ErrorIs(t, err, errFetch)

	// The enumerator stays on the page it had.
	assert.True(t, enumerator.HasValue())
	assert.Equal(t, "1", enumerator.Current().Items[0].ID)
}

func TestPageEnumerator_EmptyInitialPage(t *testing.T) {
	t.Parallel()

	fetcher := partner.PageFetcherFunc[testResource](func(context.Context, partner.Link, partner.SeekOperation) (*partner.ResourceCollection[testResource], error) {
		t.Error("unexpected fetch")

		return nil, errFetch
	})

	enumerator := partner.NewPageEnumerator[testResource](fetcher, &partner.ResourceCollection[testResource]{})
	assert.False(t, enumerator.HasValue())
	assert.True(t, enumerator.IsFirstPage())
	assert.True(t, enumerator.IsLastPage())

	items, err := enumerator.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}
