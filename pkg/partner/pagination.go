package partner

import (
	"context"
	"fmt"
)

// PageFetcher retrieves the page a link points to. Offset and seek based collections provide
// their own fetchers; the enumerator does not care which one it uses.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, link Link, operation SeekOperation) (*ResourceCollection[T], error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, link Link, operation SeekOperation) (*ResourceCollection[T], error)

// FetchPage implements PageFetcher.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, link Link, operation SeekOperation) (*ResourceCollection[T], error) {
	return f(ctx, link, operation)
}

// PageEnumerator walks a paginated collection using its Next and Previous links.
//
// Walking past the last page clears the current page and HasValue becomes false; the
// enumerator cannot move back from that state.
type PageEnumerator[T any] struct {
	fetcher PageFetcher[T]
	current *ResourceCollection[T]
	isFirst bool
	isLast  bool
}

// NewPageEnumerator creates an enumerator positioned on initial.
func NewPageEnumerator[T any](fetcher PageFetcher[T], initial *ResourceCollection[T]) *PageEnumerator[T] {
	enumerator := &PageEnumerator[T]{fetcher: fetcher}
	enumerator.setCurrent(initial)

	return enumerator
}

// Current returns the current page, or the zero collection once the enumerator is exhausted.
func (e *PageEnumerator[T]) Current() ResourceCollection[T] {
	if e.current == nil {
		return ResourceCollection[T]{}
	}

	return *e.current
}

// HasValue reports whether the current page holds items.
func (e *PageEnumerator[T]) HasValue() bool {
	return !e.current.IsEmpty()
}

// IsFirstPage reports whether the current page has no previous link.
func (e *PageEnumerator[T]) IsFirstPage() bool {
	return e.isFirst
}

// IsLastPage reports whether the current page has no next link.
func (e *PageEnumerator[T]) IsLastPage() bool {
	return e.isLast
}

// Next moves to the following page. On the last page it clears the current page instead.
// A failed fetch leaves the enumerator where it was.
func (e *PageEnumerator[T]) Next(ctx context.Context) error {
	if e.current == nil {
		return nil
	}

	next := e.current.Links.Next
	if next == nil {
		e.current = nil
		e.isFirst = false
		e.isLast = true

		return nil
	}

	return e.fetch(ctx, *next, SeekNext)
}

// Previous moves to the preceding page. On the first page it clears the current page instead.
func (e *PageEnumerator[T]) Previous(ctx context.Context) error {
	if e.current == nil {
		return nil
	}

	previous := e.current.Links.Previous
	if previous == nil {
		e.current = nil
		e.isFirst = true
		e.isLast = false

		return nil
	}

	return e.fetch(ctx, *previous, SeekPrevious)
}

// ForEach calls fn for every item, starting with the current page and moving forward until
// the collection is exhausted or fn returns an error.
func (e *PageEnumerator[T]) ForEach(ctx context.Context, fn func(item T) error) error {
	for e.HasValue() {
		for _, item := range e.current.Items {
			err := fn(item)
			if err != nil {
				return err
			}
		}

		err := e.Next(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// All collects every remaining item.
func (e *PageEnumerator[T]) All(ctx context.Context) ([]T, error) {
	var items []T

	err := e.ForEach(ctx, func(item T) error {
		items = append(items, item)

		return nil
	})
	if err != nil {
		return items, err
	}

	return items, nil
}

func (e *PageEnumerator[T]) fetch(ctx context.Context, link Link, operation SeekOperation) error {
	page, err := e.fetcher.FetchPage(ctx, link, operation)
	if err != nil {
		return fmt.Errorf("fetching %s page: %w", operation, err)
	}

	e.setCurrent(page)

	return nil
}

func (e *PageEnumerator[T]) setCurrent(page *ResourceCollection[T]) {
	e.current = page

	if page == nil {
		e.isFirst = false
		e.isLast = true

		return
	}

	e.isFirst = page.Links.Previous == nil
	e.isLast = page.Links.Next == nil
}
