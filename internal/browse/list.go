package browse

import (
	"context"
	"strings"
	"sync"

	"github.com/roach88/rmcat/internal/catalog"
)

// PrefetchThreshold is how close to the end of the list the last visible row
// must be before OnScroll loads the next page.
const PrefetchThreshold = 3

// Item is anything a list can show and select.
type Item interface {
	EntityID() int
}

// Pager is the use-case side of a list. *catalog.Catalog satisfies it.
type Pager[T any] interface {
	Page(ctx context.Context, page int) (catalog.Result[[]T], error)
	Search(ctx context.Context, name string, page int) (catalog.Result[[]T], error)
}

// ListState is a snapshot of a list screen.
type ListState[T any] struct {
	Items       []T
	Loading     bool
	Error       string
	Page        int
	CanLoadMore bool
	Source      catalog.Source
	// Query is the active name filter; empty for a plain listing.
	Query string
}

// List is the model of a paginated list screen.
type List[T Item] struct {
	pager Pager[T]

	mu    sync.Mutex
	state ListState[T]

	events emitter
}

// NewList returns a list positioned on page 1. Nothing is loaded until Load.
func NewList[T Item](pager Pager[T]) *List[T] {
	return &List[T]{
		pager:  pager,
		state:  ListState[T]{Page: 1, CanLoadMore: true},
		events: newEmitter(),
	}
}

// State returns a copy of the current state.
func (l *List[T]) State() ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.state
	s.Items = append([]T(nil), l.state.Items...)
	return s
}

// Events delivers one-shot events.
func (l *List[T]) Events() <-chan Event {
	return l.events.ch
}

// Load fetches the current page. Page 1 replaces the items; later pages append
// the items not already shown. A call while another load is running does
// nothing.
func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.state.Loading {
		l.mu.Unlock()
		return nil
	}
	l.state.Loading = true
	l.state.Error = ""
	page, query := l.state.Page, l.state.Query
	l.mu.Unlock()

	var (
		res catalog.Result[[]T]
		err error
	)
	if query != "" {
		res, err = l.pager.Search(ctx, query, page)
	} else {
		res, err = l.pager.Page(ctx, page)
	}

	l.mu.Lock()
	l.state.Loading = false
	if err != nil {
		msg := Message(err)
		l.state.Error = msg
		l.mu.Unlock()
		l.events.emit(ShowError{Message: msg})
		return err
	}

	var added int
	if page == 1 {
		l.state.Items, added = appendNew(nil, res.Data)
	} else {
		l.state.Items, added = appendNew(l.state.Items, res.Data)
	}
	l.state.CanLoadMore = added > 0
	l.state.Source = res.Source
	l.mu.Unlock()
	return nil
}

// LoadNextPage advances to the next page and loads it, unless a load is
// running or the list is exhausted.
func (l *List[T]) LoadNextPage(ctx context.Context) error {
	l.mu.Lock()
	if l.state.Loading || !l.state.CanLoadMore {
		l.mu.Unlock()
		return nil
	}
	l.state.Page++
	l.mu.Unlock()
	return l.Load(ctx)
}

// Retry starts over from page 1.
func (l *List[T]) Retry(ctx context.Context) error {
	l.reset(l.query(), 1)
	return l.Load(ctx)
}

// Goto discards the items and loads page of the current listing.
func (l *List[T]) Goto(ctx context.Context, page int) error {
	l.reset(l.query(), page)
	return l.Load(ctx)
}

// Search filters the list by name and reloads from page 1. A blank query
// returns to the plain listing.
func (l *List[T]) Search(ctx context.Context, query string) error {
	return l.SearchFrom(ctx, query, 1)
}

// SearchFrom is Search starting at page.
func (l *List[T]) SearchFrom(ctx context.Context, query string, page int) error {
	l.reset(strings.TrimSpace(query), page)
	return l.Load(ctx)
}

// OnScroll loads the next page once lastVisible is within PrefetchThreshold
// rows of the end. An empty list is left to Load.
func (l *List[T]) OnScroll(ctx context.Context, lastVisible int) error {
	l.mu.Lock()
	n := len(l.state.Items)
	near := n > 0 && lastVisible >= n-PrefetchThreshold
	l.mu.Unlock()
	if !near {
		return nil
	}
	return l.LoadNextPage(ctx)
}

// Select emits NavigateToDetail for id.
func (l *List[T]) Select(id int) {
	l.events.emit(NavigateToDetail{ID: id})
}

func (l *List[T]) query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Query
}

func (l *List[T]) reset(query string, page int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Page = page
	l.state.Items = nil
	l.state.CanLoadMore = true
	l.state.Query = query
	l.state.Error = ""
}

// appendNew appends the items of next whose id is not in items yet and
// reports how many were added.
func appendNew[T Item](items, next []T) ([]T, int) {
	seen := make(map[int]struct{}, len(items)+len(next))
	for _, it := range items {
		seen[it.EntityID()] = struct{}{}
	}
	added := 0
	for _, it := range next {
		if _, dup := seen[it.EntityID()]; dup {
			continue
		}
		seen[it.EntityID()] = struct{}{}
		items = append(items, it)
		added++
	}
	return items, added
}
