package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rmcat/internal/catalog"
)

type row struct {
	ID   int
	Name string
}

func (r row) EntityID() int { return r.ID }

// fakePager serves rows in pages of pageSize. Pages past the end fail like
// an offline repository falling back to its cache, unless fallback is nil.
type fakePager struct {
	mu       sync.Mutex
	rows     []row
	pageSize int
	err      error
	fallback []row
	calls    []string
}

func newFakePager(n, pageSize int) *fakePager {
	p := &fakePager{pageSize: pageSize}
	for i := 1; i <= n; i++ {
		p.rows = append(p.rows, row{ID: i, Name: fmt.Sprintf("Row %d", i)})
	}
	return p
}

func (p *fakePager) slice(rows []row, page int) (catalog.Result[[]row], error) {
	start := (page - 1) * p.pageSize
	if start >= len(rows) {
		if p.fallback != nil {
			return catalog.Result[[]row]{Data: p.fallback, Source: catalog.SourceCache}, nil
		}
		return catalog.Result[[]row]{}, catalog.Unavailable(catalog.EntityEpisode, "", nil)
	}
	end := min(start+p.pageSize, len(rows))
	return catalog.Result[[]row]{Data: rows[start:end], Source: catalog.SourceAPI}, nil
}

func (p *fakePager) Page(ctx context.Context, page int) (catalog.Result[[]row], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf("page %d", page))
	if p.err != nil {
		return catalog.Result[[]row]{}, p.err
	}
	return p.slice(p.rows, page)
}

func (p *fakePager) Search(ctx context.Context, name string, page int) (catalog.Result[[]row], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf("search %q %d", name, page))
	if p.err != nil {
		return catalog.Result[[]row]{}, p.err
	}
	var matched []row
	for _, r := range p.rows {
		if strings.Contains(strings.ToLower(r.Name), strings.ToLower(name)) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return catalog.Result[[]row]{}, catalog.NotFoundByName(catalog.EntityEpisode, name)
	}
	return p.slice(matched, page)
}

func (p *fakePager) ByID(ctx context.Context, id int) (catalog.Result[row], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf("get %d", id))
	if p.err != nil {
		return catalog.Result[row]{}, p.err
	}
	for _, r := range p.rows {
		if r.ID == id {
			return catalog.Result[row]{Data: r, Source: catalog.SourceCache}, nil
		}
	}
	return catalog.Result[row]{}, catalog.NotFound(catalog.EntityEpisode, id)
}

func rowIDs(rows []row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	default:
		t.Fatal("expected an event")
		return nil
	}
}

func TestList_InitialState(t *testing.T) {
	l := NewList[row](newFakePager(5, 2))
	s := l.State()
	assert.Equal(t, 1, s.Page)
	assert.True(t, s.CanLoadMore)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Items)
}

func TestList_LoadAndPaginate(t *testing.T) {
	p := newFakePager(5, 2)
	l := NewList[row](p)
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	assert.Equal(t, []int{1, 2}, rowIDs(l.State().Items))
	assert.Equal(t, catalog.SourceAPI, l.State().Source)

	require.NoError(t, l.LoadNextPage(ctx))
	require.NoError(t, l.LoadNextPage(ctx))
	s := l.State()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rowIDs(s.Items))
	assert.Equal(t, 3, s.Page)
	assert.True(t, s.CanLoadMore)
}

func TestList_ExhaustedWhenPageAddsNothing(t *testing.T) {
	p := newFakePager(4, 2)
	l := NewList[row](p)
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	require.NoError(t, l.LoadNextPage(ctx))

	// Offline: page 3 falls back to every cached row, all already shown.
	p.fallback = p.rows
	require.NoError(t, l.LoadNextPage(ctx))
	s := l.State()
	assert.False(t, s.CanLoadMore)
	assert.Equal(t, []int{1, 2, 3, 4}, rowIDs(s.Items), "fallback rows are not duplicated")
	assert.Equal(t, catalog.SourceCache, s.Source)

	calls := len(p.calls)
	require.NoError(t, l.LoadNextPage(ctx))
	assert.Len(t, p.calls, calls, "exhausted list does not fetch")
}

func TestList_ErrorSetsStateAndEmits(t *testing.T) {
	p := newFakePager(4, 2)
	p.err = catalog.Unavailable(catalog.EntityLocation, "", errors.New("dial tcp: refused"))
	l := NewList[row](p)

	err := l.Load(context.Background())
	require.Error(t, err)

	msg := "Unable to load locations. Please check your connection and try again."
	assert.Equal(t, msg, l.State().Error)
	assert.False(t, l.State().Loading)
	assert.Equal(t, ShowError{Message: msg}, nextEvent(t, l.Events()))
}

func TestList_RetryStartsOver(t *testing.T) {
	p := newFakePager(6, 2)
	l := NewList[row](p)
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	require.NoError(t, l.LoadNextPage(ctx))

	p.err = errors.New("boom")
	require.Error(t, l.LoadNextPage(ctx))
	assert.Equal(t, "boom", l.State().Error)

	p.err = nil
	require.NoError(t, l.Retry(ctx))
	s := l.State()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, []int{1, 2}, rowIDs(s.Items))
	assert.Empty(t, s.Error)
}

func TestList_Search(t *testing.T) {
	p := newFakePager(25, 5)
	l := NewList[row](p)
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	require.NoError(t, l.Search(ctx, "  row 2 "))
	s := l.State()
	assert.Equal(t, "row 2", s.Query)
	// Row 2 and Row 20..24 on the first page of five
	assert.Equal(t, []int{2, 20, 21, 22, 23}, rowIDs(s.Items))

	require.NoError(t, l.LoadNextPage(ctx))
	assert.Equal(t, []int{2, 20, 21, 22, 23, 24, 25}, rowIDs(l.State().Items))
	assert.Contains(t, p.calls, `search "row 2" 2`)

	require.NoError(t, l.Search(ctx, ""))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rowIDs(l.State().Items))
	assert.Empty(t, l.State().Query)
}

func TestList_Goto(t *testing.T) {
	p := newFakePager(30, 10)
	l := NewList[row](p)
	ctx := context.Background()

	require.NoError(t, l.Goto(ctx, 2))
	s := l.State()
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, 11, s.Items[0].ID)
	assert.Len(t, s.Items, 10)

	require.NoError(t, l.SearchFrom(ctx, "row 1", 2))
	// Row 1 and Row 10..19 match; page 2 of ten holds only Row 19.
	assert.Equal(t, []int{19}, rowIDs(l.State().Items))
	assert.Equal(t, "row 1", l.State().Query)
}

func TestList_SearchNoMatch(t *testing.T) {
	l := NewList[row](newFakePager(5, 5))

	err := l.Search(context.Background(), "Pickle")
	require.Error(t, err)
	assert.Equal(t, "No episodes found matching 'Pickle'", l.State().Error)
}

func TestList_OnScroll(t *testing.T) {
	p := newFakePager(30, 10)
	l := NewList[row](p)
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))

	require.NoError(t, l.OnScroll(ctx, 5))
	assert.Equal(t, 1, l.State().Page, "far from the end")

	require.NoError(t, l.OnScroll(ctx, 7))
	assert.Equal(t, 2, l.State().Page)
	assert.Len(t, l.State().Items, 20)
}

func TestList_OnScrollBeforeLoad(t *testing.T) {
	p := newFakePager(30, 10)
	l := NewList[row](p)

	require.NoError(t, l.OnScroll(context.Background(), 0))
	assert.Empty(t, p.calls)
	assert.Equal(t, 1, l.State().Page)
	assert.Empty(t, l.State().Items)
}

func TestList_Select(t *testing.T) {
	l := NewList[row](newFakePager(1, 1))
	l.Select(42)
	assert.Equal(t, NavigateToDetail{ID: 42}, nextEvent(t, l.Events()))
}

func TestList_StateIsACopy(t *testing.T) {
	l := NewList[row](newFakePager(2, 2))
	require.NoError(t, l.Load(context.Background()))

	s := l.State()
	s.Items[0].Name = "mutated"
	assert.Equal(t, "Row 1", l.State().Items[0].Name)
}

func TestList_EventsDropWhenFull(t *testing.T) {
	l := NewList[row](newFakePager(1, 1))
	for i := 0; i < eventBuffer+5; i++ {
		l.Select(i)
	}
	assert.Len(t, l.Events(), eventBuffer)
}

func TestDetail(t *testing.T) {
	p := newFakePager(3, 3)
	d := NewDetail[row](p, 2)
	ctx := context.Background()

	assert.False(t, d.State().Loaded)
	require.NoError(t, d.Load(ctx))
	s := d.State()
	assert.True(t, s.Loaded)
	assert.Equal(t, "Row 2", s.Item.Name)
	assert.Equal(t, catalog.SourceCache, s.Source)

	d.Back()
	assert.Equal(t, NavigateBack{}, nextEvent(t, d.Events()))
}

func TestDetail_ErrorAndRetry(t *testing.T) {
	p := newFakePager(3, 3)
	p.err = catalog.Unavailable(catalog.EntityCharacter, "", nil)
	d := NewDetail[row](p, 2)
	ctx := context.Background()

	require.Error(t, d.Load(ctx))
	assert.Equal(t, "Unable to load character. Please check your connection and try again.", d.State().Error)

	p.err = nil
	require.NoError(t, d.Retry(ctx))
	assert.Empty(t, d.State().Error)
	assert.Equal(t, 2, d.ID())
}

func TestDetail_NotFound(t *testing.T) {
	d := NewDetail[row](newFakePager(3, 3), 99)
	require.Error(t, d.Load(context.Background()))
	assert.Equal(t, "Episode #99 does not exist", d.State().Error)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{catalog.NotFound(catalog.EntityCharacter, 7), "Character #7 does not exist"},
		{catalog.NotFoundByName(catalog.EntityLocation, "Citadel"), "No locations found matching 'Citadel'"},
		{catalog.InvalidID(catalog.EntityEpisode, -1), "Invalid episode ID: -1"},
		{catalog.InvalidPage(catalog.EntityEpisode, 0), "Invalid page number: 0"},
		{catalog.InvalidSearchQuery(catalog.EntityCharacter, " "), "Please enter a valid character name to search"},
		{catalog.Unavailable(catalog.EntityEpisode, "", nil), "Unable to load episodes. Please check your connection and try again."},
		{catalog.InvalidData(catalog.EntityLocation, "", nil), "Location data is corrupted. Please try again later."},
		{fmt.Errorf("wrapped: %w", catalog.NotFound(catalog.EntityLocation, 3)), "Location #3 does not exist"},
		{errors.New("socket closed"), "socket closed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err))
	}

	_, err := catalog.NewEpisode(catalog.Episode{ID: 1})
	require.Error(t, err)
	assert.Equal(t, "Invalid episode name: name cannot be blank", Message(err))
}

func TestCatalogSatisfiesInterfaces(t *testing.T) {
	var c *catalog.Catalog[catalog.Episode]
	var _ Pager[catalog.Episode] = c
	var _ Finder[catalog.Episode] = c
	_ = NewList[catalog.Episode](c)
}
