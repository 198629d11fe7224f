package browse

import (
	"context"
	"sync"

	"github.com/roach88/rmcat/internal/catalog"
)

// Finder is the use-case side of a detail screen. *catalog.Catalog satisfies
// it.
type Finder[T any] interface {
	ByID(ctx context.Context, id int) (catalog.Result[T], error)
}

// DetailState is a snapshot of a detail screen.
type DetailState[T any] struct {
	Item    T
	Loaded  bool
	Loading bool
	Error   string
	Source  catalog.Source
}

// Detail is the model of a single-item screen.
type Detail[T any] struct {
	finder Finder[T]
	id     int

	mu    sync.Mutex
	state DetailState[T]

	events emitter
}

// NewDetail returns the model for item id. Nothing is loaded until Load.
func NewDetail[T any](finder Finder[T], id int) *Detail[T] {
	return &Detail[T]{finder: finder, id: id, events: newEmitter()}
}

// ID returns the item this screen shows.
func (d *Detail[T]) ID() int {
	return d.id
}

// State returns the current state.
func (d *Detail[T]) State() DetailState[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Events delivers one-shot events.
func (d *Detail[T]) Events() <-chan Event {
	return d.events.ch
}

// Load fetches the item.
func (d *Detail[T]) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.state.Loading {
		d.mu.Unlock()
		return nil
	}
	d.state.Loading = true
	d.state.Error = ""
	d.mu.Unlock()

	res, err := d.finder.ByID(ctx, d.id)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Loading = false
	if err != nil {
		d.state.Error = DetailMessage(err)
		return err
	}
	d.state.Item = res.Data
	d.state.Loaded = true
	d.state.Source = res.Source
	return nil
}

// Retry loads the item again.
func (d *Detail[T]) Retry(ctx context.Context) error {
	return d.Load(ctx)
}

// Back emits NavigateBack.
func (d *Detail[T]) Back() {
	d.events.emit(NavigateBack{})
}
