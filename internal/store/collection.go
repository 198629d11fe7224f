package store

import "fmt"

// KeyFunc extracts the id and display name of an item.
type KeyFunc[T any] func(item T) (id int, name string)

// Collection is a typed view of one cache table. Items are stored as JSON.
type Collection[T any] struct {
	store *Store
	kind  Kind
	key   KeyFunc[T]
}

// NewCollection returns a typed view of the kind table.
// It panics if kind is not a known table.
func NewCollection[T any](s *Store, kind Kind, key KeyFunc[T]) *Collection[T] {
	if !kind.Valid() {
		panic(fmt.Sprintf("store: unknown kind %q", kind))
	}
	return &Collection[T]{store: s, kind: kind, key: key}
}

// Kind returns the table this collection reads and writes.
func (c *Collection[T]) Kind() Kind {
	return c.kind
}
