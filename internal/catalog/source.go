package catalog

import "context"

// Source identifies where a result was served from.
type Source string

const (
	SourceAPI   Source = "api"
	SourceCache Source = "cache"
)

// Result pairs data with the source that produced it.
type Result[T any] struct {
	Data   T
	Source Source
}

// Repository is the data access contract for one entity type.
//
// List and Get may be answered from the local cache; Search always goes to the
// remote catalog.
type Repository[T any] interface {
	List(ctx context.Context, page int) (Result[[]T], error)
	Get(ctx context.Context, id int) (Result[T], error)
	Search(ctx context.Context, name string, page int) (Result[[]T], error)
}
