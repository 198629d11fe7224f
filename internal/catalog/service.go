package catalog

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Catalog applies the query rules of one entity before delegating to its
// repository.
type Catalog[T any] struct {
	entity Entity
	repo   Repository[T]
}

// NewCatalog wraps repo with the query rules for entity.
func NewCatalog[T any](entity Entity, repo Repository[T]) *Catalog[T] {
	return &Catalog[T]{entity: entity, repo: repo}
}

// Entity returns the entity this catalog serves.
func (c *Catalog[T]) Entity() Entity {
	return c.entity
}

// Page returns one page of entities. Pages start at 1.
func (c *Catalog[T]) Page(ctx context.Context, page int) (Result[[]T], error) {
	if page < 1 {
		return Result[[]T]{}, InvalidPage(c.entity, page)
	}
	return c.repo.List(ctx, page)
}

// ByID returns a single entity.
func (c *Catalog[T]) ByID(ctx context.Context, id int) (Result[T], error) {
	if id < 1 {
		return Result[T]{}, InvalidID(c.entity, id)
	}
	return c.repo.Get(ctx, id)
}

// Search returns one page of entities whose name matches name.
// The query is trimmed and NFC-normalized; matching itself is done remotely
// and is case-insensitive.
func (c *Catalog[T]) Search(ctx context.Context, name string, page int) (Result[[]T], error) {
	query := NormalizeQuery(name)
	if query == "" {
		return Result[[]T]{}, InvalidSearchQuery(c.entity, name)
	}
	if page < 1 {
		return Result[[]T]{}, InvalidPage(c.entity, page)
	}
	return c.repo.Search(ctx, query, page)
}

// NormalizeQuery trims surrounding whitespace and applies Unicode NFC so that
// visually identical queries are sent identically.
func NormalizeQuery(q string) string {
	return norm.NFC.String(strings.TrimSpace(q))
}

// Service groups the three entity catalogs.
type Service struct {
	Characters *Catalog[Character]
	Locations  *Catalog[Location]
	Episodes   *Catalog[Episode]
}

// NewService builds a Service over the three repositories.
func NewService(characters Repository[Character], locations Repository[Location], episodes Repository[Episode]) *Service {
	return &Service{
		Characters: NewCatalog(EntityCharacter, characters),
		Locations:  NewCatalog(EntityLocation, locations),
		Episodes:   NewCatalog(EntityEpisode, episodes),
	}
}
