package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeError reports a cached payload that no longer decodes into the
// collection's type.
type DecodeError struct {
	Kind Kind
	ID   int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %d: %v", e.Kind, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err was caused by an undecodable payload.
func IsCorrupt(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Page returns the items cached for a list page, ordered by id.
// An uncached page returns an empty slice.
func (c *Collection[T]) Page(ctx context.Context, page int) ([]T, error) {
	rows, err := c.store.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, payload FROM %s
		WHERE page = ?
		ORDER BY id ASC
	`, c.kind), page)
	if err != nil {
		return nil, fmt.Errorf("read %s page %d: %w", c.kind, page, err)
	}
	defer rows.Close()

	return c.scanAll(rows)
}

// All returns every cached item ordered by page, then id.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	rows, err := c.store.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, payload FROM %s
		ORDER BY page ASC, id ASC
	`, c.kind))
	if err != nil {
		return nil, fmt.Errorf("read all %s: %w", c.kind, err)
	}
	defer rows.Close()

	return c.scanAll(rows)
}

// Get returns the cached item with id and whether it was found.
func (c *Collection[T]) Get(ctx context.Context, id int) (T, bool, error) {
	var (
		zero    T
		payload string
	)
	err := c.store.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT payload FROM %s WHERE id = ?
	`, c.kind), id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("read %s %d: %w", c.kind, id, err)
	}

	item, err := c.decode(id, payload)
	if err != nil {
		return zero, false, err
	}
	return item, true, nil
}

// Count returns the number of cached items.
func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", c.kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.kind, err)
	}
	return n, nil
}

func (c *Collection[T]) scanAll(rows *sql.Rows) ([]T, error) {
	items := []T{}
	for rows.Next() {
		var (
			id      int
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.kind, err)
		}
		item, err := c.decode(id, payload)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.kind, err)
	}
	return items, nil
}

func (c *Collection[T]) decode(id int, payload string) (T, error) {
	var item T
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return item, &DecodeError{Kind: c.kind, ID: id, Err: err}
	}
	return item, nil
}
