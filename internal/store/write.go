package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// SavePage upserts items and tags each with page.
// All items are written in one transaction.
func (c *Collection[T]) SavePage(ctx context.Context, page int, items []T) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save %s page %d: begin tx: %w", c.kind, page, err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, page, name, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			page = excluded.page,
			name = excluded.name,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, c.kind))
	if err != nil {
		return fmt.Errorf("save %s page %d: prepare: %w", c.kind, page, err)
	}
	defer stmt.Close()

	fetchedAt := c.store.now().UnixMilli()
	for _, item := range items {
		id, name := c.key(item)
		payload, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("save %s %d: marshal: %w", c.kind, id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, page, name, string(payload), fetchedAt); err != nil {
			return fmt.Errorf("save %s %d: %w", c.kind, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save %s page %d: commit: %w", c.kind, page, err)
	}
	return nil
}

// SaveOne upserts a single item. An existing row keeps its page; a new row
// gets page 0.
func (c *Collection[T]) SaveOne(ctx context.Context, item T) error {
	id, name := c.key(item)
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("save %s %d: marshal: %w", c.kind, id, err)
	}

	_, err = c.store.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, page, name, payload, fetched_at)
		VALUES (?, 0, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, c.kind), id, name, string(payload), c.store.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save %s %d: %w", c.kind, id, err)
	}
	return nil
}

// Clear deletes every row of the collection's table.
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.store.Clear(ctx, c.kind)
}
