package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty database
// 1 - Entity tables with page index
const currentSchemaVersion = 1

// Kind names an entity table.
type Kind string

const (
	KindCharacters Kind = "characters"
	KindLocations  Kind = "locations"
	KindEpisodes   Kind = "episodes"
)

// Kinds lists every table in a stable order.
var Kinds = []Kind{KindCharacters, KindLocations, KindEpisodes}

// Valid reports whether k names a known table. Table names are interpolated
// into SQL, so every query path checks this first.
func (k Kind) Valid() bool {
	switch k {
	case KindCharacters, KindLocations, KindEpisodes:
		return true
	}
	return false
}

// Store is the local catalog cache.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for fetched_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time. Background refreshes write
	// while foreground reads run, so keep a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return newWithDB(db, opts...), nil
}

func newWithDB(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// TableStats summarizes one cache table.
type TableStats struct {
	Kind        Kind      `json:"kind"`
	Rows        int       `json:"rows"`
	Pages       int       `json:"pages"`
	LastFetched time.Time `json:"last_fetched,omitempty"`
}

// Stats reports row counts, distinct list pages and the newest fetch time for
// every table. Individually fetched rows (page 0) are not counted as a page.
func (s *Store) Stats(ctx context.Context) ([]TableStats, error) {
	stats := make([]TableStats, 0, len(Kinds))
	for _, kind := range Kinds {
		var (
			ts     = TableStats{Kind: kind}
			newest sql.NullInt64
		)
		err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
			SELECT COUNT(*), COUNT(DISTINCT NULLIF(page, 0)), MAX(fetched_at)
			FROM %s
		`, kind)).Scan(&ts.Rows, &ts.Pages, &newest)
		if err != nil {
			return nil, fmt.Errorf("stats %s: %w", kind, err)
		}
		if newest.Valid {
			ts.LastFetched = time.UnixMilli(newest.Int64).UTC()
		}
		stats = append(stats, ts)
	}
	return stats, nil
}

// Clear deletes every row of one table.
func (s *Store) Clear(ctx context.Context, kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("clear: unknown kind %q", kind)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", kind)); err != nil {
		return fmt.Errorf("clear %s: %w", kind, err)
	}
	return nil
}

// ClearAll deletes every row of every table in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear all: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, kind := range Kinds {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", kind)); err != nil {
			return fmt.Errorf("clear all: %s: %w", kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear all: commit: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema version.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
