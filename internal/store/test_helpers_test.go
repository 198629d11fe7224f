package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/rmcat/internal/testutil"
)

// item is a minimal cached entity used by the collection tests.
type item struct {
	ID   int      `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

func itemKey(it item) (int, string) { return it.ID, it.Name }

// createTestStore creates a new on-disk store in a temp directory.
func createTestStore(t *testing.T) (*Store, *testutil.DeterministicClock) {
	t.Helper()
	clock := testutil.NewDeterministicClock()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func createTestCollection(t *testing.T) (*Collection[item], *Store) {
	t.Helper()
	s, _ := createTestStore(t)
	return NewCollection(s, KindCharacters, itemKey), s
}

func items(ids ...int) []item {
	out := make([]item, len(ids))
	for i, id := range ids {
		out[i] = item{ID: id, Name: "item"}
	}
	return out
}
