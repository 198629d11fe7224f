package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRepo records the arguments of the last call.
type recordingRepo[T any] struct {
	calls     int
	lastPage  int
	lastID    int
	lastQuery string
}

func (r *recordingRepo[T]) List(_ context.Context, page int) (Result[[]T], error) {
	r.calls++
	r.lastPage = page
	return Result[[]T]{Source: SourceAPI}, nil
}

func (r *recordingRepo[T]) Get(_ context.Context, id int) (Result[T], error) {
	r.calls++
	r.lastID = id
	return Result[T]{Source: SourceCache}, nil
}

func (r *recordingRepo[T]) Search(_ context.Context, name string, page int) (Result[[]T], error) {
	r.calls++
	r.lastQuery = name
	r.lastPage = page
	return Result[[]T]{Source: SourceAPI}, nil
}

func TestCatalog_PageValidation(t *testing.T) {
	repo := &recordingRepo[Character]{}
	c := NewCatalog[Character](EntityCharacter, repo)

	_, err := c.Page(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidPage, CodeOf(err))
	assert.Equal(t, 0, repo.calls, "repository must not be called for invalid input")

	res, err := c.Page(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, res.Source)
	assert.Equal(t, 3, repo.lastPage)
}

func TestCatalog_ByIDValidation(t *testing.T) {
	repo := &recordingRepo[Location]{}
	c := NewCatalog[Location](EntityLocation, repo)

	_, err := c.ByID(context.Background(), -1)
	require.Error(t, err)
	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidID, ce.Code)
	assert.Equal(t, EntityLocation, ce.Entity)
	assert.Equal(t, 0, repo.calls)

	res, err := c.ByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, 7, repo.lastID)
}

func TestCatalog_SearchValidation(t *testing.T) {
	repo := &recordingRepo[Episode]{}
	c := NewCatalog[Episode](EntityEpisode, repo)

	_, err := c.Search(context.Background(), "   ", 1)
	assert.Equal(t, CodeInvalidSearchQuery, CodeOf(err))

	_, err = c.Search(context.Background(), "Pilot", 0)
	assert.Equal(t, CodeInvalidPage, CodeOf(err))
	assert.Equal(t, 0, repo.calls)

	_, err = c.Search(context.Background(), "  Pilot ", 2)
	require.NoError(t, err)
	assert.Equal(t, "Pilot", repo.lastQuery)
	assert.Equal(t, 2, repo.lastPage)
}

func TestNormalizeQuery(t *testing.T) {
	// "e" + combining acute accent composes to a single rune under NFC.
	assert.Equal(t, "Pok\u00e9mon", NormalizeQuery(" Poke\u0301mon "))
	assert.Equal(t, "", NormalizeQuery("\n\t"))
}

func TestNewService(t *testing.T) {
	svc := NewService(&recordingRepo[Character]{}, &recordingRepo[Location]{}, &recordingRepo[Episode]{})
	assert.Equal(t, EntityCharacter, svc.Characters.Entity())
	assert.Equal(t, EntityLocation, svc.Locations.Entity())
	assert.Equal(t, EntityEpisode, svc.Episodes.Entity())
}
