package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_Uncached(t *testing.T) {
	c, _ := createTestCollection(t)

	got, err := c.Page(context.Background(), 9)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAll_OrderedByPageThenID(t *testing.T) {
	c, _ := createTestCollection(t)
	ctx := context.Background()

	require.NoError(t, c.SavePage(ctx, 2, items(22, 21)))
	require.NoError(t, c.SavePage(ctx, 1, items(3, 1)))
	require.NoError(t, c.SaveOne(ctx, item{ID: 50, Name: "loose"}))

	all, err := c.All(ctx)
	require.NoError(t, err)

	ids := make([]int, len(all))
	for i, it := range all {
		ids[i] = it.ID
	}
	assert.Equal(t, []int{50, 1, 3, 21, 22}, ids)
}

func TestGet_Missing(t *testing.T) {
	c, _ := createTestCollection(t)

	_, ok, err := c.Get(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_CorruptPayload(t *testing.T) {
	c, s := createTestCollection(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO characters (id, page, name, payload, fetched_at) VALUES (1, 1, 'x', '{not json', 0)`)
	require.NoError(t, err)

	_, _, err = c.Get(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode characters 1")
	assert.True(t, IsCorrupt(err))

	_, err = c.Page(ctx, 1)
	require.Error(t, err)
	assert.True(t, IsCorrupt(err))

	_, err = c.All(ctx)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindCharacters, de.Kind)
	assert.Equal(t, 1, de.ID)
}

func TestIsCorrupt_OtherErrors(t *testing.T) {
	assert.False(t, IsCorrupt(errors.New("disk I/O error")))
	assert.False(t, IsCorrupt(nil))
}

func TestPage_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT id, payload FROM episodes").
		WithArgs(3).
		WillReturnError(boom)

	c := NewCollection(newWithDB(db), KindEpisodes, itemKey)
	_, err = c.Page(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "read episodes page 3")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAll_ScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "payload"}).
		AddRow(1, `{"id":1,"name":"Pilot"}`).
		AddRow(2, `{"id":2,"name":"Lawnmower Dog"}`)
	mock.ExpectQuery("SELECT id, payload FROM episodes").WillReturnRows(rows)

	c := NewCollection(newWithDB(db), KindEpisodes, itemKey)
	all, err := c.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Lawnmower Dog", all[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("locked"))

	c := NewCollection(newWithDB(db), KindLocations, itemKey)
	_, err = c.Count(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count locations")
}
