package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	err := NotFound(EntityEpisode, 42)
	assert.Equal(t, "[EPISODE_NOT_FOUND] Episode with ID 42 does not exist", err.Error())
}

func TestError_FormatWithCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable(EntityLocation, "", cause)
	assert.Equal(t,
		"[LOCATION_REPOSITORY_UNAVAILABLE] The location catalog is temporarily unavailable: dial tcp: connection refused",
		err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestError_Predicates(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		notFound    bool
		validation  bool
		unavailable bool
		invalidData bool
	}{
		{"not found", NotFound(EntityCharacter, 1), true, false, false, false},
		{"not found by name", NotFoundByName(EntityCharacter, "zzz"), true, false, false, false},
		{"invalid page", InvalidPage(EntityCharacter, 0), false, true, false, false},
		{"invalid query", InvalidSearchQuery(EntityCharacter, ""), false, true, false, false},
		{"unavailable", Unavailable(EntityCharacter, "", nil), false, false, true, false},
		{"invalid data", InvalidData(EntityCharacter, "", nil), false, false, false, true},
		{"wrapped", fmt.Errorf("outer: %w", NotFound(EntityEpisode, 2)), true, false, false, false},
		{"foreign", errors.New("boom"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.unavailable, IsUnavailable(tt.err))
			assert.Equal(t, tt.invalidData, IsInvalidData(tt.err))
		})
	}
}

func TestError_DefaultMessages(t *testing.T) {
	assert.Equal(t, "Character data is invalid or corrupted", InvalidData(EntityCharacter, "", nil).Message)
	assert.Equal(t, "No episodes found matching name 'Pilot'", NotFoundByName(EntityEpisode, "Pilot").Message)
	assert.Equal(t, "Invalid page number: -1. Page must be greater than 0", InvalidPage(EntityLocation, -1).Message)
}

func TestParseEntity(t *testing.T) {
	for _, in := range []string{"character", "characters", "Characters", " CHARACTER "} {
		e, err := ParseEntity(in)
		require.NoError(t, err, in)
		assert.Equal(t, EntityCharacter, e)
	}

	e, err := ParseEntity("episodes")
	require.NoError(t, err)
	assert.Equal(t, EntityEpisode, e)

	_, err = ParseEntity("planets")
	assert.Error(t, err)
}

func TestEntity_Names(t *testing.T) {
	assert.Equal(t, "Location", EntityLocation.Title())
	assert.Equal(t, "episodes", EntityEpisode.Plural())
}
