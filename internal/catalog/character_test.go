package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCharacter() Character {
	return Character{
		ID:       1,
		Name:     "Rick Sanchez",
		Status:   StatusAlive,
		Species:  "Human",
		Gender:   GenderMale,
		Origin:   CharacterLocation{Name: "Earth (C-137)", URL: "https://rickandmortyapi.com/api/location/1"},
		Location: CharacterLocation{Name: "Citadel of Ricks", URL: "https://rickandmortyapi.com/api/location/3"},
		Image:    "https://rickandmortyapi.com/api/character/avatar/1.jpeg",
		Episodes: []string{"https://rickandmortyapi.com/api/episode/1"},
		URL:      "https://rickandmortyapi.com/api/character/1",
		Created:  "2017-11-04T18:48:46.250Z",
	}
}

func TestNewCharacter_Valid(t *testing.T) {
	c, err := NewCharacter(validCharacter())
	require.NoError(t, err)
	assert.Equal(t, "Rick Sanchez", c.Name)
	assert.Equal(t, 1, c.EntityID())
}

func TestNewCharacter_Invariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Character)
		code   ErrorCode
		field  string
	}{
		{"zero id", func(c *Character) { c.ID = 0 }, CodeInvalidID, "id"},
		{"negative id", func(c *Character) { c.ID = -3 }, CodeInvalidID, "id"},
		{"blank name", func(c *Character) { c.Name = "   " }, CodeInvalidName, "name"},
		{"blank image", func(c *Character) { c.Image = "" }, CodeInvalidImage, "image"},
		{"blank url", func(c *Character) { c.URL = "\t" }, CodeInvalidURL, "url"},
		{"no episodes", func(c *Character) { c.Episodes = nil }, CodeInvalidEpisodes, "episode"},
		{"blank origin name", func(c *Character) { c.Origin.Name = "" }, CodeInvalidLocation, "location.name"},
		{"bad location url", func(c *Character) { c.Location.URL = "ftp://nowhere" }, CodeInvalidLocation, "location.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCharacter()
			tt.mutate(&c)

			_, err := NewCharacter(c)
			require.Error(t, err)

			ce, ok := AsError(err)
			require.True(t, ok, "expected *catalog.Error, got %T", err)
			assert.Equal(t, EntityCharacter, ce.Entity)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, tt.field, ce.Field)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestCharacterLocation_EmptyURLAllowed(t *testing.T) {
	loc, err := NewCharacterLocation("unknown", "")
	require.NoError(t, err)
	assert.Equal(t, "unknown", loc.Name)
}

func TestCharacterLocation_HTTPAllowed(t *testing.T) {
	_, err := NewCharacterLocation("Earth", "http://example.com/location/1")
	assert.NoError(t, err)
}

func TestCharacterLocation_RejectsRelativeURL(t *testing.T) {
	_, err := NewCharacterLocation("Earth", "/api/location/1")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidLocation, CodeOf(err))
	assert.Contains(t, err.Error(), "HTTP/HTTPS")
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"Alive":   StatusAlive,
		"alive":   StatusAlive,
		"DEAD":    StatusDead,
		"Dead":    StatusDead,
		"unknown": StatusUnknown,
		"":        StatusUnknown,
		"zombie":  StatusUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseStatus(in), "ParseStatus(%q)", in)
	}
}

func TestParseGender(t *testing.T) {
	tests := map[string]Gender{
		"Female":     GenderFemale,
		"male":       GenderMale,
		"GENDERLESS": GenderGenderless,
		"unknown":    GenderUnknown,
		"robot":      GenderUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseGender(in), "ParseGender(%q)", in)
	}
}
