package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is a character's life status.
type Status string

const (
	StatusAlive   Status = "Alive"
	StatusDead    Status = "Dead"
	StatusUnknown Status = "unknown"
)

// Gender is a character's gender.
type Gender string

const (
	GenderFemale     Gender = "Female"
	GenderMale       Gender = "Male"
	GenderGenderless Gender = "Genderless"
	GenderUnknown    Gender = "unknown"
)

var rootUpper = cases.Upper(language.Und)

// ParseStatus maps an API status string to a Status.
// Matching is case-insensitive; anything unrecognized is StatusUnknown.
func ParseStatus(s string) Status {
	switch rootUpper.String(s) {
	case "ALIVE":
		return StatusAlive
	case "DEAD":
		return StatusDead
	default:
		return StatusUnknown
	}
}

// ParseGender maps an API gender string to a Gender.
// Matching is case-insensitive; anything unrecognized is GenderUnknown.
func ParseGender(s string) Gender {
	switch rootUpper.String(s) {
	case "FEMALE":
		return GenderFemale
	case "MALE":
		return GenderMale
	case "GENDERLESS":
		return GenderGenderless
	default:
		return GenderUnknown
	}
}

// CharacterLocation is the named place a character comes from or was last seen.
// URL is empty when the API does not know the location.
type CharacterLocation struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// NewCharacterLocation validates and returns a CharacterLocation.
func NewCharacterLocation(name, url string) (CharacterLocation, error) {
	loc := CharacterLocation{Name: name, URL: url}
	if err := loc.Validate(); err != nil {
		return CharacterLocation{}, err
	}
	return loc, nil
}

// Validate checks the location invariants.
func (l CharacterLocation) Validate() error {
	if isBlank(l.Name) {
		return invalidField(EntityCharacter, CodeInvalidLocation, "location.name", l.Name,
			"Invalid location: Location name cannot be blank")
	}
	if !isBlank(l.URL) && !hasHTTPPrefix(l.URL) {
		return invalidField(EntityCharacter, CodeInvalidLocation, "location.url", l.URL,
			"Invalid location: Location URL must be a valid HTTP/HTTPS URL or empty")
	}
	return nil
}

// Character is a character from the show.
type Character struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	Status   Status            `json:"status"`
	Species  string            `json:"species"`
	Type     string            `json:"type"`
	Gender   Gender            `json:"gender"`
	Origin   CharacterLocation `json:"origin"`
	Location CharacterLocation `json:"location"`
	Image    string            `json:"image"`
	Episodes []string          `json:"episodes"`
	URL      string            `json:"url"`
	Created  string            `json:"created"`
}

// NewCharacter validates c and returns it.
func NewCharacter(c Character) (Character, error) {
	if err := c.Validate(); err != nil {
		return Character{}, err
	}
	return c, nil
}

// Validate checks the character invariants in field order.
func (c Character) Validate() error {
	if c.ID < 1 {
		return InvalidID(EntityCharacter, c.ID)
	}
	if isBlank(c.Name) {
		return invalidField(EntityCharacter, CodeInvalidName, "name", c.Name,
			"Character name cannot be blank")
	}
	if err := c.Origin.Validate(); err != nil {
		return err
	}
	if err := c.Location.Validate(); err != nil {
		return err
	}
	if isBlank(c.Image) {
		return invalidField(EntityCharacter, CodeInvalidImage, "image", c.Image,
			"Character image URL cannot be blank")
	}
	if isBlank(c.URL) {
		return invalidField(EntityCharacter, CodeInvalidURL, "url", c.URL,
			"Character URL cannot be blank")
	}
	if len(c.Episodes) == 0 {
		return invalidField(EntityCharacter, CodeInvalidEpisodes, "episode", "",
			"Character must have appeared in at least one episode")
	}
	return nil
}

// EntityID returns the character id.
func (c Character) EntityID() int { return c.ID }

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func hasHTTPPrefix(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
