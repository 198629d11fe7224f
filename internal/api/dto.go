package api

// Info is the pagination block of every list response.
type Info struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// HasNext reports whether the API advertises another page.
func (i Info) HasNext() bool {
	return i.Next != nil && *i.Next != ""
}

// Page is a paginated list response.
type Page[T any] struct {
	Info    Info `json:"info"`
	Results []T  `json:"results"`
}

// CharacterLocationDTO is the {name, url} pair used for origin and location.
type CharacterLocationDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CharacterDTO is a character as returned by /character.
type CharacterDTO struct {
	ID       int                  `json:"id"`
	Name     string               `json:"name"`
	Status   string               `json:"status"`
	Species  string               `json:"species"`
	Type     string               `json:"type"`
	Gender   string               `json:"gender"`
	Origin   CharacterLocationDTO `json:"origin"`
	Location CharacterLocationDTO `json:"location"`
	Image    string               `json:"image"`
	Episode  []string             `json:"episode"`
	URL      string               `json:"url"`
	Created  string               `json:"created"`
}

// LocationDTO is a location as returned by /location.
type LocationDTO struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Dimension string   `json:"dimension"`
	Residents []string `json:"residents"`
	URL       string   `json:"url"`
	Created   string   `json:"created"`
}

// EpisodeDTO is an episode as returned by /episode.
type EpisodeDTO struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	AirDate    string   `json:"air_date"`
	Episode    string   `json:"episode"`
	Characters []string `json:"characters"`
	URL        string   `json:"url"`
	Created    string   `json:"created"`
}
