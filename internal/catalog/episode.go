package catalog

// Episode is a single episode of the show.
type Episode struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	AirDate    string   `json:"air_date"`
	Code       string   `json:"episode"`
	Characters []string `json:"characters"`
	URL        string   `json:"url"`
	Created    string   `json:"created"`
}

// NewEpisode validates e and returns it.
func NewEpisode(e Episode) (Episode, error) {
	if err := e.Validate(); err != nil {
		return Episode{}, err
	}
	return e, nil
}

// Validate checks the episode invariants in field order.
func (e Episode) Validate() error {
	if e.ID < 1 {
		return InvalidID(EntityEpisode, e.ID)
	}
	if isBlank(e.Name) {
		return invalidField(EntityEpisode, CodeInvalidName, "name", e.Name,
			"Invalid episode name: name cannot be blank")
	}
	if isBlank(e.AirDate) {
		return invalidField(EntityEpisode, CodeInvalidAirDate, "air_date", e.AirDate,
			"Invalid episode air date: air date cannot be blank")
	}
	if isBlank(e.Code) {
		return invalidField(EntityEpisode, CodeInvalidEpisodeCode, "episode", e.Code,
			"Invalid episode code: episode code cannot be blank")
	}
	if isBlank(e.URL) || !hasHTTPPrefix(e.URL) {
		return invalidField(EntityEpisode, CodeInvalidURL, "url", e.URL,
			"Invalid episode URL: '"+e.URL+"' cannot be blank or must be a valid URL")
	}
	if isBlank(e.Created) {
		return invalidField(EntityEpisode, CodeInvalidCreatedDate, "created", e.Created,
			"Invalid episode created date: '"+e.Created+"' must be a valid ISO-8601 date")
	}
	return nil
}

// EntityID returns the episode id.
func (e Episode) EntityID() int { return e.ID }
