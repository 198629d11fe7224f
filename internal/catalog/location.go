package catalog

// Location is a place in the multiverse.
type Location struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Dimension string   `json:"dimension"`
	Residents []string `json:"residents"`
	URL       string   `json:"url"`
	Created   string   `json:"created"`
}

// NewLocation validates l and returns it.
func NewLocation(l Location) (Location, error) {
	if err := l.Validate(); err != nil {
		return Location{}, err
	}
	return l, nil
}

// Validate checks the location invariants in field order.
// Residents may be empty.
func (l Location) Validate() error {
	if l.ID < 1 {
		return InvalidID(EntityLocation, l.ID)
	}
	if isBlank(l.Name) {
		return invalidField(EntityLocation, CodeInvalidName, "name", l.Name,
			"Invalid location name: name cannot be blank")
	}
	if isBlank(l.Type) {
		return invalidField(EntityLocation, CodeInvalidType, "type", l.Type,
			"Invalid location type: type cannot be blank")
	}
	if isBlank(l.Dimension) {
		return invalidField(EntityLocation, CodeInvalidDimension, "dimension", l.Dimension,
			"Invalid location dimension: dimension cannot be blank")
	}
	if isBlank(l.URL) || !hasHTTPPrefix(l.URL) {
		return invalidField(EntityLocation, CodeInvalidURL, "url", l.URL,
			"Invalid location URL: '"+l.URL+"' cannot be blank or must be a valid URL")
	}
	if isBlank(l.Created) {
		return invalidField(EntityLocation, CodeInvalidCreatedDate, "created", l.Created,
			"Invalid location created date: '"+l.Created+"' must be a valid ISO-8601 date")
	}
	return nil
}

// EntityID returns the location id.
func (l Location) EntityID() int { return l.ID }
