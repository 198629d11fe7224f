package repository

import (
	"github.com/roach88/rmcat/internal/api"
	"github.com/roach88/rmcat/internal/catalog"
)

// Mapper converts a wire DTO into a validated domain model.
type Mapper[D, M any] func(D) (M, error)

// CharacterToDomain maps a CharacterDTO, validating every field.
func CharacterToDomain(dto api.CharacterDTO) (catalog.Character, error) {
	origin, err := catalog.NewCharacterLocation(dto.Origin.Name, dto.Origin.URL)
	if err != nil {
		return catalog.Character{}, err
	}
	location, err := catalog.NewCharacterLocation(dto.Location.Name, dto.Location.URL)
	if err != nil {
		return catalog.Character{}, err
	}
	return catalog.NewCharacter(catalog.Character{
		ID:       dto.ID,
		Name:     dto.Name,
		Status:   catalog.ParseStatus(dto.Status),
		Species:  dto.Species,
		Type:     dto.Type,
		Gender:   catalog.ParseGender(dto.Gender),
		Origin:   origin,
		Location: location,
		Image:    dto.Image,
		Episodes: dto.Episode,
		URL:      dto.URL,
		Created:  dto.Created,
	})
}

// LocationToDomain maps a LocationDTO, validating every field.
func LocationToDomain(dto api.LocationDTO) (catalog.Location, error) {
	return catalog.NewLocation(catalog.Location{
		ID:        dto.ID,
		Name:      dto.Name,
		Type:      dto.Type,
		Dimension: dto.Dimension,
		Residents: dto.Residents,
		URL:       dto.URL,
		Created:   dto.Created,
	})
}

// EpisodeToDomain maps an EpisodeDTO, validating every field.
func EpisodeToDomain(dto api.EpisodeDTO) (catalog.Episode, error) {
	return catalog.NewEpisode(catalog.Episode{
		ID:         dto.ID,
		Name:       dto.Name,
		AirDate:    dto.AirDate,
		Code:       dto.Episode,
		Characters: dto.Characters,
		URL:        dto.URL,
		Created:    dto.Created,
	})
}

func mapAll[D, M any](dtos []D, toDomain Mapper[D, M]) ([]M, error) {
	out := make([]M, 0, len(dtos))
	for _, dto := range dtos {
		m, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
