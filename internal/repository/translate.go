package repository

import (
	"fmt"

	"github.com/roach88/rmcat/internal/api"
	"github.com/roach88/rmcat/internal/catalog"
)

// lookup describes what a failed request was looking for, so a 404 can be
// reported against the right key.
type lookup struct {
	id   int
	name string
}

func byID(id int) lookup        { return lookup{id: id} }
func byName(name string) lookup { return lookup{name: name} }

// translate converts a transport error into a domain error for entity.
// Domain errors pass through unchanged.
func translate(entity catalog.Entity, err error, key lookup) error {
	if err == nil {
		return nil
	}
	if _, ok := catalog.AsError(err); ok {
		return err
	}

	switch api.KindOf(err) {
	case api.KindCanceled:
		return catalog.Unavailable(entity, fmt.Sprintf("The %s request was canceled", entity), err)
	case api.KindClient:
		if api.IsNotFound(err) {
			switch {
			case key.id > 0:
				nf := catalog.NotFound(entity, key.id)
				nf.Err = err
				return nf
			case key.name != "":
				nf := catalog.NotFoundByName(entity, key.name)
				nf.Err = err
				return nf
			}
		}
		return catalog.Unavailable(entity, "", err)
	case api.KindServer, api.KindNetwork, api.KindTimeout:
		return catalog.Unavailable(entity, "", err)
	case api.KindDecode:
		return catalog.InvalidData(entity, "", err)
	default:
		return catalog.Unavailable(entity,
			fmt.Sprintf("The %s catalog encountered an unexpected error", entity), err)
	}
}
