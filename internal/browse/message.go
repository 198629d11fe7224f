package browse

import (
	"fmt"

	"github.com/roach88/rmcat/internal/catalog"
)

const unexpectedMessage = "An unexpected error occurred. Please try again."

// Message turns err into text for a list screen.
func Message(err error) string {
	return message(err, true)
}

// DetailMessage turns err into text for a detail screen.
func DetailMessage(err error) string {
	return message(err, false)
}

func message(err error, plural bool) string {
	if err == nil {
		return ""
	}
	ce, ok := catalog.AsError(err)
	if !ok {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return unexpectedMessage
	}

	e := ce.Entity
	switch ce.Code {
	case catalog.CodeNotFound:
		return fmt.Sprintf("%s #%d does not exist", e.Title(), ce.ID)
	case catalog.CodeNotFoundByName:
		return fmt.Sprintf("No %s found matching '%s'", e.Plural(), ce.Query)
	case catalog.CodeInvalidID:
		return fmt.Sprintf("Invalid %s ID: %d", e, ce.ID)
	case catalog.CodeInvalidPage:
		return fmt.Sprintf("Invalid page number: %d", ce.Page)
	case catalog.CodeInvalidSearchQuery:
		return fmt.Sprintf("Please enter a valid %s name to search", e)
	case catalog.CodeUnavailable:
		name := string(e)
		if plural {
			name = e.Plural()
		}
		return fmt.Sprintf("Unable to load %s. Please check your connection and try again.", name)
	case catalog.CodeInvalidData:
		return fmt.Sprintf("%s data is corrupted. Please try again later.", e.Title())
	}
	if ce.Message != "" {
		return ce.Message
	}
	return unexpectedMessage
}
