package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Entity names one of the catalog's resource types.
type Entity string

const (
	EntityCharacter Entity = "character"
	EntityLocation  Entity = "location"
	EntityEpisode   Entity = "episode"
)

// Entities lists every entity in display order.
var Entities = []Entity{EntityCharacter, EntityLocation, EntityEpisode}

// Title returns the capitalized entity name ("Character").
func (e Entity) Title() string {
	if e == "" {
		return ""
	}
	return strings.ToUpper(string(e[:1])) + string(e[1:])
}

// Plural returns the plural entity name ("characters").
func (e Entity) Plural() string {
	return string(e) + "s"
}

// ParseEntity accepts singular or plural entity names, case-insensitively.
func ParseEntity(s string) (Entity, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for _, e := range Entities {
		if string(e) == name {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown entity %q: must be one of character, location, episode", s)
}

// ErrorCode categorizes catalog errors.
type ErrorCode string

const (
	// Not found.
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeNotFoundByName ErrorCode = "NOT_FOUND_BY_NAME"

	// Model invariants.
	CodeInvalidID          ErrorCode = "INVALID_ID"
	CodeInvalidName        ErrorCode = "INVALID_NAME"
	CodeInvalidType        ErrorCode = "INVALID_TYPE"
	CodeInvalidDimension   ErrorCode = "INVALID_DIMENSION"
	CodeInvalidURL         ErrorCode = "INVALID_URL"
	CodeInvalidCreatedDate ErrorCode = "INVALID_CREATED_DATE"
	CodeInvalidAirDate     ErrorCode = "INVALID_AIR_DATE"
	CodeInvalidEpisodeCode ErrorCode = "INVALID_EPISODE_CODE"
	CodeInvalidImage       ErrorCode = "INVALID_IMAGE"
	CodeInvalidEpisodes    ErrorCode = "INVALID_EPISODES"
	CodeInvalidLocation    ErrorCode = "INVALID_LOCATION"

	// Query validation.
	CodeInvalidPage        ErrorCode = "INVALID_PAGE"
	CodeInvalidSearchQuery ErrorCode = "INVALID_SEARCH_QUERY"

	// Infrastructure.
	CodeUnavailable ErrorCode = "REPOSITORY_UNAVAILABLE"
	CodeInvalidData ErrorCode = "INVALID_DATA"
)

// Error is the tagged error returned by every catalog operation.
//
// Only the fields relevant to the Code are populated: ID for not-found and
// invalid-id errors, Query for name searches, Page for pagination errors,
// Field/Value for model invariants.
type Error struct {
	Entity  Entity
	Code    ErrorCode
	Message string

	ID    int
	Page  int
	Query string
	Field string
	Value string

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.QualifiedCode(), e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.QualifiedCode(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// QualifiedCode prefixes the code with the entity, e.g. "EPISODE_NOT_FOUND".
func (e *Error) QualifiedCode() string {
	if e.Entity == "" {
		return string(e.Code)
	}
	return strings.ToUpper(string(e.Entity)) + "_" + string(e.Code)
}

// Validation reports whether the error is a model or query validation failure.
func (e *Error) Validation() bool {
	switch e.Code {
	case CodeNotFound, CodeNotFoundByName, CodeUnavailable, CodeInvalidData:
		return false
	}
	return true
}

// AsError extracts a *Error from err, following wrapped errors.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// CodeOf returns the code of a catalog error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	if ce, ok := AsError(err); ok {
		return ce.Code
	}
	return ""
}

// IsNotFound reports whether err is a not-found error (by id or by name).
func IsNotFound(err error) bool {
	code := CodeOf(err)
	return code == CodeNotFound || code == CodeNotFoundByName
}

// IsValidation reports whether err is a model or query validation error.
func IsValidation(err error) bool {
	ce, ok := AsError(err)
	return ok && ce.Validation()
}

// IsUnavailable reports whether the catalog backend could not be reached.
func IsUnavailable(err error) bool {
	return CodeOf(err) == CodeUnavailable
}

// IsInvalidData reports whether stored or fetched data was unreadable.
func IsInvalidData(err error) bool {
	return CodeOf(err) == CodeInvalidData
}

// NotFound reports that no entity exists with the given id.
func NotFound(entity Entity, id int) *Error {
	return &Error{
		Entity:  entity,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %d does not exist", entity.Title(), id),
		ID:      id,
	}
}

// NotFoundByName reports that a name search matched nothing.
func NotFoundByName(entity Entity, name string) *Error {
	return &Error{
		Entity:  entity,
		Code:    CodeNotFoundByName,
		Message: fmt.Sprintf("No %s found matching name '%s'", entity.Plural(), name),
		Query:   name,
	}
}

// InvalidID reports an id below 1.
func InvalidID(entity Entity, id int) *Error {
	return &Error{
		Entity:  entity,
		Code:    CodeInvalidID,
		Message: fmt.Sprintf("Invalid %s ID: %d. ID must be greater than 0", entity, id),
		ID:      id,
		Field:   "id",
		Value:   fmt.Sprint(id),
	}
}

// InvalidPage reports a page number below 1.
func InvalidPage(entity Entity, page int) *Error {
	return &Error{
		Entity:  entity,
		Code:    CodeInvalidPage,
		Message: fmt.Sprintf("Invalid page number: %d. Page must be greater than 0", page),
		Page:    page,
	}
}

// InvalidSearchQuery reports a blank search query.
func InvalidSearchQuery(entity Entity, query string) *Error {
	return &Error{
		Entity:  entity,
		Code:    CodeInvalidSearchQuery,
		Message: "Invalid search query: query cannot be blank",
		Query:   query,
	}
}

// Unavailable reports that the backing catalog could not serve the request.
// An empty message uses the default wording.
func Unavailable(entity Entity, message string, cause error) *Error {
	if message == "" {
		message = fmt.Sprintf("The %s catalog is temporarily unavailable", entity)
	}
	return &Error{Entity: entity, Code: CodeUnavailable, Message: message, Err: cause}
}

// InvalidData reports data that could not be decoded or mapped.
// An empty message uses the default wording.
func InvalidData(entity Entity, message string, cause error) *Error {
	if message == "" {
		message = fmt.Sprintf("%s data is invalid or corrupted", entity.Title())
	}
	return &Error{Entity: entity, Code: CodeInvalidData, Message: message, Err: cause}
}

func invalidField(entity Entity, code ErrorCode, field, value, message string) *Error {
	return &Error{
		Entity:  entity,
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}
