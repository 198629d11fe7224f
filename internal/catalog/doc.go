// Package catalog holds the domain model of the Rick and Morty catalog.
//
// The package defines three entities (Character, Location, Episode), the
// invariants each one enforces on construction, the tagged Error returned
// whenever an invariant or a query rule is violated, and the use cases that
// validate requests before handing them to a Repository.
//
// Every constructor validates its input:
//
//	c, err := catalog.NewCharacter(catalog.Character{ID: 1, Name: "Rick Sanchez", ...})
//	if catalog.IsValidation(err) { ... }
//
// Repositories report where data came from through Result.Source so that
// callers can tell a fresh API answer from an offline cache answer.
package catalog
