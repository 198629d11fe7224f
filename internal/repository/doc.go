// Package repository merges the remote catalog API with the local cache.
//
// Every entity is served by one generic Repository. List and Get answer from
// the cache when they can and refresh it in the background; when the network
// fails, List falls back to whatever the cache holds for the entity. Search is
// always remote.
//
// Transport failures never leave this package raw: they are translated into
// *catalog.Error values with entity-specific codes.
package repository
