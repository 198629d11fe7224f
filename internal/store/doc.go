// Package store provides the SQLite-backed local cache for catalog data.
//
// Each entity kind has its own table:
//   - characters
//   - locations
//   - episodes
//
// Rows hold the item's API JSON (payload), the list page it was fetched on,
// its name, and the fetch time. Collection is the typed view the repository
// layer works with; it upserts by id, so re-fetching a page refreshes rows in
// place.
//
// # Page Tagging
//
//   - SavePage tags every item with the page it came from
//   - SaveOne keeps an existing row's page and uses 0 for new rows, so
//     fetching a single item never removes it from its list page
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
