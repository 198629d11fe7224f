// Package browse holds the presentation models behind every rmcat screen.
//
// A model owns a state snapshot and a one-shot event channel. Callers drive
// it with intents (Load, LoadNextPage, Retry, Select, Back) and render
// whatever State returns; navigation and error toasts arrive on Events.
package browse
