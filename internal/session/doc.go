// Package session owns the state of one working session: the loaded
// dataset, its filter set, the current page, column visibility, the derived
// column configuration and the saved table registry.
//
// Every filter change recomputes the filtered view and returns to page 1.
// Saving and exporting are guarded so that a second save or export started
// while one is running fails with ErrBusy instead of racing it.
//
// A Session is not safe for concurrent use; callers that share one across
// goroutines serialize access themselves.
package session
