// Package store persists session state as JSON documents under fixed keys.
//
// Three backends implement Store: Memory for tests and throwaway sessions,
// File which writes one document per key into a directory, and SQLite which
// keeps every key in a single table. LoadJSON never fails: a missing or
// corrupt document yields the caller's default and a warning in the log.
package store
