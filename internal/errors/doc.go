// Package errors turns failures into RFC 7807 problem responses.
//
// Engine packages return plain sentinel errors (session.ErrNoDataset,
// aggregate.ErrMissingSelection, registry.ErrNotFound, ...). ErrorHandler
// matches them with errors.Is and chooses the status code, so handlers only
// ever call HandleError.
package errors
