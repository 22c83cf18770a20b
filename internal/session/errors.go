package session

import "errors"

var (
	// ErrNoDataset is returned by operations that need a loaded file
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrBusy is returned when a save or export is already running
	ErrBusy = errors.New("another save or export is in progress")

	// ErrUnknownColumn is returned when a request names a column the dataset lacks
	ErrUnknownColumn = errors.New("unknown column")
)

// ErrNoTables is returned when exporting saved tables while none exist
var ErrNoTables = errors.New("no saved tables to export")
