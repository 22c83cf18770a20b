package dataset

import "errors"

var (
	// ErrNoHeader is returned when the input has no header row
	ErrNoHeader = errors.New("dataset has no header row")

	// ErrUnreadable is returned when the input is not valid CSV or xlsx
	ErrUnreadable = errors.New("file could not be parsed")

	// ErrUnknownColumn is returned when an operation names a column the dataset lacks
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidDerivedConfig is returned when a derived column configuration cannot be applied
	ErrInvalidDerivedConfig = errors.New("invalid derived column configuration")
)
