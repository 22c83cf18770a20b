package domain

import "fmt"

// DefaultPrefixLength is the number of leading characters taken when none is configured
const DefaultPrefixLength = 2

// DerivedColumnConfig describes a column built from the leading characters of
// another column, optionally joined with a second column. Field names follow
// the persisted leftColumnConfig blob.
type DerivedColumnConfig struct {
	Enabled      bool   `json:"enabled"`
	Source       string `json:"source" validate:"required"`
	PrefixLength int    `json:"numChars" validate:"min=0"`
	Concat       string `json:"concat,omitempty"`
	OutputName   string `json:"newName,omitempty"`
}

// DefaultDerivedColumnConfig returns the configuration used before anything is persisted
func DefaultDerivedColumnConfig() DerivedColumnConfig {
	return DerivedColumnConfig{PrefixLength: DefaultPrefixLength}
}

// Name returns the output column name, falling back to IZQ_<source>.
func (c DerivedColumnConfig) Name() string {
	if c.OutputName != "" {
		return c.OutputName
	}
	return fmt.Sprintf("IZQ_%s", c.Source)
}
