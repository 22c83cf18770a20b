package dataset

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"jiraview/pkg/contracts/domain"
)

var validate = validator.New()

// ValidateDerived checks that cfg can be applied to ds.
func ValidateDerived(ds *Dataset, cfg domain.DerivedColumnConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDerivedConfig, err)
	}
	if !ds.HasColumn(cfg.Source) {
		return fmt.Errorf("%w: source column %q not found", ErrInvalidDerivedConfig, cfg.Source)
	}
	if cfg.Concat != "" && !ds.HasColumn(cfg.Concat) {
		return fmt.Errorf("%w: concat column %q not found", ErrInvalidDerivedConfig, cfg.Concat)
	}
	if name := cfg.Name(); name == cfg.Source || name == cfg.Concat {
		return fmt.Errorf("%w: output column %q would overwrite an input column", ErrInvalidDerivedConfig, name)
	}
	return nil
}

// Compute returns the derived value of every row without touching the dataset.
func Compute(ds *Dataset, cfg domain.DerivedColumnConfig) ([]string, error) {
	if err := ValidateDerived(ds, cfg); err != nil {
		return nil, err
	}
	out := make([]string, len(ds.rows))
	for i, row := range ds.rows {
		out[i] = DerivedValue(row, cfg)
	}
	return out, nil
}

// ApplyDerived writes the derived column into every row and appends its
// descriptor once. Applying the same configuration again overwrites the
// same column. On error the dataset is left untouched.
func ApplyDerived(ds *Dataset, cfg domain.DerivedColumnConfig) error {
	values, err := Compute(ds, cfg)
	if err != nil {
		return err
	}
	name := cfg.Name()
	for i, row := range ds.rows {
		row[name] = values[i]
	}
	ds.addColumn(name)
	return nil
}

// DerivedValue computes the derived cell of a single row.
func DerivedValue(row domain.Row, cfg domain.DerivedColumnConfig) string {
	left := prefix(row.Get(cfg.Source), cfg.PrefixLength)
	if cfg.Concat == "" {
		return left
	}
	return left + "_" + row.Get(cfg.Concat)
}

func prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if n >= len(r) {
		return s
	}
	return string(r[:n])
}
