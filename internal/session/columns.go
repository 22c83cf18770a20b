package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jiraview/internal/dataset"
	"jiraview/internal/store"
	"jiraview/pkg/contracts/domain"
)

// SetColumnVisible shows or hides a column.
func (s *Session) SetColumnVisible(column string, visible bool) error {
	if s.ds == nil {
		return ErrNoDataset
	}
	if err := s.ds.SetVisible(column, visible); err != nil {
		if errors.Is(err, dataset.ErrUnknownColumn) {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
		}
		return err
	}
	return nil
}

// Columns returns the column descriptors of the loaded dataset
func (s *Session) Columns() ([]domain.Column, error) {
	if s.ds == nil {
		return nil, ErrNoDataset
	}
	return s.ds.Columns(), nil
}

// DerivedColumn returns the current derived column configuration
func (s *Session) DerivedColumn() domain.DerivedColumnConfig { return s.derived }

// ConfigureDerivedColumn stores cfg and, when enabled, applies it to the
// loaded dataset. An invalid configuration changes nothing. Disabling keeps
// an already materialized column until the next load.
func (s *Session) ConfigureDerivedColumn(ctx context.Context, cfg domain.DerivedColumnConfig) error {
	if cfg.Enabled {
		if s.ds == nil {
			return ErrNoDataset
		}
		if err := dataset.ApplyDerived(s.ds, cfg); err != nil {
			return err
		}
		s.recompute()
		s.page = 1
	}

	s.derived = cfg
	if err := store.SaveJSON(ctx, s.store, store.KeyDerivedColumn, cfg); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "derived column configured",
		slog.Bool("enabled", cfg.Enabled),
		slog.String("source", cfg.Source),
		slog.Int("prefix_length", cfg.PrefixLength),
		slog.String("output", cfg.Name()))
	return nil
}
