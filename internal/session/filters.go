package session

import (
	"context"
	"log/slog"

	"jiraview/internal/filter"
)

// SetColumnFilter replaces the accepted values of column.
func (s *Session) SetColumnFilter(ctx context.Context, column string, values []string) error {
	if s.ds == nil {
		return ErrNoDataset
	}
	s.filters.SetColumnFilter(s.ds, column, values)
	s.filtersChanged(ctx)
	s.logger.DebugContext(ctx, "column filter set",
		slog.String("column", column),
		slog.Int("values", len(values)),
		slog.Int("matching_rows", len(s.view)))
	return nil
}

// ToggleQuickFilter toggles a single value of column.
func (s *Session) ToggleQuickFilter(ctx context.Context, column, value string) error {
	if s.ds == nil {
		return ErrNoDataset
	}
	s.filters.ToggleQuickFilter(column, value)
	s.filtersChanged(ctx)
	return nil
}

// ClearColumnFilter drops the constraint on column and leaves the others.
func (s *Session) ClearColumnFilter(ctx context.Context, column string) error {
	if s.ds == nil {
		return ErrNoDataset
	}
	s.filters.ClearColumn(column)
	s.filtersChanged(ctx)
	return nil
}

// ResetFilters clears every constraint.
func (s *Session) ResetFilters(ctx context.Context) error {
	if s.ds == nil {
		return ErrNoDataset
	}
	s.filters.Clear()
	s.filtersChanged(ctx)
	return nil
}

// Filters returns a snapshot of the active constraints
func (s *Session) Filters() map[string][]string {
	return s.filters.Snapshot()
}

// FilterOptions lists the choices for editing the filter of column.
func (s *Session) FilterOptions(column string) (filter.ColumnOptions, error) {
	if s.ds == nil {
		return filter.ColumnOptions{}, ErrNoDataset
	}
	if !s.ds.HasColumn(column) {
		return filter.ColumnOptions{}, ErrUnknownColumn
	}
	return s.filters.Options(s.ds, column), nil
}

// QuickMenu is the content of the quick filter menu
type QuickMenu struct {
	// Years maps each date role column to its years, newest first.
	Years map[string][]int `json:"years"`
	// Values maps each quick column to its values and whether they occur in the current view.
	Values map[string]map[string]bool `json:"values"`
	Active map[string][]string        `json:"active"`
}

// QuickFilters builds the quick filter menu for the current view.
func (s *Session) QuickFilters() (QuickMenu, error) {
	if s.ds == nil {
		return QuickMenu{}, ErrNoDataset
	}
	menu := QuickMenu{
		Years:  make(map[string][]int),
		Values: make(map[string]map[string]bool),
		Active: s.filters.Snapshot(),
	}
	for _, col := range s.opts.DateRoles.Resolve(s.ds.ColumnNames()) {
		menu.Years[col] = s.filters.Years(s.ds.Rows(), col)
	}
	for _, col := range s.opts.QuickColumns {
		if !s.ds.HasColumn(col) {
			continue
		}
		available := filter.Available(s.view, col)
		values := make(map[string]bool)
		for _, v := range s.ds.DistinctValues(col) {
			values[v] = available[v]
		}
		menu.Values[col] = values
	}
	return menu, nil
}
