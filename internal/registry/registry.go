// Package registry keeps the saved derived tables of a session.
//
// A saved table is a recipe: a name, a filter snapshot, the visible columns
// and any chart definitions. Rows are never stored; Replay recomputes them
// from the current dataset, so a table saved against one export shows the
// matching rows of whatever export is loaded next.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"jiraview/internal/store"
	"jiraview/pkg/contracts/domain"
)

var (
	// ErrNameRequired is returned when a table is saved without a name
	ErrNameRequired = errors.New("table name is required")

	// ErrNoColumns is returned when a table is saved without visible columns
	ErrNoColumns = errors.New("at least one visible column is required")

	// ErrTitleRequired is returned when a chart is saved without a title
	ErrTitleRequired = errors.New("chart title is required")

	// ErrChartIncomplete is returned when a chart lacks its category or value column
	ErrChartIncomplete = errors.New("chart category and value columns are required")

	// ErrNotFound is returned for unknown table or chart ids
	ErrNotFound = errors.New("saved table not found")

	// ErrChartNotFound is returned for unknown chart ids
	ErrChartNotFound = errors.New("chart not found")
)

// SaveRequest is the recipe of a new table
type SaveRequest struct {
	Name           string
	Filters        map[string][]string
	VisibleColumns []string
	Fingerprint    string
}

// Registry stores saved tables under store.KeySavedTables.
type Registry struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// New returns a registry backed by s
func New(s store.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:  s,
		logger: logger.With(slog.String("component", "registry")),
		now:    time.Now,
		newID:  newID,
	}
}

func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// List returns every saved table in creation order. A corrupt document reads as empty.
func (r *Registry) List(ctx context.Context) []domain.SavedTable {
	return store.LoadJSON(ctx, r.store, store.KeySavedTables, []domain.SavedTable{}, r.logger)
}

// Get returns the table with id
func (r *Registry) Get(ctx context.Context, id string) (domain.SavedTable, error) {
	for _, t := range r.List(ctx) {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.SavedTable{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Save validates and appends a new table. Nothing is stored on error.
func (r *Registry) Save(ctx context.Context, req SaveRequest) (domain.SavedTable, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.SavedTable{}, ErrNameRequired
	}
	if len(req.VisibleColumns) == 0 {
		return domain.SavedTable{}, ErrNoColumns
	}

	filters := make(map[string][]string, len(req.Filters))
	for col, values := range req.Filters {
		if len(values) > 0 {
			filters[col] = append([]string(nil), values...)
		}
	}

	table := domain.SavedTable{
		ID:              r.newID(),
		Name:            name,
		Filters:         filters,
		VisibleColumns:  append([]string(nil), req.VisibleColumns...),
		Charts:          []domain.ChartDefinition{},
		CreatedAt:       r.now().UTC(),
		BaseFingerprint: req.Fingerprint,
	}

	tables := append(r.List(ctx), table)
	if err := store.SaveJSON(ctx, r.store, store.KeySavedTables, tables); err != nil {
		return domain.SavedTable{}, err
	}

	r.logger.InfoContext(ctx, "saved table",
		slog.String("table_id", table.ID),
		slog.String("name", table.Name),
		slog.Int("filters", len(table.Filters)),
		slog.Int("columns", len(table.VisibleColumns)))
	return table, nil
}

// Delete removes the table with id
func (r *Registry) Delete(ctx context.Context, id string) error {
	tables := r.List(ctx)
	kept := tables[:0]
	found := false
	for _, t := range tables {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := store.SaveJSON(ctx, r.store, store.KeySavedTables, kept); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "deleted table", slog.String("table_id", id))
	return nil
}

// AddChart attaches a chart definition to a table and returns it with its new id.
func (r *Registry) AddChart(ctx context.Context, tableID string, def domain.ChartDefinition) (domain.ChartDefinition, error) {
	def.Title = strings.TrimSpace(def.Title)
	if def.Title == "" {
		return domain.ChartDefinition{}, ErrTitleRequired
	}
	if def.CategoryColumn == "" || def.ValueColumn == "" {
		return domain.ChartDefinition{}, ErrChartIncomplete
	}

	var added domain.ChartDefinition
	err := r.update(ctx, tableID, func(t *domain.SavedTable) error {
		def.ID = r.newID()
		t.Charts = append(t.Charts, def)
		added = def
		return nil
	})
	if err != nil {
		return domain.ChartDefinition{}, err
	}
	r.logger.InfoContext(ctx, "added chart",
		slog.String("table_id", tableID),
		slog.String("chart_id", added.ID),
		slog.String("title", added.Title))
	return added, nil
}

// RemoveChart detaches a chart from a table
func (r *Registry) RemoveChart(ctx context.Context, tableID, chartID string) error {
	return r.update(ctx, tableID, func(t *domain.SavedTable) error {
		for i, c := range t.Charts {
			if c.ID == chartID {
				t.Charts = append(t.Charts[:i], t.Charts[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrChartNotFound, chartID)
	})
}

func (r *Registry) update(ctx context.Context, id string, fn func(*domain.SavedTable) error) error {
	tables := r.List(ctx)
	for i := range tables {
		if tables[i].ID != id {
			continue
		}
		if err := fn(&tables[i]); err != nil {
			return err
		}
		return store.SaveJSON(ctx, r.store, store.KeySavedTables, tables)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
