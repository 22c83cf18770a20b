package session

import (
	"context"

	"jiraview/internal/aggregate"
	"jiraview/internal/registry"
	"jiraview/pkg/contracts/domain"
)

// SaveTable stores the current filters and visible columns as a named table.
func (s *Session) SaveTable(ctx context.Context, name string) (domain.SavedTable, error) {
	if s.ds == nil {
		return domain.SavedTable{}, ErrNoDataset
	}
	if !s.busy.TryAcquire(1) {
		return domain.SavedTable{}, ErrBusy
	}
	defer s.busy.Release(1)

	return s.registry.Save(ctx, registry.SaveRequest{
		Name:           name,
		Filters:        s.filters.Snapshot(),
		VisibleColumns: s.ds.VisibleColumns(),
		Fingerprint:    s.ds.Fingerprint(),
	})
}

// Tables lists the saved tables
func (s *Session) Tables(ctx context.Context) []domain.SavedTable {
	return s.registry.List(ctx)
}

// Table returns one saved table
func (s *Session) Table(ctx context.Context, id string) (domain.SavedTable, error) {
	return s.registry.Get(ctx, id)
}

// DeleteTable removes a saved table
func (s *Session) DeleteTable(ctx context.Context, id string) error {
	return s.registry.Delete(ctx, id)
}

// ReplayTable recomputes the rows of a saved table against the loaded dataset.
func (s *Session) ReplayTable(ctx context.Context, id string) (registry.Replayed, error) {
	if s.ds == nil {
		return registry.Replayed{}, ErrNoDataset
	}
	table, err := s.registry.Get(ctx, id)
	if err != nil {
		return registry.Replayed{}, err
	}
	return s.replay(table), nil
}

func (s *Session) replay(table domain.SavedTable) registry.Replayed {
	derived := s.derived
	return s.replayer.Replay(s.ds, table, &derived)
}

// AddTableChart attaches a chart to a saved table. The chart must be
// computable against the loaded dataset.
func (s *Session) AddTableChart(ctx context.Context, tableID string, def domain.ChartDefinition) (domain.ChartDefinition, error) {
	if s.ds != nil && def.CategoryColumn != "" && def.ValueColumn != "" {
		if err := s.checkChartColumns(def.CategoryColumn, def.ValueColumn); err != nil {
			return domain.ChartDefinition{}, err
		}
	}
	return s.registry.AddChart(ctx, tableID, def)
}

// RemoveTableChart detaches a chart from a saved table
func (s *Session) RemoveTableChart(ctx context.Context, tableID, chartID string) error {
	return s.registry.RemoveChart(ctx, tableID, chartID)
}

// TableChart computes a saved chart over the replayed rows of its table.
func (s *Session) TableChart(ctx context.Context, tableID, chartID string) (domain.AggregationResult, error) {
	replayed, err := s.ReplayTable(ctx, tableID)
	if err != nil {
		return domain.AggregationResult{}, err
	}
	def, ok := replayed.Table.FindChart(chartID)
	if !ok {
		return domain.AggregationResult{}, registry.ErrChartNotFound
	}
	return s.engine.Aggregate(replayed.Rows, chartRequest(def))
}

func chartRequest(def domain.ChartDefinition) aggregate.Request {
	return aggregate.Request{CategoryColumn: def.CategoryColumn, ValueColumn: def.ValueColumn}
}
