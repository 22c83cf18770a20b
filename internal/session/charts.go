package session

import (
	"fmt"

	"jiraview/internal/aggregate"
	"jiraview/pkg/contracts/domain"
)

// Chart aggregates the current filtered view.
func (s *Session) Chart(req aggregate.Request) (domain.AggregationResult, error) {
	if s.ds == nil {
		return domain.AggregationResult{}, ErrNoDataset
	}
	if err := s.checkChartColumns(req.CategoryColumn, req.ValueColumn); err != nil {
		return domain.AggregationResult{}, err
	}
	return s.engine.Aggregate(s.view, req)
}

// ValueColumns lists the visible numeric columns of the current view
func (s *Session) ValueColumns() ([]string, error) {
	if s.ds == nil {
		return nil, ErrNoDataset
	}
	return aggregate.NumericColumns(s.view, s.ds.Columns()), nil
}

func (s *Session) checkChartColumns(category, value string) error {
	if category == "" || value == "" {
		return aggregate.ErrMissingSelection
	}
	if !s.ds.HasColumn(category) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, category)
	}
	if value != domain.CountSentinel && !s.ds.HasColumn(value) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, value)
	}
	return nil
}
