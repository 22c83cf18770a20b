package http

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"jiraview/internal/aggregate"
	"jiraview/internal/filter"
	"jiraview/internal/registry"
	"jiraview/internal/services"
	"jiraview/internal/session"
	"jiraview/pkg/contracts/domain"
)

type mockTableService struct {
	mock.Mock
}

func (m *mockTableService) Settings() services.Settings {
	return m.Called().Get(0).(services.Settings)
}

func (m *mockTableService) Load(ctx context.Context, name string, data []byte) (domain.DatasetSummary, error) {
	args := m.Called(ctx, name, data)
	return args.Get(0).(domain.DatasetSummary), args.Error(1)
}

func (m *mockTableService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DatasetSummary), args.Error(1)
}

func (m *mockTableService) Page(ctx context.Context, page int) (domain.Page, error) {
	args := m.Called(ctx, page)
	return args.Get(0).(domain.Page), args.Error(1)
}

func (m *mockTableService) SetColumnFilter(ctx context.Context, column string, values []string) (domain.Page, error) {
	args := m.Called(ctx, column, values)
	return args.Get(0).(domain.Page), args.Error(1)
}

func (m *mockTableService) ToggleQuickFilter(ctx context.Context, column, value string) (domain.Page, error) {
	args := m.Called(ctx, column, value)
	return args.Get(0).(domain.Page), args.Error(1)
}

func (m *mockTableService) ClearColumnFilter(ctx context.Context, column string) (domain.Page, error) {
	args := m.Called(ctx, column)
	return args.Get(0).(domain.Page), args.Error(1)
}

func (m *mockTableService) ResetFilters(ctx context.Context) (domain.Page, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Page), args.Error(1)
}

func (m *mockTableService) Filters(ctx context.Context) map[string][]string {
	return m.Called(ctx).Get(0).(map[string][]string)
}

func (m *mockTableService) FilterOptions(ctx context.Context, column string) (filter.ColumnOptions, error) {
	args := m.Called(ctx, column)
	return args.Get(0).(filter.ColumnOptions), args.Error(1)
}

func (m *mockTableService) QuickFilters(ctx context.Context) (session.QuickMenu, error) {
	args := m.Called(ctx)
	return args.Get(0).(session.QuickMenu), args.Error(1)
}

func (m *mockTableService) SetColumnVisible(ctx context.Context, column string, visible bool) (domain.Page, error) {
	args := m.Called(ctx, column, visible)
	return args.Get(0).(domain.Page), args.Error(1)
}

func (m *mockTableService) Columns(ctx context.Context) ([]domain.Column, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Column), args.Error(1)
}

func (m *mockTableService) DerivedColumn(ctx context.Context) domain.DerivedColumnConfig {
	return m.Called(ctx).Get(0).(domain.DerivedColumnConfig)
}

func (m *mockTableService) ConfigureDerivedColumn(ctx context.Context, cfg domain.DerivedColumnConfig) (domain.Page, error) {
	args := m.Called(ctx, cfg)
	return args.Get(0).(domain.Page), args.Error(1)
}

func (m *mockTableService) Chart(ctx context.Context, req aggregate.Request) (domain.AggregationResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.AggregationResult), args.Error(1)
}

func (m *mockTableService) ValueColumns(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockTableService) SaveTable(ctx context.Context, name string) (domain.SavedTable, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.SavedTable), args.Error(1)
}

func (m *mockTableService) Tables(ctx context.Context) []domain.SavedTable {
	return m.Called(ctx).Get(0).([]domain.SavedTable)
}

func (m *mockTableService) Table(ctx context.Context, id string) (domain.SavedTable, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.SavedTable), args.Error(1)
}

func (m *mockTableService) DeleteTable(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTableService) ReplayTable(ctx context.Context, id string) (registry.Replayed, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(registry.Replayed), args.Error(1)
}

func (m *mockTableService) AddTableChart(ctx context.Context, tableID string, def domain.ChartDefinition) (domain.ChartDefinition, error) {
	args := m.Called(ctx, tableID, def)
	return args.Get(0).(domain.ChartDefinition), args.Error(1)
}

func (m *mockTableService) RemoveTableChart(ctx context.Context, tableID, chartID string) error {
	return m.Called(ctx, tableID, chartID).Error(0)
}

func (m *mockTableService) TableChart(ctx context.Context, tableID, chartID string) (domain.AggregationResult, error) {
	args := m.Called(ctx, tableID, chartID)
	return args.Get(0).(domain.AggregationResult), args.Error(1)
}

func (m *mockTableService) ExportView(ctx context.Context, w io.Writer, charts []session.ChartExport) error {
	return m.Called(ctx, w, charts).Error(0)
}

func (m *mockTableService) ExportViewCSV(ctx context.Context, w io.Writer) error {
	return m.Called(ctx, w).Error(0)
}

func (m *mockTableService) ExportTables(ctx context.Context, w io.Writer) error {
	return m.Called(ctx, w).Error(0)
}

var _ TableServiceInterface = (*mockTableService)(nil)
