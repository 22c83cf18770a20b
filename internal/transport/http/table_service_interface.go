package http

import (
	"context"
	"io"

	"jiraview/internal/aggregate"
	"jiraview/internal/filter"
	"jiraview/internal/registry"
	"jiraview/internal/services"
	"jiraview/internal/session"
	"jiraview/pkg/contracts/domain"
)

// TableServiceInterface defines the table operations the handlers need
type TableServiceInterface interface {
	Settings() services.Settings

	Load(ctx context.Context, name string, data []byte) (domain.DatasetSummary, error)
	Summary(ctx context.Context) (domain.DatasetSummary, error)
	Page(ctx context.Context, page int) (domain.Page, error)

	SetColumnFilter(ctx context.Context, column string, values []string) (domain.Page, error)
	ToggleQuickFilter(ctx context.Context, column, value string) (domain.Page, error)
	ClearColumnFilter(ctx context.Context, column string) (domain.Page, error)
	ResetFilters(ctx context.Context) (domain.Page, error)
	Filters(ctx context.Context) map[string][]string
	FilterOptions(ctx context.Context, column string) (filter.ColumnOptions, error)
	QuickFilters(ctx context.Context) (session.QuickMenu, error)

	SetColumnVisible(ctx context.Context, column string, visible bool) (domain.Page, error)
	Columns(ctx context.Context) ([]domain.Column, error)
	DerivedColumn(ctx context.Context) domain.DerivedColumnConfig
	ConfigureDerivedColumn(ctx context.Context, cfg domain.DerivedColumnConfig) (domain.Page, error)

	Chart(ctx context.Context, req aggregate.Request) (domain.AggregationResult, error)
	ValueColumns(ctx context.Context) ([]string, error)

	SaveTable(ctx context.Context, name string) (domain.SavedTable, error)
	Tables(ctx context.Context) []domain.SavedTable
	Table(ctx context.Context, id string) (domain.SavedTable, error)
	DeleteTable(ctx context.Context, id string) error
	ReplayTable(ctx context.Context, id string) (registry.Replayed, error)
	AddTableChart(ctx context.Context, tableID string, def domain.ChartDefinition) (domain.ChartDefinition, error)
	RemoveTableChart(ctx context.Context, tableID, chartID string) error
	TableChart(ctx context.Context, tableID, chartID string) (domain.AggregationResult, error)

	ExportView(ctx context.Context, w io.Writer, charts []session.ChartExport) error
	ExportViewCSV(ctx context.Context, w io.Writer) error
	ExportTables(ctx context.Context, w io.Writer) error
}

var _ TableServiceInterface = (*services.TableService)(nil)
