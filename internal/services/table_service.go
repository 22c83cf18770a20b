package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"jiraview/internal/aggregate"
	"jiraview/internal/filter"
	"jiraview/internal/infrastructure"
	"jiraview/internal/registry"
	"jiraview/internal/session"
	"jiraview/pkg/contracts/domain"
	"jiraview/pkg/contracts/events"
)

// EventPublisher pushes events to connected clients
type EventPublisher interface {
	Publish(ctx context.Context, msgType events.MessageType, data interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.MessageType, interface{}) {}

// Settings are the effective table settings shown to clients
type Settings struct {
	PageSize      int             `json:"page_size"`
	YearPivot     int             `json:"year_pivot"`
	DateRoles     filter.Roles    `json:"date_roles"`
	MapperRoles   aggregate.Roles `json:"mapper_roles"`
	SummaryColumn string          `json:"summary_column"`
	QuickColumns  []string        `json:"quick_columns"`
	Normalize     bool            `json:"normalize"`
}

// TableService is the concurrency-safe facade over a session. Every call
// holds one mutex, records a span and metrics, and publishes the resulting
// event after the state change succeeded.
type TableService struct {
	mu        sync.Mutex
	session   *session.Session
	publisher EventPublisher
	metrics   *infrastructure.TableMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewTableService wraps sess. publisher, metrics and tracer may be nil.
func NewTableService(sess *session.Session, publisher EventPublisher, metrics *infrastructure.TableMetrics, tracer trace.Tracer, logger *slog.Logger) *TableService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if metrics == nil {
		metrics = infrastructure.NoopTableMetrics()
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TableService{
		session:   sess,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger.With(slog.String("component", "table_service")),
	}
}

// call runs fn under the service lock inside a span named op
func call[T any](s *TableService, ctx context.Context, op string, fn func(ctx context.Context) (T, error), attrs ...attribute.KeyValue) (T, error) {
	ctx, span := s.tracer.Start(ctx, "table."+op, trace.WithAttributes(attrs...))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := fn(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		if errors.Is(err, session.ErrBusy) {
			s.metrics.BusyRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
		}
	}
	return out, err
}

func exec(s *TableService, ctx context.Context, op string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	_, err := call(s, ctx, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, attrs...)
	return err
}

// Settings returns the effective configuration of the session
func (s *TableService) Settings() Settings {
	opts := s.session.Options()
	return Settings{
		PageSize:      opts.PageSize,
		YearPivot:     opts.Parser.Pivot,
		DateRoles:     opts.DateRoles,
		MapperRoles:   opts.MapperRoles,
		SummaryColumn: opts.SummaryColumn,
		QuickColumns:  opts.QuickColumns,
		Normalize:     opts.Normalize,
	}
}

// Load replaces the dataset with a new file
func (s *TableService) Load(ctx context.Context, name string, data []byte) (domain.DatasetSummary, error) {
	return call(s, ctx, "load", func(ctx context.Context) (domain.DatasetSummary, error) {
		summary, err := s.session.Load(ctx, name, data)
		if err != nil {
			s.metrics.DatasetLoads.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "failed")))
			return summary, err
		}
		s.metrics.DatasetLoads.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "ok")))
		s.metrics.DatasetRows.Record(ctx, int64(summary.RowCount))
		s.publisher.Publish(ctx, events.MessageTypeDatasetLoaded, datasetEvent(summary))
		return summary, nil
	}, attribute.String("file.name", name), attribute.Int("file.size", len(data)))
}

// Restore reloads the persisted session state
func (s *TableService) Restore(ctx context.Context) (bool, error) {
	return call(s, ctx, "restore", func(ctx context.Context) (bool, error) {
		ok, err := s.session.Restore(ctx)
		if err != nil || !ok {
			return ok, err
		}
		if summary, err := s.session.Summary(); err == nil {
			s.metrics.DatasetRows.Record(ctx, int64(summary.RowCount))
		}
		s.metrics.SavedTables.Record(ctx, int64(len(s.session.Tables(ctx))))
		return true, nil
	})
}

// Summary describes the loaded dataset
func (s *TableService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	return call(s, ctx, "summary", func(context.Context) (domain.DatasetSummary, error) {
		return s.session.Summary()
	})
}

// Page returns the requested page; zero means the current one
func (s *TableService) Page(ctx context.Context, page int) (domain.Page, error) {
	return call(s, ctx, "page", func(context.Context) (domain.Page, error) {
		if page <= 0 {
			return s.session.CurrentPage()
		}
		return s.session.Page(page)
	}, attribute.Int("page", page))
}

// SetColumnFilter replaces the selection of a column
func (s *TableService) SetColumnFilter(ctx context.Context, column string, values []string) (domain.Page, error) {
	return s.changeFilters(ctx, "filter.set", column, func(ctx context.Context) error {
		return s.session.SetColumnFilter(ctx, column, values)
	})
}

// ToggleQuickFilter flips one value of a quick filter
func (s *TableService) ToggleQuickFilter(ctx context.Context, column, value string) (domain.Page, error) {
	return s.changeFilters(ctx, "filter.toggle", column, func(ctx context.Context) error {
		return s.session.ToggleQuickFilter(ctx, column, value)
	})
}

// ClearColumnFilter removes the filter of a single column
func (s *TableService) ClearColumnFilter(ctx context.Context, column string) (domain.Page, error) {
	return s.changeFilters(ctx, "filter.clear", column, func(ctx context.Context) error {
		return s.session.ClearColumnFilter(ctx, column)
	})
}

// ResetFilters clears every filter
func (s *TableService) ResetFilters(ctx context.Context) (domain.Page, error) {
	return s.changeFilters(ctx, "filter.reset", "", func(ctx context.Context) error {
		return s.session.ResetFilters(ctx)
	})
}

func (s *TableService) changeFilters(ctx context.Context, op, column string, fn func(ctx context.Context) error) (domain.Page, error) {
	return call(s, ctx, op, func(ctx context.Context) (domain.Page, error) {
		if err := fn(ctx); err != nil {
			return domain.Page{}, err
		}
		s.metrics.FilterChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
		return s.viewChanged(ctx, events.ReasonFilters, column)
	}, attribute.String("column", column))
}

// viewChanged publishes the new state of the view and returns its current page
func (s *TableService) viewChanged(ctx context.Context, reason, column string) (domain.Page, error) {
	page, err := s.session.CurrentPage()
	if err != nil {
		return page, err
	}
	s.publisher.Publish(ctx, events.MessageTypeViewChanged, events.ViewChangedEvent{
		Reason:    reason,
		Column:    column,
		Page:      page.Number,
		Pages:     page.TotalPages,
		TotalRows: page.TotalRows,
	})
	return page, nil
}

// Filters returns the active filter snapshot
func (s *TableService) Filters(ctx context.Context) map[string][]string {
	out, _ := call(s, ctx, "filters", func(context.Context) (map[string][]string, error) {
		return s.session.Filters(), nil
	})
	return out
}

// FilterOptions returns the cascading options of a column
func (s *TableService) FilterOptions(ctx context.Context, column string) (filter.ColumnOptions, error) {
	return call(s, ctx, "filter.options", func(context.Context) (filter.ColumnOptions, error) {
		return s.session.FilterOptions(column)
	}, attribute.String("column", column))
}

// QuickFilters returns the quick filter menu
func (s *TableService) QuickFilters(ctx context.Context) (session.QuickMenu, error) {
	return call(s, ctx, "filter.quick", func(context.Context) (session.QuickMenu, error) {
		return s.session.QuickFilters()
	})
}

// SetColumnVisible shows or hides a column
func (s *TableService) SetColumnVisible(ctx context.Context, column string, visible bool) (domain.Page, error) {
	return call(s, ctx, "columns.visibility", func(ctx context.Context) (domain.Page, error) {
		if err := s.session.SetColumnVisible(column, visible); err != nil {
			return domain.Page{}, err
		}
		return s.viewChanged(ctx, events.ReasonColumns, column)
	}, attribute.String("column", column), attribute.Bool("visible", visible))
}

// Columns lists the columns with their visibility
func (s *TableService) Columns(ctx context.Context) ([]domain.Column, error) {
	return call(s, ctx, "columns", func(context.Context) ([]domain.Column, error) {
		return s.session.Columns()
	})
}

// DerivedColumn returns the stored derived column configuration
func (s *TableService) DerivedColumn(ctx context.Context) domain.DerivedColumnConfig {
	out, _ := call(s, ctx, "derived", func(context.Context) (domain.DerivedColumnConfig, error) {
		return s.session.DerivedColumn(), nil
	})
	return out
}

// ConfigureDerivedColumn stores and applies a derived column configuration
func (s *TableService) ConfigureDerivedColumn(ctx context.Context, cfg domain.DerivedColumnConfig) (domain.Page, error) {
	return call(s, ctx, "derived.configure", func(ctx context.Context) (domain.Page, error) {
		if err := s.session.ConfigureDerivedColumn(ctx, cfg); err != nil {
			return domain.Page{}, err
		}
		if !s.session.HasDataset() {
			return domain.Page{}, nil
		}
		return s.viewChanged(ctx, events.ReasonDerived, cfg.Source)
	}, attribute.String("source", cfg.Source), attribute.Bool("enabled", cfg.Enabled))
}

// Chart aggregates the current view
func (s *TableService) Chart(ctx context.Context, req aggregate.Request) (domain.AggregationResult, error) {
	return call(s, ctx, "chart", func(ctx context.Context) (domain.AggregationResult, error) {
		start := time.Now()
		result, err := s.session.Chart(req)
		if err != nil {
			return result, err
		}
		attrs := []attribute.KeyValue{attribute.String("source", "view")}
		s.metrics.Aggregations.Add(ctx, 1, metric.WithAttributes(attrs...))
		infrastructure.RecordDuration(ctx, s.metrics.AggregationDuration, start, attrs...)
		return result, nil
	}, attribute.String("category", req.CategoryColumn), attribute.String("value", req.ValueColumn))
}

// ValueColumns lists the numeric columns usable as chart values
func (s *TableService) ValueColumns(ctx context.Context) ([]string, error) {
	return call(s, ctx, "chart.value_columns", func(context.Context) ([]string, error) {
		return s.session.ValueColumns()
	})
}

// SaveTable saves the current view as a named table
func (s *TableService) SaveTable(ctx context.Context, name string) (domain.SavedTable, error) {
	return call(s, ctx, "tables.save", func(ctx context.Context) (domain.SavedTable, error) {
		table, err := s.session.SaveTable(ctx, name)
		if err != nil {
			return table, err
		}
		s.tablesChanged(ctx, events.ActionCreated, table.ID, "")
		return table, nil
	})
}

// Tables lists the saved tables
func (s *TableService) Tables(ctx context.Context) []domain.SavedTable {
	out, _ := call(s, ctx, "tables.list", func(ctx context.Context) ([]domain.SavedTable, error) {
		return s.session.Tables(ctx), nil
	})
	return out
}

// Table returns one saved table
func (s *TableService) Table(ctx context.Context, id string) (domain.SavedTable, error) {
	return call(s, ctx, "tables.get", func(ctx context.Context) (domain.SavedTable, error) {
		return s.session.Table(ctx, id)
	}, attribute.String("table.id", id))
}

// DeleteTable removes a saved table
func (s *TableService) DeleteTable(ctx context.Context, id string) error {
	return exec(s, ctx, "tables.delete", func(ctx context.Context) error {
		if err := s.session.DeleteTable(ctx, id); err != nil {
			return err
		}
		s.tablesChanged(ctx, events.ActionDeleted, id, "")
		return nil
	}, attribute.String("table.id", id))
}

// ReplayTable recomputes the rows of a saved table
func (s *TableService) ReplayTable(ctx context.Context, id string) (registry.Replayed, error) {
	return call(s, ctx, "tables.replay", func(ctx context.Context) (registry.Replayed, error) {
		return s.session.ReplayTable(ctx, id)
	}, attribute.String("table.id", id))
}

// AddTableChart attaches a chart to a saved table
func (s *TableService) AddTableChart(ctx context.Context, tableID string, def domain.ChartDefinition) (domain.ChartDefinition, error) {
	return call(s, ctx, "tables.chart.add", func(ctx context.Context) (domain.ChartDefinition, error) {
		chart, err := s.session.AddTableChart(ctx, tableID, def)
		if err != nil {
			return chart, err
		}
		s.tablesChanged(ctx, events.ActionChartAdded, tableID, chart.ID)
		return chart, nil
	}, attribute.String("table.id", tableID))
}

// RemoveTableChart detaches a chart from a saved table
func (s *TableService) RemoveTableChart(ctx context.Context, tableID, chartID string) error {
	return exec(s, ctx, "tables.chart.remove", func(ctx context.Context) error {
		if err := s.session.RemoveTableChart(ctx, tableID, chartID); err != nil {
			return err
		}
		s.tablesChanged(ctx, events.ActionChartRemoved, tableID, chartID)
		return nil
	}, attribute.String("table.id", tableID), attribute.String("chart.id", chartID))
}

// TableChart computes a saved chart over its table
func (s *TableService) TableChart(ctx context.Context, tableID, chartID string) (domain.AggregationResult, error) {
	return call(s, ctx, "tables.chart", func(ctx context.Context) (domain.AggregationResult, error) {
		start := time.Now()
		result, err := s.session.TableChart(ctx, tableID, chartID)
		if err != nil {
			return result, err
		}
		attrs := []attribute.KeyValue{attribute.String("source", "saved_table")}
		s.metrics.Aggregations.Add(ctx, 1, metric.WithAttributes(attrs...))
		infrastructure.RecordDuration(ctx, s.metrics.AggregationDuration, start, attrs...)
		return result, nil
	}, attribute.String("table.id", tableID), attribute.String("chart.id", chartID))
}

func (s *TableService) tablesChanged(ctx context.Context, action, tableID, chartID string) {
	count := len(s.session.Tables(ctx))
	s.metrics.SavedTables.Record(ctx, int64(count))
	s.publisher.Publish(ctx, events.MessageTypeTablesChanged, events.TablesChangedEvent{
		Action:  action,
		TableID: tableID,
		ChartID: chartID,
		Count:   count,
	})
}

// ExportView writes the filtered view as a workbook
func (s *TableService) ExportView(ctx context.Context, w io.Writer, charts []session.ChartExport) error {
	return s.export(ctx, "view_xlsx", w, func(ctx context.Context, buf io.Writer) error {
		return s.session.ExportView(ctx, buf, charts)
	})
}

// ExportViewCSV writes the filtered view as CSV
func (s *TableService) ExportViewCSV(ctx context.Context, w io.Writer) error {
	return s.export(ctx, "view_csv", w, s.session.ExportViewCSV)
}

// ExportTables writes every saved table as a workbook
func (s *TableService) ExportTables(ctx context.Context, w io.Writer) error {
	return s.export(ctx, "tables_xlsx", w, s.session.ExportTables)
}

// export renders into memory under the lock and streams to w after
// releasing it, so a slow download does not block other requests.
func (s *TableService) export(ctx context.Context, kind string, w io.Writer, fn func(ctx context.Context, w io.Writer) error) error {
	var buf bytes.Buffer
	start := time.Now()
	err := exec(s, ctx, "export", func(ctx context.Context) error {
		return fn(ctx, &buf)
	}, attribute.String("export.kind", kind))

	status := "ok"
	if err != nil {
		status = "failed"
	}
	attrs := []attribute.KeyValue{attribute.String("kind", kind), attribute.String("status", status)}
	s.metrics.Exports.Add(ctx, 1, metric.WithAttributes(attrs...))
	infrastructure.RecordDuration(ctx, s.metrics.ExportDuration, start, attrs...)
	if err != nil {
		return err
	}

	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WarnContext(ctx, "export write interrupted",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

func datasetEvent(summary domain.DatasetSummary) events.DatasetLoadedEvent {
	columns := make([]string, 0, len(summary.Columns))
	for _, c := range summary.Columns {
		columns = append(columns, c.Name)
	}
	return events.DatasetLoadedEvent{
		FileName:    summary.FileName,
		Rows:        summary.RowCount,
		Columns:     columns,
		Fingerprint: summary.Fingerprint,
	}
}
