package session

import (
	"context"
	"io"
	"log/slog"

	"jiraview/internal/aggregate"
	"jiraview/internal/exporter"
	"jiraview/internal/view"
)

// ChartExport is a chart to include below an exported view
type ChartExport struct {
	Title   string
	Request aggregate.Request
	PNG     []byte
}

// ExportView writes every row of the filtered view, projected onto the
// visible columns, as a single-sheet workbook.
func (s *Session) ExportView(ctx context.Context, w io.Writer, charts []ChartExport) error {
	if s.ds == nil {
		return ErrNoDataset
	}
	if !s.busy.TryAcquire(1) {
		return ErrBusy
	}
	defer s.busy.Release(1)

	columns := view.VisibleNames(s.ds.Columns())
	sheet := exporter.Sheet{
		Name:    exporter.DefaultSheetName,
		Columns: columns,
		Rows:    view.Project(s.view, columns),
	}
	for _, c := range charts {
		if err := s.checkChartColumns(c.Request.CategoryColumn, c.Request.ValueColumn); err != nil {
			return err
		}
		result, err := s.engine.Aggregate(s.view, c.Request)
		if err != nil {
			return err
		}
		sheet.Charts = append(sheet.Charts, exporter.Chart{Title: c.Title, Result: result, PNG: c.PNG})
	}

	if err := s.workbook.Write(w, []exporter.Sheet{sheet}); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "exported view",
		slog.Int("rows", len(s.view)),
		slog.Int("columns", len(columns)),
		slog.Int("charts", len(charts)))
	return nil
}

// ExportViewCSV writes the filtered view as CSV.
func (s *Session) ExportViewCSV(ctx context.Context, w io.Writer) error {
	if s.ds == nil {
		return ErrNoDataset
	}
	if !s.busy.TryAcquire(1) {
		return ErrBusy
	}
	defer s.busy.Release(1)

	columns := view.VisibleNames(s.ds.Columns())
	return exporter.WriteCSV(w, exporter.WriteOptions{
		Headers:   columns,
		Records:   view.Project(s.view, columns),
		BOMPrefix: true,
	})
}

// ExportTables writes one sheet per saved table with its charts.
func (s *Session) ExportTables(ctx context.Context, w io.Writer) error {
	if s.ds == nil {
		return ErrNoDataset
	}
	if !s.busy.TryAcquire(1) {
		return ErrBusy
	}
	defer s.busy.Release(1)

	tables := s.registry.List(ctx)
	if len(tables) == 0 {
		return ErrNoTables
	}

	sheets := make([]exporter.Sheet, 0, len(tables))
	for _, t := range tables {
		replayed := s.replay(t)
		columns := view.VisibleNames(replayed.Columns)
		sheet := exporter.Sheet{
			Name:    t.Name,
			Columns: columns,
			Rows:    view.Project(replayed.Rows, columns),
		}
		for _, def := range t.Charts {
			result, err := s.engine.Aggregate(replayed.Rows, chartRequest(def))
			if err != nil {
				s.logger.WarnContext(ctx, "skipping chart in export",
					slog.String("table_id", t.ID), slog.String("chart_id", def.ID), slog.String("error", err.Error()))
				continue
			}
			sheet.Charts = append(sheet.Charts, exporter.Chart{Title: def.Title, Result: result})
		}
		sheets = append(sheets, sheet)
	}

	if err := s.workbook.Write(w, sheets); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "exported saved tables", slog.Int("tables", len(sheets)))
	return nil
}
