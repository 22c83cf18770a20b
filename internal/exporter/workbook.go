package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"jiraview/pkg/contracts/domain"
)

// Defaults matching the workbook the browser tool produced
const (
	DefaultHeaderColor = "8E44AD"
	DefaultColumnWidth = 20.0
	DefaultSheetName   = "Datos Filtrados"
)

// Sheet is one table written to its own worksheet
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
	Charts  []Chart
}

// Chart is an aggregation rendered below the data as a breakdown table,
// optionally with a native pie chart and a pre-rendered image.
type Chart struct {
	Title  string
	Result domain.AggregationResult
	// PNG is an optional rendering of the chart placed beside the breakdown.
	PNG []byte
}

// WorkbookOptions configures styling
type WorkbookOptions struct {
	HeaderColor  string
	ColumnWidth  float64
	NativeCharts bool
}

// WorkbookWriter renders sheets into an xlsx workbook
type WorkbookWriter struct {
	opts   WorkbookOptions
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer, filling unset options with defaults
func NewWorkbookWriter(opts WorkbookOptions, logger *slog.Logger) *WorkbookWriter {
	if opts.HeaderColor == "" {
		opts.HeaderColor = DefaultHeaderColor
	}
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = DefaultColumnWidth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{opts: opts, logger: logger.With(slog.String("component", "exporter"))}
}

// Write renders sheets in order and writes the workbook to w
func (ww *WorkbookWriter) Write(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{ww.opts.HeaderColor}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool)
	for i, s := range sheets {
		name := SanitizeSheetName(s.Name, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := ww.writeSheet(f, name, s, header); err != nil {
			return err
		}
		ww.logger.Debug("wrote sheet",
			slog.String("sheet", name),
			slog.Int("rows", len(s.Rows)),
			slog.Int("charts", len(s.Charts)))
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (ww *WorkbookWriter) writeSheet(f *excelize.File, name string, s Sheet, header int) error {
	if len(s.Columns) > 0 {
		if err := writeRow(f, name, 1, stringsToCells(s.Columns)); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(s.Columns), 1)
		if err := f.SetCellStyle(name, "A1", last, header); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(s.Columns))
		if err := f.SetColWidth(name, "A", lastCol, ww.opts.ColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
		if err := f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	for i, r := range s.Rows {
		if err := writeRow(f, name, i+2, stringsToCells(r)); err != nil {
			return err
		}
	}

	next := len(s.Rows) + 3
	for _, c := range s.Charts {
		used, err := ww.writeChart(f, name, next, c, header)
		if err != nil {
			return err
		}
		next += used + 2
	}
	return nil
}

// writeChart writes the breakdown at startRow and returns the rows it used.
func (ww *WorkbookWriter) writeChart(f *excelize.File, sheet string, startRow int, c Chart, header int) (int, error) {
	row := startRow
	if c.Title != "" {
		if err := f.SetCellValue(sheet, cell(1, row), c.Title); err != nil {
			return 0, fmt.Errorf("failed to write chart title: %w", err)
		}
		row++
	}

	if err := writeRow(f, sheet, row, []interface{}{"Categoría", "Valor", "Porcentaje"}); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(3, row), header); err != nil {
		return 0, fmt.Errorf("failed to style breakdown header: %w", err)
	}
	headerRow := row
	row++

	first := row
	for _, s := range c.Result.Slices {
		if err := writeRow(f, sheet, row, []interface{}{s.Label, s.Value, formatPercent(s.Percent)}); err != nil {
			return 0, err
		}
		row++
	}
	lastData := row - 1
	totalShare := 0.0
	if c.Result.Total != 0 {
		totalShare = 100
	}
	if err := writeRow(f, sheet, row, []interface{}{"Total", c.Result.Total, formatPercent(totalShare)}); err != nil {
		return 0, err
	}
	used := row - startRow + 1

	anchor := cell(5, headerRow)
	if ww.opts.NativeCharts && len(c.Result.Slices) > 0 {
		ref := fmt.Sprintf("'%s'!", strings.ReplaceAll(sheet, "'", "''"))
		chart := &excelize.Chart{
			Type: excelize.Pie,
			Series: []excelize.ChartSeries{{
				Name:       c.Title,
				Categories: fmt.Sprintf("%s$A$%d:$A$%d", ref, first, lastData),
				Values:     fmt.Sprintf("%s$B$%d:$B$%d", ref, first, lastData),
			}},
			Title:     []excelize.RichTextRun{{Text: c.Title}},
			Legend:    excelize.ChartLegend{Position: "right"},
			PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
			Dimension: excelize.ChartDimension{Width: 480, Height: 300},
		}
		if err := f.AddChart(sheet, anchor, chart); err != nil {
			return 0, fmt.Errorf("failed to add chart %q: %w", c.Title, err)
		}
		anchor = cell(13, headerRow)
	}

	if len(c.PNG) > 0 {
		if err := f.AddPictureFromBytes(sheet, anchor, &excelize.Picture{
			Extension: ".png",
			File:      c.PNG,
			Format:    &excelize.GraphicOptions{AltText: c.Title},
		}); err != nil {
			return 0, fmt.Errorf("failed to add chart image %q: %w", c.Title, err)
		}
	}

	// keep the next block clear of the drawing
	if (ww.opts.NativeCharts || len(c.PNG) > 0) && used < 16 {
		used = 16
	}
	return used, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if err := f.SetSheetRow(sheet, cell(1, row), &values); err != nil {
		return fmt.Errorf("failed to write row %d of %q: %w", row, sheet, err)
	}
	return nil
}

func stringsToCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
