// Package exporter writes filtered views and saved tables to spreadsheets.
//
// WorkbookWriter renders one worksheet per table with a styled, frozen
// header row and fixed column widths. Charts attached to a sheet are written
// below the data as a breakdown table (category, value, percentage and a
// total row), optionally with a native pie chart and a PNG supplied by the
// caller.
//
// Sheet names are stripped of the characters workbooks reject, cut to 31
// characters and de-duplicated.
//
// WriteCSV is the plain-text alternative for a single view.
//
// Example usage:
//
//	w := exporter.NewWorkbookWriter(exporter.WorkbookOptions{NativeCharts: true}, logger)
//	err := w.Write(out, []exporter.Sheet{{
//	    Name:    "Datos Filtrados",
//	    Columns: page.Columns,
//	    Rows:    page.Rows,
//	}})
package exporter
