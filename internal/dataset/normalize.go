package dataset

import (
	"unicode"

	"jiraview/internal/dates"
	"jiraview/internal/shared"
)

// NormalizeOptions selects the ingestion edits applied to a fresh dataset.
type NormalizeOptions struct {
	// DateColumns are the date role names, matched case-insensitively.
	DateColumns   []string
	// SummaryColumn gets its first two characters upper-cased unless they are digits.
	SummaryColumn string

	Parser dates.Parser
}

// NormalizeReport counts the cells rewritten by Normalize
type NormalizeReport struct {
	DateCells    int `json:"date_cells"`
	SummaryCells int `json:"summary_cells"`
}

// Normalize rewrites date role cells to DD/MM/YYYY and capitalizes the
// summary prefix. Cells that cannot be parsed are left verbatim.
func Normalize(ds *Dataset, opts NormalizeOptions) NormalizeReport {
	var report NormalizeReport

	var dateCols []string
	for _, name := range ds.ColumnNames() {
		for _, role := range opts.DateColumns {
			if role != "" && shared.EqualFold(name, role) {
				dateCols = append(dateCols, name)
				break
			}
		}
	}

	summary := ""
	if opts.SummaryColumn != "" {
		for _, name := range ds.ColumnNames() {
			if shared.EqualFold(name, opts.SummaryColumn) {
				summary = name
				break
			}
		}
	}

	for _, row := range ds.rows {
		for _, col := range dateCols {
			v := row[col]
			if v == "" {
				continue
			}
			d, ok := opts.Parser.ParseLeading(v)
			if !ok {
				continue
			}
			if f := d.Format(); f != v {
				row[col] = f
				report.DateCells++
			}
		}
		if summary != "" {
			if v := row[summary]; v != "" {
				if c := capitalizePrefix(v); c != v {
					row[summary] = c
					report.SummaryCells++
				}
			}
		}
	}
	return report
}

func capitalizePrefix(s string) string {
	r := []rune(s)
	for i := 0; i < 2 && i < len(r); i++ {
		if !unicode.IsDigit(r[i]) {
			r[i] = unicode.ToUpper(r[i])
		}
	}
	return string(r)
}
