package session

import (
	"jiraview/internal/aggregate"
	"jiraview/internal/dates"
	"jiraview/internal/exporter"
	"jiraview/internal/filter"
	"jiraview/internal/view"
)

// Options configures a session
type Options struct {
	PageSize      int
	DateRoles     filter.Roles
	MapperRoles   aggregate.Roles
	SummaryColumn string
	QuickColumns  []string
	Parser        dates.Parser
	// Normalize rewrites date and summary cells when a file is loaded.
	Normalize bool
	Workbook  exporter.WorkbookOptions
}

// DefaultOptions matches the issue tracker's Spanish export
func DefaultOptions() Options {
	return Options{
		PageSize:      view.DefaultPageSize,
		DateRoles:     filter.DefaultRoles,
		MapperRoles:   aggregate.DefaultRoles,
		SummaryColumn: "Resumen",
		QuickColumns:  []string{"Area", "Prioridad", "Estado"},
		Parser:        dates.NewParser(dates.DefaultPivot),
		Normalize:     true,
		Workbook:      exporter.WorkbookOptions{NativeCharts: true},
	}
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = view.DefaultPageSize
	}
	return o
}
