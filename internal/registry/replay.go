package registry

import (
	"log/slog"

	"jiraview/internal/dataset"
	"jiraview/internal/dates"
	"jiraview/internal/filter"
	"jiraview/pkg/contracts/domain"
)

// Replayed is a saved table recomputed against a dataset
type Replayed struct {
	Table   domain.SavedTable
	Rows    []domain.Row
	Columns []domain.Column
	// Stale is set when the dataset differs from the one the table was saved against.
	Stale bool
	// MissingColumns lists saved columns the dataset no longer has.
	MissingColumns []string
}

// Replayer recomputes saved tables.
type Replayer struct {
	roles  filter.Roles
	parser dates.Parser
	logger *slog.Logger
}

// NewReplayer returns a replayer using the given date roles
func NewReplayer(roles filter.Roles, parser dates.Parser, logger *slog.Logger) *Replayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replayer{roles: roles, parser: parser, logger: logger.With(slog.String("component", "replay"))}
}

// Replay applies the derived column configuration when enabled and valid,
// then the saved filter snapshot, and projects the saved columns that still
// exist. With the same dataset and configuration the rows equal those shown
// when the table was saved.
func (p *Replayer) Replay(ds *dataset.Dataset, table domain.SavedTable, derived *domain.DerivedColumnConfig) Replayed {
	if derived != nil && derived.Enabled {
		if err := dataset.ApplyDerived(ds, *derived); err != nil {
			p.logger.Warn("derived column not applied on replay",
				slog.String("table_id", table.ID), slog.String("error", err.Error()))
		}
	}

	out := Replayed{Table: table}
	if table.BaseFingerprint != "" && table.BaseFingerprint != ds.Fingerprint() {
		out.Stale = true
		p.logger.Warn("saved table replayed against a different file",
			slog.String("table_id", table.ID),
			slog.String("saved_fingerprint", table.BaseFingerprint),
			slog.String("current_fingerprint", ds.Fingerprint()))
	}

	set := filter.FromSnapshot(p.roles, p.parser, table.Filters)
	out.Rows = set.Apply(ds.Rows())

	for _, name := range table.VisibleColumns {
		if !ds.HasColumn(name) {
			out.MissingColumns = append(out.MissingColumns, name)
			continue
		}
		out.Columns = append(out.Columns, domain.Column{Name: name, Visible: true})
	}
	return out
}
