package dataset

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"jiraview/pkg/contracts/domain"
)

// Dataset is the full, unfiltered table of a loaded file.
type Dataset struct {
	name        string
	columns     []domain.Column
	rows        []domain.Row
	fingerprint string
}

// New builds a dataset from headers and records. Records shorter than the
// header are padded with empty cells and extra cells are ignored.
func New(name string, headers []string, records [][]string) (*Dataset, error) {
	headers = uniqueHeaders(headers)
	if len(headers) == 0 {
		return nil, ErrNoHeader
	}

	ds := &Dataset{
		name:    name,
		columns: make([]domain.Column, len(headers)),
		rows:    make([]domain.Row, 0, len(records)),
	}
	for i, h := range headers {
		ds.columns[i] = domain.Column{Name: h, Visible: true}
	}
	for _, rec := range records {
		row := make(domain.Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		ds.rows = append(ds.rows, row)
	}
	return ds, nil
}

// Fingerprint returns the xxh3 hash of data in the format stored on saved tables.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// Name returns the file name the dataset was loaded from
func (d *Dataset) Name() string { return d.name }

// Fingerprint identifies the raw bytes the dataset was parsed from
func (d *Dataset) Fingerprint() string { return d.fingerprint }

// Len returns the number of rows
func (d *Dataset) Len() int { return len(d.rows) }

// Rows returns the rows in file order. The slice is shared with the dataset.
func (d *Dataset) Rows() []domain.Row { return d.rows }

// Columns returns a copy of the column descriptors in display order
func (d *Dataset) Columns() []domain.Column {
	out := make([]domain.Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// ColumnNames returns every column name in display order
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.Name
	}
	return out
}

// VisibleColumns returns the names of visible columns in display order
func (d *Dataset) VisibleColumns() []string {
	var out []string
	for _, c := range d.columns {
		if c.Visible {
			out = append(out, c.Name)
		}
	}
	return out
}

// HasColumn reports whether the dataset has a column called name
func (d *Dataset) HasColumn(name string) bool {
	return d.indexOf(name) >= 0
}

// SetVisible changes the visibility of a column
func (d *Dataset) SetVisible(name string, visible bool) error {
	i := d.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	d.columns[i].Visible = visible
	return nil
}

// DistinctValues returns the distinct values of a column in order of first appearance.
func (d *Dataset) DistinctValues(column string) []string {
	return Distinct(d.rows, column)
}

// Summary describes the dataset without its rows
func (d *Dataset) Summary() domain.DatasetSummary {
	return domain.DatasetSummary{
		FileName:    d.name,
		RowCount:    len(d.rows),
		Columns:     d.Columns(),
		Fingerprint: d.fingerprint,
	}
}

// addColumn appends a visible column unless one with that name exists.
func (d *Dataset) addColumn(name string) {
	if d.indexOf(name) >= 0 {
		return
	}
	d.columns = append(d.columns, domain.Column{Name: name, Visible: true})
}

func (d *Dataset) indexOf(name string) int {
	for i, c := range d.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Distinct returns the distinct values of column over rows in order of first appearance.
func Distinct(rows []domain.Row, column string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		v := r.Get(column)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func uniqueHeaders(headers []string) []string {
	taken := make(map[string]bool, len(headers))
	out := make([]string, 0, len(headers))
	for i, h := range headers {
		if h == "" {
			h = fmt.Sprintf("Columna %d", i+1)
		}
		name := h
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		taken[name] = true
		out = append(out, name)
	}
	return out
}
