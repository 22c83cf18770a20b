package domain

// Row is one record of the loaded CSV keyed by column name.
type Row map[string]string

// Get returns the cell for column, or "" when the row has no such cell.
func (r Row) Get(column string) string {
	if r == nil {
		return ""
	}
	return r[column]
}

// Column describes one column of a dataset in display order
type Column struct {
	Name    string `json:"name" validate:"required"`
	Visible bool   `json:"visible"`
}

// Page is one projected page of a filtered view
type Page struct {
	Number     int        `json:"page"`
	Size       int        `json:"page_size"`
	TotalRows  int        `json:"total_rows"`
	TotalPages int        `json:"total_pages"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
}

// DatasetSummary describes the loaded dataset without its rows
type DatasetSummary struct {
	FileName    string   `json:"file_name"`
	RowCount    int      `json:"row_count"`
	Columns     []Column `json:"columns"`
	Fingerprint string   `json:"fingerprint"`
}
