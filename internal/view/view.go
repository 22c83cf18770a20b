// Package view paginates a filtered view and projects it onto the visible columns.
package view

import (
	"errors"

	"jiraview/pkg/contracts/domain"
)

// DefaultPageSize is the number of rows per page when none is configured
const DefaultPageSize = 50

// ErrInvalidPageSize is returned for a page size below one
var ErrInvalidPageSize = errors.New("page size must be positive")

// TotalPages returns ceil(rows/pageSize); zero means there are no rows.
func TotalPages(rows, pageSize int) int {
	if pageSize <= 0 || rows <= 0 {
		return 0
	}
	return (rows + pageSize - 1) / pageSize
}

// PageRows returns the rows of a 1-based page. Pages outside 1..TotalPages
// yield no rows; callers are responsible for clamping.
func PageRows(rows []domain.Row, pageSize, page int) ([]domain.Row, error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	if page < 1 {
		return []domain.Row{}, nil
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []domain.Row{}, nil
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], nil
}

// Paginate returns one page of rows projected onto the visible columns.
func Paginate(rows []domain.Row, columns []domain.Column, pageSize, page int) (domain.Page, error) {
	pageRows, err := PageRows(rows, pageSize, page)
	if err != nil {
		return domain.Page{}, err
	}

	visible := VisibleNames(columns)
	return domain.Page{
		Number:     page,
		Size:       pageSize,
		TotalRows:  len(rows),
		TotalPages: TotalPages(len(rows), pageSize),
		Columns:    visible,
		Rows:       Project(pageRows, visible),
	}, nil
}

// Project renders rows as cells in the order of names. Missing cells are empty.
func Project(rows []domain.Row, names []string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(names))
		for j, n := range names {
			cells[j] = r.Get(n)
		}
		out[i] = cells
	}
	return out
}

// VisibleNames returns the names of visible columns in display order.
func VisibleNames(columns []domain.Column) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if c.Visible {
			out = append(out, c.Name)
		}
	}
	return out
}

// Clamp limits page to 1..totalPages, returning 1 when there are no pages.
func Clamp(page, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
