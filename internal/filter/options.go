package filter

import (
	"sort"

	"jiraview/internal/dataset"
	"jiraview/pkg/contracts/domain"
)

// YearGroup lists the date values of one year, newest first.
type YearGroup struct {
	Year   int      `json:"year"`
	Values []string `json:"values"`
}

// ColumnOptions are the choices offered when editing the filter of a column.
type ColumnOptions struct {
	Column   string      `json:"column"`
	IsDate   bool        `json:"is_date"`
	Values   []string    `json:"values"`
	Years    []YearGroup `json:"years,omitempty"`
	Selected []string    `json:"selected"`
}

// Options returns the values of column present in rows that pass every
// other constraint, so choices narrow as filters are combined. Date role
// columns are also grouped by year, newest first; unparsable dates are
// left only in Values.
func (s *Set) Options(ds *dataset.Dataset, column string) ColumnOptions {
	candidates := s.apply(ds.Rows(), column)
	values := dataset.Distinct(candidates, column)
	sort.Strings(values)

	opts := ColumnOptions{
		Column:   column,
		IsDate:   s.roles.IsDateColumn(column),
		Values:   values,
		Selected: s.Values(column),
	}
	if opts.IsDate {
		opts.Years = s.groupByYear(values)
	}
	return opts
}

// Years returns the distinct years found in column, newest first.
func (s *Set) Years(rows []domain.Row, column string) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range rows {
		y, ok := s.parser.YearOf(r.Get(column))
		if !ok {
			continue
		}
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Available returns the distinct values of column present in rows, which is
// how quick filter menus grey out choices that would yield nothing.
func Available(rows []domain.Row, column string) map[string]bool {
	out := make(map[string]bool)
	for _, v := range dataset.Distinct(rows, column) {
		out[v] = true
	}
	return out
}

func (s *Set) groupByYear(values []string) []YearGroup {
	type dated struct {
		value string
		unix  int64
	}
	byYear := make(map[int][]dated)
	for _, v := range values {
		d, ok := s.parser.ParseLeading(v)
		if !ok {
			continue
		}
		byYear[d.Year] = append(byYear[d.Year], dated{value: v, unix: d.Time().Unix()})
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	out := make([]YearGroup, 0, len(years))
	for _, y := range years {
		items := byYear[y]
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].unix != items[j].unix {
				return items[i].unix > items[j].unix
			}
			return items[i].value < items[j].value
		})
		group := YearGroup{Year: y, Values: make([]string, len(items))}
		for i, it := range items {
			group.Values[i] = it.value
		}
		out = append(out, group)
	}
	return out
}
