package filter

import (
	"regexp"
	"sort"
	"strconv"

	"jiraview/internal/dataset"
	"jiraview/internal/dates"
	"jiraview/pkg/contracts/domain"
)

var selectorPattern = regexp.MustCompile(`^(\d{4})(?:-(\d{1,2}))?$`)

// Set is the active filter state of a session.
type Set struct {
	roles   Roles
	parser  dates.Parser
	columns map[string]map[string]struct{}
}

// New returns an empty filter set.
func New(roles Roles, parser dates.Parser) *Set {
	return &Set{
		roles:   roles,
		parser:  parser,
		columns: make(map[string]map[string]struct{}),
	}
}

// Roles returns the date roles the set was built with
func (s *Set) Roles() Roles { return s.roles }

// Len returns the number of constrained columns
func (s *Set) Len() int { return len(s.columns) }

// IsEmpty reports whether no column is constrained
func (s *Set) IsEmpty() bool { return len(s.columns) == 0 }

// Values returns the accepted values of column, sorted
func (s *Set) Values(column string) []string {
	return sortedKeys(s.columns[column])
}

// SetColumnFilter replaces the accepted values of column. An empty
// selection, or one that covers every distinct value of the column in ds,
// removes the constraint instead.
func (s *Set) SetColumnFilter(ds *dataset.Dataset, column string, values []string) {
	selected := make(map[string]struct{}, len(values))
	for _, v := range values {
		selected[v] = struct{}{}
	}
	if len(selected) == 0 || (ds != nil && covers(selected, ds.DistinctValues(column))) {
		delete(s.columns, column)
		return
	}
	s.columns[column] = selected
}

// ToggleQuickFilter flips value for column. Date role columns hold at most
// one selector, so picking a new one replaces the old and picking the same
// one again clears it.
func (s *Set) ToggleQuickFilter(column, value string) {
	current, ok := s.columns[column]

	if s.roles.IsDateColumn(column) {
		if _, same := current[value]; ok && same && len(current) == 1 {
			delete(s.columns, column)
			return
		}
		s.columns[column] = map[string]struct{}{value: {}}
		return
	}

	if !ok {
		s.columns[column] = map[string]struct{}{value: {}}
		return
	}
	if _, present := current[value]; present {
		delete(current, value)
		if len(current) == 0 {
			delete(s.columns, column)
		}
		return
	}
	current[value] = struct{}{}
}

// ClearColumn removes the constraint on column
func (s *Set) ClearColumn(column string) {
	delete(s.columns, column)
}

// Clear removes every constraint
func (s *Set) Clear() {
	s.columns = make(map[string]map[string]struct{})
}

// Snapshot returns the constraints as sorted value lists.
func (s *Set) Snapshot() map[string][]string {
	out := make(map[string][]string, len(s.columns))
	for col, values := range s.columns {
		out[col] = sortedKeys(values)
	}
	return out
}

// Restore replaces the constraints with snapshot, dropping empty entries.
func (s *Set) Restore(snapshot map[string][]string) {
	s.Clear()
	for col, values := range snapshot {
		if len(values) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		s.columns[col] = set
	}
}

// FromSnapshot builds a set from a snapshot.
func FromSnapshot(roles Roles, parser dates.Parser, snapshot map[string][]string) *Set {
	s := New(roles, parser)
	s.Restore(snapshot)
	return s
}

// Apply returns the rows that satisfy every constraint, in input order.
// It does not modify rows or the set.
func (s *Set) Apply(rows []domain.Row) []domain.Row {
	return s.apply(rows, "")
}

// Matches reports whether row satisfies every constraint.
func (s *Set) Matches(row domain.Row) bool {
	return s.matches(row, "")
}

func (s *Set) apply(rows []domain.Row, except string) []domain.Row {
	out := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		if s.matches(r, except) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Set) matches(row domain.Row, except string) bool {
	for col, accepted := range s.columns {
		if col == except {
			continue
		}
		if !s.accepts(col, accepted, row.Get(col)) {
			return false
		}
	}
	return true
}

func (s *Set) accepts(column string, accepted map[string]struct{}, cell string) bool {
	if len(accepted) == 1 && s.roles.IsDateColumn(column) {
		for sel := range accepted {
			if m := selectorPattern.FindStringSubmatch(sel); m != nil {
				return s.matchSelector(m, cell)
			}
		}
	}
	_, ok := accepted[cell]
	return ok
}

func (s *Set) matchSelector(m []string, cell string) bool {
	d, ok := s.parser.ParseLeading(cell)
	if !ok {
		return false
	}
	year, _ := strconv.Atoi(m[1])
	if d.Year != year {
		return false
	}
	if m[2] == "" {
		return true
	}
	month, _ := strconv.Atoi(m[2])
	return d.MonthIndex() == month
}

func covers(selected map[string]struct{}, distinct []string) bool {
	for _, v := range distinct {
		if _, ok := selected[v]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
