package filter

import "jiraview/internal/shared"

// Roles names the columns that hold creation and update dates.
type Roles struct {
	Created string `json:"created" yaml:"created"`
	Updated string `json:"updated" yaml:"updated"`
}

// DefaultRoles matches the issue tracker's Spanish export
var DefaultRoles = Roles{Created: "Creada", Updated: "Actualizada"}

// Names returns the configured role names, skipping empty ones.
func (r Roles) Names() []string {
	var out []string
	for _, n := range []string{r.Created, r.Updated} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// IsDateColumn reports whether column plays a date role, ignoring case and accents.
func (r Roles) IsDateColumn(column string) bool {
	for _, n := range r.Names() {
		if shared.EqualFold(n, column) {
			return true
		}
	}
	return false
}

// Resolve returns the dataset columns that play a date role.
func (r Roles) Resolve(columns []string) []string {
	var out []string
	for _, c := range columns {
		if r.IsDateColumn(c) {
			out = append(out, c)
		}
	}
	return out
}
