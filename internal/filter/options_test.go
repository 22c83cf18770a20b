package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsCascade(t *testing.T) {
	ds := loadIssues(t)
	s := newSet()
	s.SetColumnFilter(ds, "Area", []string{"Soporte"})

	opts := s.Options(ds, "Estado")
	assert.Equal(t, []string{"Cerrado", "Resuelto"}, opts.Values)
	assert.False(t, opts.IsDate)
	assert.Empty(t, opts.Selected)

	own := s.Options(ds, "Area")
	assert.Equal(t, []string{"Desarrollo", "Infra", "Soporte"}, own.Values, "a column's own filter does not narrow its options")
	assert.Equal(t, []string{"Soporte"}, own.Selected)
}

func TestOptionsGroupsDatesByYear(t *testing.T) {
	ds := loadIssues(t)
	opts := newSet().Options(ds, "Creada")

	assert.True(t, opts.IsDate)
	assert.Equal(t, []YearGroup{
		{Year: 2024, Values: []string{"05/03/2024", "28/02/2024", "10/01/2024"}},
		{Year: 2023, Values: []string{"02/04/2023", "15/03/2023"}},
	}, opts.Years)
}

func TestYears(t *testing.T) {
	ds := loadIssues(t)
	assert.Equal(t, []int{2024, 2023}, newSet().Years(ds.Rows(), "Creada"))
	assert.Empty(t, newSet().Years(ds.Rows(), "Estado"))
}

func TestAvailable(t *testing.T) {
	ds := loadIssues(t)
	s := newSet()
	s.ToggleQuickFilter("Area", "Infra")

	avail := Available(s.Apply(ds.Rows()), "Estado")
	assert.Equal(t, map[string]bool{"Cancelado": true}, avail)
}
