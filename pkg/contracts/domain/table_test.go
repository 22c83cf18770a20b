package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowGet(t *testing.T) {
	r := Row{"Estado": "Cerrado"}
	assert.Equal(t, "Cerrado", r.Get("Estado"))
	assert.Equal(t, "", r.Get("Missing"))

	var nilRow Row
	assert.Equal(t, "", nilRow.Get("Estado"))
}

func TestDerivedColumnConfigName(t *testing.T) {
	assert.Equal(t, "IZQ_Clave", DerivedColumnConfig{Source: "Clave"}.Name())
	assert.Equal(t, "Proyecto", DerivedColumnConfig{Source: "Clave", OutputName: "Proyecto"}.Name())
	assert.Equal(t, DefaultPrefixLength, DefaultDerivedColumnConfig().PrefixLength)
}

func TestSavedTableFindChart(t *testing.T) {
	table := SavedTable{Charts: []ChartDefinition{{ID: "a", Title: "Por estado", ValueColumn: CountSentinel}}}

	c, ok := table.FindChart("a")
	assert.True(t, ok)
	assert.True(t, c.IsCount())

	_, ok = table.FindChart("b")
	assert.False(t, ok)
}
