package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jiraview/pkg/contracts/domain"
)

func statusChart() Chart {
	return Chart{
		Title: "Por estado",
		Result: domain.AggregationResult{
			CategoryColumn: "Estado",
			ValueColumn:    domain.CountSentinel,
			Labels:         []string{"Finalizada", "Abiertos"},
			Values:         []float64{3, 1},
			Total:          4,
			Slices: []domain.Slice{
				{Label: "Finalizada", Value: 3, Percent: 75},
				{Label: "Abiertos", Value: 1, Percent: 25},
			},
		},
	}
}

func render(t *testing.T, opts WorkbookOptions, sheets []Sheet) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewWorkbookWriter(opts, nil).Write(&buf, sheets))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWorkbookWriterSheets(t *testing.T) {
	f := render(t, WorkbookOptions{}, []Sheet{
		{Name: DefaultSheetName, Columns: []string{"Clave", "Estado"}, Rows: [][]string{{"AB-1", "Cerrado"}, {"AB-2", "Abierto"}}},
		{Name: "Soporte: 2023?", Columns: []string{"Clave"}, Rows: [][]string{{"AB-1"}}},
		{Name: DefaultSheetName, Columns: []string{"Clave"}},
	})

	assert.Equal(t, []string{DefaultSheetName, "Soporte 2023", DefaultSheetName + " (2)"}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Clave", "Estado"}, {"AB-1", "Cerrado"}, {"AB-2", "Abierto"}}, rows)

	width, err := f.GetColWidth(DefaultSheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, DefaultColumnWidth, width)

	styleID, err := f.GetCellStyle(DefaultSheetName, "A1")
	require.NoError(t, err)
	assert.NotZero(t, styleID)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestWorkbookWriterBreakdown(t *testing.T) {
	f := render(t, WorkbookOptions{NativeCharts: true}, []Sheet{{
		Name:    "Tabla",
		Columns: []string{"Estado"},
		Rows:    [][]string{{"Cerrado"}, {"Cerrado"}, {"Cerrado"}, {"Abierto"}},
		Charts:  []Chart{statusChart()},
	}})

	title, err := f.GetCellValue("Tabla", "A7")
	require.NoError(t, err)
	assert.Equal(t, "Por estado", title)

	rows, err := f.GetRows("Tabla")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 11)
	assert.Equal(t, []string{"Categoría", "Valor", "Porcentaje"}, rows[7])
	assert.Equal(t, []string{"Finalizada", "3", "75.00%"}, rows[8])
	assert.Equal(t, []string{"Abiertos", "1", "25.00%"}, rows[9])
	assert.Equal(t, []string{"Total", "4", "100.00%"}, rows[10])
}

func TestWorkbookWriterEmptyBreakdown(t *testing.T) {
	f := render(t, WorkbookOptions{NativeCharts: true}, []Sheet{{
		Name:    "Tabla",
		Columns: []string{"Estado"},
		Charts:  []Chart{{Title: "Sin datos", Result: domain.AggregationResult{}}},
	}})

	rows, err := f.GetRows("Tabla")
	require.NoError(t, err)
	var total []string
	for _, r := range rows {
		if len(r) > 0 && r[0] == "Total" {
			total = r
		}
	}
	assert.Equal(t, []string{"Total", "0", "0.00%"}, total)
}

func TestWorkbookWriterNoSheets(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewWorkbookWriter(WorkbookOptions{}, nil).Write(&buf, nil))
}
