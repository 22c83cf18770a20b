package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jiraview/internal/dates"
	"jiraview/internal/shared/testutil"
)

func loadIssues(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Parse("issues.csv", strings.NewReader(testutil.IssuesCSV))
	require.NoError(t, err)
	return ds
}

func TestParse(t *testing.T) {
	ds := loadIssues(t)

	assert.Equal(t, "issues.csv", ds.Name())
	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, []string{"Clave", "Resumen", "Estado", "Prioridad", "Area", "Creada", "Actualizada", "Horas"}, ds.ColumnNames())
	assert.Equal(t, ds.ColumnNames(), ds.VisibleColumns())
	assert.Equal(t, "1,500", ds.Rows()[0].Get("Horas"))
	assert.Len(t, ds.Fingerprint(), 16)
}

func TestParseBOMAndPadding(t *testing.T) {
	ds, err := Parse("bom.csv", strings.NewReader(testutil.IssuesCSVWithBOM))
	require.NoError(t, err)
	assert.Equal(t, "Clave", ds.ColumnNames()[0])

	short, err := Parse("short.csv", strings.NewReader("A,B,C\n1\n\n 2 , 3 ,4,5\n"))
	require.NoError(t, err)
	require.Equal(t, 2, short.Len())
	assert.Equal(t, "", short.Rows()[0].Get("B"))
	assert.Equal(t, "2", short.Rows()[1].Get("A"))
	assert.Equal(t, "3", short.Rows()[1].Get("B"))
}

func TestParseDuplicateHeaders(t *testing.T) {
	ds, err := Parse("dup.csv", strings.NewReader("Estado,Estado,,Estado\na,b,c,d\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Estado", "Estado_2", "Columna 3", "Estado_3"}, ds.ColumnNames())
	assert.Equal(t, "b", ds.Rows()[0].Get("Estado_2"))
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("empty.csv", strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestFingerprintDependsOnContent(t *testing.T) {
	a := Fingerprint([]byte(testutil.IssuesCSV))
	assert.Equal(t, a, loadIssues(t).Fingerprint())
	assert.NotEqual(t, a, Fingerprint([]byte(testutil.IssuesCSV+"\n")))
}

func TestParseWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"Clave", "Estado"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"AB-1", "Cerrado"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := ParseWorkbook("issues.xlsx", buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Clave", "Estado"}, ds.ColumnNames())
	assert.Equal(t, "Cerrado", ds.Rows()[0].Get("Estado"))
}

func TestVisibility(t *testing.T) {
	ds := loadIssues(t)

	require.NoError(t, ds.SetVisible("Resumen", false))
	assert.NotContains(t, ds.VisibleColumns(), "Resumen")
	assert.ErrorIs(t, ds.SetVisible("Nope", false), ErrUnknownColumn)
}

func TestDistinctValues(t *testing.T) {
	ds := loadIssues(t)
	assert.Equal(t, []string{"Soporte", "Desarrollo", "Infra"}, ds.DistinctValues("Area"))
	assert.Equal(t, []string{""}, ds.DistinctValues("Missing"))
}

func TestNormalize(t *testing.T) {
	ds := loadIssues(t)

	report := Normalize(ds, NormalizeOptions{
		DateColumns:   []string{"creada", "ACTUALIZADA"},
		SummaryColumn: "resumen",
		Parser:        dates.NewParser(dates.DefaultPivot),
	})

	assert.Equal(t, 3, report.DateCells)
	assert.Equal(t, 4, report.SummaryCells)

	rows := ds.Rows()
	assert.Equal(t, "15/03/2023", rows[0].Get("Creada"))
	assert.Equal(t, "05/03/2024", rows[4].Get("Creada"))
	assert.Equal(t, "06/03/2024", rows[4].Get("Actualizada"))
	assert.Equal(t, "FAllo en login", rows[0].Get("Resumen"))
	assert.Equal(t, "12 pruebas", rows[2].Get("Resumen"))
	assert.Equal(t, 5, ds.Len())
}

func TestNormalizeKeepsUnparsable(t *testing.T) {
	ds, err := Parse("x.csv", strings.NewReader("Creada\nsin fecha\n\"\"\n"))
	require.NoError(t, err)

	report := Normalize(ds, NormalizeOptions{DateColumns: []string{"Creada"}})
	assert.Zero(t, report.DateCells)
	assert.Equal(t, "sin fecha", ds.Rows()[0].Get("Creada"))
}

func TestParseWorkbook_Unreadable(t *testing.T) {
	_, err := ParseWorkbook("broken.xlsx", strings.NewReader("not a workbook"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadable)
}
