package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jiraview/internal/config"
	"jiraview/internal/shared/testutil"
	"jiraview/internal/store"
	"jiraview/internal/validation"
	"jiraview/pkg/contracts/domain"
)

// runCLI executes tablectl with args and returns stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeIssues(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "issues.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.IssuesCSV), 0o644))
	return path
}

// isolate keeps the test away from config files in the working directory
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "paths:\n  base_dir: " + dir + "\nstorage:\n  driver: file\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

func TestSplitAssignment(t *testing.T) {
	tests := []struct {
		in      string
		col     string
		val     string
		wantErr bool
	}{
		{"Estado=Cerrado", "Estado", "Cerrado", false},
		{" Area = Soporte ", "Area", "Soporte", false},
		{"Estado=", "Estado", "", false},
		{"Resumen=a=b", "Resumen", "a=b", false},
		{"Estado", "", "", true},
		{"=x", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			col, val, err := splitAssignment(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.col, col)
			assert.Equal(t, tt.val, val)
		})
	}
}

func TestExportCommand_CSV(t *testing.T) {
	cfg := isolate(t)
	in := writeIssues(t)
	out := filepath.Join(t.TempDir(), "soporte.csv")

	stdout, err := runCLI(t, "--config", cfg, "export", "--csv", in, "--filter", "Area=Soporte", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 2 rows")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Clave")
}

func TestExportCommand_YearSelector(t *testing.T) {
	cfg := isolate(t)
	in := writeIssues(t)
	out := filepath.Join(t.TempDir(), "2023.csv")

	stdout, err := runCLI(t, "--config", cfg, "export", "--csv", in, "--year", "Creada=2023", "--filter", "Area=Soporte", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 1 rows")
}

func TestExportCommand_Workbook(t *testing.T) {
	cfg := isolate(t)
	in := writeIssues(t)
	out := filepath.Join(t.TempDir(), "view.xlsx")

	_, err := runCLI(t, "--config", cfg, "export", "--csv", in, "--out", out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestExportCommand_Errors(t *testing.T) {
	cfg := isolate(t)
	in := writeIssues(t)

	_, err := runCLI(t, "--config", cfg, "export", "--out", "x.xlsx")
	assert.Error(t, err, "missing --csv")

	_, err = runCLI(t, "--config", cfg, "export", "--csv", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = runCLI(t, "--config", cfg, "export", "--csv", in, "--filter", "Estado", "--out", filepath.Join(t.TempDir(), "x.csv"))
	assert.Error(t, err)

	_, err = runCLI(t, "--config", cfg, "export", "--csv", in, "--year", "Creada=2023", "--year", "creada=2024", "--out", filepath.Join(t.TempDir(), "x.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one selector per date column")

	_, err = runCLI(t, "--config", cfg, "export", "--csv", in, "--out", filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, validation.ErrUnsupportedFile)
}

func TestChartCommand(t *testing.T) {
	cfg := isolate(t)
	in := writeIssues(t)

	stdout, err := runCLI(t, "--config", cfg, "chart", "--csv", in, "--category", "Area")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Count")
	assert.Contains(t, stdout, "Soporte")
	assert.Contains(t, stdout, "TOTAL")

	stdout, err = runCLI(t, "--config", cfg, "--json", "chart", "--csv", in, "--category", "Area", "--value", domain.CountSentinel)
	require.NoError(t, err)
	var result domain.AggregationResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, float64(5), result.Total)
}

func TestTablesCommand_EmptyStore(t *testing.T) {
	cfg := isolate(t)

	stdout, err := runCLI(t, "--config", cfg, "tables", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No saved tables")

	_, err = runCLI(t, "--config", cfg, "tables", "replay", "nope")
	assert.Error(t, err)
}

// seedTable loads the issues file into the configured store and saves a
// table filtered to Area=Soporte.
func seedTable(t *testing.T, cfgPath string) string {
	t.Helper()
	ctx := context.Background()
	cfg, err := config.LoadFile(cfgPath)
	require.NoError(t, err)
	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	st, err := store.Open(ctx, cfg.StoreOptions(paths))
	require.NoError(t, err)
	defer st.Close()

	svc := newService(cfg, st, (&rootOptions{}).logger(io.Discard))
	_, err = svc.Load(ctx, "issues.csv", []byte(testutil.IssuesCSV))
	require.NoError(t, err)
	_, err = svc.SetColumnFilter(ctx, "Area", []string{"Soporte"})
	require.NoError(t, err)
	table, err := svc.SaveTable(ctx, "Soporte")
	require.NoError(t, err)
	return table.ID
}

func TestTablesCommand_SavedTable(t *testing.T) {
	cfg := isolate(t)
	id := seedTable(t, cfg)

	stdout, err := runCLI(t, "--config", cfg, "tables", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, id)
	assert.Contains(t, stdout, "Soporte")

	stdout, err = runCLI(t, "--config", cfg, "tables", "replay", id)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3, "header plus the two Soporte issues")
	assert.True(t, strings.HasPrefix(lines[0], "Clave,"))
	assert.True(t, strings.HasPrefix(lines[1], "AB-101,"))
	assert.True(t, strings.HasPrefix(lines[2], "CD-201,"))

	out := filepath.Join(t.TempDir(), "soporte.csv")
	stdout, err = runCLI(t, "--config", cfg, "tables", "replay", id, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 2 rows")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(lines, "\n")+"\n", string(data))
}
