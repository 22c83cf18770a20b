package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jiraview/internal/dataset"
	"jiraview/internal/dates"
	"jiraview/internal/filter"
	"jiraview/internal/shared/testutil"
	"jiraview/internal/store"
	"jiraview/pkg/contracts/domain"
)

func newRegistry(t *testing.T) (*Registry, store.Store) {
	t.Helper()
	s := store.NewMemory()
	logger, _ := testutil.NewTestLogger(t)
	r := New(s, logger)
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	r.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return r, s
}

func loadIssues(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse("issues.csv", strings.NewReader(testutil.IssuesCSV))
	require.NoError(t, err)
	dataset.Normalize(ds, dataset.NormalizeOptions{DateColumns: filter.DefaultRoles.Names()})
	return ds
}

func TestSaveAndList(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)

	table, err := r.Save(ctx, SaveRequest{
		Name:           "  Soporte 2023 ",
		Filters:        map[string][]string{"Area": {"Soporte"}, "Estado": {}},
		VisibleColumns: []string{"Clave", "Estado"},
		Fingerprint:    "abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", table.ID)
	assert.Equal(t, "Soporte 2023", table.Name)
	assert.Equal(t, map[string][]string{"Area": {"Soporte"}}, table.Filters)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), table.CreatedAt)

	list := r.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, table.ID, list[0].ID)
	assert.Equal(t, table.Filters, list[0].Filters)
	assert.True(t, table.CreatedAt.Equal(list[0].CreatedAt))

	got, err := r.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.BaseFingerprint)
}

func TestSaveValidation(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)

	_, err := r.Save(ctx, SaveRequest{Name: " ", VisibleColumns: []string{"Clave"}})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = r.Save(ctx, SaveRequest{Name: "Sin columnas"})
	assert.ErrorIs(t, err, ErrNoColumns)

	assert.Empty(t, r.List(ctx), "rejected saves leave the registry unchanged")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)

	a, err := r.Save(ctx, SaveRequest{Name: "A", VisibleColumns: []string{"Clave"}})
	require.NoError(t, err)
	b, err := r.Save(ctx, SaveRequest{Name: "B", VisibleColumns: []string{"Clave"}})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, a.ID))
	list := r.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	assert.ErrorIs(t, r.Delete(ctx, a.ID), ErrNotFound)
	_, err = r.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCharts(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)
	table, err := r.Save(ctx, SaveRequest{Name: "A", VisibleColumns: []string{"Clave"}})
	require.NoError(t, err)

	chart, err := r.AddChart(ctx, table.ID, domain.ChartDefinition{Title: "Por estado", CategoryColumn: "Estado", ValueColumn: domain.CountSentinel})
	require.NoError(t, err)
	assert.Equal(t, "id-2", chart.ID)

	got, err := r.Get(ctx, table.ID)
	require.NoError(t, err)
	require.Len(t, got.Charts, 1)
	assert.Equal(t, chart, got.Charts[0])

	_, err = r.AddChart(ctx, table.ID, domain.ChartDefinition{CategoryColumn: "Estado", ValueColumn: domain.CountSentinel})
	assert.ErrorIs(t, err, ErrTitleRequired)
	_, err = r.AddChart(ctx, table.ID, domain.ChartDefinition{Title: "x", CategoryColumn: "Estado"})
	assert.ErrorIs(t, err, ErrChartIncomplete)
	_, err = r.AddChart(ctx, "nope", domain.ChartDefinition{Title: "x", CategoryColumn: "Estado", ValueColumn: "Horas"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, r.RemoveChart(ctx, table.ID, "missing"), ErrChartNotFound)
	require.NoError(t, r.RemoveChart(ctx, table.ID, chart.ID))
	got, err = r.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Charts)
}

func TestListCorruptDocument(t *testing.T) {
	ctx := context.Background()
	r, s := newRegistry(t)
	require.NoError(t, s.Put(ctx, store.KeySavedTables, []byte("[{broken")))

	assert.Empty(t, r.List(ctx))

	_, err := r.Save(ctx, SaveRequest{Name: "A", VisibleColumns: []string{"Clave"}})
	require.NoError(t, err)
	assert.Len(t, r.List(ctx), 1)
}

func TestReplayMatchesSavedView(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)
	parser := dates.NewParser(dates.DefaultPivot)

	ds := loadIssues(t)
	set := filter.New(filter.DefaultRoles, parser)
	set.ToggleQuickFilter("Creada", "2024")
	set.ToggleQuickFilter("Area", "Soporte")
	set.ToggleQuickFilter("Area", "Infra")
	shown := set.Apply(ds.Rows())

	table, err := r.Save(ctx, SaveRequest{
		Name:           "2024",
		Filters:        set.Snapshot(),
		VisibleColumns: []string{"Clave", "Estado"},
		Fingerprint:    ds.Fingerprint(),
	})
	require.NoError(t, err)

	logger, handler := testutil.NewTestLogger(t)
	replayer := NewReplayer(filter.DefaultRoles, parser, logger)

	fresh := loadIssues(t)
	got := replayer.Replay(fresh, table, nil)

	require.Len(t, got.Rows, len(shown))
	for i := range shown {
		assert.Equal(t, shown[i], got.Rows[i])
	}
	assert.Equal(t, []domain.Column{{Name: "Clave", Visible: true}, {Name: "Estado", Visible: true}}, got.Columns)
	assert.False(t, got.Stale)
	testutil.AssertNoLogs(t, handler, slog.LevelWarn)
}

func TestReplayAppliesDerivedColumn(t *testing.T) {
	ds := loadIssues(t)
	table := domain.SavedTable{
		ID:             "t",
		Filters:        map[string][]string{"IZQ_Clave": {"CD"}},
		VisibleColumns: []string{"Clave", "IZQ_Clave", "Borrada"},
	}
	cfg := &domain.DerivedColumnConfig{Enabled: true, Source: "Clave", PrefixLength: 2}

	got := NewReplayer(filter.DefaultRoles, dates.NewParser(dates.DefaultPivot), nil).Replay(ds, table, cfg)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, "CD-201", got.Rows[0].Get("Clave"))
	assert.Equal(t, []string{"Borrada"}, got.MissingColumns)
	assert.Len(t, got.Columns, 2)
}

func TestReplayFlagsDifferentFile(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	ds := loadIssues(t)

	got := NewReplayer(filter.DefaultRoles, dates.NewParser(dates.DefaultPivot), logger).Replay(ds, domain.SavedTable{
		ID:              "t",
		VisibleColumns:  []string{"Clave"},
		BaseFingerprint: "0000000000000000",
	}, nil)

	assert.True(t, got.Stale)
	assert.Len(t, got.Rows, ds.Len())
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "different file")
}
