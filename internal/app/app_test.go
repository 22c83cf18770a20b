package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jiraview/internal/config"
	"jiraview/internal/shared/testutil"
	"jiraview/internal/store"
)

func testConfig(driver string) *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Storage.Driver = driver
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func testPaths(dir string) *config.Paths {
	return &config.Paths{
		BaseDir: dir,
		DataDir: filepath.Join(dir, "data"),
		WebDir:  filepath.Join(dir, "web"),
		LogsDir: filepath.Join(dir, "logs"),
	}
}

func newTestApp(t *testing.T, cfg *config.Config, paths *config.Paths) *Application {
	t.Helper()
	require.NoError(t, paths.EnsureDirectories())
	logger, _ := testutil.NewTestLogger(t)

	a, err := New(context.Background(), cfg, paths, logger)
	require.NoError(t, err)
	return a
}

func serve(a *Application, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNew_WiresServices(t *testing.T) {
	a := newTestApp(t, testConfig(store.DriverMemory), testPaths(t.TempDir()))

	assert.NotNil(t, a.Router)
	assert.NotNil(t, a.Server)
	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.TableService)
	assert.NotNil(t, a.HealthService)
	assert.NotNil(t, a.WebSocketHub)
	assert.Equal(t, ":0", a.Server.Addr)
}

func TestNew_UnknownStorageDriver(t *testing.T) {
	cfg := testConfig("cassandra")
	logger, _ := testutil.NewTestLogger(t)

	_, err := New(context.Background(), cfg, testPaths(t.TempDir()), logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open store")
}

func TestRouter_DatasetFlow(t *testing.T) {
	a := newTestApp(t, testConfig(store.DriverMemory), testPaths(t.TempDir()))

	rec := serve(a, http.MethodGet, "/api/view", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(a, http.MethodPost, "/api/dataset?name=issues.csv", strings.NewReader(testutil.IssuesCSV))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(a, http.MethodGet, "/api/view", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 5, page["total_rows"])

	rec = serve(a, http.MethodGet, "/api/export/view.csv", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Clave")
}

func TestRouter_Endpoints(t *testing.T) {
	a := newTestApp(t, testConfig(store.DriverMemory), testPaths(t.TempDir()))

	tests := []struct {
		name     string
		path     string
		status   int
		contains string
	}{
		{"health", "/api/health", http.StatusOK, `"status":"ok"`},
		{"readiness", "/api/health/ready", http.StatusOK, `"status":"ready"`},
		{"version", "/api/version", http.StatusOK, config.AppVersion},
		{"config", "/api/config", http.StatusOK, `"page_size":50`},
		{"tables", "/api/tables", http.StatusOK, `"count":0`},
		{"metrics", "/metrics", http.StatusOK, "go_goroutines"},
		{"built-in page", "/", http.StatusOK, config.AppName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}

	t.Run("security headers", func(t *testing.T) {
		rec := serve(a, http.MethodGet, "/api/health", nil)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestApplication_StartStop(t *testing.T) {
	a := newTestApp(t, testConfig(store.DriverMemory), testPaths(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx, cancel))
	assert.NotZero(t, a.Port())

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/health", a.Port()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, a.Stop(context.Background()))
	assert.Equal(t, 0, a.WebSocketHub.ClientCount())
}

func TestApplication_RestoresDatasetOnStart(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(store.DriverFile)

	first := newTestApp(t, cfg, testPaths(dir))
	rec := serve(first, http.MethodPost, "/api/dataset?name=issues.csv", strings.NewReader(testutil.IssuesCSV))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, first.Store.Close())

	second := newTestApp(t, cfg, testPaths(dir))
	summary, err := second.TableService.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "issues.csv", summary.FileName)
	assert.Equal(t, 5, summary.RowCount)
}

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos string
		cmd  string
	}{
		{"windows", "rundll32"},
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, args := browserCommand(tt.goos, "http://localhost:8080")
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, "http://localhost:8080", args[len(args)-1])
		})
	}
}
