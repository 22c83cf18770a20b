package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jiraview/internal/aggregate"
	"jiraview/internal/dataset"
	apierrors "jiraview/internal/errors"
	"jiraview/internal/registry"
	"jiraview/internal/services"
	"jiraview/internal/session"
	"jiraview/internal/shared/testutil"
	"jiraview/pkg/contracts/domain"
)

func newTestAPI(t *testing.T) (*mockTableService, http.Handler) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc := new(mockTableService)
	h := NewTableHandler(svc, 1<<20, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return svc, r
}

func doJSON(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func samplePage() domain.Page {
	return domain.Page{
		Number:     1,
		Size:       50,
		TotalRows:  1,
		TotalPages: 1,
		Columns:    []string{"Clave", "Estado"},
		Rows:       [][]string{{"JV-1", "Cerrado"}},
	}
}

func TestTableHandler_GetConfig(t *testing.T) {
	svc, api := newTestAPI(t)
	svc.On("Settings").Return(services.Settings{PageSize: 50, YearPivot: 50})

	rec := doJSON(t, api, http.MethodGet, "/api/config", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body)
}

func TestTableHandler_UploadMultipart(t *testing.T) {
	svc, api := newTestAPI(t)
	content := []byte("Clave,Estado\nJV-1,Cerrado\n")
	svc.On("Load", mock.Anything, "issues.csv", content).
		Return(domain.DatasetSummary{FileName: "issues.csv", RowCount: 1}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "issues.csv")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dataset", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var summary domain.DatasetSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.RowCount)
}

func TestTableHandler_UploadRawBody(t *testing.T) {
	svc, api := newTestAPI(t)
	content := []byte("Clave\nJV-1\n")
	svc.On("Load", mock.Anything, "export.csv", content).
		Return(domain.DatasetSummary{FileName: "export.csv", RowCount: 1}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/dataset?name=../../export.csv", bytes.NewReader(content))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestTableHandler_UploadErrors(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		_, api := newTestAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/api/dataset", http.NoBody)
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unreadable file", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("Load", mock.Anything, "broken.xlsx", mock.Anything).
			Return(domain.DatasetSummary{}, dataset.ErrUnreadable)

		req := httptest.NewRequest(http.MethodPost, "/api/dataset?name=broken.xlsx", strings.NewReader("not a workbook"))
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, apierrors.TypeInvalidFile, decodeBody(t, rec)["type"])
	})

	t.Run("too large", func(t *testing.T) {
		logger, _ := testutil.NewTestLogger(t)
		svc := new(mockTableService)
		h := NewTableHandler(svc, 16, logger, apierrors.NewErrorHandler(logger, false))
		r := chi.NewRouter()
		r.Mount("/api", h.Routes())

		req := httptest.NewRequest(http.MethodPost, "/api/dataset", strings.NewReader(strings.Repeat("x", 64)))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		svc.AssertNotCalled(t, "Load", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUploadError(t *testing.T) {
	tooLarge := &http.MaxBytesError{Limit: 10}
	assert.Same(t, tooLarge, uploadError(tooLarge, "issues.csv"))

	var appErr *apierrors.AppError
	require.ErrorAs(t, uploadError(io.ErrUnexpectedEOF, "issues.csv"), &appErr)
	assert.Equal(t, "issues.csv", appErr.Context["file_name"])
	assert.ErrorIs(t, appErr, io.ErrUnexpectedEOF)

	require.ErrorAs(t, uploadError(io.ErrUnexpectedEOF, ""), &appErr)
	assert.NotContains(t, appErr.Context, "file_name")
}

func TestTableHandler_GetView(t *testing.T) {
	t.Run("current page", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("Page", mock.Anything, 0).Return(samplePage(), nil)

		rec := doJSON(t, api, http.MethodGet, "/api/view", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, decodeBody(t, rec)["total_rows"])
	})

	t.Run("explicit page", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("Page", mock.Anything, 3).Return(samplePage(), nil)

		rec := doJSON(t, api, http.MethodGet, "/api/view?page=3", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid page", func(t *testing.T) {
		_, api := newTestAPI(t)
		rec := doJSON(t, api, http.MethodGet, "/api/view?page=abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no dataset", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("Page", mock.Anything, 0).Return(domain.Page{}, session.ErrNoDataset)

		rec := doJSON(t, api, http.MethodGet, "/api/view", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, apierrors.TypeNoDataset, decodeBody(t, rec)["type"])
	})
}

func TestTableHandler_Filters(t *testing.T) {
	t.Run("set column filter with encoded name", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("SetColumnFilter", mock.Anything, "Fecha creación", []string{"2023"}).Return(samplePage(), nil)

		rec := doJSON(t, api, http.MethodPut, "/api/filters/Fecha%20creaci%C3%B3n", map[string]interface{}{
			"values": []string{"2023"},
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("toggle requires value", func(t *testing.T) {
		_, api := newTestAPI(t)
		rec := doJSON(t, api, http.MethodPost, "/api/filters/Estado/toggle", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("toggle", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ToggleQuickFilter", mock.Anything, "Estado", "Cerrado").Return(samplePage(), nil)

		rec := doJSON(t, api, http.MethodPost, "/api/filters/Estado/toggle", map[string]string{"value": "Cerrado"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown column", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ToggleQuickFilter", mock.Anything, "Nope", "x").Return(domain.Page{}, session.ErrUnknownColumn)

		rec := doJSON(t, api, http.MethodPost, "/api/filters/Nope/toggle", map[string]string{"value": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.TypeColumnNotFound, decodeBody(t, rec)["type"])
	})

	t.Run("clear one column", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ClearColumnFilter", mock.Anything, "Área").Return(samplePage(), nil)

		rec := doJSON(t, api, http.MethodDelete, "/api/filters/%C3%81rea", nil)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("reset and snapshot", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ResetFilters", mock.Anything).Return(samplePage(), nil)
		svc.On("Filters", mock.Anything).Return(map[string][]string{})

		assert.Equal(t, http.StatusOK, doJSON(t, api, http.MethodDelete, "/api/filters", nil).Code)
		assert.Equal(t, http.StatusOK, doJSON(t, api, http.MethodGet, "/api/filters", nil).Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, api := newTestAPI(t)
		req := httptest.NewRequest(http.MethodPut, "/api/filters/Estado", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTableHandler_Columns(t *testing.T) {
	t.Run("visibility requires flag", func(t *testing.T) {
		_, api := newTestAPI(t)
		rec := doJSON(t, api, http.MethodPut, "/api/columns/Estado", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("hide column", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("SetColumnVisible", mock.Anything, "Estado", false).Return(samplePage(), nil)

		rec := doJSON(t, api, http.MethodPut, "/api/columns/Estado", map[string]bool{"visible": false})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("derived column", func(t *testing.T) {
		svc, api := newTestAPI(t)
		want := domain.DerivedColumnConfig{Enabled: true, Source: "Clave", PrefixLength: 2, Concat: "-x", OutputName: "Proyecto"}
		svc.On("ConfigureDerivedColumn", mock.Anything, want).Return(samplePage(), nil)

		rec := doJSON(t, api, http.MethodPut, "/api/derived-column", map[string]interface{}{
			"enabled": true, "source": "Clave", "numChars": 2, "concat": "-x", "newName": "Proyecto",
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("derived column needs a source when enabled", func(t *testing.T) {
		_, api := newTestAPI(t)
		rec := doJSON(t, api, http.MethodPut, "/api/derived-column", map[string]interface{}{"enabled": true})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTableHandler_Chart(t *testing.T) {
	svc, api := newTestAPI(t)
	req := aggregate.Request{CategoryColumn: "Estado", ValueColumn: domain.CountSentinel}
	svc.On("Chart", mock.Anything, req).Return(domain.AggregationResult{
		CategoryColumn: "Estado",
		ValueColumn:    domain.CountSentinel,
		Labels:         []string{"Cerrado"},
		Values:         []float64{1},
		Total:          1,
	}, nil)

	rec := doJSON(t, api, http.MethodPost, "/api/charts", map[string]string{
		"categoryCol": "Estado",
		"valueCol":    domain.CountSentinel,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decodeBody(t, rec)["total"])

	rec = doJSON(t, api, http.MethodPost, "/api/charts", map[string]string{"categoryCol": "Estado", "bucket": "week"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTableHandler_SavedTables(t *testing.T) {
	t.Run("save and list", func(t *testing.T) {
		svc, api := newTestAPI(t)
		saved := domain.SavedTable{ID: "t1", Name: "Soporte", VisibleColumns: []string{"Clave"}}
		svc.On("SaveTable", mock.Anything, "Soporte").Return(saved, nil)
		svc.On("Tables", mock.Anything).Return([]domain.SavedTable(nil))

		rec := doJSON(t, api, http.MethodPost, "/api/tables", map[string]string{"name": "Soporte"})
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, api, http.MethodGet, "/api/tables", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, []interface{}{}, body["tables"])
		assert.EqualValues(t, 0, body["count"])
	})

	t.Run("name required", func(t *testing.T) {
		_, api := newTestAPI(t)
		rec := doJSON(t, api, http.MethodPost, "/api/tables", map[string]string{"name": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing table", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("DeleteTable", mock.Anything, "nope").Return(registry.ErrNotFound)

		rec := doJSON(t, api, http.MethodDelete, "/api/tables/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.TypeTableNotFound, decodeBody(t, rec)["type"])
	})

	t.Run("replay", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ReplayTable", mock.Anything, "t1").Return(registry.Replayed{
			Table:   domain.SavedTable{ID: "t1", Name: "Soporte"},
			Rows:    []domain.Row{{"Clave": "JV-1"}, {"Clave": "JV-3"}},
			Columns: []domain.Column{{Name: "Clave", Visible: true}},
			Stale:   true,
		}, nil)

		rec := doJSON(t, api, http.MethodGet, "/api/tables/t1/rows", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, 2, body["total_rows"])
		assert.Equal(t, true, body["stale"])
	})

	t.Run("charts", func(t *testing.T) {
		svc, api := newTestAPI(t)
		def := domain.ChartDefinition{Title: "Por estado", CategoryColumn: "Estado", ValueColumn: domain.CountSentinel}
		created := def
		created.ID = "c1"
		svc.On("AddTableChart", mock.Anything, "t1", def).Return(created, nil)
		svc.On("TableChart", mock.Anything, "t1", "c1").Return(domain.AggregationResult{Total: 2}, nil)
		svc.On("RemoveTableChart", mock.Anything, "t1", "c1").Return(nil)

		rec := doJSON(t, api, http.MethodPost, "/api/tables/t1/charts", map[string]string{
			"title": "Por estado", "categoryCol": "Estado", "valueCol": domain.CountSentinel,
		})
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "c1", decodeBody(t, rec)["id"])

		assert.Equal(t, http.StatusOK, doJSON(t, api, http.MethodGet, "/api/tables/t1/charts/c1", nil).Code)
		assert.Equal(t, http.StatusNoContent, doJSON(t, api, http.MethodDelete, "/api/tables/t1/charts/c1", nil).Code)
	})
}

func TestTableHandler_Exports(t *testing.T) {
	t.Run("view workbook", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ExportView", mock.Anything, mock.Anything, []session.ChartExport(nil)).
			Run(func(args mock.Arguments) {
				_, _ = args.Get(1).(io.Writer).Write([]byte("PK"))
			}).Return(nil)

		rec := doJSON(t, api, http.MethodGet, "/api/export/view.xlsx", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), viewWorkbookName)
		assert.Equal(t, "PK", rec.Body.String())
	})

	t.Run("view workbook with charts", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ExportView", mock.Anything, mock.Anything, mock.MatchedBy(func(charts []session.ChartExport) bool {
			return len(charts) == 1 && charts[0].Title == "Por estado" &&
				charts[0].Request.CategoryColumn == "Estado" && string(charts[0].PNG) == "png"
		})).Return(nil)

		rec := doJSON(t, api, http.MethodPost, "/api/export/view.xlsx", map[string]interface{}{
			"charts": []map[string]interface{}{{
				"title":       "Por estado",
				"categoryCol": "Estado",
				"valueCol":    domain.CountSentinel,
				"png":         []byte("png"),
			}},
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("view workbook with a custom name", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ExportView", mock.Anything, mock.Anything, []session.ChartExport(nil)).
			Run(func(args mock.Arguments) {
				_, _ = args.Get(1).(io.Writer).Write([]byte("PK"))
			}).Return(nil)

		rec := doJSON(t, api, http.MethodPost, "/api/export/view.xlsx", map[string]interface{}{"fileName": "soporte"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, `attachment; filename="soporte.xlsx"`, rec.Header().Get("Content-Disposition"))
	})

	t.Run("view workbook rejects a path as name", func(t *testing.T) {
		svc, api := newTestAPI(t)

		rec := doJSON(t, api, http.MethodPost, "/api/export/view.xlsx", map[string]interface{}{"fileName": "../informe.xlsx"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
		svc.AssertNotCalled(t, "ExportView", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("csv", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ExportViewCSV", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				_, _ = args.Get(1).(io.Writer).Write([]byte("Clave\nJV-1\n"))
			}).Return(nil)

		rec := doJSON(t, api, http.MethodGet, "/api/export/view.csv", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, csvContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), viewCSVName)
	})

	t.Run("tables without saved tables", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ExportTables", mock.Anything, mock.Anything).Return(session.ErrNoTables)

		rec := doJSON(t, api, http.MethodGet, "/api/export/tables.xlsx", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})

	t.Run("unexpected failure", func(t *testing.T) {
		svc, api := newTestAPI(t)
		svc.On("ExportTables", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		rec := doJSON(t, api, http.MethodGet, "/api/export/tables.xlsx", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
