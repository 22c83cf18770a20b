package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"jiraview/internal/aggregate"
	"jiraview/internal/session"
)

const (
	viewWorkbookName   = "datos_con_grafico.xlsx"
	viewCSVName        = "datos_filtrados.csv"
	tablesWorkbookName = "Dashboard_Reporte.xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
)

type chartExportRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	aggregate.Request
	// PNG is the rendered chart image, base64 encoded in JSON
	PNG []byte `json:"png"`
}

type exportViewRequest struct {
	// FileName replaces the default download name
	FileName string               `json:"fileName" validate:"omitempty,filename"`
	Charts   []chartExportRequest `json:"charts" validate:"dive"`
}

// downloadWriter defers the attachment headers until the first byte is
// written, so a failing export can still answer with a problem document.
type downloadWriter struct {
	http.ResponseWriter
	contentType string
	fileName    string
	started     bool
}

func (d *downloadWriter) Write(p []byte) (int, error) {
	if !d.started {
		d.started = true
		h := d.Header()
		h.Set("Content-Type", d.contentType)
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.fileName))
		h.Set("Cache-Control", "no-store")
		d.WriteHeader(http.StatusOK)
	}
	return d.ResponseWriter.Write(p)
}

// ExportView handles GET and POST /api/export/view.xlsx. POST may carry
// chart snapshots to embed next to the data.
func (h *TableHandler) ExportView(w http.ResponseWriter, r *http.Request) {
	var charts []session.ChartExport
	fileName := viewWorkbookName
	if r.Method == http.MethodPost && r.ContentLength != 0 {
		var req exportViewRequest
		if err := h.validation.Decode(r, &req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		for _, c := range req.Charts {
			charts = append(charts, session.ChartExport{Title: c.Title, Request: c.Request, PNG: c.PNG})
		}
		if req.FileName != "" {
			fileName = withExtension(req.FileName, ".xlsx")
		}
	}

	dw := &downloadWriter{ResponseWriter: w, contentType: xlsxContentType, fileName: fileName}
	if err := h.service.ExportView(r.Context(), dw, charts); err != nil {
		h.exportFailed(w, r, dw, err)
	}
}

// ExportViewCSV handles GET /api/export/view.csv
func (h *TableHandler) ExportViewCSV(w http.ResponseWriter, r *http.Request) {
	dw := &downloadWriter{ResponseWriter: w, contentType: csvContentType, fileName: viewCSVName}
	if err := h.service.ExportViewCSV(r.Context(), dw); err != nil {
		h.exportFailed(w, r, dw, err)
	}
}

// ExportTables handles GET /api/export/tables.xlsx
func (h *TableHandler) ExportTables(w http.ResponseWriter, r *http.Request) {
	dw := &downloadWriter{ResponseWriter: w, contentType: xlsxContentType, fileName: tablesWorkbookName}
	if err := h.service.ExportTables(r.Context(), dw); err != nil {
		h.exportFailed(w, r, dw, err)
	}
}

func withExtension(name, ext string) string {
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}

func (h *TableHandler) exportFailed(w http.ResponseWriter, r *http.Request, dw *downloadWriter, err error) {
	if dw.started {
		// Headers are gone; the client sees a truncated file.
		h.logger.ErrorContext(r.Context(), "export interrupted", "file_name", dw.fileName, "error", err)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
