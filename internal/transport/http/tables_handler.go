package http

import (
	"net/http"

	"github.com/go-chi/render"

	"jiraview/pkg/contracts/domain"
)

type saveTableRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type addChartRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	CategoryColumn string `json:"categoryCol" validate:"required"`
	ValueColumn    string `json:"valueCol" validate:"required"`
}

type tableListResponse struct {
	Tables []domain.SavedTable `json:"tables"`
	Count  int                 `json:"count"`
}

type replayResponse struct {
	Table          domain.SavedTable `json:"table"`
	Columns        []domain.Column   `json:"columns"`
	Rows           []domain.Row      `json:"rows"`
	TotalRows      int               `json:"total_rows"`
	Stale          bool              `json:"stale"`
	MissingColumns []string          `json:"missing_columns,omitempty"`
}

// ListTables handles GET /api/tables
func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables := h.service.Tables(r.Context())
	if tables == nil {
		tables = []domain.SavedTable{}
	}
	render.JSON(w, r, tableListResponse{Tables: tables, Count: len(tables)})
}

// SaveTable handles POST /api/tables. The current view is snapshotted.
func (h *TableHandler) SaveTable(w http.ResponseWriter, r *http.Request) {
	var req saveTableRequest
	if err := h.validation.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	table, err := h.service.SaveTable(r.Context(), req.Name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, table)
}

// GetTable handles GET /api/tables/{id}
func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	table, err := h.service.Table(r.Context(), urlParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, table)
}

// DeleteTable handles DELETE /api/tables/{id}
func (h *TableHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTable(r.Context(), urlParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplayTable handles GET /api/tables/{id}/rows
func (h *TableHandler) ReplayTable(w http.ResponseWriter, r *http.Request) {
	replayed, err := h.service.ReplayTable(r.Context(), urlParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	rows := replayed.Rows
	if rows == nil {
		rows = []domain.Row{}
	}
	render.JSON(w, r, replayResponse{
		Table:          replayed.Table,
		Columns:        replayed.Columns,
		Rows:           rows,
		TotalRows:      len(rows),
		Stale:          replayed.Stale,
		MissingColumns: replayed.MissingColumns,
	})
}

// AddTableChart handles POST /api/tables/{id}/charts
func (h *TableHandler) AddTableChart(w http.ResponseWriter, r *http.Request) {
	var req addChartRequest
	if err := h.validation.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	def, err := h.service.AddTableChart(r.Context(), urlParam(r, "id"), domain.ChartDefinition{
		Title:          req.Title,
		CategoryColumn: req.CategoryColumn,
		ValueColumn:    req.ValueColumn,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, def)
}

// GetTableChart handles GET /api/tables/{id}/charts/{chartID}
func (h *TableHandler) GetTableChart(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.TableChart(r.Context(), urlParam(r, "id"), urlParam(r, "chartID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// RemoveTableChart handles DELETE /api/tables/{id}/charts/{chartID}
func (h *TableHandler) RemoveTableChart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveTableChart(r.Context(), urlParam(r, "id"), urlParam(r, "chartID")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
