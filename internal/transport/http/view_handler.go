package http

import (
	"net/http"

	"github.com/go-chi/render"

	"jiraview/internal/aggregate"
	"jiraview/pkg/contracts/domain"
)

type setFilterRequest struct {
	// Values selected for the column. An empty list clears the column filter.
	Values []string `json:"values"`
}

type toggleRequest struct {
	Value string `json:"value" validate:"required"`
}

type visibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

type derivedColumnRequest struct {
	Enabled  bool   `json:"enabled"`
	Source   string `json:"source" validate:"required_if=Enabled true"`
	NumChars int    `json:"numChars" validate:"min=0"`
	Concat   string `json:"concat"`
	NewName  string `json:"newName" validate:"max=200"`
}

// GetFilters handles GET /api/filters
func (h *TableHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Filters(r.Context()))
}

// ResetFilters handles DELETE /api/filters
func (h *TableHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ResetFilters(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// SetColumnFilter handles PUT /api/filters/{column}
func (h *TableHandler) SetColumnFilter(w http.ResponseWriter, r *http.Request) {
	var req setFilterRequest
	if err := h.validation.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	page, err := h.service.SetColumnFilter(r.Context(), urlParam(r, "column"), req.Values)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// ClearColumnFilter handles DELETE /api/filters/{column}
func (h *TableHandler) ClearColumnFilter(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ClearColumnFilter(r.Context(), urlParam(r, "column"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// ToggleQuickFilter handles POST /api/filters/{column}/toggle
func (h *TableHandler) ToggleQuickFilter(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := h.validation.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	page, err := h.service.ToggleQuickFilter(r.Context(), urlParam(r, "column"), req.Value)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// GetFilterOptions handles GET /api/filters/{column}/options
func (h *TableHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context(), urlParam(r, "column"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// GetQuickFilters handles GET /api/quick-filters
func (h *TableHandler) GetQuickFilters(w http.ResponseWriter, r *http.Request) {
	menu, err := h.service.QuickFilters(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, menu)
}

// GetColumns handles GET /api/columns
func (h *TableHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := h.service.Columns(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, cols)
}

// SetColumnVisibility handles PUT /api/columns/{column}
func (h *TableHandler) SetColumnVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := h.validation.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	page, err := h.service.SetColumnVisible(r.Context(), urlParam(r, "column"), *req.Visible)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// GetDerivedColumn handles GET /api/derived-column
func (h *TableHandler) GetDerivedColumn(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.DerivedColumn(r.Context()))
}

// ConfigureDerivedColumn handles PUT /api/derived-column
func (h *TableHandler) ConfigureDerivedColumn(w http.ResponseWriter, r *http.Request) {
	var req derivedColumnRequest
	if err := h.validation.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	cfg := domain.DerivedColumnConfig{
		Enabled:      req.Enabled,
		Source:       req.Source,
		PrefixLength: req.NumChars,
		Concat:       req.Concat,
		OutputName:   req.NewName,
	}
	page, err := h.service.ConfigureDerivedColumn(r.Context(), cfg)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// CreateChart handles POST /api/charts
func (h *TableHandler) CreateChart(w http.ResponseWriter, r *http.Request) {
	var req aggregate.Request
	if err := h.validation.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	result, err := h.service.Chart(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// GetValueColumns handles GET /api/charts/value-columns
func (h *TableHandler) GetValueColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := h.service.ValueColumns(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"columns": cols,
		"count":   domain.CountSentinel,
	})
}
