package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "jiraview/internal/errors"
	"jiraview/internal/middleware"
)

// TableHandler serves the table API
type TableHandler struct {
	service      TableServiceInterface
	validation   *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
	maxUpload    int64
}

// NewTableHandler creates the table handler. maxUpload bounds the size of
// uploaded files in bytes.
func NewTableHandler(service TableServiceInterface, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TableHandler {
	return &TableHandler{
		service:      service,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler).WithMaxBodySize(maxUpload),
		query:        middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "table_handler")),
		maxUpload:    maxUpload,
	}
}

// Routes returns the API routes, to be mounted under /api
func (h *TableHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(h.validation.ValidateRequest)

	r.Get("/config", h.GetConfig)

	r.Route("/dataset", func(r chi.Router) {
		r.Post("/", h.UploadDataset)
		r.Get("/", h.GetDataset)
	})
	r.Get("/view", h.GetView)

	r.Route("/filters", func(r chi.Router) {
		r.Get("/", h.GetFilters)
		r.Delete("/", h.ResetFilters)
		r.Route("/{column}", func(r chi.Router) {
			r.Put("/", h.SetColumnFilter)
			r.Delete("/", h.ClearColumnFilter)
			r.Post("/toggle", h.ToggleQuickFilter)
			r.Get("/options", h.GetFilterOptions)
		})
	})
	r.Get("/quick-filters", h.GetQuickFilters)

	r.Get("/columns", h.GetColumns)
	r.Put("/columns/{column}", h.SetColumnVisibility)
	r.Get("/derived-column", h.GetDerivedColumn)
	r.Put("/derived-column", h.ConfigureDerivedColumn)

	r.Post("/charts", h.CreateChart)
	r.Get("/charts/value-columns", h.GetValueColumns)

	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.ListTables)
		r.Post("/", h.SaveTable)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTable)
			r.Delete("/", h.DeleteTable)
			r.Get("/rows", h.ReplayTable)
			r.Post("/charts", h.AddTableChart)
			r.Get("/charts/{chartID}", h.GetTableChart)
			r.Delete("/charts/{chartID}", h.RemoveTableChart)
		})
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/view.xlsx", h.ExportView)
		r.Post("/view.xlsx", h.ExportView)
		r.Get("/view.csv", h.ExportViewCSV)
		r.Get("/tables.xlsx", h.ExportTables)
	})

	return r
}

// GetConfig handles GET /api/config
func (h *TableHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Settings())
}

// urlParam returns a decoded path parameter. Column names may hold spaces
// and accents, which arrive percent-encoded.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
