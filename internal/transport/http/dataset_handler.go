package http

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/render"

	apierrors "jiraview/internal/errors"
)

const defaultUploadName = "upload.csv"

// UploadDataset handles POST /api/dataset. The file comes either as the
// multipart field "file" or as the raw request body named by ?name=.
func (h *TableHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	name, data, err := h.readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Load(r.Context(), name, data)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset uploaded",
		slog.String("file_name", name),
		slog.Int("bytes", len(data)),
		slog.Int("rows", summary.RowCount))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

func (h *TableHandler) readUpload(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := uploadName(r.URL.Query().Get("name"))
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, uploadError(err, name)
		}
		if len(data) == 0 {
			return "", nil, apierrors.ErrValidation("file", "file is empty")
		}
		return name, data, nil
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return "", nil, uploadError(err, "")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, apierrors.ErrValidation("file", "multipart field \"file\" is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, uploadError(err, uploadName(header.Filename))
	}
	if len(data) == 0 {
		return "", nil, apierrors.ErrValidation("file", "file is empty")
	}
	return uploadName(header.Filename), data, nil
}

// uploadError keeps size violations recognizable and labels the rest as
// unreadable input
func uploadError(err error, name string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	appErr := apierrors.NewParsingError("could not read upload", err)
	if name != "" {
		appErr = appErr.WithContext("file_name", name)
	}
	return appErr
}

func uploadName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if name == "" || name == "." || name == "/" {
		return defaultUploadName
	}
	return name
}

// GetDataset handles GET /api/dataset
func (h *TableHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// GetView handles GET /api/view?page=N. Without page the current page is
// returned; out of range pages are clamped.
func (h *TableHandler) GetView(w http.ResponseWriter, r *http.Request) {
	page, ok := h.query.ValidateInt(w, r, "page", 1, math.MaxInt32, 0)
	if !ok {
		return
	}
	result, err := h.service.Page(r.Context(), page)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
