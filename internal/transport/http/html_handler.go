package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// PageData is passed to index.html when it is rendered
type PageData struct {
	Title   string
	Version string
}

var fallbackIndex = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Version {{.Version}}. No web interface is installed.</p>
<ul>
<li><a href="/api/health">Health</a></li>
<li><a href="/api/config">Table settings</a></li>
<li><a href="/api/tables">Saved tables</a></li>
<li><a href="/metrics">Metrics</a></li>
</ul>
</body>
</html>
`))

// ServeWebApp serves files from webDir. Unknown paths fall back to
// index.html, which is rendered as a template with data. When webDir has
// no index.html a built-in page is shown.
func ServeWebApp(webDir string, data PageData, logger *slog.Logger) http.Handler {
	files := http.FileServer(http.Dir(webDir))
	indexPath := filepath.Join(webDir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && !strings.HasSuffix(r.URL.Path, ".html") {
			clean := filepath.Join(webDir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
			if info, err := os.Stat(clean); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		serveIndex(w, r, indexPath, data, logger)
	})
}

func serveIndex(w http.ResponseWriter, r *http.Request, indexPath string, data PageData, logger *slog.Logger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl := fallbackIndex
	if _, err := os.Stat(indexPath); err == nil {
		parsed, err := template.ParseFiles(indexPath)
		if err != nil {
			logger.ErrorContext(r.Context(), "failed to parse index page", slog.String("path", indexPath), slog.String("error", err.Error()))
			http.Error(w, "Error loading page", http.StatusInternalServerError)
			return
		}
		tmpl = parsed
	}

	if err := tmpl.Execute(w, data); err != nil {
		logger.ErrorContext(r.Context(), "failed to render index page", slog.String("error", err.Error()))
	}
}
