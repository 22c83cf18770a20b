package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"jiraview/internal/config"
	apierrors "jiraview/internal/errors"
	"jiraview/internal/infrastructure"
	customMiddleware "jiraview/internal/middleware"
	"jiraview/internal/services"
	"jiraview/internal/session"
	"jiraview/internal/store"
	handlers "jiraview/internal/transport/http"
	ws "jiraview/internal/websocket"
)

// BuildTime is set at link time with -ldflags "-X jiraview/internal/app.BuildTime=..."
var BuildTime = ""

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Store         store.Store
	WebSocketHub  *ws.Hub
	TableService  *services.TableService
	HealthService *services.HealthService

	metrics      *infrastructure.TableMetrics
	errorHandler *apierrors.ErrorHandler
	listener     net.Listener
}

// NewApplication loads the configuration and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logCfg := cfg.Logging
	logCfg.FilePath = paths.LogFile(logCfg.FilePath)
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution(logger)

	return New(context.Background(), cfg, paths, logger)
}

// New wires the application from an already loaded configuration
func New(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		errorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := a.initializeServices(ctx); err != nil {
		_ = providers.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices opens the store and builds the session, hub and services
func (a *Application) initializeServices(ctx context.Context) error {
	st, err := store.Open(ctx, a.Config.StoreOptions(a.Paths))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	a.Store = st

	wsMetrics, err := ws.NewMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.WebSocketHub = ws.NewHub(a.Logger, wsMetrics)

	a.metrics, err = infrastructure.NewTableMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create table metrics: %w", err)
	}

	sess := session.New(a.Config.SessionOptions(), st, a.Logger)
	a.TableService = services.NewTableService(sess, a.WebSocketHub, a.metrics, a.OTelProviders.Tracer, a.Logger)

	restored, err := a.TableService.Restore(ctx)
	switch {
	case err != nil:
		// A broken stored dataset must not keep the server from starting.
		a.Logger.WarnContext(ctx, "failed to restore previous dataset", slog.String("error", err.Error()))
	case restored:
		a.Logger.InfoContext(ctx, "previous dataset restored")
	}

	a.HealthService = services.NewHealthService(config.AppVersion, BuildTime, st, a.TableService, a.WebSocketHub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// These don't wrap the ResponseWriter, so the WebSocket upgrade still works.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Handle(config.WebSocketEndpoint, ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(apierrors.NewErrorMiddleware(a.errorHandler, a.Logger).Handler)
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.errorHandler,
			).Handler)
		}
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.metrics).Handler)

		r.Mount(config.APIBasePath, a.apiRouter())

		r.Handle("/*", handlers.ServeWebApp(a.webDir(), handlers.PageData{
			Title:   config.AppName,
			Version: config.AppVersion,
		}, a.Logger))
	})

	a.Router = r
}

// apiRouter builds the /api subtree
func (a *Application) apiRouter() chi.Router {
	tables := handlers.NewTableHandler(a.TableService, a.Config.Server.MaxUploadBytes, a.Logger, a.errorHandler)
	api := tables.Routes()

	api.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(a.Config.Server.ReadTimeout))
		handlers.NewHealthHandler(a.HealthService, a.Logger).Register(r)
		r.Post("/logs", handlers.NewClientLogHandler(a.Logger, a.errorHandler).Handle)
	})
	return api
}

func (a *Application) webDir() string {
	if a.Paths != nil {
		return a.Paths.WebDir
	}
	return a.Config.Paths.WebDir
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub and the HTTP server. A server failure after startup
// calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.performStartupHealthCheck(ctx)

	url := fmt.Sprintf("http://localhost:%d", a.Port())
	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", url),
		slog.String("storage", a.Config.Storage.Driver))

	if a.Config.Server.OpenBrowser {
		go a.openBrowserWhenReady(ctx, url)
	}
	return nil
}

// Port returns the port the server listens on, which differs from the
// configured one when that was 0.
func (a *Application) Port() int {
	if a.listener != nil {
		if addr, ok := a.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return a.Config.Server.Port
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck logs problems with the data and web directories.
// None of them is fatal.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	if a.Paths == nil {
		return
	}

	var warnings []string
	probe := filepath.Join(a.Paths.DataDir, ".write_test")
	if err := os.WriteFile(probe, []byte("test"), 0o644); err != nil {
		warnings = append(warnings, fmt.Sprintf("data directory not writable: %s", a.Paths.DataDir))
	} else {
		_ = os.Remove(probe)
	}
	if !config.FileExists(filepath.Join(a.Paths.WebDir, "index.html")) {
		a.Logger.InfoContext(ctx, "no web interface installed, serving the built-in page",
			slog.String("web_dir", a.Paths.WebDir))
	}

	if len(warnings) > 0 {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", strings.Join(warnings, "; ")))
		return
	}
	a.Logger.InfoContext(ctx, "Startup health check passed")
}

// openBrowserWhenReady polls the health endpoint and then opens url
func (a *Application) openBrowserWhenReady(ctx context.Context, url string) {
	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 10; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}

		resp, err := client.Get(url + config.HealthEndpoint)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			continue
		}

		name, args := browserCommand(runtime.GOOS, url)
		if err := exec.CommandContext(ctx, name, args...).Start(); err != nil {
			a.Logger.WarnContext(ctx, "Failed to open browser",
				slog.String("url", url),
				slog.String("error", err.Error()))
			return
		}
		a.Logger.InfoContext(ctx, "Browser opened", slog.String("url", url))
		return
	}
	a.Logger.WarnContext(ctx, "Server did not become ready for browser opening", slog.String("url", url))
}

// browserCommand returns the platform command that opens url
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}
