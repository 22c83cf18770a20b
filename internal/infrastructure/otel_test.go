package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitializeOTelPrometheus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)

	metrics, err := NewTableMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.DatasetLoads.Add(ctx, 1)
	metrics.DatasetRows.Record(ctx, 120)
	RecordDuration(ctx, metrics.ExportDuration, time.Now().Add(-time.Second), attribute.String("kind", "view"))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "dataset_loads_total")
	assert.Contains(t, body, "dataset_rows")
	assert.Contains(t, body, "go_goroutines")
}

func TestInitializeOTelTracing(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	cfg.MetricExporter = "none"

	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	traceID := TraceIDFromContext(ctx)
	assert.Len(t, traceID, 32)
	assert.Equal(t, traceID, GetTraceID(ctx))
	span.End()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(shutdownCtx))
}

func TestInitializeOTelRejectsUnknownExporter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := DefaultOTelConfig()
	cfg.MetricExporter = "statsd"

	_, err := InitializeOTel(cfg, logger)
	assert.Error(t, err)
}

func TestNoopTableMetrics(t *testing.T) {
	m := NoopTableMetrics()
	require.NotNil(t, m)
	m.BusyRejections.Add(context.Background(), 1)
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
