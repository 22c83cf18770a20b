package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewTestLogger(t)
	logger.With(slog.String("component", "test")).Warn("fingerprint mismatch", slog.String("table", "t1"))
	logger.Info("loaded")

	records := h.Records()
	assert.Len(t, records, 2)
	assert.Equal(t, "test", records[0].Attrs["component"])
	assert.Equal(t, "t1", records[0].Attrs["table"])
	assert.True(t, h.Contains(slog.LevelWarn, "fingerprint"))
	assert.False(t, h.Contains(slog.LevelError, "fingerprint"))
	AssertLogContains(t, h, slog.LevelInfo, "loaded")
	AssertNoLogs(t, h, slog.LevelError)
}
