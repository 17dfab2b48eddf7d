package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG").Level())
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning ").Level())
	assert.Equal(t, slog.LevelError, ParseLevel("error").Level())
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty").Level())
}

func TestPrettyHandlerWritesGroupedAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))
	logger.With("component", "web").WithGroup("req").Info("request", "path", "/pages/1", "status", 200)
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "INFO request\n")
	assert.Contains(t, out, "  component: web\n")
	assert.Contains(t, out, "  req.path: /pages/1\n")
	assert.Contains(t, out, "  req.status: 200\n")
	assert.NotContains(t, out, "hidden")
}

func TestTeeRespectsLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	logger := slog.New(Tee(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	))
	logger.Debug("details")
	logger.Info("summary")

	assert.NotContains(t, infoBuf.String(), "details")
	assert.Contains(t, infoBuf.String(), "summary")
	assert.Contains(t, debugBuf.String(), "details")
	assert.Contains(t, debugBuf.String(), "summary")
}
