package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfstruct/logging"
)

func TestLoggerDefaultsToDiscard(t *testing.T) {
	prev := logging.Logger()
	defer logging.SetLogger(prev)

	logging.SetLogger(nil)
	l := logging.Logger()
	require.NotNil(t, l)
	assert.Equal(t, slog.DiscardHandler, l.Handler())
}

func TestSetLogger(t *testing.T) {
	prev := logging.Logger()
	defer logging.SetLogger(prev)

	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logging.Logger().Debug("xref subsection", slog.Int("from", 0), slog.Int("entries", 3))

	assert.Contains(t, buf.String(), "xref subsection")
	assert.Contains(t, buf.String(), "entries=3")
}

func TestBufferedHandler(t *testing.T) {
	h := logging.NewBufferedHandler(slog.LevelInfo)
	l := slog.New(h)

	l.Debug("dropped")
	l.Info("kept", slog.Int64("offset", 42))
	l.With(slog.String("doc", "a.pdf")).WithGroup("xref").Warn("size mismatch", slog.Int("size", 4))

	assert.False(t, h.Contains("dropped"))
	assert.True(t, h.Contains("kept"))
	assert.True(t, h.Contains("offset=42"))
	assert.True(t, h.Contains("doc=a.pdf"))
	assert.True(t, h.Contains("xref.size=4"))
	assert.Equal(t, 2, h.Lines())

	h.Reset()
	assert.Empty(t, h.String())
	assert.Equal(t, 0, h.Lines())
}

func TestBufferedHandlerNilLevel(t *testing.T) {
	h := logging.NewBufferedHandler(nil)
	slog.New(h).Debug("everything")
	assert.True(t, h.Contains("everything"))
}
