package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
)

// BufferedHandler is a slog.Handler that keeps records in memory as JSON
// lines. Tests install it to check what the reader logged:
//
//	h := logging.NewBufferedHandler(slog.LevelDebug)
//	logging.SetLogger(slog.New(h))
//	...
//	if !h.Contains("growing resolve window") { ... }
type BufferedHandler struct {
	level  slog.Leveler
	state  *bufferState
	attrs  []slog.Attr
	groups []string
}

// bufferState is shared by every handler derived through WithAttrs/WithGroup.
type bufferState struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

type record struct {
	Level   string   `json:"level"`
	Message string   `json:"message"`
	Attrs   []string `json:"attrs,omitempty"`
}

// NewBufferedHandler returns an empty handler recording records at or
// above level. A nil level records everything.
func NewBufferedHandler(level slog.Leveler) *BufferedHandler {
	return &BufferedHandler{level: level, state: &bufferState{}}
}

func (h *BufferedHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == nil {
		return true
	}
	return level >= h.level.Level()
}

func (h *BufferedHandler) Handle(_ context.Context, r slog.Record) error {
	rec := record{Level: r.Level.String(), Message: r.Message}
	for _, a := range h.attrs {
		rec.Attrs = append(rec.Attrs, h.qualify(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs = append(rec.Attrs, h.qualify(a))
		return true
	})

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.buf.Write(data)
	h.state.buf.WriteByte('\n')
	return nil
}

func (h *BufferedHandler) qualify(a slog.Attr) string {
	if len(h.groups) == 0 {
		return a.String()
	}
	return strings.Join(h.groups, ".") + "." + a.String()
}

func (h *BufferedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &BufferedHandler{level: h.level, state: h.state, attrs: merged, groups: h.groups}
}

func (h *BufferedHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &BufferedHandler{level: h.level, state: h.state, attrs: h.attrs, groups: groups}
}

// String returns everything recorded so far.
func (h *BufferedHandler) String() string {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return h.state.buf.String()
}

// Contains reports whether the recorded output contains s.
func (h *BufferedHandler) Contains(s string) bool {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return bytes.Contains(h.state.buf.Bytes(), []byte(s))
}

// Lines returns the number of records captured.
func (h *BufferedHandler) Lines() int {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return bytes.Count(h.state.buf.Bytes(), []byte{'\n'})
}

// Reset drops all recorded output.
func (h *BufferedHandler) Reset() {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.buf.Reset()
}
