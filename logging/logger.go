// Package logging holds the *slog.Logger used for pdfstruct's debug output.
//
// Nothing is logged unless a logger is installed. The core reports window
// growth while resolving indirect objects, the bounds of the cross-reference
// subsection and the trailer bootstrap values; the reader reports the header
// version and a warning when the trailer Size disagrees with the xref table.
package logging

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

var discard = slog.New(slog.DiscardHandler)

// SetLogger installs sl as the package logger. A nil logger restores the
// default, which discards everything.
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = discard
	}
	logger.Store(sl)
}

// Logger returns the package logger. It never returns nil.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return discard
}
