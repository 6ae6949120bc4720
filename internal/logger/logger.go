package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu           sync.RWMutex
	globalLogger = zerolog.New(io.Discard)
)

// Init configures the global zerolog logger.
//
// Diagnostics go to w (stderr when nil) so that structured output on stdout
// stays clean. Verbose enables debug level; otherwise only warnings and
// errors are written.
func Init(w io.Writer, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	l := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)}).
		Level(level).
		With().
		Timestamp().
		Logger()

	mu.Lock()
	globalLogger = l
	mu.Unlock()
	// Keep the zerolog/log package in sync for convenience.
	log.Logger = l
	return l
}

// Global returns the logger installed by Init (a discard logger before that).
func Global() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// WithLogger returns a new context carrying the global logger with additional fields.
func WithLogger(ctx context.Context, fields map[string]interface{}) context.Context {
	l := FromContext(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// FromContext extracts the logger from ctx, falling back to the global logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		l := zerolog.Ctx(ctx)
		// zerolog.Ctx returns a disabled logger if none is in context
		if l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	g := Global()
	return &g
}

// isTerminal reports whether w is a console, including Cygwin and MSYS
// terminals on Windows.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
