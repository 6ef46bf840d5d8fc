// Package logging maps CLI verbosity flags onto slog levels and provides the
// handlers the script wires together: a bare-message stream handler, a
// bounded in-memory buffer for tests, and a level-gated fanout combining them.
package logging

import (
	"io"
	"log/slog"
)

// LevelSilent sits strictly above every severity slog defines, so a logger
// gated at this level emits nothing.
const LevelSilent = slog.LevelError + 4

// levelStep is the distance between adjacent slog severities.
const levelStep = 4

// LevelFor derives the effective slog level from the parsed verbosity flags.
// Each -v lowers the threshold by one severity, each -q raises it; the
// baseline is Warn. Silent wins over everything else.
func LevelFor(verbose, quiet int, silent bool) slog.Level {
	if silent {
		return LevelSilent
	}
	return slog.LevelWarn - slog.Level((verbose-quiet)*levelStep)
}

// New builds a logger that writes bare message text to w, gated at level.
// Any extra handlers receive the same records behind the same gate, which is
// how tests attach a BufferHandler without changing what the user sees.
func New(w io.Writer, level slog.Level, colorize bool, extra ...slog.Handler) *slog.Logger {
	handlers := append([]slog.Handler{NewMessageHandler(w, colorize)}, extra...)
	return slog.New(newFanoutHandler(level, handlers...))
}
