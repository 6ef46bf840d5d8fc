package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fatih/color"
)

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

func init() {
	// The handler decides on its own whether to colorize; don't let the
	// package-global tty detection second-guess it.
	warnColor.EnableColor()
	errorColor.EnableColor()
}

// MessageHandler is a slog.Handler that emits only the record message, one
// line per record. Attributes, groups, timestamps and level prefixes are all
// dropped; this is the formatter a script wants on stderr.
type MessageHandler struct {
	mu       *sync.Mutex
	w        io.Writer
	colorize bool
}

// NewMessageHandler returns a MessageHandler writing to w. When colorize is
// set, Warn and Error messages are tinted.
func NewMessageHandler(w io.Writer, colorize bool) *MessageHandler {
	return &MessageHandler{
		mu:       &sync.Mutex{},
		w:        w,
		colorize: colorize,
	}
}

// Enabled always reports true; level gating happens in the fanout wrapping
// this handler.
func (h *MessageHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *MessageHandler) Handle(_ context.Context, record slog.Record) error {
	msg := record.Message
	if h.colorize {
		switch {
		case record.Level >= slog.LevelError:
			msg = errorColor.Sprint(msg)
		case record.Level >= slog.LevelWarn:
			msg = warnColor.Sprint(msg)
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, msg)
	return err
}

// WithAttrs returns the handler unchanged; attributes are never rendered.
func (h *MessageHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup returns the handler unchanged; groups are never rendered.
func (h *MessageHandler) WithGroup(_ string) slog.Handler {
	return h
}
