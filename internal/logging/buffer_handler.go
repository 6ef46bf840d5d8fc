package logging

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultBufferCapacity bounds a BufferHandler when no capacity is given.
const DefaultBufferCapacity = 100

// BufferHandler retains handled records in memory so tests can assert on
// what a logger actually emitted. Once capacity is reached further records
// are dropped.
type BufferHandler struct {
	mu       sync.Mutex
	capacity int
	records  []slog.Record
}

// NewBufferHandler returns a BufferHandler holding at most capacity records.
// A capacity <= 0 uses DefaultBufferCapacity.
func NewBufferHandler(capacity int) *BufferHandler {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &BufferHandler{capacity: capacity}
}

// Enabled always reports true; the fanout gate in front decides levels.
func (h *BufferHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *BufferHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) < h.capacity {
		h.records = append(h.records, record)
	}
	return nil
}

func (h *BufferHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *BufferHandler) WithGroup(_ string) slog.Handler {
	return h
}

// Records returns a copy of the buffered records in arrival order.
func (h *BufferHandler) Records() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]slog.Record(nil), h.records...)
}

// Len reports how many records are buffered.
func (h *BufferHandler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}
