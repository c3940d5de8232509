// FILE: hooklog/src/internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"hooklog/src/internal/core"
	"hooklog/src/internal/queue"

	"github.com/lixenwraith/log"
)

// ErrNotConnected is the only error Writer.Write returns: the forwarding
// queue no longer accepts fragments.
var ErrNotConnected = errors.New("webhook forwarding channel is not connected")

// Writer is the synchronous face of the forwarding pipeline. Write only
// enqueues; delivery and its failures happen on the forwarder.
// It satisfies io.Writer and zapcore.WriteSyncer.
type Writer struct {
	producer *queue.Producer[core.Fragment]
	enabled  *atomic.Bool
	logger   *log.Logger

	// Statistics
	totalWrites    atomic.Uint64
	skippedWrites  atomic.Uint64
	rejectedWrites atomic.Uint64
}

// Creates a writer owning producer. With enabled false every write succeeds
// without touching the queue.
func New(producer *queue.Producer[core.Fragment], enabled bool, logger *log.Logger) *Writer {
	w := &Writer{
		producer: producer,
		enabled:  &atomic.Bool{},
		logger:   logger,
	}
	w.enabled.Store(enabled)
	return w
}

// Write enqueues p as one fragment and reports len(p) on success. Invalid
// UTF-8 is replaced, never rejected, so a partial write cannot occur.
func (w *Writer) Write(p []byte) (int, error) {
	w.totalWrites.Add(1)

	if !w.enabled.Load() {
		w.skippedWrites.Add(1)
		return len(p), nil
	}

	// Copies p; callers such as zap reuse their buffer after Write returns
	text := DecodeLossy(p)

	if err := w.producer.Send(core.NewFragment(text, false)); err != nil {
		w.rejectedWrites.Add(1)
		w.logger.Error("msg", "Forwarding channel closed unexpectedly",
			"component", "webhook_writer",
			"fragment", text,
			"error", err)
		return 0, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return len(p), nil
}

// Sync is a no-op; the writer holds no buffer
func (w *Writer) Sync() error {
	return nil
}

// Enabled reports whether writes are forwarded
func (w *Writer) Enabled() bool {
	return w.enabled.Load()
}

// SetEnabled switches forwarding on or off for this writer and its clones
func (w *Writer) SetEnabled(enabled bool) {
	w.enabled.Store(enabled)
}

// Clone returns a writer with its own producer handle on the same queue
func (w *Writer) Clone() (*Writer, error) {
	p, err := w.producer.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return &Writer{
		producer: p,
		enabled:  w.enabled,
		logger:   w.logger,
	}, nil
}

// Close drops this writer's producer handle
func (w *Writer) Close() error {
	w.producer.Close()
	return nil
}

// GetStats returns the writer's counters
func (w *Writer) GetStats() map[string]any {
	return map[string]any{
		"enabled":         w.enabled.Load(),
		"total_writes":    w.totalWrites.Load(),
		"skipped_writes":  w.skippedWrites.Load(),
		"rejected_writes": w.rejectedWrites.Load(),
	}
}

// DecodeLossy converts p to a string, replacing every invalid UTF-8 byte
// with U+FFFD
func DecodeLossy(p []byte) string {
	if utf8.Valid(p) {
		return string(p)
	}

	var b strings.Builder
	b.Grow(len(p) + 8)
	for len(p) > 0 {
		r, size := utf8.DecodeRune(p)
		if r == utf8.RuneError && size <= 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(p[:size])
		}
		p = p[size:]
	}
	return b.String()
}
