// FILE: hooklog/src/internal/writer/direct.go
package writer

import (
	"context"
	"fmt"
	"sync/atomic"

	"hooklog/src/internal/core"
	"hooklog/src/internal/webhook"

	"github.com/lixenwraith/log"
)

// Direct is the legacy blocking writer: each Write performs the delivery on
// the caller's goroutine. It bypasses the queue and is meant for one-shot
// scripted use only.
type Direct struct {
	sink   webhook.Deliverer
	wait   bool
	logger *log.Logger

	last atomic.Pointer[core.Message]
}

// Creates a blocking writer over sink
func NewDirect(sink webhook.Deliverer, wait bool, logger *log.Logger) *Direct {
	return &Direct{
		sink:   sink,
		wait:   wait,
		logger: logger,
	}
}

// Write delivers p synchronously. A failed delivery is reported to the caller
// after being logged with its classification.
func (d *Direct) Write(p []byte) (int, error) {
	return d.WriteContext(context.Background(), p)
}

// WriteContext is Write bounded by ctx
func (d *Direct) WriteContext(ctx context.Context, p []byte) (int, error) {
	text := DecodeLossy(p)

	msg, err := d.sink.Deliver(ctx, text, d.wait)
	if err != nil {
		kind := webhook.Classify(err)
		d.logger.Error("msg", kind.Message(),
			"component", "direct_writer",
			"kind", kind.String(),
			"error", err)
		return 0, fmt.Errorf("direct delivery failed: %w", err)
	}

	d.last.Store(msg)
	return len(p), nil
}

// Sync is a no-op; nothing is buffered
func (d *Direct) Sync() error {
	return nil
}

// LastMessage returns the message confirmed by the latest waited delivery
func (d *Direct) LastMessage() *core.Message {
	return d.last.Load()
}
