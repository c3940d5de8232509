// FILE: hooklog/src/internal/forward/forwarder.go
package forward

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"hooklog/src/internal/core"
	"hooklog/src/internal/queue"
	"hooklog/src/internal/webhook"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// authWarnInterval is how many consecutive credential rejections pass between
// escalation warnings
const authWarnInterval = 100

// Outcome is the result of one delivery attempt. It never reaches producers.
type Outcome struct {
	Fragment core.Fragment
	Content  string
	Message  *core.Message
	Kind     webhook.Kind
	Err      error
	Duration time.Duration
}

// OK reports whether the delivery succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Filter decides whether a fragment is delivered at all
type Filter interface {
	Apply(core.Fragment) bool
}

// Options tunes a Forwarder. Zero values select the defaults.
type Options struct {
	// Defaults to Wrap("`", 2000)
	Transform Transform

	// Optional pacing of deliveries
	Limiter *rate.Limiter

	// Rejected fragments are counted and skipped
	Filter Filter

	// Called on the consumer goroutine after every attempt
	OnOutcome func(Outcome)
}

// Forwarder is the single consumer draining the forwarding queue into the sink.
// Deliveries happen one at a time in queue order; failures are logged on the
// diagnostic logger and never stop the loop.
type Forwarder struct {
	sink      webhook.Deliverer
	queue     *queue.Queue[core.Fragment]
	transform Transform
	limiter   *rate.Limiter
	filter    Filter
	onOutcome func(Outcome)
	logger    *log.Logger

	started   atomic.Bool
	done      chan struct{}
	startTime time.Time

	// Statistics
	totalProcessed  atomic.Uint64
	totalDelivered  atomic.Uint64
	totalFailed     atomic.Uint64
	totalFiltered   atomic.Uint64
	failuresByKind  [webhook.KindCount]atomic.Uint64
	consecutiveAuth atomic.Uint64
	lastProcessed   atomic.Value // time.Time
	lastError       atomic.Value // string
}

// Stats is a snapshot of forwarder counters
type Stats struct {
	TotalProcessed uint64
	TotalDelivered uint64
	TotalFailed    uint64
	TotalFiltered  uint64
	FailuresByKind map[string]uint64
	StartTime      time.Time
	LastProcessed  time.Time
	LastError      string
	Running        bool
	Queue          queue.Stats
}

// Creates a forwarder; call Start to spawn the consumer
func New(sink webhook.Deliverer, q *queue.Queue[core.Fragment], logger *log.Logger, opts Options) *Forwarder {
	transform := opts.Transform
	if transform == nil {
		transform = Wrap("`", 2000)
	}

	f := &Forwarder{
		sink:      sink,
		queue:     q,
		transform: transform,
		limiter:   opts.Limiter,
		filter:    opts.Filter,
		onOutcome: opts.OnOutcome,
		logger:    logger,
		done:      make(chan struct{}),
	}
	f.lastProcessed.Store(time.Time{})
	f.lastError.Store("")
	return f
}

// Start spawns the consumer goroutine. It may be called once.
// Cancelling ctx abandons any fragments still queued.
func (f *Forwarder) Start(ctx context.Context) error {
	if !f.started.CompareAndSwap(false, true) {
		return fmt.Errorf("forwarder already started")
	}
	f.startTime = time.Now()

	go f.run(ctx)

	f.logger.Info("msg", "Webhook forwarder started",
		"component", "forwarder",
		"rate_limited", f.limiter != nil)
	return nil
}

// Done is closed when the consumer goroutine exits
func (f *Forwarder) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the consumer has drained a closed queue and exited
func (f *Forwarder) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("forwarder did not drain: %w (pending %d)", ctx.Err(), f.queue.Len())
	}
}

// GetStats returns the forwarder's statistics
func (f *Forwarder) GetStats() Stats {
	lastProc, _ := f.lastProcessed.Load().(time.Time)
	lastErr, _ := f.lastError.Load().(string)

	byKind := make(map[string]uint64, webhook.KindCount-1)
	for k := webhook.KindAuthInvalid; int(k) < webhook.KindCount; k++ {
		byKind[k.String()] = f.failuresByKind[k].Load()
	}

	running := f.started.Load()
	select {
	case <-f.done:
		running = false
	default:
	}

	return Stats{
		TotalProcessed: f.totalProcessed.Load(),
		TotalDelivered: f.totalDelivered.Load(),
		TotalFailed:    f.totalFailed.Load(),
		TotalFiltered:  f.totalFiltered.Load(),
		FailuresByKind: byKind,
		StartTime:      f.startTime,
		LastProcessed:  lastProc,
		LastError:      lastErr,
		Running:        running,
		Queue:          f.queue.GetStats(),
	}
}

func (f *Forwarder) run(ctx context.Context) {
	defer close(f.done)

	for ctx.Err() == nil {
		fragment, ok := f.queue.Receive(ctx)
		if !ok {
			break
		}

		if f.filter != nil && !f.filter.Apply(fragment) {
			f.totalFiltered.Add(1)
			continue
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				f.logger.Warn("msg", "Rate limiter wait aborted, fragment dropped",
					"component", "forwarder",
					"fragment_id", fragment.ID,
					"error", err)
				break
			}
		}

		f.process(ctx, fragment)
	}

	f.logger.Info("msg", "Webhook forwarder stopped",
		"component", "forwarder",
		"total_processed", f.totalProcessed.Load(),
		"total_delivered", f.totalDelivered.Load(),
		"total_failed", f.totalFailed.Load(),
		"pending", f.queue.Len())
}

func (f *Forwarder) process(ctx context.Context, fragment core.Fragment) {
	f.totalProcessed.Add(1)
	f.lastProcessed.Store(time.Now())

	content := f.transform(fragment)
	start := time.Now()
	msg, err := f.deliver(ctx, content, fragment.Wait)

	outcome := Outcome{
		Fragment: fragment,
		Content:  content,
		Message:  msg,
		Kind:     webhook.Classify(err),
		Err:      err,
		Duration: time.Since(start),
	}

	if err != nil {
		f.recordFailure(outcome)
	} else {
		f.totalDelivered.Add(1)
		f.consecutiveAuth.Store(0)
		f.logger.Debug("msg", "Fragment delivered",
			"component", "forwarder",
			"fragment_id", fragment.ID,
			"duration_ms", outcome.Duration.Milliseconds())
	}

	if f.onOutcome != nil {
		f.onOutcome(outcome)
	}
}

// deliver isolates the sink call so a panicking deliverer counts as one failure
func (f *Forwarder) deliver(ctx context.Context, content string, wait bool) (msg *core.Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			msg = nil
			err = fmt.Errorf("deliver panicked: %v", r)
		}
	}()
	return f.sink.Deliver(ctx, content, wait)
}

func (f *Forwarder) recordFailure(o Outcome) {
	f.totalFailed.Add(1)
	f.failuresByKind[o.Kind].Add(1)
	f.lastError.Store(o.Err.Error())

	f.logger.Error("msg", o.Kind.Message(),
		"component", "forwarder",
		"kind", o.Kind.String(),
		"fragment_id", o.Fragment.ID,
		"error", o.Err)

	if o.Kind != webhook.KindAuthInvalid {
		f.consecutiveAuth.Store(0)
		return
	}

	n := f.consecutiveAuth.Add(1)
	if n == 1 || n%authWarnInterval == 0 {
		f.logger.Warn("msg", "Webhook keeps rejecting credentials, forwarding continues",
			"component", "forwarder",
			"consecutive_failures", n)
	}
}
