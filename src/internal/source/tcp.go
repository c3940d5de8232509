// FILE: hooklog/src/internal/source/tcp.go
package source

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"hooklog/src/internal/config"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
)

const (
	defaultMaxLineLength = 1024 * 1024
	maxClientBuffer      = 10 * 1024 * 1024
	startupGrace         = 100 * time.Millisecond
)

// TCPSource relays newline-delimited lines from TCP clients to its writer
type TCPSource struct {
	gnet.BuiltinEventEngine

	addr    string
	maxLine int
	out     io.WriteCloser
	logger  *log.Logger

	engine   atomic.Pointer[gnet.Engine]
	running  sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}

	startTime     time.Time
	lines         atomic.Uint64
	dropped       atomic.Uint64
	skipped       atomic.Uint64
	disconnects   atomic.Uint64
	connections   atomic.Int64
	lastEntryTime atomic.Value // time.Time
}

// Creates a TCP source; nothing listens until Start
func NewTCPSource(cfg *config.TCPConfig, out io.WriteCloser, logger *log.Logger) (*TCPSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tcp source config cannot be nil")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("tcp source requires a valid port: %d", cfg.Port)
	}

	host := cfg.Host
	if host == "" {
		host = "0.0.0.0"
	}
	maxLine := int(cfg.MaxLineLength)
	if maxLine <= 0 {
		maxLine = defaultMaxLineLength
	}

	t := &TCPSource{
		addr:    fmt.Sprintf("tcp://%s:%d", host, cfg.Port),
		maxLine: maxLine,
		out:     out,
		logger:  logger,
		done:    make(chan struct{}),
	}
	t.lastEntryTime.Store(time.Time{})
	return t, nil
}

// Start runs the gnet engine; a bind failure within the startup grace period
// is returned and the source is stopped
func (t *TCPSource) Start() error {
	t.startTime = time.Now()

	errChan := make(chan error, 1)
	t.running.Add(1)
	go func() {
		defer t.running.Done()
		errChan <- gnet.Run(t, t.addr,
			gnet.WithLogger(compat.NewGnetAdapter(t.logger)),
			gnet.WithMulticore(true),
			gnet.WithReusePort(true),
		)
	}()

	select {
	case err := <-errChan:
		if err == nil {
			err = fmt.Errorf("tcp engine exited during startup")
		}
		t.Stop()
		return fmt.Errorf("tcp source on %s: %w", t.addr, err)
	case <-time.After(startupGrace):
		t.logger.Info("msg", "TCP source listening",
			"component", "tcp_source",
			"address", t.addr,
			"max_line_length", t.maxLine)
		return nil
	}
}

// Stop shuts the engine down, then releases the writer
func (t *TCPSource) Stop() {
	t.stopOnce.Do(func() {
		if eng := t.engine.Load(); eng != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := eng.Stop(ctx); err != nil {
				t.logger.Warn("msg", "TCP engine stop failed",
					"component", "tcp_source",
					"error", err)
			}
			cancel()
		}
		t.running.Wait()

		_ = t.out.Close()
		close(t.done)

		t.logger.Info("msg", "TCP source stopped",
			"component", "tcp_source",
			"lines", t.lines.Load(),
			"skipped", t.skipped.Load())
	})
}

func (t *TCPSource) Done() <-chan struct{} {
	return t.done
}

func (t *TCPSource) GetStats() SourceStats {
	lastEntry, _ := t.lastEntryTime.Load().(time.Time)

	return SourceStats{
		Type:           "tcp",
		TotalEntries:   t.lines.Load(),
		DroppedEntries: t.dropped.Load(),
		StartTime:      t.startTime,
		LastEntryTime:  lastEntry,
		Details: map[string]any{
			"address":            t.addr,
			"active_connections": t.connections.Load(),
			"skipped_lines":      t.skipped.Load(),
			"forced_disconnects": t.disconnects.Load(),
		},
	}
}

func (t *TCPSource) OnBoot(eng gnet.Engine) gnet.Action {
	t.engine.Store(&eng)
	return gnet.None
}

func (t *TCPSource) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	c.SetContext(newLineFramer(t.maxLine, maxClientBuffer))
	t.connections.Add(1)
	return nil, gnet.None
}

func (t *TCPSource) OnClose(c gnet.Conn, err error) gnet.Action {
	t.connections.Add(-1)
	if framer, ok := c.Context().(*lineFramer); ok {
		if tail := framer.flush(); tail != nil {
			t.publish(tail)
		}
	}
	if err != nil {
		t.logger.Debug("msg", "TCP client disconnected with error",
			"component", "tcp_source",
			"error", err)
	}
	return gnet.None
}

func (t *TCPSource) OnTraffic(c gnet.Conn) gnet.Action {
	framer, ok := c.Context().(*lineFramer)
	if !ok {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		return gnet.Close
	}

	lines, skipped, err := framer.feed(data)
	for _, line := range lines {
		t.publish(line)
	}
	if skipped > 0 {
		t.skipped.Add(uint64(skipped))
	}
	if err != nil {
		t.disconnects.Add(1)
		t.logger.Warn("msg", "Dropping TCP client",
			"component", "tcp_source",
			"remote_addr", c.RemoteAddr().String(),
			"error", err)
		return gnet.Close
	}
	return gnet.None
}

func (t *TCPSource) publish(line []byte) {
	t.lines.Add(1)
	t.lastEntryTime.Store(time.Now())

	if _, err := t.out.Write(line); err != nil {
		t.dropped.Add(1)
	}
}
