// FILE: hooklog/src/internal/source/stdin.go
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

const maxStdinLineLength = 1024 * 1024

// Reads lines from standard input and forwards each non-empty line
type StdinSource struct {
	input  io.Reader
	out    io.WriteCloser
	logger *log.Logger

	stop      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
	done      chan struct{}

	// Statistics
	totalEntries   atomic.Uint64
	droppedEntries atomic.Uint64
	startTime      time.Time
	lastEntryTime  atomic.Value // time.Time
}

// Creates a stdin source writing into out; a nil input reads os.Stdin
func NewStdinSource(input io.Reader, out io.WriteCloser, logger *log.Logger) *StdinSource {
	if input == nil {
		input = os.Stdin
	}
	s := &StdinSource{
		input:  input,
		out:    out,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.lastEntryTime.Store(time.Time{})
	return s
}

func (s *StdinSource) Start() error {
	s.startTime = time.Now()

	interactive := false
	if f, ok := s.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		interactive = true
		fmt.Fprintln(os.Stderr, "Reading log lines from the terminal, each line is forwarded. Press Ctrl-D to finish.")
	}

	go s.readLoop()
	s.logger.Info("msg", "Stdin source started",
		"component", "stdin_source",
		"interactive", interactive)
	return nil
}

// Stop releases the writer handle immediately; a read blocked on the
// terminal cannot be interrupted and its line, if any, is dropped.
func (s *StdinSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	s.closeOut()
	s.logger.Info("msg", "Stdin source stopped", "component", "stdin_source")
}

func (s *StdinSource) Done() <-chan struct{} {
	return s.done
}

func (s *StdinSource) GetStats() SourceStats {
	lastEntry, _ := s.lastEntryTime.Load().(time.Time)

	return SourceStats{
		Type:           "stdin",
		TotalEntries:   s.totalEntries.Load(),
		DroppedEntries: s.droppedEntries.Load(),
		StartTime:      s.startTime,
		LastEntryTime:  lastEntry,
		Details:        map[string]any{},
	}
}

func (s *StdinSource) readLoop() {
	defer close(s.done)
	defer s.closeOut()

	scanner := bufio.NewScanner(s.input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStdinLineLength)

	for scanner.Scan() {
		select {
		case <-s.stop:
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		s.totalEntries.Add(1)
		s.lastEntryTime.Store(time.Now())

		if _, err := s.out.Write(line); err != nil {
			s.droppedEntries.Add(1)
			s.logger.Debug("msg", "Dropped stdin line",
				"component", "stdin_source",
				"error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("msg", "Scanner error reading stdin",
			"component", "stdin_source",
			"error", err)
		return
	}

	s.logger.Info("msg", "Stdin reached end of input",
		"component", "stdin_source",
		"total_entries", s.totalEntries.Load())
}

func (s *StdinSource) closeOut() {
	s.closeOnce.Do(func() {
		if err := s.out.Close(); err != nil {
			s.logger.Debug("msg", "Failed to close stdin writer",
				"component", "stdin_source",
				"error", err)
		}
	})
}
