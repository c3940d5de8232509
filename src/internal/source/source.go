// FILE: hooklog/src/internal/source/source.go
package source

import "time"

// Source feeds lines from an external input into the forwarding writer
type Source interface {
	// Begins reading from the source
	Start() error

	// Stops reading and releases the source's writer handle
	Stop()

	// Closed when the source has no more input
	Done() <-chan struct{}

	// Returns source statistics
	GetStats() SourceStats
}

// Contains statistics about a source
type SourceStats struct {
	Type           string
	TotalEntries   uint64
	DroppedEntries uint64
	StartTime      time.Time
	LastEntryTime  time.Time
	Details        map[string]any
}
