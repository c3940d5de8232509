// FILE: hooklog/src/cmd/hooklog/status.go
package main

import (
	"context"
	"time"
)

// Periodically logs forwarder, queue and source status
func statusReporter(ctx context.Context, r *relay, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Safely get stats with recovery
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						logger.Error("msg", "Panic in status reporter",
							"component", "status_reporter",
							"panic", rec)
					}
				}()
				logRelayStatus(r)
			}()
		}
	}
}

// Logs one status report
func logRelayStatus(r *relay) {
	stats := r.forwarder.GetStats()

	statusFields := []any{
		"msg", "Relay status",
		"component", "status_reporter",
		"running", stats.Running,
		"processed", stats.TotalProcessed,
		"delivered", stats.TotalDelivered,
		"failed", stats.TotalFailed,
		"filtered", stats.TotalFiltered,
		"queue_length", stats.Queue.Length,
		"queue_dropped", stats.Queue.Dropped,
		"producers", stats.Queue.Producers,
	}

	for kind, count := range stats.FailuresByKind {
		if count > 0 {
			statusFields = append(statusFields, "failed_"+kind, count)
		}
	}

	if stats.LastError != "" {
		statusFields = append(statusFields, "last_error", stats.LastError)
	}

	if r.filters != nil && r.filters.Len() > 0 {
		statusFields = append(statusFields, "filters", r.filters.GetStats())
	}

	writerStats := r.writer.GetStats()
	statusFields = append(statusFields,
		"writes", writerStats["total_writes"],
		"skipped_writes", writerStats["skipped_writes"])

	for _, src := range r.sources {
		ss := src.GetStats()
		statusFields = append(statusFields,
			ss.Type+"_lines", ss.TotalEntries,
			ss.Type+"_dropped", ss.DroppedEntries)
	}

	// Failures are worth seeing without debug level
	if stats.TotalFailed > 0 {
		logger.Info(statusFields...)
		return
	}
	logger.Debug(statusFields...)
}
