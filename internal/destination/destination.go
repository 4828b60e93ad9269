// Package destination implements the four wire formats flicker can ship
// batches of log entries to: HTTP, syslog, Elasticsearch, and local file.
package destination

import (
	"context"
	"fmt"

	"github.com/flicker-logs/flicker/internal/config"
	"github.com/flicker-logs/flicker/internal/entry"
)

// Destination is the uniform batch-shipping capability every pipeline
// drives its destination through. Implementations must be safe for
// concurrent use, though in practice each pipeline owns exactly one.
type Destination interface {
	// SendBatch ships entries as a unit. An empty batch is a no-op that
	// performs no I/O and always succeeds.
	SendBatch(ctx context.Context, entries []entry.LogEntry) error
}

// Send is the single-entry convenience every destination gets for free: it
// forwards to SendBatch with a one-element slice.
func Send(ctx context.Context, d Destination, e entry.LogEntry) error {
	return d.SendBatch(ctx, []entry.LogEntry{e})
}

// New constructs the destination named by cfg.Type. An unrecognized type or
// missing required field is a construction error; the caller (the
// supervisor, building one pipeline per configured log file) is expected to
// skip that single pipeline rather than fail the whole process.
func New(cfg config.DestinationConfig) (Destination, error) {
	switch cfg.Type {
	case "http":
		return newHTTP(cfg)
	case "syslog":
		return newSyslog(cfg)
	case "elasticsearch":
		return newElasticsearch(cfg)
	case "file":
		return newFile(cfg)
	default:
		return nil, fmt.Errorf("unknown destination type %q", cfg.Type)
	}
}
