package destination

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/RackSec/srslog"

	"github.com/flicker-logs/flicker/internal/config"
	"github.com/flicker-logs/flicker/internal/entry"
)

// syslogPriority is local0.info: facility 16 * 8 + severity 6 = 134, fixed
// for every message regardless of content (spec.md §4.3.2 names one literal
// priority, not a per-entry severity mapping).
const syslogPriority = srslog.Priority(16*8 + 6)

// syslogDestination ships one RFC 3164 message per entry over UDP or TCP.
// Grounded on original_source/src/destinations/syslog.rs.
//
// A fresh connection is opened per SendBatch call rather than held open
// across batches: for UDP this is an ephemeral local socket per batch, for
// TCP a single connection per batch, exactly as spec.md §4.3.2 requires.
type syslogDestination struct {
	network  string // "udp" or "tcp"
	addr     string
	hostname string
}

func newSyslog(cfg config.DestinationConfig) (Destination, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("syslog destination requires a host")
	}

	network := strings.ToLower(cfg.Protocol)
	if network != "udp" && network != "tcp" {
		return nil, fmt.Errorf("invalid syslog protocol %q (use \"udp\" or \"tcp\")", cfg.Protocol)
	}

	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}

	return &syslogDestination{
		network:  network,
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		hostname: hostname,
	}, nil
}

// formatter renders the exact wire line spec.md §4.3.2 mandates, ignoring the
// priority and hostname srslog passes in so the fixed priority and the
// fallback-to-"unknown" rule are this destination's own, not the library's
// defaults. The tag is the "flicker" given to srslog.Dial.
func (s *syslogDestination) formatter(p srslog.Priority, hostname, tag, content string) string {
	timestamp := time.Now().Format("Jan _2 15:04:05")
	return fmt.Sprintf("<%d>%s %s %s: %s", syslogPriority, timestamp, s.hostname, tag, content)
}

func (s *syslogDestination) SendBatch(ctx context.Context, entries []entry.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- s.sendBatchBlocking(entries)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (s *syslogDestination) sendBatchBlocking(entries []entry.LogEntry) error {
	w, err := srslog.Dial(s.network, s.addr, syslogPriority, "flicker")
	if err != nil {
		return fmt.Errorf("dialing syslog %s://%s: %w", s.network, s.addr, err)
	}
	defer w.Close()

	w.SetFormatter(s.formatter)

	for _, e := range entries {
		content := fmt.Sprintf("[%s] %s", e.Path, e.Line)
		if _, err := w.Write([]byte(content)); err != nil {
			return fmt.Errorf("writing syslog message: %w", err)
		}
	}

	return nil
}
