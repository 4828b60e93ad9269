package destination

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flicker-logs/flicker/internal/config"
	"github.com/flicker-logs/flicker/internal/entry"
)

// fileDestination appends each batch as JSON Lines. Grounded on
// original_source/src/destinations/file.rs: the path is stored, not an
// open handle — the file is opened in append mode fresh on each batch,
// which the OS's append-mode single-writer ordering guarantee makes safe.
type fileDestination struct {
	path string
}

func newFile(cfg config.DestinationConfig) (Destination, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file destination requires a path")
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating parent directory for %s: %w", cfg.Path, err)
		}
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s for append: %w", cfg.Path, err)
	}
	_ = f.Close()

	return &fileDestination{path: cfg.Path}, nil
}

func (d *fileDestination) SendBatch(ctx context.Context, entries []entry.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", d.path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("writing entry to %s: %w", d.path, err)
		}
	}

	return f.Sync()
}
