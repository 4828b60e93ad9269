// Package pipeline runs one tailer/filter/buffer/destination chain per
// configured log file, polling on a fixed interval and flushing on a
// dual size/time trigger.
//
// Adapted from internal/conv.Tailer's tailLoop (gastownhall/tmux-adapter):
// the same ticker-driven select loop and fsnotify-as-wakeup shape, but
// built around spec.md §4.4's explicit poll/filter/buffer/flush algorithm
// instead of a push channel of parsed conversation events.
package pipeline

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/flicker-logs/flicker/internal/config"
	"github.com/flicker-logs/flicker/internal/destination"
	"github.com/flicker-logs/flicker/internal/entry"
	"github.com/flicker-logs/flicker/internal/filter"
	"github.com/flicker-logs/flicker/internal/tailer"
)

// sendTimeout bounds how long a single flush may block a pipeline. It is
// implementation-chosen, as spec.md §5 requires one to exist without
// mandating a value; 30s comfortably covers a slow HTTP/ES round trip
// without letting a hung destination pin a pipeline indefinitely.
const sendTimeout = 30 * time.Second

// Pipeline owns one tailer, filter, buffer and destination for one
// configured log file, and runs its poll/flush loop until ctx is
// cancelled.
type Pipeline struct {
	path       string
	pollEvery  time.Duration
	bufferSize int
	flushEvery time.Duration

	tail *tailer.Tailer
	filt *filter.Filter
	dest destination.Destination

	buffer    []entry.LogEntry
	lastFlush time.Time
}

// New constructs a pipeline from one log_files entry. Construction
// failures (bad filter regex, bad destination config) are returned so the
// supervisor can skip this one pipeline without affecting others.
func New(cfg config.LogFileConfig) (*Pipeline, error) {
	f, err := filter.New(cfg.MatchOn, cfg.ExcludeOn)
	if err != nil {
		return nil, err
	}

	dest, err := destination.New(cfg.Destination)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		path:       cfg.Path,
		pollEvery:  time.Duration(cfg.PollingFrequencyMs) * time.Millisecond,
		bufferSize: cfg.BufferSize,
		flushEvery: time.Duration(cfg.FlushIntervalMs) * time.Millisecond,
		tail:       tailer.New(),
		filt:       f,
		dest:       dest,
	}, nil
}

// Run polls and flushes until ctx is cancelled. It never returns an error:
// every failure mode short of a cancelled context is logged and absorbed,
// per spec.md §4.4 step 2/5 and §7's no-retry, skip-and-continue policy.
func (p *Pipeline) Run(ctx context.Context) {
	defer p.tail.Close()

	log.Printf("pipeline[%s]: starting, poll=%s buffer_size=%d flush_interval=%s filter=%s destination=%T",
		p.path, p.pollEvery, p.bufferSize, p.flushEvery, filterMode(p.filt), p.dest)

	p.lastFlush = time.Now()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	watcher, watchErr := fsnotify.NewWatcher()
	if watchErr != nil {
		log.Printf("pipeline[%s]: directory watch unavailable (%v), falling back to ticker-only polling", p.path, watchErr)
		watcher = nil
	} else {
		if err := watcher.Add(filepath.Dir(p.path)); err != nil {
			log.Printf("pipeline[%s]: could not watch directory (%v), falling back to ticker-only polling", p.path, err)
			_ = watcher.Close()
			watcher = nil
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	// The first tick fires immediately (spec.md §4.4 step 1).
	p.tick(ctx)

	for {
		var watchEvents <-chan fsnotify.Event
		var watchErrs <-chan error
		if watcher != nil {
			watchEvents = watcher.Events
			watchErrs = watcher.Errors
		}

		select {
		case <-ctx.Done():
			log.Printf("pipeline[%s]: stopping", p.path)
			return
		case <-ticker.C:
			p.tick(ctx)
		case event, ok := <-watchEvents:
			if !ok {
				continue
			}
			// An out-of-cycle poll is purely a latency optimization: it can
			// never observe anything the next ticker tick wouldn't have.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				p.tick(ctx)
			}
		case _, ok := <-watchErrs:
			if !ok {
				continue
			}
		}
	}
}

// tick runs one iteration of steps 2-5 of spec.md §4.4.
func (p *Pipeline) tick(ctx context.Context) {
	lines, err := p.tail.Poll(p.path)
	if err != nil {
		log.Printf("pipeline[%s]: poll error: %v", p.path, err)
		return
	}

	for _, line := range lines {
		if !p.filt.ShouldShip(line) {
			continue
		}
		p.buffer = append(p.buffer, entry.LogEntry{Path: p.path, Line: line})
	}

	bufferFull := len(p.buffer) >= p.bufferSize
	timeElapsed := time.Since(p.lastFlush) >= p.flushEvery

	if bufferFull || (timeElapsed && len(p.buffer) > 0) {
		p.flush(ctx)
	}
}

// flush sends a copy of the buffer and always clears it afterward,
// regardless of outcome — spec.md §4.4 step 5's at-most-once semantics.
func (p *Pipeline) flush(ctx context.Context) {
	batch := make([]entry.LogEntry, len(p.buffer))
	copy(batch, p.buffer)

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := p.dest.SendBatch(sendCtx, batch); err != nil {
		log.Printf("pipeline[%s]: flush of %d entries failed, dropping batch: %v", p.path, len(batch), err)
	}

	p.buffer = p.buffer[:0]
	p.lastFlush = time.Now()
}

func filterMode(f *filter.Filter) string {
	if f.IsPassthrough() {
		return "passthrough"
	}
	return "filtered"
}
