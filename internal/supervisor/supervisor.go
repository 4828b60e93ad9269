// Package supervisor instantiates and runs one pipeline per configured log
// file, isolating construction and runtime failures to the pipeline they
// occur in.
package supervisor

import (
	"context"
	"log"
	"sync"

	"github.com/flicker-logs/flicker/internal/config"
	"github.com/flicker-logs/flicker/internal/pipeline"
)

// Supervisor owns the set of running pipelines for one process lifetime.
type Supervisor struct {
	pipelines []*pipeline.Pipeline
}

// New constructs one pipeline per entry in cfg.LogFiles. An entry whose
// filter or destination fails to construct is logged and skipped; it does
// not prevent the remaining entries from starting (spec.md §4.5).
func New(cfg *config.Config) *Supervisor {
	s := &Supervisor{}

	log.Printf("supervisor: %d log file(s) configured", len(cfg.LogFiles))

	for _, lf := range cfg.LogFiles {
		p, err := pipeline.New(lf)
		if err != nil {
			log.Printf("supervisor: skipping pipeline for %s: %v", lf.Path, err)
			continue
		}
		s.pipelines = append(s.pipelines, p)
	}

	return s
}

// Run starts every constructed pipeline and blocks until every pipeline has
// returned, which in normal operation is once ctx is cancelled. With no
// pipelines it returns immediately.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, p := range s.pipelines {
		wg.Add(1)
		go func(p *pipeline.Pipeline) {
			defer wg.Done()
			runIsolated(ctx, p)
		}(p)
	}
	wg.Wait()
}

// runIsolated runs one pipeline and recovers a panic in it so that one
// pipeline's failure can never take down the others or the process
// (spec.md §4.5: "a panic or unrecoverable error in one must not terminate
// others").
func runIsolated(ctx context.Context, p *pipeline.Pipeline) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("supervisor: pipeline panicked and was stopped: %v", r)
		}
	}()
	p.Run(ctx)
}
