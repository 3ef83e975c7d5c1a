package alerting

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog/log"
)

// Runner executes detached best-effort tasks. Tasks run on a context that is
// never cancelled by the submitting request; errors and panics are logged
// and dropped.
type Runner struct {
	base context.Context
	wg   sync.WaitGroup
}

// NewRunner creates a runner whose tasks inherit values (not cancellation) from base.
func NewRunner(base context.Context) *Runner {
	if base == nil {
		base = context.Background()
	}
	return &Runner{base: context.WithoutCancel(base)}
}

// Go starts task in its own goroutine and returns immediately.
func (r *Runner) Go(name string, task func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				log.Error().
					Str("task", name).
					Str("panic", fmt.Sprint(p)).
					Str("stack", string(debug.Stack())).
					Msg("alerting: background task panicked")
			}
		}()

		if err := task(r.base); err != nil {
			log.Warn().Err(err).Str("task", name).Msg("alerting: background task failed")
		}
	}()
}

// Wait blocks until all submitted tasks finish or ctx is done.
// Returns ctx.Err() when tasks were still running.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
