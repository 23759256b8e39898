package thumbnail

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dmitrijs2005/premrelay/internal/logging"
)

// Pool runs thumbnail tasks in the background with bounded concurrency, so a
// burst of video downloads cannot saturate the host's CPU and IO with ffmpeg
// processes.
type Pool struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	logger logging.Logger
}

func NewPool(workers int, logger logging.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		sem:    semaphore.NewWeighted(int64(workers)),
		logger: logger.With("module", "thumbnail_pool"),
	}
}

// Submit schedules task onto the pool and returns immediately. The task's
// panics and errors stay inside the pool's boundary; nothing propagates to
// the caller.
func (p *Pool) Submit(ctx context.Context, task func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			p.logger.Warn(ctx, "thumbnail task dropped", "error", err.Error())
			return
		}
		defer p.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				p.logger.Error(ctx, "thumbnail task panicked", "panic", r)
			}
		}()

		task(ctx)
	}()
}

// Wait blocks until every submitted task has finished. Used by the graceful
// shutdown path to drain running generations.
func (p *Pool) Wait() {
	p.wg.Wait()
}
