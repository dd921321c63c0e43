// Package threadmodel realizes the three-thread concurrency model of §5 in
// Go: a bounded worker pool for CPU-bound decode/resample work, a
// single-goroutine actor that serializes GPU resource creation, and a
// channel-based handoff back to whichever goroutine is acting as the UI
// thread. Nothing here is specific to glyphs or images; atlas.Builder and
// imagepipe.Decompress are synchronous and are driven through this package
// by a caller that wants them off its own goroutine.
package threadmodel

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool is the bounded concurrent worker pool named in §5 ("Concurrent
// pool"). It bounds in-flight work to its configured width regardless of
// how many tasks are submitted, using a semaphore the way the teacher's
// retrieved peers (spaghettifunk/anima) bound their own fan-out.
type Pool struct {
	sem   *semaphore.Weighted
	group *errgroup.Group
	ctx   context.Context
}

// NewPool creates a Pool that runs at most width tasks concurrently, all
// tied to ctx: cancelling ctx (or one task returning an error, since the
// group is built with errgroup.WithContext) stops further tasks from
// starting. width is normally resolved from
// pipeconfig.PipelineConfig.DecodeWorkers.
func NewPool(ctx context.Context, width int) *Pool {
	if width <= 0 {
		width = 1
	}
	group, groupCtx := errgroup.WithContext(ctx)
	return &Pool{
		sem:   semaphore.NewWeighted(int64(width)),
		group: group,
		ctx:   groupCtx,
	}
}

// Go schedules fn to run once a worker slot is free. fn receives the pool's
// group context, which is cancelled as soon as any scheduled task returns a
// non-nil error.
func (p *Pool) Go(fn func(ctx context.Context) error) {
	p.group.Go(func() error {
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return err
		}
		defer p.sem.Release(1)
		return fn(p.ctx)
	})
}

// Wait blocks until every scheduled task has returned, and reports the
// first non-nil error any of them returned.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
