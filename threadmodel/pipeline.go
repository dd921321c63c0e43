package threadmodel

import (
	"context"

	"github.com/gogpu/atlaspipe/geom"
	"github.com/gogpu/atlaspipe/imagepipe"
	"github.com/gogpu/atlaspipe/pixelfmt"
)

// DecodeCallback receives a completed decode's result or error. It is
// invoked exactly once per request, and only from DispatchCompletions, so
// it always runs on whichever goroutine the caller treats as the UI thread
// — never on the concurrent pool (§8 invariant 10).
type DecodeCallback func(result *imagepipe.DecompressResult, err error)

type completedDecode struct {
	result   *imagepipe.DecompressResult
	err      error
	callback DecodeCallback
}

// DecodePipeline drives imagepipe.Decompress off a caller's own goroutine:
// requests run on a bounded Pool, and their callbacks are queued for later
// delivery on whichever goroutine calls DispatchCompletions (§5 "final
// Image handle is posted back to the UI thread").
type DecodePipeline struct {
	pool        *Pool
	completions chan completedDecode
}

// NewDecodePipeline creates a DecodePipeline with workers concurrent decode
// slots and a completion queue of the given depth. ctx bounds the pool's
// lifetime; cancelling it stops new decodes from starting.
func NewDecodePipeline(ctx context.Context, workers, completionQueueDepth int) *DecodePipeline {
	if completionQueueDepth <= 0 {
		completionQueueDepth = 1
	}
	return &DecodePipeline{
		pool:        NewPool(ctx, workers),
		completions: make(chan completedDecode, completionQueueDepth),
	}
}

// RequestDecode posts a decode to the pool. The descriptor is expected to
// stay alive until callback fires; callers that reference-count their
// descriptors increment before calling RequestDecode and release inside
// callback, mirroring §5's "pool increments and releases on the UI thread
// after the result callback" hand-off.
func (p *DecodePipeline) RequestDecode(
	descriptor imagepipe.Descriptor,
	targetSize, maxTextureSize geom.Size,
	supportsWideGamut bool,
	gamutThreshold float64,
	allocator pixelfmt.Allocator,
	callback DecodeCallback,
) {
	p.pool.Go(func(ctx context.Context) error {
		result, err := imagepipe.Decompress(descriptor, targetSize, maxTextureSize, supportsWideGamut, gamutThreshold, allocator)
		p.completions <- completedDecode{result: result, err: err, callback: callback}
		return err
	})
}

// DispatchCompletions drains every completion currently queued, invoking
// each callback exactly once, and returns as soon as the queue is empty.
// Callers run this from their UI-thread event loop.
func (p *DecodePipeline) DispatchCompletions() {
	for {
		select {
		case c := <-p.completions:
			c.callback(c.result, c.err)
		default:
			return
		}
	}
}

// Wait blocks until every request submitted so far has completed (decoded
// and queued for dispatch), returning the first decode error encountered,
// if any. It does not wait for DispatchCompletions to run.
func (p *DecodePipeline) Wait() error {
	return p.pool.Wait()
}
