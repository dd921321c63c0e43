package threadmodel

import "github.com/gogpu/atlaspipe/pixelfmt"

// UploadJob is one unit of GPU resource work to run on the IO thread: build
// a texture (or anything else that needs the GPU context) and report the
// result.
type UploadJob struct {
	Run    func() (pixelfmt.Texture, error)
	Result chan<- UploadResult
}

// UploadResult is what an IOThread reports back for a submitted UploadJob.
type UploadResult struct {
	Texture pixelfmt.Texture
	Err     error
}

// IOThread is a single-goroutine actor owning the GPU context handle (§5
// "IO thread"). Every job it runs executes on the same goroutine, so two
// jobs submitted concurrently from the worker pool never race on the same
// pixelfmt.Context or pixelfmt.Allocator.
type IOThread struct {
	jobs chan UploadJob
	done chan struct{}
}

// NewIOThread starts an IOThread with a job queue of the given buffer
// depth and begins serving jobs immediately.
func NewIOThread(buffer int) *IOThread {
	if buffer < 0 {
		buffer = 0
	}
	t := &IOThread{
		jobs: make(chan UploadJob, buffer),
		done: make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *IOThread) run() {
	for {
		select {
		case job, ok := <-t.jobs:
			if !ok {
				return
			}
			tex, err := job.Run()
			job.Result <- UploadResult{Texture: tex, Err: err}
		case <-t.done:
			return
		}
	}
}

// Submit enqueues run to execute on the IO thread's goroutine and returns a
// channel that receives exactly one UploadResult once it completes.
func (t *IOThread) Submit(run func() (pixelfmt.Texture, error)) <-chan UploadResult {
	result := make(chan UploadResult, 1)
	t.jobs <- UploadJob{Run: run, Result: result}
	return result
}

// Close stops the IO thread's goroutine. Jobs already enqueued but not yet
// started are dropped; Close does not wait for in-flight work.
func (t *IOThread) Close() {
	close(t.done)
}
