package server

import (
	"context"
	"sync"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/internalerr"
)

// Job is a unit of work submitted to the workerPool. Errors are handled by
// the job itself (typically by writing an error response), so the pool
// discards the return value.
type Job func(ctx context.Context) error

// workerPool runs jobs on a fixed number of goroutines. Each connection
// gets its own pool so a slow client cannot starve the others.
type workerPool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	closeMu sync.Mutex
	closed  bool
}

func newWorkerPool(workers, queue int) *workerPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &workerPool{
		jobs:    make(chan Job, queue),
		workers: workers,
	}
}

// start begins the worker goroutines; they drain jobs until ctx is done or
// close is called.
func (p *workerPool) start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					_ = job(ctx)
				}
			}
		}()
	}
}

// submit enqueues a job, blocking when the queue is full.
func (p *workerPool) submit(job Job) error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return internalerr.ErrPoolClosed
	}
	p.jobs <- job
	return nil
}

// close stops accepting jobs and waits for in-flight ones.
func (p *workerPool) close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.closeMu.Unlock()
	p.wg.Wait()
}
