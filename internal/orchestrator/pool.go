package orchestrator

import (
	"context"
	"sync"
)

// WorkerPool bounds how many blocking port calls run at once across all
// requests. Submission queues when every slot is busy; nothing is ever
// rejected. The request goroutine stays parked on the done channel, so a
// slow external call never stalls an unrelated request's progress.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup

	closeOnce sync.Once
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	p := &WorkerPool{
		tasks: make(chan func()),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit runs fn on a pool worker and waits for it to finish. It returns
// early with the context error if ctx dies while the task is still queued;
// once a worker picks the task up, fn itself is responsible for honoring
// ctx.
func (p *WorkerPool) Submit(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}

	select {
	case p.tasks <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	}

	<-done
	return nil
}

// Close stops accepting tasks and waits for in-flight ones to drain.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
		p.wg.Wait()
	})
}
