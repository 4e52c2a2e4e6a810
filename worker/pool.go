// Package worker implements a bounded FIFO task pool shared by the sharded
// cache's *Async methods and the filesystem coordinator's *Async
// operations (background loops and *Batch operations run on their own
// goroutines). It generalizes the
// task.Group pattern (queue-then-GoRun-then-Wait, cancellation via
// golang.org/x/sync/errgroup) to a long-lived pool that keeps accepting work
// after it starts, and that never lets a task's panic escape the pool.
package worker

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"go.cachefs.dev/core/fserr"
)

// Task is a unit of work submitted to the Pool. It should periodically check
// ctx for cancellation if it runs long; the Pool itself does not interrupt
// a running Task.
type Task func(ctx context.Context) (interface{}, error)

// Pool is a bounded set of worker goroutines draining a FIFO queue of
// submitted Tasks. It is safe for concurrent use.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []queuedTask
	paused   bool
	stopped  bool
	inflight int
	workers  int

	wg sync.WaitGroup
}

type queuedTask struct {
	fn        Task
	resolveFn func(interface{}, error)
}

// NewPool starts a Pool with the given number of worker goroutines. The
// workers run until Stop is called or ctx is cancelled.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	var p = &Pool{ctx: ctx, cancel: cancel, workers: workers}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.loop()
	}
	return p
}

// Submit enqueues fn for execution and invokes resolve (if non-nil) with its
// result once a worker runs it. Submit never blocks on the task itself
// running; it only blocks briefly to append to the queue.
func (p *Pool) Submit(fn Task, resolve func(interface{}, error)) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		if resolve != nil {
			resolve(nil, fserr.New(fserr.Internal, "worker.Submit", "pool is stopped"))
		}
		return
	}
	p.queue = append(p.queue, queuedTask{fn: fn, resolveFn: resolve})
	p.inflight++
	p.mu.Unlock()
	p.cond.Signal()
}

// Pause prevents workers from dequeuing new tasks; tasks already running
// continue to completion. Pause is idempotent.
func (p *Pool) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume wakes workers paused by Pause. Resume is idempotent.
func (p *Pool) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.cond.Broadcast()
}

// WaitForAll blocks until the queue is empty and no task is running.
func (p *Pool) WaitForAll() {
	p.mu.Lock()
	for p.inflight > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// Stop signals all workers to exit after draining no further tasks, and
// joins them. Tasks still queued at the time of Stop are discarded; their
// resolve callbacks (if any) are invoked with a shutdown error.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	var discarded = p.queue
	p.queue = nil
	p.mu.Unlock()

	p.cancel()
	p.cond.Broadcast()
	p.wg.Wait()

	for _, t := range discarded {
		if t.resolveFn != nil {
			t.resolveFn(nil, fserr.New(fserr.Internal, "worker.Stop", "pool shut down with task still queued"))
		}
	}
}

func (p *Pool) loop() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for !p.stopped && (p.paused || len(p.queue) == 0) {
			if p.ctx.Err() != nil {
				p.mu.Unlock()
				return
			}
			p.cond.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			return
		}
		var t = p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		var value, err = p.run(t.fn)
		if t.resolveFn != nil {
			t.resolveFn(value, err)
		}

		p.mu.Lock()
		p.inflight--
		if p.inflight == 0 {
			p.cond.Broadcast()
		}
		p.mu.Unlock()
	}
}

// run executes fn, recovering a panic into an fserr.Internal error so a
// misbehaving task can never bring down the pool.
func (p *Pool) run(fn Task) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("recovered panic in worker task")
			err = fserr.New(fserr.Internal, "worker.Pool", "task panicked")
		}
	}()
	return fn(p.ctx)
}
