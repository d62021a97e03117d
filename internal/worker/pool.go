package worker

import (
	"context"
	"sort"
	"sync"
)

// Task is a unit of verification work. Tasks carry their position in
// the submitted batch so results can be reassembled in claim order
// rather than completion order.
type Task interface {
	Run(ctx context.Context) Outcome
}

// Outcome is the result of one task execution.
type Outcome interface {
	// Index returns the task's position in the submitted batch.
	Index() int
	// Err returns the task's failure, or nil.
	Err() error
}

// Pool runs verification tasks on a fixed number of workers. A
// collector goroutine drains outcomes as they complete, so a batch may
// be arbitrarily larger than the channel buffers without Submit or the
// workers ever blocking on a full outcome channel.
type Pool struct {
	workers   int
	tasks     chan Task
	outcomes  chan Outcome
	collected []Outcome
	done      chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool with the given number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:  workers,
		tasks:    make(chan Task, workers*2),
		outcomes: make(chan Outcome, workers*2),
		done:     make(chan struct{}),
	}
}

// Start launches the workers and the outcome collector. The pool
// context derives from ctx: cancelling it aborts in-flight tasks and
// keeps queued ones from starting.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	go func() {
		for outcome := range p.outcomes {
			p.collected = append(p.collected, outcome)
		}
		close(p.done)
	}()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			// The collector always drains, so this send cannot block.
			p.outcomes <- task.Run(p.ctx)
		}
	}
}

// Submit queues a task for execution
func (p *Pool) Submit(task Task) {
	select {
	case <-p.ctx.Done():
		return
	case p.tasks <- task:
	}
}

// Wait blocks until all submitted tasks finish and returns their
// outcomes sorted by submission index. A failed task never drops or
// reorders the outcomes of the others. Tasks cancelled before running
// produce no outcome; callers reassembling a batch account for the gap.
func (p *Pool) Wait() []Outcome {
	close(p.tasks)
	p.wg.Wait()
	p.closeOutcomes()
	<-p.done

	sort.Slice(p.collected, func(i, j int) bool {
		return p.collected[i].Index() < p.collected[j].Index()
	})

	return p.collected
}

// Shutdown stops the pool immediately
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeOutcomes()
	<-p.done
}

func (p *Pool) closeOutcomes() {
	p.closeOnce.Do(func() {
		close(p.outcomes)
	})
}
