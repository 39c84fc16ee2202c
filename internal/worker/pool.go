package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Job is a unit of work run by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produced
type Result interface {
	GetError() error
}

type task struct {
	index int
	job   Job
}

type outcome struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed number of goroutines. Results are collected
// as they arrive, so Submit never waits on an unread result, and are
// returned in submission order.
type Pool struct {
	workers    int
	jobQueue   chan task
	results    chan outcome
	collected  map[int]Result
	collectors sync.WaitGroup
	submitted  atomic.Int64
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops the workers
// after their current job.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan task, workers*2),
		results:    make(chan outcome, workers*2),
		collected:  make(map[int]Result),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers. It must be called before Wait.
func (p *Pool) Start() {
	p.collectors.Add(1)
	go p.collect()
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) collect() {
	defer p.collectors.Done()
	for out := range p.results {
		p.collected[out.index] = out.result
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.jobQueue:
			if !ok {
				return
			}
			out := outcome{index: t.index, result: t.job.Execute(p.ctx)}
			select {
			case p.results <- out:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It reports false when the pool is shut down and the
// job was dropped.
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.ctx.Done():
		return false
	default:
	}

	t := task{index: int(p.submitted.Add(1) - 1), job: job}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- t:
		return true
	}
}

// Wait closes the queue, waits for the workers and returns one entry per
// accepted job in submission order. Jobs abandoned by a cancellation leave a
// nil entry.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	p.collectors.Wait()
	p.cancelFunc()

	results := make([]Result, p.submitted.Load())
	for i := range results {
		results[i] = p.collected[i]
	}
	return results
}

// Shutdown stops the pool without waiting for queued jobs.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
