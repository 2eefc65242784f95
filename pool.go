package threadpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LOSEARDES77/threadpool/metrics"
)

// Job is a one-shot unit of work producing a value of type T. It is invoked
// exactly once, by a single worker, with no locking imposed by the pool; any
// shared state it touches is the caller's concern.
type Job[T any] func() T

// Pool is a fixed-size worker pool. Workers are spawned at construction and
// live until Close; they all consume from one shared unbounded FIFO queue.
// Submission never blocks, results come back through per-job receivers.
type Pool struct {
	size         int // number of workers, resolved at construction
	queue        *jobQueue
	log          *slog.Logger
	panicHandler func(v any) // optional, called with recovered panic values

	metrics *metrics.Value

	eg        *errgroup.Group
	closeOnce sync.Once
	closeErr  error
}

// New creates a pool with the requested number of workers and starts them.
// Size 0 means "use all available hardware parallelism" and resolves to
// runtime.NumCPU, falling back to a single worker if detection reports
// nonsense. A negative size is a configuration error.
func New(size int, opts ...Option) (*Pool, error) {
	if size < 0 {
		return nil, fmt.Errorf("pool size must be non-negative, got %d", size)
	}
	if size == 0 {
		size = runtime.NumCPU()
		if size < 1 {
			size = 1
		}
	}

	p := &Pool{
		size:    size,
		queue:   newJobQueue(),
		log:     slog.New(slog.DiscardHandler),
		metrics: metrics.New(size),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.eg = &errgroup.Group{}
	for id := range size {
		p.eg.Go(p.worker(id))
	}
	p.log.Debug("pool started", "workers", size)
	return p, nil
}

// Size returns the resolved number of workers.
func (p *Pool) Size() int { return p.size }

// Execute submits a job and returns the receiver for its result immediately;
// the enqueue never blocks. The caller decides when, and whether, to block on
// the receiver. A job submitted after Close is never enqueued and its
// receiver observes ErrDisconnected right away.
//
// This is a package function rather than a method because Go methods can't
// introduce type parameters; the pool itself stays untyped so jobs with
// different result types can share one pool.
func Execute[T any](p *Pool, job Job[T]) *Receiver[T] {
	env, rcv := makeEnvelope(job)
	if !p.queue.push(env) {
		p.metrics.IncDropped()
		env.abandon(ErrDisconnected)
	}
	return rcv
}

// worker returns the loop for one worker goroutine: blocking dequeue, execute,
// repeat until the queue reports shutdown.
func (p *Pool) worker(id int) func() error {
	return func() error {
		p.log.Debug("worker started", "worker", id)
		lastActivity := time.Now()
		for {
			env, ok := p.queue.popBlocking()
			if !ok {
				p.log.Debug("worker stopped", "worker", id)
				return nil
			}
			p.metrics.AddWaitTime(id, time.Since(lastActivity))

			endTmr := p.metrics.StartTimer(id)
			if p.runEnvelope(id, env) {
				p.metrics.IncProcessed(id)
			} else {
				p.metrics.IncPanics(id)
			}
			endTmr()

			lastActivity = time.Now()
		}
	}
}

// runEnvelope executes one envelope with the panic boundary around it, so a
// failing job can't take its worker down. Reports whether the job completed
// without panicking; on panic the receiver observes a *PanicError instead of
// a value.
func (p *Pool) runEnvelope(id int, env envelope) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("job panicked", "worker", id, "panic", r)
			if p.panicHandler != nil {
				p.panicHandler(r)
			}
			env.abandon(&PanicError{Value: r})
			ok = false
		}
	}()
	env.run()
	return true
}

// Close shuts the pool down: no new jobs are accepted, envelopes still queued
// are discarded (their receivers observe ErrDisconnected), and the call blocks
// until every worker has exited. Jobs already executing run to completion.
// Close is idempotent, repeated or concurrent calls return the first call's
// result. The context bounds only the wait for workers; on ctx expiry workers
// keep finishing their current jobs in the background.
func (p *Pool) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		pending := p.queue.close()
		p.log.Debug("closing pool", "workers", p.size, "discarded", len(pending))
		for _, env := range pending {
			p.metrics.IncDropped()
			env.abandon(ErrDisconnected)
		}

		done := make(chan error, 1)
		go func() { done <- p.eg.Wait() }()
		select {
		case err := <-done:
			p.closeErr = err
			p.log.Debug("pool closed")
		case <-ctx.Done():
			p.closeErr = ctx.Err()
		}
	})
	return p.closeErr
}

// Metrics returns combined metrics from all workers.
func (p *Pool) Metrics() *metrics.Value {
	return p.metrics
}
