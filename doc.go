// Package threadpool provides a fixed-size worker pool with per-job result
// delivery. A pool owns a set of long-lived workers consuming from one shared
// unbounded FIFO queue; each submission returns a single-use receiver the
// caller can block on whenever it wants the result.
//
// # Basic Usage
//
// Create a pool, submit closures, read results:
//
//	p, err := threadpool.New(4)
//	if err != nil {
//	    return err
//	}
//	defer p.Close(context.Background())
//
//	rcv := threadpool.Execute(p, func() int { return 1 + 3 })
//	v, err := rcv.Recv()
//
// Pool size 0 resolves to the number of CPUs. Submission never blocks, and
// jobs with different result types can share the same pool since Execute is
// generic over the job's result type.
//
// # Failure Model
//
// Only two failure signals exist:
//
//   - New returns a configuration error for a negative size
//   - Recv returns an error instead of a value: a *PanicError carrying the
//     recovered value if the job panicked, or ErrDisconnected if the job was
//     discarded before running (pool closed with the job still queued, or
//     submission after Close)
//
// A panicking job never takes its worker down; the worker recovers, reports
// through the receiver and keeps serving the queue.
//
// # Shutdown
//
// Close rejects further submissions, discards jobs still queued (their
// receivers observe ErrDisconnected) and blocks until every worker has
// exited. Jobs already executing finish first. Close is safe to call more
// than once.
//
// # Ordering
//
// Jobs become eligible for execution in submission order, but with several
// workers racing on the queue the completion order is unspecified; don't
// assume FIFO completion.
//
// # Metrics
//
// The pool collects per-worker counters and timings, available via
// Pool.Metrics:
//
//	stats := p.Metrics().GetStats()
//	fmt.Printf("processed: %d, panics: %d", stats.Processed, stats.Panics)
//
// # Middleware
//
// The middleware subpackage decorates jobs before submission, e.g. retry on
// panic or rate limiting:
//
//	job := middleware.Wrap(myJob, middleware.Retry[int](3, time.Millisecond))
//	rcv := threadpool.Execute(p, job)
package threadpool
