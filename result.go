package threadpool

import "context"

// result is what travels through a receiver's channel: either a value or the
// reason there won't be one.
type result[T any] struct {
	val T
	err error
}

// Receiver is the consuming half of a single-use result handoff, returned by
// Execute. Exactly one result is ever produced per submission; after it has
// been consumed, further Recv calls report ErrDisconnected.
type Receiver[T any] struct {
	ch chan result[T]
}

// Recv blocks until the job's result is available. It returns the job's value,
// or a *PanicError if the job panicked, or ErrDisconnected if the job was
// dropped before it could run.
func (r *Receiver[T]) Recv() (T, error) {
	res, ok := <-r.ch
	if !ok {
		var zero T
		return zero, ErrDisconnected
	}
	return res.val, res.err
}

// RecvCtx is like Recv but gives up when ctx is done. Giving up does not
// cancel the job; a later Recv can still pick up its result.
func (r *Receiver[T]) RecvCtx(ctx context.Context) (T, error) {
	select {
	case res, ok := <-r.ch:
		if !ok {
			var zero T
			return zero, ErrDisconnected
		}
		return res.val, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// envelope is a type-erased pending job. run executes the job and delivers
// its value; abandon delivers a failure instead of a value. Exactly one
// delivery happens per envelope: run and abandon both send a single result
// and close the channel, and the pool guarantees an envelope is either run
// by one worker or abandoned once.
type envelope struct {
	run     func()
	abandon func(err error)
}

// makeEnvelope erases the job's result type behind a pair of no-arg closures,
// keeping the queue and workers generic-free. The job closure captures the
// producing side of the channel and sends its own output, so the worker never
// touches T.
func makeEnvelope[T any](job Job[T]) (envelope, *Receiver[T]) {
	ch := make(chan result[T], 1) // buffered so delivery never blocks a worker
	env := envelope{
		run: func() {
			ch <- result[T]{val: job()}
			close(ch)
		},
		abandon: func(err error) {
			ch <- result[T]{err: err}
			close(ch)
		},
	}
	return env, &Receiver[T]{ch: ch}
}
