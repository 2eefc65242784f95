package threadpool

import "sync"

// jobQueue is the unbounded FIFO of pending envelopes shared by all workers.
// It is the only structure in the pool mutated from multiple goroutines, so
// it's guarded by a single mutex with a condition variable for the blocking
// dequeue. A channel is deliberately not used here: channels are bounded, and
// submission must never block the caller.
type jobQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []envelope
	closed bool
}

func newJobQueue() *jobQueue {
	q := &jobQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends an envelope at the tail and wakes one waiting worker.
// It never blocks. Returns false if the queue is already closed, in which
// case the envelope was not enqueued and the caller owns its disposal.
func (q *jobQueue) push(e envelope) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, e)
	q.cond.Signal()
	return true
}

// popBlocking blocks until an envelope is available or the queue is closed.
// The second return value is false when the worker should stop. Shutdown wins
// over pending items: once the queue is closed no envelope is handed out,
// close drains the leftovers for discard.
func (q *jobQueue) popBlocking() (envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return envelope{}, false
	}
	e := q.items[0]
	q.items = q.items[1:]
	return e, true
}

// close marks the queue closed, wakes every waiting worker and returns the
// envelopes that were still pending so the pool can discard them.
func (q *jobQueue) close() []envelope {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	pending := q.items
	q.items = nil
	q.cond.Broadcast()
	return pending
}

// len reports the number of pending envelopes.
func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
