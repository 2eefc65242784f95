package threadpool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobQueue_FIFO(t *testing.T) {
	q := newJobQueue()

	var order []int
	for i := range 5 {
		require.True(t, q.push(envelope{run: func() { order = append(order, i) }}))
	}
	assert.Equal(t, 5, q.len())

	for range 5 {
		env, ok := q.popBlocking()
		require.True(t, ok)
		env.run()
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order, "single consumer sees offer order")
	assert.Equal(t, 0, q.len())
}

func TestJobQueue_PopBlocksUntilPush(t *testing.T) {
	q := newJobQueue()

	popped := make(chan struct{})
	go func() {
		env, ok := q.popBlocking()
		assert.True(t, ok)
		env.run()
		close(popped)
	}()

	select {
	case <-popped:
		t.Fatal("pop returned without an envelope")
	case <-time.After(20 * time.Millisecond):
	}

	ran := false
	require.True(t, q.push(envelope{run: func() { ran = true }}))

	select {
	case <-popped:
	case <-time.After(time.Second):
		t.Fatal("push did not wake the waiting consumer")
	}
	assert.True(t, ran)
}

func TestJobQueue_CloseWakesWaiters(t *testing.T) {
	q := newJobQueue()

	const waiters = 3
	var wg sync.WaitGroup
	for range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := q.popBlocking()
			assert.False(t, ok, "woken waiter must see the stop outcome")
		}()
	}

	time.Sleep(10 * time.Millisecond) // let the waiters park
	assert.Empty(t, q.close())
	wg.Wait()
}

func TestJobQueue_CloseDrainsPending(t *testing.T) {
	q := newJobQueue()
	for range 4 {
		require.True(t, q.push(envelope{}))
	}

	pending := q.close()
	assert.Len(t, pending, 4)
	assert.Equal(t, 0, q.len())

	// after close the queue hands out nothing
	_, ok := q.popBlocking()
	assert.False(t, ok)
}

func TestJobQueue_PushAfterClose(t *testing.T) {
	q := newJobQueue()
	q.close()
	assert.False(t, q.push(envelope{}))
}

func TestJobQueue_DoubleClose(t *testing.T) {
	q := newJobQueue()
	require.True(t, q.push(envelope{}))
	assert.Len(t, q.close(), 1)
	assert.Empty(t, q.close(), "second close has nothing left to drain")
}
