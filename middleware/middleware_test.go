package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/LOSEARDES77/threadpool"
)

func TestRetry(t *testing.T) {
	t.Run("retries on panic until success", func(t *testing.T) {
		p, err := threadpool.New(1)
		require.NoError(t, err)
		defer p.Close(context.Background())

		var attempts atomic.Int32
		job := Wrap(func() string {
			if attempts.Add(1) <= 2 {
				panic("temporary failure")
			}
			return "ok"
		}, Retry[string](3, time.Millisecond))

		v, err := threadpool.Execute(p, job).Recv()
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.Equal(t, int32(3), attempts.Load(), "should retry until success")
	})

	t.Run("fails after max attempts", func(t *testing.T) {
		p, err := threadpool.New(1)
		require.NoError(t, err)
		defer p.Close(context.Background())

		job := Wrap(func() string {
			panic("persistent failure")
		}, Retry[string](2, time.Millisecond))

		_, err = threadpool.Execute(p, job).Recv()
		require.Error(t, err)

		var pErr *threadpool.PanicError
		require.ErrorAs(t, err, &pErr)
		assert.Contains(t, err.Error(), "failed after 2 attempts")
		assert.Contains(t, err.Error(), "persistent failure")
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("throttles job starts", func(t *testing.T) {
		p, err := threadpool.New(1)
		require.NoError(t, err)
		defer p.Close(context.Background())

		// burst of 1, one token every 20ms: three jobs need at least ~40ms
		limiter := rate.NewLimiter(rate.Every(20*time.Millisecond), 1)
		mw := RateLimit[int](limiter)

		st := time.Now()
		rcvs := make([]*threadpool.Receiver[int], 3)
		for i := range rcvs {
			rcvs[i] = threadpool.Execute(p, Wrap(func() int { return i }, mw))
		}
		for _, rcv := range rcvs {
			_, err := rcv.Recv()
			require.NoError(t, err)
		}
		assert.GreaterOrEqual(t, time.Since(st), 30*time.Millisecond)
	})

	t.Run("nil limiter means no limit", func(t *testing.T) {
		p, err := threadpool.New(1)
		require.NoError(t, err)
		defer p.Close(context.Background())

		v, err := threadpool.Execute(p, Wrap(func() int { return 1 }, RateLimit[int](nil))).Recv()
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})
}

func TestTimed(t *testing.T) {
	p, err := threadpool.New(1)
	require.NoError(t, err)
	defer p.Close(context.Background())

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	job := Wrap(func() int {
		time.Sleep(time.Millisecond)
		return 5
	}, Timed[int](l, "slow-add"))

	v, err := threadpool.Execute(p, job).Recv()
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	out := buf.String()
	assert.Contains(t, out, "job finished")
	assert.Contains(t, out, "slow-add")
	assert.Contains(t, out, "elapsed")
}

func TestWrap_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware[int] {
		return func(next threadpool.Job[int]) threadpool.Job[int] {
			return func() int {
				order = append(order, name)
				return next()
			}
		}
	}

	job := Wrap(func() int {
		order = append(order, "job")
		return 0
	}, mark("outer"), mark("inner"))

	job()
	assert.Equal(t, []string{"outer", "inner", "job"}, order, "first middleware is the outermost wrapper")
}
