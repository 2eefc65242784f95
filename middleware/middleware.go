// Package middleware provides common job decorators for the threadpool
// package. Middlewares are applied by the caller before submission, so the
// pool itself stays plain: a decorated job is still just a job.
package middleware

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/LOSEARDES77/threadpool"
)

// Middleware wraps a job and adds functionality.
type Middleware[T any] func(threadpool.Job[T]) threadpool.Job[T]

// Wrap applies middlewares to a job. Middlewares are applied in the same
// order as they are provided, matching the HTTP middleware pattern in Go:
// the first middleware is the outermost wrapper, the last one is closest to
// the original job.
func Wrap[T any](job threadpool.Job[T], middlewares ...Middleware[T]) threadpool.Job[T] {
	wrapped := job
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

// Retry returns a middleware that re-runs a panicking job up to maxAttempts
// times with exponential backoff between attempts. baseDelay is the initial
// delay, each subsequent attempt doubles it with some random jitter. When
// every attempt panics, the last panic is rethrown wrapped with the attempt
// count, so the job's receiver observes it as a *threadpool.PanicError.
// The pool never retries on its own; this is strictly opt-in.
func Retry[T any](maxAttempts int, baseDelay time.Duration) Middleware[T] {
	if maxAttempts <= 0 {
		maxAttempts = 3 // default to 3 attempts
	}
	if baseDelay <= 0 {
		baseDelay = time.Second // default to 1 second
	}

	return func(next threadpool.Job[T]) threadpool.Job[T] {
		return func() T {
			var lastPanic any
			for attempt := range maxAttempts {
				v, panicVal, panicked := runGuarded(next)
				if !panicked {
					return v
				}
				lastPanic = panicVal

				// don't sleep after last attempt
				if attempt < maxAttempts-1 {
					// exponential backoff with jitter
					delay := baseDelay * time.Duration(1<<uint(attempt)) //nolint:gosec // won't overflow, not that many attempts
					// add up to 20% jitter
					jitter := time.Duration(float64(delay) * 0.2 * rand.Float64()) //nolint:gosec // not for security
					time.Sleep(delay + jitter)
				}
			}
			panic(fmt.Errorf("failed after %d attempts: %v", maxAttempts, lastPanic))
		}
	}
}

// runGuarded runs a single attempt with its own panic boundary.
func runGuarded[T any](job threadpool.Job[T]) (v T, panicVal any, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicVal, panicked = r, true
		}
	}()
	return job(), nil, false
}

// RateLimit returns a middleware that delays job execution to respect the
// given limiter. The delay happens on the worker, after dequeue, so it
// throttles job starts without blocking submission. A nil limiter means no
// limit.
func RateLimit[T any](limiter *rate.Limiter) Middleware[T] {
	return func(next threadpool.Job[T]) threadpool.Job[T] {
		return func() T {
			if limiter != nil {
				if r := limiter.Reserve(); r.OK() {
					time.Sleep(r.Delay())
				}
			}
			return next()
		}
	}
}

// Timed returns a middleware that logs the job's execution time at debug
// level under the given name.
func Timed[T any](l *slog.Logger, name string) Middleware[T] {
	if l == nil {
		l = slog.Default()
	}
	return func(next threadpool.Job[T]) threadpool.Job[T] {
		return func() T {
			st := time.Now()
			defer func() { l.Debug("job finished", "name", name, "elapsed", time.Since(st)) }()
			return next()
		}
	}
}
