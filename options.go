package threadpool

import "log/slog"

// Option represents a configuration option for Pool.
type Option func(*Pool)

// WithLogger sets the logger used for worker lifecycle and panic recovery
// events. By default the pool is silent.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// WithPanicHandler sets a handler called with the recovered value every time
// a job panics, before the job's receiver observes the *PanicError. Useful
// for centralized reporting; the handler runs on the worker goroutine.
func WithPanicHandler(fn func(v any)) Option {
	return func(p *Pool) {
		p.panicHandler = fn
	}
}
