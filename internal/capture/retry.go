package capture

import (
	"context"
	"sync"
	"sync/atomic"
)

// RetrySource runs a camera source again on request after it failed to
// start or its decoder exited. Its channel stays open while the inner
// source is idle, until Stop is called or ctx ends.
type RetrySource struct {
	inner  Source
	report func(Source, error)

	retry    chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	idle     atomic.Bool
}

// Retryable wraps src so it can be restarted with Retry. Start failures
// are reported the same way Run reports them.
func (s *Surface) Retryable(src Source) *RetrySource {
	return &RetrySource{
		inner:  src,
		report: s.reportUnavailable,
		retry:  make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
}

func (r *RetrySource) Name() string   { return r.inner.Name() }
func (r *RetrySource) Origin() Origin { return r.inner.Origin() }

// Retry starts the inner source again. It reports false when the source
// is still running.
func (r *RetrySource) Retry() bool {
	if !r.idle.Load() {
		return false
	}
	select {
	case r.retry <- struct{}{}:
	default:
	}
	return true
}

// Stop closes the event channel once the inner source is idle.
func (r *RetrySource) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *RetrySource) Events(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			r.forward(ctx, out)
			r.idle.Store(true)

			select {
			case <-r.retry:
				r.idle.Store(false)
				GetLogger().Info("retrying camera source")
			case <-r.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// forward runs the inner source once and copies its codes to out.
func (r *RetrySource) forward(ctx context.Context, out chan<- string) {
	ch, err := r.inner.Events(ctx)
	if err != nil {
		r.report(r.inner, err)
		return
	}
	for code := range ch {
		select {
		case out <- code:
		case <-ctx.Done():
			return
		}
	}
}

// endNotifier calls fn once the wrapped source's channel is closed.
type endNotifier struct {
	Source
	fn func()
}

// OnEnd wraps src so fn runs after its last code has been delivered.
func OnEnd(src Source, fn func()) Source {
	return &endNotifier{Source: src, fn: fn}
}

func (e *endNotifier) Events(ctx context.Context) (<-chan string, error) {
	ch, err := e.Source.Events(ctx)
	if err != nil {
		e.fn()
		return nil, err
	}
	out := make(chan string)
	go func() {
		defer e.fn()
		defer close(out)
		for code := range ch {
			select {
			case out <- code:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
