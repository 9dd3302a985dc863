// Package futures provides the asynchronous execution primitive behind the
// SDK's dual API surface. Every async sub-API method returns a *Future[T];
// the matching blocking method is a one-line Await on it, so each operation
// has exactly one implementation.
//
// Submission is safe from any goroutine: work is handed to a shared ants
// pool and results travel over a per-future channel, which is the one place
// the SDK guarantees cross-thread safety.
package futures

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pitabwire/util"
	"github.com/rs/xid"
)

const defaultCapacityCPUFactor = 10

// ErrRunnerClosed is returned by futures submitted after Shutdown.
var ErrRunnerClosed = errors.New("futures: runner is shut down")

// Future is a single-assignment result of an asynchronous call.
type Future[T any] struct {
	id   string
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		id:   xid.New().String(),
		done: make(chan struct{}),
	}
}

// ID returns the correlation id of this future.
func (f *Future[T]) ID() string {
	return f.id
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is cancelled. It is safe
// to call from multiple goroutines; every caller observes the same result.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) complete(val T, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Options configures the runner's worker pool.
type Options struct {
	Capacity       int
	ExpiryDuration time.Duration
	PanicHandler   func(any)
	Logger         *util.LogEntry
}

// Option configures runner options.
type Option func(*Options)

// WithCapacity sets the maximum number of concurrent workers.
func WithCapacity(capacity int) Option {
	return func(o *Options) {
		o.Capacity = capacity
	}
}

// WithExpiryDuration sets how long idle workers are kept around.
func WithExpiryDuration(d time.Duration) Option {
	return func(o *Options) {
		o.ExpiryDuration = d
	}
}

// WithPanicHandler sets a panic handler for pool workers.
func WithPanicHandler(handler func(any)) Option {
	return func(o *Options) {
		o.PanicHandler = handler
	}
}

// WithLogger sets the pool logger.
func WithLogger(log *util.LogEntry) Option {
	return func(o *Options) {
		o.Logger = log
	}
}

// Runner executes futures on a bounded worker pool. The zero value is not
// usable; construct with NewRunner.
type Runner struct {
	pool   *ants.Pool
	closed atomic.Bool
}

// NewRunner creates a runner backed by an ants pool.
func NewRunner(opts ...Option) (*Runner, error) {
	o := &Options{
		Capacity:       runtime.NumCPU() * defaultCapacityCPUFactor,
		ExpiryDuration: time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	antsOpts := []ants.Option{
		ants.WithNonblocking(true),
	}
	if o.ExpiryDuration > 0 {
		antsOpts = append(antsOpts, ants.WithExpiryDuration(o.ExpiryDuration))
	}
	if o.PanicHandler != nil {
		antsOpts = append(antsOpts, ants.WithPanicHandler(o.PanicHandler))
	}
	if o.Logger != nil {
		antsOpts = append(antsOpts, ants.WithLogger(o.Logger))
	}

	pool, err := ants.NewPool(o.Capacity, antsOpts...)
	if err != nil {
		return nil, err
	}

	return &Runner{pool: pool}, nil
}

// Shutdown releases the worker pool. Futures already started run to
// completion; new submissions fail with ErrRunnerClosed.
func (r *Runner) Shutdown() {
	if r.closed.CompareAndSwap(false, true) {
		r.pool.Release()
	}
}

// Go schedules fn on the runner and returns a future for its result. The
// pool is non-blocking; when it is saturated the task falls back to a plain
// goroutine so callers never lose a submission.
func Go[T any](r *Runner, ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()

	if r == nil || r.closed.Load() {
		var zero T
		f.complete(zero, ErrRunnerClosed)
		return f
	}

	task := func() {
		val, err := fn(ctx)
		f.complete(val, err)
	}

	if err := r.pool.Submit(task); err != nil {
		go task()
	}

	return f
}

// Join awaits every future in order and collects the values. The first error
// encountered is returned alongside the values gathered so far.
func Join[T any](ctx context.Context, fs ...*Future[T]) ([]T, error) {
	out := make([]T, 0, len(fs))
	for _, f := range fs {
		val, err := f.Await(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, val)
	}
	return out, nil
}
