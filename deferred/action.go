package deferred

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/arloliu/keysub/internal/logging"
	"github.com/arloliu/keysub/types"
)

var (
	// ErrConsumed is returned when an Action is resolved a second time.
	ErrConsumed = errors.New("deferred action already consumed")

	// ErrPanicked wraps a panic raised by work started with Start.
	ErrPanicked = errors.New("deferred action panicked")
)

// Func is the work carried by an Action.
type Func[T any] func(ctx context.Context) (T, error)

// Action is a one-shot unit of deferred work.
//
// The work runs at most once. The first call to Wait, WaitContext, WaitErr or Start
// consumes the action; any later call returns ErrConsumed without running anything.
// Action is safe for concurrent use: exactly one of several racing resolutions wins.
type Action[T any] struct {
	fn       Func[T]
	consumed atomic.Bool
	executor Executor
	logger   types.Logger
}

// Option configures an Action.
type Option func(*actionOptions)

type actionOptions struct {
	executor Executor
	logger   types.Logger
}

// WithExecutor sets the executor used by Start. Defaults to DefaultExecutor().
func WithExecutor(e Executor) Option {
	return func(o *actionOptions) {
		o.executor = e
	}
}

// WithLogger sets the logger used to report executor fallbacks.
func WithLogger(l types.Logger) Option {
	return func(o *actionOptions) {
		o.logger = l
	}
}

// New creates an Action carrying fn.
//
// Parameters:
//   - fn: The work to perform; it receives the resolution context
//   - opts: Optional executor and logger
//
// Returns:
//   - *Action[T]: An unconsumed action
func New[T any](fn Func[T], opts ...Option) *Action[T] {
	o := actionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.executor == nil {
		o.executor = DefaultExecutor()
	}

	return &Action[T]{fn: fn, executor: o.executor, logger: logging.OrNop(o.logger)}
}

// Ready creates an Action that resolves to a precomputed result without doing work.
func Ready[T any](v T, err error) *Action[T] {
	return New(func(context.Context) (T, error) { return v, err }, WithExecutor(inlineExecutor{}))
}

// Consumed reports whether the action has already been resolved or started.
func (a *Action[T]) Consumed() bool {
	return a.consumed.Load()
}

// take claims the work. It returns nil when the action was already consumed.
func (a *Action[T]) take() Func[T] {
	if !a.consumed.CompareAndSwap(false, true) {
		return nil
	}
	fn := a.fn
	a.fn = nil

	return fn
}

func consumedFunc[T any](context.Context) (T, error) {
	var zero T
	return zero, ErrConsumed
}

// Wait runs the work on the calling goroutine and returns its result.
func (a *Action[T]) Wait() (T, error) {
	return a.WaitContext(context.Background())
}

// WaitContext runs the work on the calling goroutine with ctx and returns its result.
//
// The context is handed to the work; WaitContext itself does not impose a timeout.
func (a *Action[T]) WaitContext(ctx context.Context) (T, error) {
	fn := a.take()
	if fn == nil {
		return consumedFunc[T](ctx)
	}

	return fn(ctx)
}

// WaitErr runs the work and returns only its error.
func (a *Action[T]) WaitErr() error {
	_, err := a.Wait()
	return err
}

// Start hands the work to the action's executor and returns immediately.
//
// If the executor rejects the task, the work runs on a new goroutine instead, so the
// returned Pending always completes. A panic in the work is recovered and reported as
// an error wrapping ErrPanicked. Starting a consumed action yields a completed Pending
// carrying ErrConsumed.
//
// Parameters:
//   - ctx: Context handed to the work
//
// Returns:
//   - *Pending[T]: Handle to the in-flight result
func (a *Action[T]) Start(ctx context.Context) *Pending[T] {
	fn := a.take()
	p := &Pending[T]{done: make(chan struct{})}
	if fn == nil {
		p.err = ErrConsumed
		close(p.done)

		return p
	}

	task := func() {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				p.value = zero
				p.err = fmt.Errorf("%w: %v", ErrPanicked, r)
				a.logger.Error("deferred task panicked", "panic", r)
			}
		}()
		p.value, p.err = fn(ctx)
	}
	if err := a.executor.Submit(task); err != nil {
		a.logger.Warn("executor rejected deferred action, running on a new goroutine", "error", err)
		go task()
	}

	return p
}

// Pending is the in-flight result of a started Action.
type Pending[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done returns a channel closed when the result is available.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Poll returns the result if it is available without blocking.
//
// Returns:
//   - T: The value (zero until ready)
//   - bool: true once the work has completed
//   - error: The work's error (nil until ready)
func (p *Pending[T]) Poll() (T, bool, error) {
	select {
	case <-p.done:
		return p.value, true, p.err
	default:
		var zero T
		return zero, false, nil
	}
}

// Await blocks until the result is available or ctx is done.
//
// A context cancellation stops the wait only; the work itself keeps running and its
// result stays retrievable through Poll or a later Await.
func (p *Pending[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
