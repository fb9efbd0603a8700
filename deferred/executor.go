package deferred

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/arloliu/keysub/internal/logging"
	"github.com/arloliu/keysub/types"
)

// Executor runs submitted tasks asynchronously.
type Executor interface {
	// Submit schedules task. A non-nil error means the task will not run.
	Submit(task func()) error
}

// Pool is an Executor backed by an ants goroutine pool.
type Pool struct {
	pool   *ants.Pool
	logger types.Logger
}

// Compile-time assertion that Pool implements Executor.
var _ Executor = (*Pool)(nil)

// NewPool creates a goroutine pool executor.
//
// Parameters:
//   - size: Maximum number of concurrently running tasks (<= 0 means unbounded)
//   - logger: Logger for task panics (nil for no-op)
//
// Returns:
//   - *Pool: Started pool; call Release when done
//   - error: Pool construction error
func NewPool(size int, logger types.Logger) (*Pool, error) {
	logger = logging.OrNop(logger)
	if size <= 0 {
		size = -1
	}
	p, err := ants.NewPool(size,
		ants.WithNonblocking(false),
		ants.WithPanicHandler(func(v any) {
			logger.Error("deferred task panicked", "panic", v)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor pool: %w", err)
	}

	return &Pool{pool: p, logger: logger}, nil
}

// Submit schedules task on the pool.
func (p *Pool) Submit(task func()) error {
	return p.pool.Submit(task)
}

// Running returns the number of tasks currently running.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release stops the pool. Tasks submitted afterwards are rejected.
func (p *Pool) Release() {
	p.pool.Release()
}

// GoExecutor runs every task on a new goroutine.
type GoExecutor struct{}

// Submit starts task on a new goroutine. It never fails.
func (GoExecutor) Submit(task func()) error {
	go task()
	return nil
}

// inlineExecutor runs tasks on the submitting goroutine.
type inlineExecutor struct{}

func (inlineExecutor) Submit(task func()) error {
	task()
	return nil
}

var (
	defaultExecutorMu sync.RWMutex
	defaultExecutor   Executor = GoExecutor{}
)

// DefaultExecutor returns the process-wide executor used by actions created without
// WithExecutor.
func DefaultExecutor() Executor {
	defaultExecutorMu.RLock()
	defer defaultExecutorMu.RUnlock()

	return defaultExecutor
}

// SetDefaultExecutor replaces the process-wide executor. A nil executor restores
// GoExecutor.
func SetDefaultExecutor(e Executor) {
	if e == nil {
		e = GoExecutor{}
	}
	defaultExecutorMu.Lock()
	defaultExecutor = e
	defaultExecutorMu.Unlock()
}
