package pool

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/parmap/errors"
	"github.com/kbukum/parmap/logger"
)

// State describes where a pool is in its lifecycle.
type State int32

const (
	// StateCreated means workers are allocated but no work was submitted yet.
	StateCreated State = iota
	// StateRunning means the pool has accepted at least one batch.
	StateRunning
	// StateDraining means no new batches are accepted; in-flight work finishes.
	StateDraining
	// StateTerminated means all workers are released. The pool is not reusable.
	StateTerminated
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Task is a unit of work executed by one worker.
type Task func()

// Pool is a fixed-size set of worker goroutines processing one batch of
// tasks at a time.
type Pool struct {
	id   string
	size int
	log  *logger.Logger

	tasks chan Task
	group *errgroup.Group

	mu    sync.Mutex
	state State

	dispatchMu sync.Mutex

	crashOnce sync.Once
	crashed   chan struct{}
	crashErr  error

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(log *logger.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// New allocates a pool of size workers. Workers are started immediately but
// idle until the first Dispatch.
func New(size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, errors.InvalidConfig("pool_size", "pool size must be positive").
			WithDetail("got", size)
	}

	p := &Pool{
		id:      uuid.NewString(),
		size:    size,
		log:     logger.Nop(),
		tasks:   make(chan Task),
		group:   &errgroup.Group{},
		state:   StateCreated,
		crashed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithComponent("pool").WithFields(logger.Fields(
		logger.FieldPoolID, p.id,
		logger.FieldPoolSize, size,
	))

	for i := 0; i < size; i++ {
		p.group.Go(p.worker)
	}
	p.log.Debug("pool created")
	return p, nil
}

// ID returns the pool's unique identifier.
func (p *Pool) ID() string { return p.id }

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// State returns the pool's current lifecycle state.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Dispatch submits one batch of tasks and blocks until every task has
// completed (a synchronous per-batch barrier). Only one batch may be in
// flight at a time; concurrent callers are serialized.
//
// Returns a POOL_TERMINATED error if the pool is draining or terminated, a
// POOL_FAILURE error if a worker crashed, and the context's error if ctx is
// cancelled before the batch is fully submitted (in-flight tasks still run
// to completion before Dispatch returns).
func (p *Pool) Dispatch(ctx context.Context, tasks []Task) error {
	p.dispatchMu.Lock()
	defer p.dispatchMu.Unlock()

	p.mu.Lock()
	if p.state == StateDraining || p.state == StateTerminated {
		state := p.state
		p.mu.Unlock()
		return errors.PoolTerminated(state.String())
	}
	p.state = StateRunning
	p.mu.Unlock()

	var wg sync.WaitGroup
	var submitErr error

submit:
	for _, t := range tasks {
		wg.Add(1)
		wrapped := p.wrap(t, &wg)
		select {
		case p.tasks <- wrapped:
		case <-p.crashed:
			wg.Done()
			submitErr = p.crashError()
			break submit
		case <-ctx.Done():
			wg.Done()
			submitErr = ctx.Err()
			break submit
		}
	}

	// Barrier: the batch is complete only when every submitted task is done.
	wg.Wait()

	if submitErr != nil {
		return submitErr
	}
	return p.crashError()
}

// wrap adds the batch barrier and panic capture around a task. The crash is
// recorded before the barrier is released so Dispatch observes it.
func (p *Pool) wrap(t Task, wg *sync.WaitGroup) Task {
	return func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.signalCrash(errors.PoolFailure(fmt.Errorf("task panic: %v", r)))
			}
		}()
		t()
	}
}

// worker processes tasks until the channel closes or the pool crashes.
func (p *Pool) worker() error {
	for t := range p.tasks {
		t()
		if err := p.crashError(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) signalCrash(err error) {
	p.crashOnce.Do(func() {
		p.mu.Lock()
		p.crashErr = err
		p.mu.Unlock()
		close(p.crashed)
		p.log.Error("worker crashed", logger.Fields(logger.FieldError, err.Error()))
	})
}

func (p *Pool) crashError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.crashErr
}

// Drain stops the pool from accepting new batches. In-flight work is
// allowed to finish. Draining a terminated pool is a no-op.
func (p *Pool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateTerminated {
		p.state = StateDraining
	}
}

// Shutdown drains the pool, waits for all workers to exit, and releases
// them. Idempotent; safe on every exit path. Returns the first worker crash
// if one occurred.
func (p *Pool) Shutdown() error {
	p.shutdownOnce.Do(func() {
		p.Drain()
		// An in-flight Dispatch holds dispatchMu until its barrier releases;
		// the task channel must not close under it.
		p.dispatchMu.Lock()
		close(p.tasks)
		p.dispatchMu.Unlock()
		groupErr := p.group.Wait()

		p.mu.Lock()
		p.state = StateTerminated
		if p.crashErr != nil {
			p.shutdownErr = p.crashErr
		} else {
			p.shutdownErr = groupErr
		}
		p.mu.Unlock()
		p.log.Debug("pool terminated")
	})
	return p.shutdownErr
}
