package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/parmap/errors"
)

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("expected error for size %d", size)
		} else if errors.CodeOf(err) != errors.ErrCodeInvalidConfig {
			t.Errorf("expected INVALID_CONFIG, got %v", err)
		}
	}
}

func TestPool_Lifecycle(t *testing.T) {
	p, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	if p.State() != StateCreated {
		t.Errorf("expected created, got %s", p.State())
	}

	if err := p.Dispatch(context.Background(), []Task{func() {}}); err != nil {
		t.Fatal(err)
	}
	if p.State() != StateRunning {
		t.Errorf("expected running, got %s", p.State())
	}

	p.Drain()
	if p.State() != StateDraining {
		t.Errorf("expected draining, got %s", p.State())
	}

	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if p.State() != StateTerminated {
		t.Errorf("expected terminated, got %s", p.State())
	}
}

func TestPool_DispatchBarrier(t *testing.T) {
	p, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown()

	var completed atomic.Int32
	tasks := make([]Task, 16)
	for i := range tasks {
		tasks[i] = func() {
			time.Sleep(time.Millisecond)
			completed.Add(1)
		}
	}
	if err := p.Dispatch(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
	// Dispatch must not return before every task in the batch completed.
	if got := completed.Load(); got != 16 {
		t.Errorf("expected 16 completed tasks at barrier, got %d", got)
	}
}

func TestPool_ConcurrencyBoundedBySize(t *testing.T) {
	p, err := New(3)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown()

	var active, peak atomic.Int32
	tasks := make([]Task, 12)
	for i := range tasks {
		tasks[i] = func() {
			n := active.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
		}
	}
	if err := p.Dispatch(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
	if got := peak.Load(); got > 3 {
		t.Errorf("expected at most 3 concurrent tasks, observed %d", got)
	}
}

func TestPool_DispatchAfterDrain(t *testing.T) {
	p, err := New(1)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown()

	p.Drain()
	err = p.Dispatch(context.Background(), []Task{func() {}})
	if errors.CodeOf(err) != errors.ErrCodePoolTerminated {
		t.Errorf("expected POOL_TERMINATED, got %v", err)
	}
}

func TestPool_DispatchAfterShutdown(t *testing.T) {
	p, err := New(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}
	err = p.Dispatch(context.Background(), []Task{func() {}})
	if errors.CodeOf(err) != errors.ErrCodePoolTerminated {
		t.Errorf("expected POOL_TERMINATED, got %v", err)
	}
}

func TestPool_ShutdownIdempotent(t *testing.T) {
	p, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := p.Shutdown(); err != nil {
			t.Errorf("shutdown %d returned %v", i, err)
		}
	}
}

func TestPool_PanicIsPoolFailure(t *testing.T) {
	p, err := New(2)
	if err != nil {
		t.Fatal(err)
	}

	err = p.Dispatch(context.Background(), []Task{
		func() {},
		func() { panic("transform exploded") },
		func() {},
	})
	if errors.CodeOf(err) != errors.ErrCodePoolFailure {
		t.Fatalf("expected POOL_FAILURE, got %v", err)
	}

	// The crash is fatal: Shutdown reports it too.
	if err := p.Shutdown(); errors.CodeOf(err) != errors.ErrCodePoolFailure {
		t.Errorf("expected POOL_FAILURE from shutdown, got %v", err)
	}
}

func TestPool_DispatchContextCancelled(t *testing.T) {
	p, err := New(1)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	var started sync.WaitGroup
	started.Add(1)

	// First task blocks the only worker until we cancel; remaining
	// submissions must abort with the context error.
	tasks := []Task{
		func() {
			started.Done()
			time.Sleep(5 * time.Millisecond)
		},
		func() {},
		func() {},
	}
	go func() {
		started.Wait()
		cancel()
	}()

	err = p.Dispatch(ctx, tasks)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPool_ShutdownWithIdleWorkers(t *testing.T) {
	// Workers never received work; shutdown must still release them promptly.
	p, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- p.Shutdown() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected shutdown error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("shutdown did not complete")
	}
}
