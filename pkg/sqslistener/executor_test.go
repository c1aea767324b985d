package sqslistener

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestBoundedExecutorCapsConcurrency(t *testing.T) {
	executor := NewBoundedExecutor(2)

	var active atomic.Int32
	var maxSeen atomic.Int32
	release := make(chan struct{})

	for i := 0; i < 5; i++ {
		go executor.Submit(func() {
			n := active.Add(1)
			for {
				cur := maxSeen.Load()
				if n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			<-release
			active.Add(-1)
		})
	}

	// Submit blocks once both slots are taken, so each call runs on its
	// own goroutine; give every one a chance to reach the semaphore.
	time.Sleep(20 * time.Millisecond)
	if got := active.Load(); got > 2 {
		t.Errorf("active = %d, want at most 2 concurrent submissions", got)
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := executor.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() = %v, want nil", err)
	}
	if got := maxSeen.Load(); got > 2 {
		t.Errorf("observed %d concurrent submissions, want at most 2", got)
	}
}

func TestExecutorShutdownTimesOutWithResidualWork(t *testing.T) {
	executor := NewUnboundedExecutor()
	blocked := make(chan struct{})
	executor.Submit(func() { <-blocked })
	defer close(blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := executor.Shutdown(ctx); err == nil {
		t.Fatal("Shutdown() should report the grace period was exceeded")
	}
}

func TestCustomExecutorWithoutOwnedLifecycleNeverBlocksShutdown(t *testing.T) {
	ran := make(chan struct{}, 1)
	executor := NewCustomExecutor(func(fn func()) { go fn() }, false)
	executor.Submit(func() { ran <- struct{}{} })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("submitted work never ran")
	}

	if err := executor.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on a non-owning custom executor should be a no-op, got %v", err)
	}
}
