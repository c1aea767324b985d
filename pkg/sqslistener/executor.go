package sqslistener

import (
	"context"
	"sync"
)

// ExecutorKind selects how an ExecutorProvider runs submitted work.
type ExecutorKind int

const (
	// BoundedPool caps in-flight work at a fixed concurrency, the
	// default for every container (sized by Config.MaxConcurrentMessages).
	BoundedPool ExecutorKind = iota
	// Unbounded spawns one goroutine per submission — Go's natural
	// analogue of a virtual-thread-per-task executor.
	Unbounded
	// Custom delegates submission to a caller-supplied function, for
	// hosts that want to share a worker pool across containers.
	Custom
)

// ExecutorProvider runs handler invocations outside the poller
// goroutine, bounding concurrency the same way the teacher's worker
// pool bounds Kafka/RabbitMQ consumption, generalized to three
// interchangeable strategies.
type ExecutorProvider struct {
	kind          ExecutorKind
	sem           chan struct{}
	wg            sync.WaitGroup
	customSubmit  func(fn func())
	ownsLifecycle bool
}

// NewBoundedExecutor returns an ExecutorProvider that never runs more
// than maxConcurrent submissions at once.
func NewBoundedExecutor(maxConcurrent int) *ExecutorProvider {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ExecutorProvider{
		kind:          BoundedPool,
		sem:           make(chan struct{}, maxConcurrent),
		ownsLifecycle: true,
	}
}

// NewUnboundedExecutor returns an ExecutorProvider that runs every
// submission on its own goroutine.
func NewUnboundedExecutor() *ExecutorProvider {
	return &ExecutorProvider{kind: Unbounded, ownsLifecycle: true}
}

// NewCustomExecutor delegates submission to submit. ownsLifecycle
// controls whether Shutdown waits on this provider's own WaitGroup
// (false when the caller's pool outlives this container).
func NewCustomExecutor(submit func(fn func()), ownsLifecycle bool) *ExecutorProvider {
	return &ExecutorProvider{kind: Custom, customSubmit: submit, ownsLifecycle: ownsLifecycle}
}

// Submit runs fn according to the provider's strategy. It blocks only
// long enough to acquire a BoundedPool slot; the work itself always
// runs asynchronously.
func (e *ExecutorProvider) Submit(fn func()) {
	switch e.kind {
	case BoundedPool:
		e.wg.Add(1)
		e.sem <- struct{}{}
		go func() {
			defer e.wg.Done()
			defer func() { <-e.sem }()
			fn()
		}()
	case Unbounded:
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			fn()
		}()
	case Custom:
		if e.ownsLifecycle {
			e.wg.Add(1)
			e.customSubmit(func() {
				defer e.wg.Done()
				fn()
			})
		} else {
			e.customSubmit(fn)
		}
	}
}

// Shutdown waits for in-flight submissions to finish, up to ctx's
// deadline. If the deadline elapses first it returns immediately,
// leaving residual work to finish in the background — the forced-stop
// path a ListenerContainer falls back to when its grace period is
// exceeded.
func (e *ExecutorProvider) Shutdown(ctx context.Context) error {
	if !e.ownsLifecycle {
		return nil
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
