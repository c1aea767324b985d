package sqslistener

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
	"github.com/google/uuid"
)

// ListenerContainer owns one queue's full consumption pipeline: a
// poller goroutine, a dispatch loop, and the executor that runs the
// bound handler. Its lifecycle is driven by a single atomic State
// instead of the scattered running/stopping booleans a naive port
// would carry over.
type ListenerContainer struct {
	// id is a process-instance-unique identifier, distinct from name:
	// two hosts running the same named binding (horizontally scaled
	// consumers of the same queue) get different ids but report under
	// the same metrics/health/DLQ identity, name.
	id     string
	name   string
	config Config
	client SQSClient

	queueURL string
	dlqURL   string

	handler Handler
	retry   RetryPolicy
	dlq     *DLQHandler
	metrics *MetricsCollector
	o11y    observability.Observability

	executor *ExecutorProvider

	state      atomic.Int32
	cancel     context.CancelFunc
	pollerDone chan struct{}
}

// ContainerOption customizes a ListenerContainer before Start.
type ContainerOption func(*ListenerContainer)

// WithRetryPolicy overrides the default exponential RetryPolicy built
// from Config.MaxRetryAttempts/RetryDelayMs.
func WithRetryPolicy(policy RetryPolicy) ContainerOption {
	return func(c *ListenerContainer) { c.retry = policy }
}

// WithExecutor overrides the default bounded executor sized to
// Config.MaxConcurrentMessages.
func WithExecutor(executor *ExecutorProvider) ContainerOption {
	return func(c *ListenerContainer) { c.executor = executor }
}

// NewContainer builds a container for binding, ready to Start. It does
// not touch the network until Start is called.
func NewContainer(binding HandlerBinding, client SQSClient, o11y observability.Observability, opts ...ContainerOption) (*ListenerContainer, error) {
	if o11y == nil {
		return nil, fmt.Errorf("sqslistener: observability is required")
	}
	if err := binding.Config.Validate(); err != nil {
		return nil, &ConfigError{Container: binding.Name, Err: err}
	}
	if binding.Handler.Kind == SingleMessageHandler && binding.Handler.Single == nil {
		return nil, &ConfigError{Container: binding.Name, Err: fmt.Errorf("single handler function is nil")}
	}
	if binding.Handler.Kind == BatchMessageHandler && binding.Handler.Batch == nil {
		return nil, &ConfigError{Container: binding.Name, Err: fmt.Errorf("batch handler function is nil")}
	}
	if binding.Config.BatchMode && binding.Handler.Kind != BatchMessageHandler {
		return nil, &ConfigError{Container: binding.Name, Err: fmt.Errorf("batch-mode requires a batch handler")}
	}
	if !binding.Config.BatchMode && binding.Handler.Kind != SingleMessageHandler {
		return nil, &ConfigError{Container: binding.Name, Err: fmt.Errorf("non-batch-mode requires a single-message handler")}
	}

	c := &ListenerContainer{
		id:      uuid.NewString(),
		name:    binding.Name,
		config:  binding.Config,
		client:  client,
		handler: binding.Handler,
		o11y:    o11y,
	}
	c.state.Store(int32(StateCreated))
	c.metrics = NewMetricsCollector(c.name, o11y.Metrics())
	c.retry = NewExponentialRetryPolicy(binding.Config.MaxRetryAttempts, time.Duration(binding.Config.RetryDelayMs)*time.Millisecond, 30*time.Second)
	c.executor = NewBoundedExecutor(binding.Config.MaxConcurrentMessages)

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ID returns the container's registered name, the identity used for
// metrics, health checks, and DLQ envelopes.
func (c *ListenerContainer) ID() string { return c.name }

// InstanceID returns the process-instance-unique identifier generated
// for this container at construction, for correlating log lines across
// horizontally scaled instances of the same named binding.
func (c *ListenerContainer) InstanceID() string { return c.id }

// State returns the current lifecycle state.
func (c *ListenerContainer) State() State { return State(c.state.Load()) }

func (c *ListenerContainer) transition(to State) error {
	from := State(c.state.Load())
	if !canTransition(from, to) || !c.state.CompareAndSwap(int32(from), int32(to)) {
		return &StateError{Container: c.name, From: from, To: to}
	}
	if c.metrics != nil {
		c.metrics.RecordStateChange(context.Background(), from, to)
	}
	return nil
}

// Start resolves the queue (and DLQ, if enabled) URL, then launches
// the poller and dispatch goroutines. It returns once the container
// reaches StateRunning (or StateFailed); the consumption pipeline
// itself keeps running in the background until Stop is called.
func (c *ListenerContainer) Start(ctx context.Context) error {
	if err := c.transition(StateStarting); err != nil {
		return err
	}

	queueURL := c.config.QueueURL
	if queueURL == "" {
		resolved, err := c.client.GetQueueURL(ctx, c.config.QueueName)
		if err != nil {
			c.state.Store(int32(StateFailed))
			return &QueueResolutionError{Container: c.name, QueueName: c.config.QueueName, Err: err}
		}
		queueURL = resolved
	}
	c.queueURL = queueURL

	if c.config.EnableDLQ {
		dlqURL, err := c.client.GetQueueURL(ctx, c.config.DLQName)
		if err != nil {
			c.state.Store(int32(StateFailed))
			return &QueueResolutionError{Container: c.name, QueueName: c.config.DLQName, Err: err}
		}
		c.dlqURL = dlqURL
		c.dlq = NewDLQHandler(c.client, c.dlqURL, c.name, c.o11y)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.pollerDone = make(chan struct{})

	batches := make(chan []Message, c.config.MaxConcurrentMessages)
	retryDelay := time.Duration(c.config.RetryDelayMs) * time.Millisecond
	poller := NewMessagePoller(c.client, c.queueURL, c.config.MaxMessagesPerPoll, c.config.PollTimeoutSeconds, batches, c.metrics, c.o11y, retryDelay)
	processor := NewMessageProcessor(c.name, c.queueURL, c.config, c.client, c.handler, c.retry, c.dlq, c.metrics, c.o11y)

	go func() {
		defer close(c.pollerDone)
		poller.Run(runCtx)
	}()

	go c.dispatch(runCtx, batches, processor)

	if err := c.transition(StateRunning); err != nil {
		c.abortStart(ctx)
		return err
	}

	c.o11y.Logger().Info(ctx, "container started",
		observability.String("container", c.name),
		observability.String("instance_id", c.id),
		observability.String("queue_url", c.queueURL))
	return nil
}

// abortStart releases everything Start already launched after a failed
// STARTING->RUNNING transition (most likely a concurrent Stop call that
// won the race): it stops the poller/dispatch goroutines, drains the
// executor, and forces the container into StateFailed so a caller never
// sees goroutines still running under a container Start reported as
// failed.
func (c *ListenerContainer) abortStart(ctx context.Context) {
	if c.cancel != nil {
		c.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.executor.Shutdown(shutdownCtx); err != nil {
		c.o11y.Logger().Warn(ctx, "executor shutdown exceeded grace period during start abort",
			observability.String("container", c.name))
	}

	if c.pollerDone != nil {
		select {
		case <-c.pollerDone:
		case <-shutdownCtx.Done():
		}
	}

	c.state.Store(int32(StateFailed))
	c.o11y.Logger().Error(ctx, "container start aborted, rolled back to failed",
		observability.String("container", c.name))
}

// dispatch hands each polled batch to the worker executor. In batch
// mode a single slot covers the whole batch, matching the handler's
// own list-arity; otherwise each message acquires its own slot so
// messages within a batch can be processed concurrently, bounded only
// by Config.MaxConcurrentMessages.
func (c *ListenerContainer) dispatch(ctx context.Context, batches <-chan []Message, processor *MessageProcessor) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-batches:
			if !ok {
				return
			}
			if c.config.BatchMode {
				c.submitOne(ctx, processor, batch)
				continue
			}
			for _, msg := range batch {
				c.submitOne(ctx, processor, []Message{msg})
			}
		}
	}
}

func (c *ListenerContainer) submitOne(ctx context.Context, processor *MessageProcessor, unit []Message) {
	c.metrics.WorkerStarted()
	c.executor.Submit(func() {
		defer c.metrics.WorkerStopped()
		processor.Process(ctx, unit)
	})
}

// Stop transitions the container to StateStopping, cancels the poll
// and dispatch loop, and waits up to gracePeriod for in-flight work to
// finish through the executor. If the grace period elapses first, Stop
// returns a *ShutdownError but still leaves the container StateStopped
// — the forced-stop path; residual handler goroutines finish on their
// own time.
func (c *ListenerContainer) Stop(ctx context.Context, gracePeriod time.Duration) error {
	if err := c.transition(StateStopping); err != nil {
		return err
	}

	if c.cancel != nil {
		c.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
	defer cancel()

	execErr := c.executor.Shutdown(shutdownCtx)

	if c.pollerDone != nil {
		select {
		case <-c.pollerDone:
		case <-shutdownCtx.Done():
		}
	}

	_ = c.transition(StateStopped)

	if execErr != nil {
		c.o11y.Logger().Warn(ctx, "container stop exceeded grace period, forcing stop",
			observability.String("container", c.name))
		return &ShutdownError{Container: c.name, Err: execErr}
	}

	c.o11y.Logger().Info(ctx, "container stopped", observability.String("container", c.name))
	return nil
}

// Stats returns a point-in-time readable snapshot of this container's
// counters.
func (c *ListenerContainer) Stats() ContainerStats {
	return c.metrics.Snapshot(c.State())
}

// ResetStats zeroes this container's counters without affecting its
// lifecycle state. Safe to call in any state, including RUNNING.
func (c *ListenerContainer) ResetStats() {
	c.metrics.Reset()
}
