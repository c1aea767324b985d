package sqslistener

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// ContainerStats is a point-in-time, readable snapshot of a
// container's counters. It exists alongside observability.Metrics
// because OTel instruments are write-only: nothing in that facade can
// answer "how many messages has this container processed so far,"
// which the registry's Snapshot needs.
type ContainerStats struct {
	ContainerID       string
	State             State
	MessagesReceived  int64
	MessagesProcessed int64
	MessagesFailed    int64
	MessagesRetried   int64
	MessagesSentToDLQ int64
	DLQPublishFailed  int64
	MessagesDeleted   int64
	ActiveWorkers     int32

	// ProcessingTime is a running min/max/avg over every handler
	// invocation's wall-clock duration, derived from sum+count on
	// read rather than stored as a rolling average.
	ProcessingTime ProcessingTimeStats

	// LastSuccessTime and LastFailureTime are the zero time.Time until
	// the first processed/failed message, respectively.
	LastSuccessTime time.Time
	LastFailureTime time.Time

	// StateChanges counts every validated transition this container
	// has made since creation (or the last Reset).
	StateChanges int64
}

// ProcessingTimeStats is an immutable snapshot of a processing-time
// aggregator: min and max are exact, Avg is derived from Sum/Count at
// read time so no running average ever accumulates rounding error.
type ProcessingTimeStats struct {
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
	Count int64
}

// processingTimeAggregator maintains running min/max and sum+count
// for a container's handler durations. Reads take the lock just long
// enough to copy out the four fields; the average is computed from
// sum/count on the way out, never stored.
type processingTimeAggregator struct {
	mu    sync.Mutex
	min   time.Duration
	max   time.Duration
	sum   time.Duration
	count int64
}

func (a *processingTimeAggregator) record(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 || d < a.min {
		a.min = d
	}
	if d > a.max {
		a.max = d
	}
	a.sum += d
	a.count++
}

func (a *processingTimeAggregator) snapshot() ProcessingTimeStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	stats := ProcessingTimeStats{Min: a.min, Max: a.max, Count: a.count}
	if a.count > 0 {
		stats.Avg = a.sum / time.Duration(a.count)
	}
	return stats
}

func (a *processingTimeAggregator) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.min, a.max, a.sum, a.count = 0, 0, 0, 0
}

// MetricsCollector aggregates per-container counters with plain
// atomics (cheaper and simpler than a mutex-guarded struct for
// monotonic counters) and mirrors every increment onto an
// observability.Metrics instrument set so the same numbers are also
// visible through Prometheus/OTel exporters.
type MetricsCollector struct {
	containerID string

	received     atomic.Int64
	processed    atomic.Int64
	failed       atomic.Int64
	retried      atomic.Int64
	sentToDLQ    atomic.Int64
	dlqFailed    atomic.Int64
	deleted      atomic.Int64
	active       atomic.Int32
	stateChanges atomic.Int64

	lastSuccess atomic.Int64 // UnixNano; 0 means unset
	lastFailure atomic.Int64 // UnixNano; 0 means unset

	processingTime processingTimeAggregator

	metrics observability.Metrics
}

// NewMetricsCollector builds a collector for containerID. metrics may
// be nil, in which case increments only update the readable snapshot.
func NewMetricsCollector(containerID string, metrics observability.Metrics) *MetricsCollector {
	return &MetricsCollector{containerID: containerID, metrics: metrics}
}

// RecordProcessingTime adds one handler-invocation duration to the
// lifetime min/max/avg aggregator, regardless of outcome.
func (m *MetricsCollector) RecordProcessingTime(ctx context.Context, d time.Duration) {
	m.processingTime.record(d)
	if m.metrics != nil {
		m.metrics.Histogram("sqslistener.processing.duration", "handler invocation duration", "ms").
			Record(ctx, float64(d.Milliseconds()), observability.String("container", m.containerID))
	}
}

// RecordStateChange counts a validated state transition and mirrors
// it onto the metrics facade; from/to are rendered with State.String
// so the exported labels match the states in the canonical table.
func (m *MetricsCollector) RecordStateChange(ctx context.Context, from, to State) {
	m.stateChanges.Add(1)
	if m.metrics != nil {
		m.metrics.Counter("sqslistener.state.transitions", "validated container state transitions", "1").
			Increment(ctx,
				observability.String("container", m.containerID),
				observability.String("from", from.String()),
				observability.String("to", to.String()))
	}
}

// RecordRetryAttempts records how many retry attempts a single
// message consumed before reaching a terminal outcome (success or
// exhaustion), distinct from RecordRetried's per-attempt counter.
func (m *MetricsCollector) RecordRetryAttempts(ctx context.Context, n int) {
	if m.metrics != nil {
		m.metrics.Histogram("sqslistener.retry.attempts", "retry attempts consumed per message", "1").
			Record(ctx, float64(n), observability.String("container", m.containerID))
	}
}

// Reset zeroes every counter and the processing-time aggregator. It
// does not touch the container's lifecycle state, which lives on
// ListenerContainer, not here.
func (m *MetricsCollector) Reset() {
	m.received.Store(0)
	m.processed.Store(0)
	m.failed.Store(0)
	m.retried.Store(0)
	m.sentToDLQ.Store(0)
	m.dlqFailed.Store(0)
	m.deleted.Store(0)
	m.stateChanges.Store(0)
	m.lastSuccess.Store(0)
	m.lastFailure.Store(0)
	m.processingTime.reset()
}

func (m *MetricsCollector) RecordReceived(ctx context.Context, n int64) {
	m.received.Add(n)
	if m.metrics != nil {
		m.metrics.Counter("sqslistener.messages.received", "messages received from SQS", "1").
			Add(ctx, n, observability.String("container", m.containerID))
	}
}

func (m *MetricsCollector) RecordProcessed(ctx context.Context) {
	m.processed.Add(1)
	m.lastSuccess.Store(time.Now().UTC().UnixNano())
	if m.metrics != nil {
		m.metrics.Counter("sqslistener.messages.processed", "messages successfully processed", "1").
			Increment(ctx, observability.String("container", m.containerID))
	}
}

func (m *MetricsCollector) RecordFailed(ctx context.Context) {
	m.failed.Add(1)
	m.lastFailure.Store(time.Now().UTC().UnixNano())
	if m.metrics != nil {
		m.metrics.Counter("sqslistener.messages.failed", "messages that exhausted retries", "1").
			Increment(ctx, observability.String("container", m.containerID))
	}
}

func (m *MetricsCollector) RecordRetried(ctx context.Context) {
	m.retried.Add(1)
	if m.metrics != nil {
		m.metrics.Counter("sqslistener.messages.retried", "retry attempts issued", "1").
			Increment(ctx, observability.String("container", m.containerID))
	}
}

func (m *MetricsCollector) RecordSentToDLQ(ctx context.Context) {
	m.sentToDLQ.Add(1)
	if m.metrics != nil {
		m.metrics.Counter("sqslistener.messages.dlq", "messages routed to the dead-letter queue", "1").
			Increment(ctx, observability.String("container", m.containerID))
	}
}

// RecordDLQOperation mirrors the spec's recordDlqOperation(cid, success)
// contract: every publish attempt to the dead-letter queue is counted,
// whether it landed or not, so a container's health reflects DLQ
// backpressure even when every original message was still terminally
// handled.
func (m *MetricsCollector) RecordDLQOperation(ctx context.Context, success bool) {
	if success {
		m.RecordSentToDLQ(ctx)
		return
	}
	m.dlqFailed.Add(1)
	if m.metrics != nil {
		m.metrics.Counter("sqslistener.messages.dlq_failed", "dead-letter queue publish attempts that failed", "1").
			Increment(ctx, observability.String("container", m.containerID))
	}
}

func (m *MetricsCollector) RecordDeleted(ctx context.Context, n int64) {
	m.deleted.Add(n)
	if m.metrics != nil {
		m.metrics.Counter("sqslistener.messages.deleted", "messages deleted from SQS", "1").
			Add(ctx, n, observability.String("container", m.containerID))
	}
}

func (m *MetricsCollector) WorkerStarted() { m.active.Add(1) }
func (m *MetricsCollector) WorkerStopped() { m.active.Add(-1) }

// Snapshot returns the current readable counters for state. state is
// supplied by the caller since State lives on ListenerContainer, not
// the collector.
func (m *MetricsCollector) Snapshot(state State) ContainerStats {
	stats := ContainerStats{
		ContainerID:       m.containerID,
		State:             state,
		MessagesReceived:  m.received.Load(),
		MessagesProcessed: m.processed.Load(),
		MessagesFailed:    m.failed.Load(),
		MessagesRetried:   m.retried.Load(),
		MessagesSentToDLQ: m.sentToDLQ.Load(),
		DLQPublishFailed:  m.dlqFailed.Load(),
		MessagesDeleted:   m.deleted.Load(),
		ActiveWorkers:     m.active.Load(),
		ProcessingTime:    m.processingTime.snapshot(),
		StateChanges:      m.stateChanges.Load(),
	}
	if nanos := m.lastSuccess.Load(); nanos != 0 {
		stats.LastSuccessTime = time.Unix(0, nanos).UTC()
	}
	if nanos := m.lastFailure.Load(); nanos != 0 {
		stats.LastFailureTime = time.Unix(0, nanos).UTC()
	}
	return stats
}
