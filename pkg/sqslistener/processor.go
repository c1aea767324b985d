package sqslistener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// MessageProcessor dispatches a received batch to the bound handler,
// drives retries through a RetryPolicy, deletes on success when
// AutoDelete is set, and routes exhausted messages to the DLQHandler.
type MessageProcessor struct {
	containerID string
	queueURL    string
	config      Config
	client      SQSClient
	handler     Handler
	retry       RetryPolicy
	dlq         *DLQHandler
	metrics     *MetricsCollector
	o11y        observability.Observability
}

// NewMessageProcessor wires the collaborators a processor needs.
func NewMessageProcessor(containerID, queueURL string, config Config, client SQSClient, handler Handler, retry RetryPolicy, dlq *DLQHandler, metrics *MetricsCollector, o11y observability.Observability) *MessageProcessor {
	return &MessageProcessor{
		containerID: containerID,
		queueURL:    queueURL,
		config:      config,
		client:      client,
		handler:     handler,
		retry:       retry,
		dlq:         dlq,
		metrics:     metrics,
		o11y:        o11y,
	}
}

// Process routes a received batch to the single or batch handler
// arity and performs the resulting delete/retry/DLQ bookkeeping.
func (p *MessageProcessor) Process(ctx context.Context, messages []Message) {
	if p.config.BatchMode {
		p.processBatch(ctx, messages)
		return
	}

	for _, msg := range messages {
		p.processSingle(ctx, msg)
	}
}

func (p *MessageProcessor) processSingle(ctx context.Context, msg Message) {
	start := time.Now()
	err := p.callWithRetry(ctx, func(ctx context.Context) error {
		return p.handler.Single(ctx, msg)
	})
	p.metrics.RecordProcessingTime(ctx, time.Since(start))

	if err == nil {
		p.metrics.RecordProcessed(ctx)
		if p.config.AutoDelete {
			p.deleteOne(ctx, msg)
		}
		return
	}

	p.metrics.RecordFailed(ctx)
	p.onExhausted(ctx, []Message{msg}, err)
}

// processBatch treats the entire batch as one unit of work per the
// documented resolution preserving whole-batch semantics: success
// deletes every message at once (one DeleteMessageBatch call), and
// failure routes every message in the batch to the DLQ individually
// (one envelope per message, never one envelope for the batch).
func (p *MessageProcessor) processBatch(ctx context.Context, messages []Message) {
	start := time.Now()
	err := p.callWithRetry(ctx, func(ctx context.Context) error {
		return p.handler.Batch(ctx, messages)
	})
	p.metrics.RecordProcessingTime(ctx, time.Since(start))

	if err == nil {
		p.metrics.RecordProcessed(ctx)
		if p.config.AutoDelete {
			p.deleteBatch(ctx, messages)
		}
		return
	}

	p.metrics.RecordFailed(ctx)
	p.onExhausted(ctx, messages, err)
}

func (p *MessageProcessor) callWithRetry(ctx context.Context, call func(context.Context) error) error {
	var lastErr error
	maxAttempts := 0
	if p.retry != nil {
		maxAttempts = p.retry.MaxAttempts()
	}

	for attempt := 0; attempt <= maxAttempts; attempt++ {
		lastErr = p.callRecovering(ctx, call)
		if lastErr == nil {
			p.metrics.RecordRetryAttempts(ctx, attempt)
			return nil
		}

		if attempt == maxAttempts || p.retry == nil {
			break
		}

		delay, shouldRetry := p.retry.NextDelay(attempt + 1)
		if !shouldRetry {
			break
		}

		p.metrics.RecordRetried(ctx)
		p.o11y.Logger().Warn(ctx, "retrying after handler failure",
			observability.String("container", p.containerID),
			observability.Int("attempt", attempt+1),
			observability.Error(lastErr))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.metrics.RecordRetryAttempts(ctx, maxAttempts)
	return &ProcessingError{Container: p.containerID, Attempt: maxAttempts + 1, MaxRetries: maxAttempts, Err: lastErr}
}

// callRecovering converts a handler panic into an error so a single
// bad message can never crash a worker goroutine.
func (p *MessageProcessor) callRecovering(ctx context.Context, call func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return call(ctx)
}

func (p *MessageProcessor) onExhausted(ctx context.Context, messages []Message, cause error) {
	p.o11y.Logger().Error(ctx, "message processing exhausted retries",
		observability.String("container", p.containerID),
		observability.Error(cause))

	if !p.config.EnableDLQ || p.dlq == nil {
		return
	}

	// The DLQ envelope reports the handler's own error, not the
	// *ProcessingError wrapper callWithRetry attaches attempt-budget
	// bookkeeping to: a consumer routing on error-type needs the
	// handler's actual error class, not a constant framework type.
	root := rootCause(cause)
	for _, msg := range messages {
		err := p.dlq.Send(ctx, msg, p.queueURL, root, p.retryBudget())
		p.metrics.RecordDLQOperation(ctx, err == nil)
	}
}

// rootCause unwraps err down to the innermost cause, so a
// *ProcessingError (or any other wrapper) never leaks its own type/
// message into a structured output meant to describe the handler's
// failure.
func rootCause(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}

func (p *MessageProcessor) retryBudget() int {
	if p.retry == nil {
		return 0
	}
	return p.retry.MaxAttempts()
}

func (p *MessageProcessor) deleteOne(ctx context.Context, msg Message) {
	if err := p.client.DeleteMessage(ctx, p.queueURL, msg.ReceiptHandle); err != nil {
		wrapped := &DeleteError{Container: p.containerID, MessageID: msg.MessageID, Err: err}
		p.o11y.Logger().Warn(ctx, "failed to delete message", observability.Error(wrapped))
		return
	}
	p.metrics.RecordDeleted(ctx, 1)
}

func (p *MessageProcessor) deleteBatch(ctx context.Context, messages []Message) {
	handles := make([]string, 0, len(messages))
	for _, msg := range messages {
		handles = append(handles, msg.ReceiptHandle)
	}

	if err := p.client.DeleteMessageBatch(ctx, p.queueURL, handles); err != nil {
		wrapped := &DeleteError{Container: p.containerID, Err: err}
		p.o11y.Logger().Warn(ctx, "failed to delete message batch", observability.Error(wrapped))
		return
	}
	p.metrics.RecordDeleted(ctx, int64(len(messages)))
}
