package sqslistener_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability/fake"
	"github.com/JailtonJunior94/devkit-go/pkg/sqslistener"
	"github.com/stretchr/testify/suite"
)

type ContainerSuite struct {
	suite.Suite

	client *fakeSQSClient
	o11y   *fake.Provider
}

func TestContainerSuite(t *testing.T) {
	suite.Run(t, new(ContainerSuite))
}

func (s *ContainerSuite) SetupTest() {
	s.client = newFakeSQSClient().withQueue("orders", "https://sqs/orders")
	s.o11y = fake.NewProvider()
}

func waitForCondition(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// TestHappyPathDeletesOnSuccess covers: a message is received,
// processed successfully on the first attempt, and deleted.
func (s *ContainerSuite) TestHappyPathDeletesOnSuccess() {
	s.client.enqueue([]sqslistener.Message{{MessageID: "m1", ReceiptHandle: "rh1", Body: "hello"}})

	var processed atomic.Int32
	binding := sqslistener.HandlerBinding{
		Name:   "orders",
		Config: sqslistener.NewConfig(sqslistener.WithQueueName("orders")),
		Handler: sqslistener.NewSingleHandler(func(ctx context.Context, msg sqslistener.Message) error {
			processed.Add(1)
			return nil
		}),
	}

	container, err := sqslistener.NewContainer(binding, s.client, s.o11y)
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(container.Start(ctx))
	defer container.Stop(ctx, time.Second)

	s.Require().True(waitForCondition(s.T(), time.Second, func() bool { return processed.Load() == 1 }))
	s.Require().True(waitForCondition(s.T(), time.Second, func() bool { return s.client.deletedCount() == 1 }))

	stats := container.Stats()
	s.Equal(int64(1), stats.MessagesProcessed)
	s.Equal(int64(1), stats.MessagesDeleted)
	s.Equal(int64(0), stats.MessagesFailed)
}

// TestRetryThenSuccess covers: a handler fails twice, then succeeds on
// the third attempt, without ever reaching the DLQ.
func (s *ContainerSuite) TestRetryThenSuccess() {
	s.client.enqueue([]sqslistener.Message{{MessageID: "m1", ReceiptHandle: "rh1", Body: "hello"}})

	var attempts atomic.Int32
	binding := sqslistener.HandlerBinding{
		Name: "orders",
		Config: sqslistener.NewConfig(
			sqslistener.WithQueueName("orders"),
			sqslistener.WithMaxRetryAttempts(3),
			sqslistener.WithRetryDelay(5*time.Millisecond),
		),
		Handler: sqslistener.NewSingleHandler(func(ctx context.Context, msg sqslistener.Message) error {
			if attempts.Add(1) < 3 {
				return errors.New("transient failure")
			}
			return nil
		}),
	}

	container, err := sqslistener.NewContainer(binding, s.client, s.o11y)
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(container.Start(ctx))
	defer container.Stop(ctx, time.Second)

	s.Require().True(waitForCondition(s.T(), time.Second, func() bool { return attempts.Load() == 3 }))
	s.Require().True(waitForCondition(s.T(), time.Second, func() bool { return s.client.deletedCount() == 1 }))

	stats := container.Stats()
	s.Equal(int64(1), stats.MessagesProcessed)
	s.Equal(int64(2), stats.MessagesRetried)
	s.Equal(int64(0), stats.MessagesSentToDLQ)
}

// TestExhaustedRetriesRouteToDLQ covers: a handler that always fails
// exhausts its retry budget and the message is routed to the DLQ.
func (s *ContainerSuite) TestExhaustedRetriesRouteToDLQ() {
	s.client.withQueue("orders-dlq", "https://sqs/orders-dlq")
	s.client.enqueue([]sqslistener.Message{{MessageID: "m1", ReceiptHandle: "rh1", Body: "hello"}})

	binding := sqslistener.HandlerBinding{
		Name: "orders",
		Config: sqslistener.NewConfig(
			sqslistener.WithQueueName("orders"),
			sqslistener.WithMaxRetryAttempts(2),
			sqslistener.WithRetryDelay(5*time.Millisecond),
			sqslistener.WithDLQ("orders-dlq"),
		),
		Handler: sqslistener.NewSingleHandler(func(ctx context.Context, msg sqslistener.Message) error {
			return errors.New("permanent failure")
		}),
	}

	container, err := sqslistener.NewContainer(binding, s.client, s.o11y)
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(container.Start(ctx))
	defer container.Stop(ctx, time.Second)

	s.Require().True(waitForCondition(s.T(), time.Second, func() bool { return s.client.sentCount() == 1 }))

	stats := container.Stats()
	s.Equal(int64(1), stats.MessagesFailed)
	s.Equal(int64(1), stats.MessagesSentToDLQ)
	s.Equal(int64(0), stats.MessagesDeleted)

	var envelope sqslistener.DLQEnvelope
	s.Require().NoError(json.Unmarshal([]byte(s.client.sent[0].body), &envelope))
	s.Equal("permanent failure", envelope.ErrorMessage, "DLQ envelope must carry the handler's own error message, not the retry wrapper's")
	s.NotContains(envelope.ErrorType, "ProcessingError", "DLQ envelope error_type must be the handler error's own type, not the framework's retry wrapper")
	s.Equal("m1", envelope.OriginalMessageID)
	s.Equal(2, envelope.RetryAttemptsExhausted)
}

// TestGracefulStopWaitsForInFlightWork covers: Stop waits for a
// handler that finishes comfortably within the grace period.
func (s *ContainerSuite) TestGracefulStopWaitsForInFlightWork() {
	s.client.enqueue([]sqslistener.Message{{MessageID: "m1", ReceiptHandle: "rh1", Body: "hello"}})

	var finished atomic.Bool
	binding := sqslistener.HandlerBinding{
		Name:   "orders",
		Config: sqslistener.NewConfig(sqslistener.WithQueueName("orders")),
		Handler: sqslistener.NewSingleHandler(func(ctx context.Context, msg sqslistener.Message) error {
			time.Sleep(50 * time.Millisecond)
			finished.Store(true)
			return nil
		}),
	}

	container, err := sqslistener.NewContainer(binding, s.client, s.o11y)
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(container.Start(ctx))

	s.Require().True(waitForCondition(s.T(), time.Second, func() bool {
		stats := container.Stats()
		return stats.ActiveWorkers > 0 || finished.Load()
	}))

	err = container.Stop(ctx, time.Second)
	s.Require().NoError(err)
	s.True(finished.Load(), "in-flight handler should have finished before Stop returned")
	s.Equal(sqslistener.StateStopped, container.State())
}

// TestBatchModeDeletesWholeBatchOnSuccess covers: a batch-mode handler
// that succeeds deletes every message in the batch with a single
// DeleteMessageBatch call, and the whole batch counts as one processed
// unit.
func (s *ContainerSuite) TestBatchModeDeletesWholeBatchOnSuccess() {
	s.client.enqueue([]sqslistener.Message{
		{MessageID: "m1", ReceiptHandle: "rh1", Body: "one"},
		{MessageID: "m2", ReceiptHandle: "rh2", Body: "two"},
	})

	var batchSize atomic.Int32
	binding := sqslistener.HandlerBinding{
		Name: "orders",
		Config: sqslistener.NewConfig(
			sqslistener.WithQueueName("orders"),
			sqslistener.WithBatchMode(true),
		),
		Handler: sqslistener.NewBatchHandler(func(ctx context.Context, msgs []sqslistener.Message) error {
			batchSize.Store(int32(len(msgs)))
			return nil
		}),
	}

	container, err := sqslistener.NewContainer(binding, s.client, s.o11y)
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(container.Start(ctx))
	defer container.Stop(ctx, time.Second)

	s.Require().True(waitForCondition(s.T(), time.Second, func() bool { return s.client.batchDeleteCount() == 1 }))
	s.Equal(int32(2), batchSize.Load())

	stats := container.Stats()
	s.Equal(int64(1), stats.MessagesProcessed)
	s.Equal(int64(0), stats.MessagesFailed)
}

// TestBatchModeDLQsEveryElementOnFailure covers: a batch-mode handler
// that exhausts its retries routes every message in the batch to the
// DLQ individually — one envelope per message, not one for the batch —
// per spec.md's preserved-source-behaviour resolution.
func (s *ContainerSuite) TestBatchModeDLQsEveryElementOnFailure() {
	s.client.withQueue("orders-dlq", "https://sqs/orders-dlq")
	s.client.enqueue([]sqslistener.Message{
		{MessageID: "m1", ReceiptHandle: "rh1", Body: "one"},
		{MessageID: "m2", ReceiptHandle: "rh2", Body: "two"},
	})

	binding := sqslistener.HandlerBinding{
		Name: "orders",
		Config: sqslistener.NewConfig(
			sqslistener.WithQueueName("orders"),
			sqslistener.WithBatchMode(true),
			sqslistener.WithMaxRetryAttempts(0),
			sqslistener.WithDLQ("orders-dlq"),
		),
		Handler: sqslistener.NewBatchHandler(func(ctx context.Context, msgs []sqslistener.Message) error {
			return errors.New("batch failed")
		}),
	}

	container, err := sqslistener.NewContainer(binding, s.client, s.o11y)
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(container.Start(ctx))
	defer container.Stop(ctx, time.Second)

	s.Require().True(waitForCondition(s.T(), time.Second, func() bool { return s.client.sentCount() == 2 }))

	stats := container.Stats()
	s.Equal(int64(1), stats.MessagesFailed)
	s.Equal(int64(2), stats.MessagesSentToDLQ)
	s.Equal(int64(0), stats.MessagesDeleted)
}

// TestBatchModeHandlerMismatchFailsAtConstruction covers: registering a
// batch-mode config with a single-message handler (or vice versa) is a
// configuration error caught at construction time, not the first
// delivered message.
func (s *ContainerSuite) TestBatchModeHandlerMismatchFailsAtConstruction() {
	binding := sqslistener.HandlerBinding{
		Name: "orders",
		Config: sqslistener.NewConfig(
			sqslistener.WithQueueName("orders"),
			sqslistener.WithBatchMode(true),
		),
		Handler: sqslistener.NewSingleHandler(func(ctx context.Context, msg sqslistener.Message) error { return nil }),
	}

	_, err := sqslistener.NewContainer(binding, s.client, s.o11y)
	s.Require().Error(err)

	var cfgErr *sqslistener.ConfigError
	s.Require().ErrorAs(err, &cfgErr)
}

// TestForcedStopWhenGraceExceeded covers: Stop returns a
// *ShutdownError when the bound handler outlives the grace period, and
// still forces the container to StateStopped.
func (s *ContainerSuite) TestForcedStopWhenGraceExceeded() {
	s.client.enqueue([]sqslistener.Message{{MessageID: "m1", ReceiptHandle: "rh1", Body: "hello"}})

	var handlerReleased sync.WaitGroup
	handlerReleased.Add(1)
	binding := sqslistener.HandlerBinding{
		Name:   "orders",
		Config: sqslistener.NewConfig(sqslistener.WithQueueName("orders")),
		Handler: sqslistener.NewSingleHandler(func(ctx context.Context, msg sqslistener.Message) error {
			handlerReleased.Wait()
			return nil
		}),
	}

	container, err := sqslistener.NewContainer(binding, s.client, s.o11y)
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(container.Start(ctx))
	defer handlerReleased.Done()

	s.Require().True(waitForCondition(s.T(), time.Second, func() bool {
		return container.Stats().ActiveWorkers > 0
	}))

	err = container.Stop(ctx, 20*time.Millisecond)
	s.Require().Error(err)

	var shutdownErr *sqslistener.ShutdownError
	s.Require().ErrorAs(err, &shutdownErr)
	s.Equal(sqslistener.StateStopped, container.State())
}
