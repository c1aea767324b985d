package sqslistener

import (
	"context"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// MessagePoller is the single goroutine that calls ReceiveMessages in
// a loop and pushes whatever it gets onto a bounded channel. Pairing a
// bounded channel with a dedicated poller goroutine is the tasks-plus-
// channels replacement for the original coroutine/future mix: the
// channel's capacity alone throttles how far the poller can run ahead
// of the workers draining it.
type MessagePoller struct {
	client      SQSClient
	queueURL    string
	maxMessages int32
	waitSeconds int32
	out         chan<- []Message
	metrics     *MetricsCollector
	o11y        observability.Observability

	errorBackoff time.Duration
}

// NewMessagePoller builds a poller that pushes received batches onto
// out. out should be sized to Config.MaxConcurrentMessages so a slow
// consumer applies backpressure to the poll loop.
func NewMessagePoller(client SQSClient, queueURL string, maxMessages, waitSeconds int32, out chan<- []Message, metrics *MetricsCollector, o11y observability.Observability, retryDelay time.Duration) *MessagePoller {
	return &MessagePoller{
		client:       client,
		queueURL:     queueURL,
		maxMessages:  maxMessages,
		waitSeconds:  waitSeconds,
		out:          out,
		metrics:      metrics,
		o11y:         o11y,
		errorBackoff: minDuration(time.Second, retryDelay),
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// Run blocks until ctx is cancelled, repeatedly long-polling the queue
// and forwarding non-empty batches to out. Transient receive errors
// are logged and followed by a short backoff rather than stopping the
// poller, since SQS throttling and transient network errors are
// expected traffic, not fatal conditions.
func (p *MessagePoller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := p.client.ReceiveMessages(ctx, p.queueURL, p.maxMessages, p.waitSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.o11y.Logger().Warn(ctx, "poll failed, backing off",
				observability.String("queue_url", p.queueURL),
				observability.Error(err))

			select {
			case <-time.After(p.errorBackoff):
			case <-ctx.Done():
				return
			}
			continue
		}

		if len(messages) == 0 {
			continue
		}

		if p.metrics != nil {
			p.metrics.RecordReceived(ctx, int64(len(messages)))
		}

		select {
		case p.out <- messages:
		case <-ctx.Done():
			return
		}
	}
}
