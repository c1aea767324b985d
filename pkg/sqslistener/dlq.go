package sqslistener

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// DLQEnvelope is the structured payload published to a dead-letter
// queue. It is always built as a typed struct and marshaled with
// encoding/json — never assembled by templating strings into a JSON
// literal — so a malicious message body or error message can never
// break out of its field and inject adjacent JSON.
type DLQEnvelope struct {
	OriginalMessageID      string            `json:"original_message_id"`
	OriginalBody           string            `json:"original_body"`
	ErrorMessage           string            `json:"error_message"`
	ErrorType              string            `json:"error_type"`
	Timestamp              time.Time         `json:"timestamp"`
	ContainerID            string            `json:"container_id"`
	QueueURL               string            `json:"queue_url"`
	RetryAttemptsExhausted int               `json:"retry_attempts_exhausted"`
	OriginalAttributes     map[string]string `json:"original_attributes"`
}

// DLQHandler publishes exhausted messages to a dead-letter queue.
type DLQHandler struct {
	client      SQSClient
	dlqURL      string
	containerID string
	o11y        observability.Observability
}

// NewDLQHandler builds a handler bound to an already-resolved DLQ URL.
func NewDLQHandler(client SQSClient, dlqURL, containerID string, o11y observability.Observability) *DLQHandler {
	return &DLQHandler{client: client, dlqURL: dlqURL, containerID: containerID, o11y: o11y}
}

// Send builds the envelope for msg and publishes it to the DLQ. A
// publish failure is logged and returned as a *DLQError; callers treat
// it as non-fatal, per the error-handling design: losing a DLQ publish
// must never stop the container from continuing to process new work.
func (d *DLQHandler) Send(ctx context.Context, msg Message, queueURL string, cause error, attemptsExhausted int) error {
	errType := "unknown"
	if cause != nil {
		errType = fmt.Sprintf("%T", cause)
	}

	envelope := DLQEnvelope{
		OriginalMessageID:      msg.MessageID,
		OriginalBody:           msg.Body,
		ErrorMessage:           errString(cause),
		ErrorType:              errType,
		Timestamp:              time.Now().UTC(),
		ContainerID:            d.containerID,
		QueueURL:               queueURL,
		RetryAttemptsExhausted: attemptsExhausted,
		OriginalAttributes:     msg.Attributes,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		wrapped := &DLQError{Container: d.containerID, MessageID: msg.MessageID, Err: err}
		d.o11y.Logger().Error(ctx, "failed to encode DLQ envelope", observability.Error(wrapped))
		return wrapped
	}

	if _, err := d.client.SendMessage(ctx, d.dlqURL, string(body), nil); err != nil {
		wrapped := &DLQError{Container: d.containerID, MessageID: msg.MessageID, Err: err}
		d.o11y.Logger().Error(ctx, "failed to publish message to DLQ", observability.Error(wrapped))
		return wrapped
	}

	d.o11y.Logger().Warn(ctx, "message routed to DLQ",
		observability.String("message_id", msg.MessageID),
		observability.String("dlq_url", d.dlqURL))
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
