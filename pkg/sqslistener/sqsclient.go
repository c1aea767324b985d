package sqslistener

import "context"

// SQSClient is the external collaborator contract every
// ListenerContainer depends on. A concrete adapter over the real AWS
// SDK lives in the awssqs subpackage; tests substitute an in-memory
// fake implementing the same five operations.
type SQSClient interface {
	// GetQueueURL resolves a logical queue name to its URL.
	GetQueueURL(ctx context.Context, name string) (string, error)

	// ReceiveMessages long-polls the given queue. maxMessages and
	// waitSeconds are forwarded as-is; callers are expected to have
	// already validated them against SQS's [1,10] and [0,20] ranges.
	ReceiveMessages(ctx context.Context, queueURL string, maxMessages, waitSeconds int32) ([]Message, error)

	// DeleteMessage removes a single message using its receipt
	// handle.
	DeleteMessage(ctx context.Context, queueURL, receiptHandle string) error

	// DeleteMessageBatch removes up to ten messages in one call.
	DeleteMessageBatch(ctx context.Context, queueURL string, receiptHandles []string) error

	// SendMessage publishes a message (used for DLQ routing) and
	// returns the assigned message id.
	SendMessage(ctx context.Context, queueURL, body string, attributes map[string]string) (string, error)
}
