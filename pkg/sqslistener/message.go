package sqslistener

// Message represents a single message received from an SQS queue.
// Unlike the partition/offset addressing used by log-based brokers,
// SQS identifies a message by its MessageId and authorizes deletion
// through a ReceiptHandle that is only valid for the current delivery.
type Message struct {
	// MessageID is the SQS-assigned identifier for the message.
	MessageID string

	// ReceiptHandle authorizes deleting or changing the visibility of
	// this particular delivery. A redelivered message gets a new one.
	ReceiptHandle string

	// Body is the raw message payload as received from the queue.
	Body string

	// Attributes holds the custom SQS message attributes that carry a
	// string value, as returned by ReceiveMessage. System attributes are
	// not included; ApproximateReceiveCount is surfaced separately.
	Attributes map[string]string

	// ApproximateReceiveCount is SQS's own redelivery counter, exposed
	// so handlers can report it without re-deriving it from retry
	// bookkeeping. The DLQ envelope does not carry it.
	ApproximateReceiveCount int
}
