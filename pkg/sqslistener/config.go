package sqslistener

import (
	"errors"
	"fmt"
)

// Config holds the per-container configuration that in the original
// annotation-driven design lived on the handler method itself. Here it
// is a flat struct passed explicitly at registration time, replacing
// the inheritance-based configuration hierarchy.
type Config struct {
	// QueueName is the logical queue name resolved to a URL via the
	// SQSClient at Start. Required unless QueueURL is set; Validate
	// rejects a config that sets both or neither.
	QueueName string

	// QueueURL, if already known, skips queue resolution entirely.
	QueueURL string

	// MaxMessagesPerPoll bounds how many messages a single
	// ReceiveMessage call requests. Clamped to [1,10] by SQS itself;
	// Validate rejects values outside that range rather than silently
	// clamping, so misconfiguration surfaces at boot.
	MaxMessagesPerPoll int32

	// PollTimeoutSeconds is the long-poll wait time, in [0,20].
	PollTimeoutSeconds int32

	// BatchMode routes received messages to the handler's batch arity
	// instead of invoking the single-message arity once per message.
	BatchMode bool

	// AutoDelete deletes successfully processed messages (or, in batch
	// mode, the whole batch) without requiring the handler to do so.
	AutoDelete bool

	// MaxRetryAttempts bounds in-process retries before a message is
	// either dropped or routed to the DLQ. Zero means no retries.
	MaxRetryAttempts int

	// RetryDelayMs is the base delay between retry attempts.
	RetryDelayMs int64

	// EnableDLQ routes exhausted messages to DLQName instead of
	// dropping them.
	EnableDLQ bool

	// DLQName is the dead-letter queue's logical name. Required when
	// EnableDLQ is true.
	DLQName string

	// MaxConcurrentMessages bounds how many messages (or batches) may
	// be in flight at once for this container.
	MaxConcurrentMessages int
}

// DefaultConfig returns a Config with the same conservative defaults
// SQS itself assumes when a caller omits ReceiveMessage parameters.
func DefaultConfig() Config {
	return Config{
		MaxMessagesPerPoll:    10,
		PollTimeoutSeconds:    20,
		AutoDelete:            true,
		MaxRetryAttempts:      3,
		RetryDelayMs:          1000,
		MaxConcurrentMessages: 10,
	}
}

// Validate checks the configuration and returns every violation
// joined into a single error, rather than failing on the first one.
func (c Config) Validate() error {
	var errs []error

	switch {
	case c.QueueName == "" && c.QueueURL == "":
		errs = append(errs, errors.New("QueueName or QueueURL is required"))
	case c.QueueName != "" && c.QueueURL != "":
		errs = append(errs, errors.New("QueueName and QueueURL are mutually exclusive, set exactly one"))
	}

	if c.MaxMessagesPerPoll < 1 || c.MaxMessagesPerPoll > 10 {
		errs = append(errs, fmt.Errorf("MaxMessagesPerPoll must be in [1,10], got %d", c.MaxMessagesPerPoll))
	}

	if c.PollTimeoutSeconds < 0 || c.PollTimeoutSeconds > 20 {
		errs = append(errs, fmt.Errorf("PollTimeoutSeconds must be in [0,20], got %d", c.PollTimeoutSeconds))
	}

	if c.MaxRetryAttempts < 0 {
		errs = append(errs, errors.New("MaxRetryAttempts must be greater than or equal to 0"))
	}

	if c.RetryDelayMs < 0 {
		errs = append(errs, errors.New("RetryDelayMs must be greater than or equal to 0"))
	}

	if c.MaxConcurrentMessages <= 0 {
		errs = append(errs, errors.New("MaxConcurrentMessages must be greater than 0"))
	}

	if c.EnableDLQ && c.DLQName == "" {
		errs = append(errs, errors.New("DLQName is required when EnableDLQ is true"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
