package sqslistener

import "time"

// ConfigOption is a functional option for building a Config on top of
// DefaultConfig, mirroring the option-per-field pattern the teacher
// uses for its own consumer configuration.
type ConfigOption func(*Config)

// NewConfig builds a Config starting from DefaultConfig and applies
// opts in order.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithQueueName sets the logical queue name to resolve at Start.
func WithQueueName(name string) ConfigOption {
	return func(c *Config) { c.QueueName = name }
}

// WithQueueURL sets an already-known queue URL, skipping resolution.
func WithQueueURL(url string) ConfigOption {
	return func(c *Config) { c.QueueURL = url }
}

// WithMaxMessagesPerPoll sets how many messages a single poll
// requests.
func WithMaxMessagesPerPoll(n int32) ConfigOption {
	return func(c *Config) { c.MaxMessagesPerPoll = n }
}

// WithPollTimeoutSeconds sets the long-poll wait time.
func WithPollTimeoutSeconds(seconds int32) ConfigOption {
	return func(c *Config) { c.PollTimeoutSeconds = seconds }
}

// WithBatchMode routes received batches to the handler's batch arity.
func WithBatchMode(enabled bool) ConfigOption {
	return func(c *Config) { c.BatchMode = enabled }
}

// WithAutoDelete controls whether successfully processed messages are
// deleted automatically.
func WithAutoDelete(enabled bool) ConfigOption {
	return func(c *Config) { c.AutoDelete = enabled }
}

// WithMaxRetryAttempts sets the retry budget.
func WithMaxRetryAttempts(attempts int) ConfigOption {
	return func(c *Config) { c.MaxRetryAttempts = attempts }
}

// WithRetryDelay sets the base delay between retries.
func WithRetryDelay(delay time.Duration) ConfigOption {
	return func(c *Config) { c.RetryDelayMs = delay.Milliseconds() }
}

// WithDLQ enables the dead-letter queue with the given logical name.
func WithDLQ(name string) ConfigOption {
	return func(c *Config) {
		c.EnableDLQ = true
		c.DLQName = name
	}
}

// WithMaxConcurrentMessages bounds in-flight handler invocations.
func WithMaxConcurrentMessages(n int) ConfigOption {
	return func(c *Config) { c.MaxConcurrentMessages = n }
}
