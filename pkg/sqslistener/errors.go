package sqslistener

import "fmt"

// ConfigError reports an invalid container configuration. NewContainer
// returns it and builds no container, so no container ever enters
// StateFailed for a configuration error; Start does not re-validate the
// configuration.
type ConfigError struct {
	Container string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sqslistener: invalid configuration for container %q: %v", e.Container, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// QueueResolutionError reports a failure to resolve a queue name (main
// or DLQ) to a URL via the SQSClient.
type QueueResolutionError struct {
	Container string
	QueueName string
	Err       error
}

func (e *QueueResolutionError) Error() string {
	return fmt.Sprintf("sqslistener: failed to resolve queue %q for container %q: %v", e.QueueName, e.Container, e.Err)
}

func (e *QueueResolutionError) Unwrap() error { return e.Err }

// ProcessingError reports a handler failure for a given message,
// including the attempt number so callers can distinguish a first
// failure from an exhausted retry budget.
type ProcessingError struct {
	Container  string
	MessageID  string
	Attempt    int
	MaxRetries int
	Err        error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("sqslistener: handler failed for message %q on container %q (attempt %d/%d): %v",
		e.MessageID, e.Container, e.Attempt, e.MaxRetries, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// DeleteError reports a failure to delete a successfully processed
// message. It is logged, never propagated, since a redundant SQS
// redelivery is preferable to losing the success signal entirely.
type DeleteError struct {
	Container string
	MessageID string
	Err       error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("sqslistener: failed to delete message %q on container %q: %v", e.MessageID, e.Container, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// DLQError reports a failure to publish an envelope to the dead-letter
// queue. Like DeleteError it is logged rather than propagated, since
// failing the whole container over a DLQ outage would stop healthy
// message flow too.
type DLQError struct {
	Container string
	MessageID string
	Err       error
}

func (e *DLQError) Error() string {
	return fmt.Sprintf("sqslistener: failed to send message %q to DLQ on container %q: %v", e.MessageID, e.Container, e.Err)
}

func (e *DLQError) Unwrap() error { return e.Err }

// ShutdownError reports that a container's grace period elapsed
// before every in-flight worker finished.
type ShutdownError struct {
	Container string
	Err       error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("sqslistener: shutdown of container %q exceeded its grace period: %v", e.Container, e.Err)
}

func (e *ShutdownError) Unwrap() error { return e.Err }

// StateError reports an invalid state transition attempt, such as
// starting an already-running container.
type StateError struct {
	Container string
	From      State
	To        State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("sqslistener: container %q cannot transition from %s to %s", e.Container, e.From, e.To)
}
