package sqslistener

import "context"

// HandlerKind distinguishes the two handler arities a binding can
// register, replacing annotation-derived method-signature detection
// with an explicit tag the caller sets once, up front.
type HandlerKind int

const (
	// SingleMessageHandler invokes the handler once per message.
	SingleMessageHandler HandlerKind = iota
	// BatchMessageHandler invokes the handler once per received batch.
	BatchMessageHandler
)

// SingleHandlerFunc processes one message at a time.
type SingleHandlerFunc func(ctx context.Context, msg Message) error

// BatchHandlerFunc processes an entire received batch at once. The
// framework treats the batch as a unit: success deletes every message
// in the batch (when AutoDelete is set); failure retries the whole
// batch as one call and, once retries are exhausted, DLQs every message
// in the batch individually.
type BatchHandlerFunc func(ctx context.Context, msgs []Message) error

// Handler is a tagged union over the two supported handler arities.
// Exactly one of Single or Batch must be set, matching Kind.
type Handler struct {
	Kind   HandlerKind
	Single SingleHandlerFunc
	Batch  BatchHandlerFunc
}

// NewSingleHandler builds a Handler that processes one message at a
// time.
func NewSingleHandler(fn SingleHandlerFunc) Handler {
	return Handler{Kind: SingleMessageHandler, Single: fn}
}

// NewBatchHandler builds a Handler that processes a whole batch at
// once.
func NewBatchHandler(fn BatchHandlerFunc) Handler {
	return Handler{Kind: BatchMessageHandler, Batch: fn}
}

// HandlerBinding is the explicit replacement for an
// annotation-scanned listener method: it pairs a Handler with the
// Config that governs how messages reach it. A Boot-time registration
// call (see sqslistenerfx) builds one HandlerBinding per declared
// listener.
type HandlerBinding struct {
	// Name identifies the container in logs, metrics, and the
	// registry. Typically the queue name.
	Name    string
	Config  Config
	Handler Handler
}
