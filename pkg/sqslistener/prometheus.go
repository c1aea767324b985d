package sqslistener

import "github.com/prometheus/client_golang/prometheus"

// PrometheusSnapshotExporter registers a set of gauges that mirror a
// ContainerRegistry's readable snapshot each time Refresh is called (a
// scrape alone does not update them), rather than trying to keep a push-based exporter in sync with the
// atomic counters in MetricsCollector.
type PrometheusSnapshotExporter struct {
	registry *ContainerRegistry

	received  *prometheus.GaugeVec
	processed *prometheus.GaugeVec
	failed    *prometheus.GaugeVec
	retried   *prometheus.GaugeVec
	dlq       *prometheus.GaugeVec
	deleted   *prometheus.GaugeVec
	active    *prometheus.GaugeVec
}

// NewPrometheusSnapshotExporter builds an exporter for reg and
// registers its collectors against promRegistry.
func NewPrometheusSnapshotExporter(reg *ContainerRegistry, promRegistry prometheus.Registerer) *PrometheusSnapshotExporter {
	labels := []string{"container"}
	e := &PrometheusSnapshotExporter{
		registry: reg,
		received: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sqslistener_messages_received_total", Help: "Messages received from SQS.",
		}, labels),
		processed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sqslistener_messages_processed_total", Help: "Messages successfully processed.",
		}, labels),
		failed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sqslistener_messages_failed_total", Help: "Messages that exhausted retries.",
		}, labels),
		retried: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sqslistener_messages_retried_total", Help: "Retry attempts issued.",
		}, labels),
		dlq: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sqslistener_messages_dlq_total", Help: "Messages routed to the dead-letter queue.",
		}, labels),
		deleted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sqslistener_messages_deleted_total", Help: "Messages deleted from SQS.",
		}, labels),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sqslistener_active_workers", Help: "In-flight message or batch handlers.",
		}, labels),
	}

	promRegistry.MustRegister(e.received, e.processed, e.failed, e.retried, e.dlq, e.deleted, e.active)
	return e
}

// Refresh pulls a fresh snapshot from the registry and updates every
// gauge. Call it from a scrape hook or a periodic ticker.
func (e *PrometheusSnapshotExporter) Refresh() {
	for _, stats := range e.registry.Snapshot() {
		labels := prometheus.Labels{"container": stats.ContainerID}
		e.received.With(labels).Set(float64(stats.MessagesReceived))
		e.processed.With(labels).Set(float64(stats.MessagesProcessed))
		e.failed.With(labels).Set(float64(stats.MessagesFailed))
		e.retried.With(labels).Set(float64(stats.MessagesRetried))
		e.dlq.With(labels).Set(float64(stats.MessagesSentToDLQ))
		e.deleted.With(labels).Set(float64(stats.MessagesDeleted))
		e.active.With(labels).Set(float64(stats.ActiveWorkers))
	}
}
