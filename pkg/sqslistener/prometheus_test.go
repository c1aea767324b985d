package sqslistener_test

import (
	"context"
	"testing"

	"github.com/JailtonJunior94/devkit-go/pkg/observability/fake"
	"github.com/JailtonJunior94/devkit-go/pkg/sqslistener"
	"github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusSnapshotExporterRefresh(t *testing.T) {
	o11y := fake.NewProvider()
	registry := sqslistener.NewRegistry(o11y)

	client := newFakeSQSClient().withQueue("orders", "https://sqs/orders")
	client.enqueue([]sqslistener.Message{{MessageID: "m1", ReceiptHandle: "rh1", Body: "hello"}})

	binding := noopBinding("orders")
	_, err := registry.Register(binding, client)
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}

	promRegistry := prometheus.NewRegistry()
	exporter := sqslistener.NewPrometheusSnapshotExporter(registry, promRegistry)

	ctx := context.Background()
	if err := registry.StartAll(ctx); err != nil {
		t.Fatalf("StartAll() = %v", err)
	}
	defer registry.StopAll(ctx, 0)

	exporter.Refresh()

	families, err := promRegistry.Gather()
	if err != nil {
		t.Fatalf("Gather() = %v", err)
	}

	var found bool
	for _, mf := range families {
		if mf.GetName() == "sqslistener_active_workers" {
			found = true
			if len(mf.GetMetric()) == 0 {
				t.Errorf("expected at least one active_workers series registered")
			}
		}
	}
	if !found {
		t.Errorf("expected sqslistener_active_workers to be registered")
	}
}
