package sqslistenerfx_test

import (
	"context"
	"testing"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
	"github.com/JailtonJunior94/devkit-go/pkg/observability/fake"
	"github.com/JailtonJunior94/devkit-go/pkg/sqslistener"
	"github.com/JailtonJunior94/devkit-go/pkg/sqslistener/sqslistenerfx"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type stubClient struct{}

func (stubClient) GetQueueURL(ctx context.Context, name string) (string, error) {
	return "https://sqs/" + name, nil
}
func (stubClient) ReceiveMessages(ctx context.Context, queueURL string, maxMessages, waitSeconds int32) ([]sqslistener.Message, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (stubClient) DeleteMessage(ctx context.Context, queueURL, receiptHandle string) error { return nil }
func (stubClient) DeleteMessageBatch(ctx context.Context, queueURL string, receiptHandles []string) error {
	return nil
}
func (stubClient) SendMessage(ctx context.Context, queueURL, body string, attributes map[string]string) (string, error) {
	return "id", nil
}

func orderBinding() sqslistener.HandlerBinding {
	return sqslistener.HandlerBinding{
		Name:    "orders",
		Config:  sqslistener.NewConfig(sqslistener.WithQueueName("orders")),
		Handler: sqslistener.NewSingleHandler(func(ctx context.Context, msg sqslistener.Message) error { return nil }),
	}
}

// TestModuleStartsAndStopsRegisteredContainers exercises the fx wiring
// end to end: a bound listener reaches StateRunning on OnStart and
// StateStopped on OnStop, driven entirely by the fx lifecycle.
func TestModuleStartsAndStopsRegisteredContainers(t *testing.T) {
	var registry *sqslistener.ContainerRegistry

	app := fxtest.New(t,
		fx.Provide(func() observability.Observability { return fake.NewProvider() }),
		fx.Provide(func() sqslistener.SQSClient { return stubClient{} }),
		fx.Provide(fx.Annotate(
			func() sqslistener.HandlerBinding { return orderBinding() },
			fx.ResultTags(`group:"sqslistener_bindings"`),
		)),
		sqslistenerfx.Module,
		fx.Populate(&registry),
	)

	app.RequireStart()
	defer app.RequireStop()

	container, ok := registry.Get("orders")
	if !ok {
		t.Fatal("expected the orders binding to be registered")
	}
	if container.State() != sqslistener.StateRunning {
		t.Fatalf("container state = %s, want RUNNING", container.State())
	}
}
