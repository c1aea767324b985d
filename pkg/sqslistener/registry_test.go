package sqslistener_test

import (
	"context"
	"testing"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability/fake"
	"github.com/JailtonJunior94/devkit-go/pkg/sqslistener"
	"github.com/stretchr/testify/suite"
)

type RegistrySuite struct {
	suite.Suite

	client *fakeSQSClient
	o11y   *fake.Provider
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.client = newFakeSQSClient().
		withQueue("orders", "https://sqs/orders").
		withQueue("payments", "https://sqs/payments")
	s.o11y = fake.NewProvider()
}

func noopBinding(name string) sqslistener.HandlerBinding {
	return sqslistener.HandlerBinding{
		Name:    name,
		Config:  sqslistener.NewConfig(sqslistener.WithQueueName(name)),
		Handler: sqslistener.NewSingleHandler(func(ctx context.Context, msg sqslistener.Message) error { return nil }),
	}
}

func (s *RegistrySuite) TestRegisterRejectsDuplicateNames() {
	registry := sqslistener.NewRegistry(s.o11y)

	_, err := registry.Register(noopBinding("orders"), s.client)
	s.Require().NoError(err)

	_, err = registry.Register(noopBinding("orders"), s.client)
	s.Require().Error(err)
}

func (s *RegistrySuite) TestUnregisterRemovesContainerAndAllowsNameReuse() {
	registry := sqslistener.NewRegistry(s.o11y)

	_, err := registry.Register(noopBinding("orders"), s.client)
	s.Require().NoError(err)

	s.Require().NoError(registry.Unregister("orders"))

	_, ok := registry.Get("orders")
	s.False(ok)

	// Name is free again now that the old registration is gone.
	_, err = registry.Register(noopBinding("orders"), s.client)
	s.Require().NoError(err)
}

func (s *RegistrySuite) TestUnregisterUnknownNameReturnsError() {
	registry := sqslistener.NewRegistry(s.o11y)
	s.Require().Error(registry.Unregister("missing"))
}

func (s *RegistrySuite) TestStartAllStartsEveryContainerEvenIfOneFails() {
	registry := sqslistener.NewRegistry(s.o11y)

	_, err := registry.Register(noopBinding("orders"), s.client)
	s.Require().NoError(err)

	// "unknown" is not registered with the fake client, so resolving
	// its queue URL fails — StartAll must still start "orders".
	_, err = registry.Register(noopBinding("unknown"), s.client)
	s.Require().NoError(err)

	ctx := context.Background()
	err = registry.StartAll(ctx)
	s.Require().Error(err)
	defer registry.StopAll(ctx, time.Second)

	orders, ok := registry.Get("orders")
	s.Require().True(ok)
	s.Equal(sqslistener.StateRunning, orders.State())

	unknown, ok := registry.Get("unknown")
	s.Require().True(ok)
	s.Equal(sqslistener.StateFailed, unknown.State())
}

func (s *RegistrySuite) TestStopAllStopsEveryRegisteredContainer() {
	registry := sqslistener.NewRegistry(s.o11y)

	_, err := registry.Register(noopBinding("orders"), s.client)
	s.Require().NoError(err)
	_, err = registry.Register(noopBinding("payments"), s.client)
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(registry.StartAll(ctx))
	s.Require().NoError(registry.StopAll(ctx, time.Second))

	for _, name := range []string{"orders", "payments"} {
		c, ok := registry.Get(name)
		s.Require().True(ok)
		s.Equal(sqslistener.StateStopped, c.State())
	}
}

func (s *RegistrySuite) TestHealthReflectsContainerState() {
	registry := sqslistener.NewRegistry(s.o11y)
	_, err := registry.Register(noopBinding("orders"), s.client)
	s.Require().NoError(err)

	health := registry.Health(context.Background())
	s.Equal("unhealthy", health.Status)
	s.Equal("fail", health.Checks["orders"].Status)

	ctx := context.Background()
	s.Require().NoError(registry.StartAll(ctx))
	defer registry.StopAll(ctx, time.Second)

	health = registry.Health(ctx)
	s.Equal("healthy", health.Status)
	s.Equal("pass", health.Checks["orders"].Status)
}

func (s *RegistrySuite) TestSnapshotReturnsStatsForEveryContainer() {
	registry := sqslistener.NewRegistry(s.o11y)
	_, err := registry.Register(noopBinding("orders"), s.client)
	s.Require().NoError(err)
	_, err = registry.Register(noopBinding("payments"), s.client)
	s.Require().NoError(err)

	stats := registry.Snapshot()
	s.Len(stats, 2)
}

func (s *RegistrySuite) TestResetAllZeroesCountersAcrossRegistry() {
	registry := sqslistener.NewRegistry(s.o11y)
	s.client.enqueue([]sqslistener.Message{{MessageID: "m1", ReceiptHandle: "rh1", Body: "hello"}})

	_, err := registry.Register(noopBinding("orders"), s.client)
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(registry.StartAll(ctx))
	defer registry.StopAll(ctx, time.Second)

	s.Require().Eventually(func() bool {
		stats, _ := registry.Get("orders")
		return stats.Stats().MessagesProcessed == 1
	}, time.Second, 5*time.Millisecond)

	registry.ResetAll()

	for _, stats := range registry.Snapshot() {
		s.Equal(int64(0), stats.MessagesProcessed)
		s.Equal(int64(0), stats.MessagesDeleted)
	}
}
