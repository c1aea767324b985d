// Package sqslistenerfx wires sqslistener into a go.uber.org/fx
// application graph. It replaces annotation scanning with explicit
// registration: instead of a classpath scan discovering
// @SqsListener-annotated methods, each listener is provided as a
// HandlerBinding tagged into the "sqslistener_bindings" fx group, the
// same group-provider pattern the sibling kafkafx/rabbitmqfx modules
// use for their own consumer handlers.
package sqslistenerfx

import (
	"context"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
	"github.com/JailtonJunior94/devkit-go/pkg/sqslistener"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Module provides a ContainerRegistry and starts/stops every
// registered binding alongside the fx application's own lifecycle. Its
// own construction/invocation events are logged through zap rather
// than fx's default fmt.Printf logger, since this module's boot order
// matters (registry built before bindings resolve, containers started
// before the app signals ready) and is worth having in structured form
// independent of whatever Observability backend the host app wires up.
// Usage:
//
//	fx.New(
//	    sqslistenerfx.Module,
//	    fx.Provide(fx.Annotate(
//	        sqslistenerfx.ProvideBinding("orders", cfg, sqslistener.NewSingleHandler(handleOrder)),
//	        fx.ResultTags(`group:"sqslistener_bindings"`),
//	    )),
//	)
var Module = fx.Module("sqslistener",
	fx.WithLogger(func() fxevent.Logger {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		return &fxevent.ZapLogger{Logger: logger}
	}),
	fx.Provide(ProvideRegistry),
	fx.Invoke(StartRegistry),
)

// ShutdownGracePeriod bounds how long the OnStop hook that
// StartRegistry appends waits for in-flight
// work before forcing every container to stop.
type ShutdownGracePeriod time.Duration

// RegistryParams contains the dependencies needed to build a
// ContainerRegistry and populate it with every bound listener.
type RegistryParams struct {
	fx.In

	Observability observability.Observability
	Client        sqslistener.SQSClient
	Bindings      []sqslistener.HandlerBinding `group:"sqslistener_bindings"`
}

// RegistryResult exposes the built registry to the rest of the graph.
type RegistryResult struct {
	fx.Out

	Registry *sqslistener.ContainerRegistry
}

// ProvideRegistry builds a registry and registers every bound
// listener as a container, failing fast if any binding is invalid.
func ProvideRegistry(p RegistryParams) (RegistryResult, error) {
	registry := sqslistener.NewRegistry(p.Observability)

	for _, binding := range p.Bindings {
		if _, err := registry.Register(binding, p.Client); err != nil {
			return RegistryResult{}, err
		}
	}

	return RegistryResult{Registry: registry}, nil
}

// StartRegistryParams contains the dependencies needed to hook the
// registry into the fx application lifecycle.
type StartRegistryParams struct {
	fx.In

	Registry    *sqslistener.ContainerRegistry
	GracePeriod ShutdownGracePeriod `optional:"true"`
}

// StartRegistry appends an fx.Hook that starts every container on
// OnStart and stops every container on OnStop, mirroring the
// OnStop-closes-the-broker pattern the kafkafx/rabbitmqfx modules use
// for their own resources.
func StartRegistry(lc fx.Lifecycle, p StartRegistryParams) {
	grace := time.Duration(p.GracePeriod)
	if grace <= 0 {
		grace = 30 * time.Second
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return p.Registry.StartAll(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return p.Registry.StopAll(ctx, grace)
		},
	})
}

// ProvideBinding is a helper that builds a group-tagged provider for a
// single listener binding. Usage:
//
//	fx.Provide(fx.Annotate(
//	    sqslistenerfx.ProvideBinding("orders", cfg, handler),
//	    fx.ResultTags(`group:"sqslistener_bindings"`),
//	))
func ProvideBinding(name string, config sqslistener.Config, handler sqslistener.Handler) func() sqslistener.HandlerBinding {
	return func() sqslistener.HandlerBinding {
		return sqslistener.HandlerBinding{Name: name, Config: config, Handler: handler}
	}
}
