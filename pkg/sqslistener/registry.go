package sqslistener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// ContainerRegistry owns every ListenerContainer a host application
// registers and drives them together. StartAll and StopAll always
// snapshot the registered containers into a slice before iterating,
// never ranging over the live map directly, so a concurrent Register
// call can't race a sweep in progress.
type ContainerRegistry struct {
	mu         sync.RWMutex
	containers map[string]*ListenerContainer
	o11y       observability.Observability
}

// NewRegistry builds an empty registry.
func NewRegistry(o11y observability.Observability) *ContainerRegistry {
	return &ContainerRegistry{
		containers: make(map[string]*ListenerContainer),
		o11y:       o11y,
	}
}

// Register builds a ListenerContainer for binding and adds it to the
// registry under binding.Name. It returns an error if the name is
// already taken or the binding itself is invalid.
func (r *ContainerRegistry) Register(binding HandlerBinding, client SQSClient, opts ...ContainerOption) (*ListenerContainer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.containers[binding.Name]; exists {
		return nil, fmt.Errorf("sqslistener: container %q is already registered", binding.Name)
	}

	container, err := NewContainer(binding, client, r.o11y, opts...)
	if err != nil {
		return nil, err
	}

	r.containers[binding.Name] = container
	return container, nil
}

// Unregister removes the named container from the registry. It does
// not stop the container first; callers that want a clean shutdown
// should Stop it before unregistering. Returns an error if no
// container is registered under that name.
func (r *ContainerRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.containers[name]; !exists {
		return fmt.Errorf("sqslistener: container %q is not registered", name)
	}

	delete(r.containers, name)
	return nil
}

// Get returns the named container, if registered.
func (r *ContainerRegistry) Get(name string) (*ListenerContainer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.containers[name]
	return c, ok
}

func (r *ContainerRegistry) snapshot() []*ListenerContainer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	containers := make([]*ListenerContainer, 0, len(r.containers))
	for _, c := range r.containers {
		containers = append(containers, c)
	}
	return containers
}

// StartAll starts every registered container sequentially. A single
// container's failure is recorded and logged but never aborts the
// sweep — every other container still gets a chance to start. The
// returned error, if any, joins every individual failure.
func (r *ContainerRegistry) StartAll(ctx context.Context) error {
	snapshot := r.snapshot()
	var errs []error
	for _, c := range snapshot {
		if err := c.Start(ctx); err != nil {
			r.o11y.Logger().Error(ctx, "container failed to start",
				observability.String("container", c.name), observability.Error(err))
			errs = append(errs, err)
			continue
		}
	}

	r.o11y.Logger().Info(ctx, "startAll complete",
		observability.Int("total", len(snapshot)),
		observability.Int("failed", len(errs)))

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// StopAll stops every registered container sequentially, giving each
// up to gracePeriod to finish in-flight work. Like StartAll it never
// aborts early: a container that exceeds its grace period is logged
// and the sweep continues to the next one.
func (r *ContainerRegistry) StopAll(ctx context.Context, gracePeriod time.Duration) error {
	snapshot := r.snapshot()
	var errs []error
	for _, c := range snapshot {
		if err := c.Stop(ctx, gracePeriod); err != nil {
			errs = append(errs, err)
			continue
		}
	}

	r.o11y.Logger().Info(ctx, "stopAll complete",
		observability.Int("total", len(snapshot)),
		observability.Int("failed", len(errs)))

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Snapshot returns a readable stats snapshot for every registered
// container.
func (r *ContainerRegistry) Snapshot() []ContainerStats {
	containers := r.snapshot()
	stats := make([]ContainerStats, 0, len(containers))
	for _, c := range containers {
		stats = append(stats, c.Stats())
	}
	return stats
}

// ResetAll zeroes every registered container's counters without
// affecting their lifecycle states.
func (r *ContainerRegistry) ResetAll() {
	for _, c := range r.snapshot() {
		c.ResetStats()
	}
}
