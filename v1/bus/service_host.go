package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Aleph-Alpha/bushost/v1/container"
)

type hostState struct {
	scope    *container.Scope
	provider *BusProvider
}

// ServiceHost runs the bus for the lifetime of the application. Start opens a
// container scope, builds the BusProvider from the scope's HostFactory and
// ServiceConfigurator and so starts the bus; Stop stops it and closes the scope.
type ServiceHost struct {
	scopes container.ScopeFactory
	logger Logger

	mu    sync.Mutex
	state atomic.Pointer[hostState]
}

// NewServiceHost returns a stopped host.
func NewServiceHost(scopes container.ScopeFactory, logger Logger) (*ServiceHost, error) {
	if scopes == nil || logger == nil {
		return nil, fmt.Errorf("bus: scope factory and logger are required: %w", ErrInvalidArgument)
	}
	return &ServiceHost{scopes: scopes, logger: logger}, nil
}

// Start starts the bus. Calling Start on a running host does nothing.
func (h *ServiceHost) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state.Load() != nil {
		return nil
	}

	scope := h.scopes.CreateScope()
	provider, err := h.startBus(ctx, scope)
	if err != nil {
		return errors.Join(err, scope.Close())
	}

	h.state.Store(&hostState{scope: scope, provider: provider})
	if b, err := provider.Bus(); err == nil {
		h.logger.Info("Bus host started", nil, map[string]interface{}{"address": b.Address()})
	}
	return nil
}

func (h *ServiceHost) startBus(ctx context.Context, scope *container.Scope) (*BusProvider, error) {
	factory, err := container.Resolve[HostFactory](scope)
	if err != nil {
		return nil, fmt.Errorf("bus: resolving host factory: %w", err)
	}
	configurator, err := container.Resolve[ServiceConfigurator](scope)
	if err != nil {
		return nil, fmt.Errorf("bus: resolving service configurator: %w", err)
	}
	return NewBusProvider(ctx, factory, configurator)
}

// Stop stops the bus and closes the host scope. Only the first Stop after a
// Start does any work.
func (h *ServiceHost) Stop(ctx context.Context) error {
	state := h.state.Swap(nil)
	if state == nil {
		return nil
	}

	h.logger.Info("Stopping bus host", nil)
	return errors.Join(state.provider.Shutdown(ctx), state.scope.Close())
}

// Bus returns the running bus.
func (h *ServiceHost) Bus() (Bus, error) {
	state := h.state.Load()
	if state == nil {
		return nil, ErrNotStarted
	}
	return state.provider.Bus()
}

// Running reports whether the host has been started and not stopped.
func (h *ServiceHost) Running() bool {
	return h.state.Load() != nil
}
