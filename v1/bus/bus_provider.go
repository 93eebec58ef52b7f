package bus

import (
	"context"
	"fmt"
	"sync/atomic"
)

type busHandle struct {
	control Control
}

// BusProvider owns one started bus. The bus is created and started by
// NewBusProvider and stopped by the first call to Shutdown or Close.
type BusProvider struct {
	handle atomic.Pointer[busHandle]
}

// NewBusProvider creates a bus through factory, configured by configurator,
// and starts it. The bus is created without a service name.
func NewBusProvider(ctx context.Context, factory HostFactory, configurator ServiceConfigurator) (*BusProvider, error) {
	if factory == nil || configurator == nil {
		return nil, fmt.Errorf("bus: host factory and service configurator are required: %w", ErrInvalidArgument)
	}

	control, err := factory.CreateBus(configurator, "")
	if err != nil {
		return nil, fmt.Errorf("bus: creating bus: %w", err)
	}
	if control == nil {
		return nil, fmt.Errorf("bus: host factory returned no bus: %w", ErrInvalidArgument)
	}

	if err := control.Start(ctx); err != nil {
		return nil, fmt.Errorf("bus: starting bus %s: %w", control.Address(), err)
	}

	p := &BusProvider{}
	p.handle.Store(&busHandle{control: control})
	return p, nil
}

// Bus returns the running bus, or ErrDisposed after shutdown.
func (p *BusProvider) Bus() (Bus, error) {
	h := p.handle.Load()
	if h == nil {
		return nil, ErrDisposed
	}
	return h.control, nil
}

// Shutdown stops the bus. Only the first call stops it; later calls return nil.
func (p *BusProvider) Shutdown(ctx context.Context) error {
	h := p.handle.Swap(nil)
	if h == nil {
		return nil
	}
	if err := h.control.Stop(ctx); err != nil {
		return fmt.Errorf("bus: stopping bus %s: %w", h.control.Address(), err)
	}
	return nil
}

// Close is Shutdown without a deadline, for owners that only know io.Closer.
func (p *BusProvider) Close() error {
	return p.Shutdown(context.Background())
}
