package container

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	resolverType     = reflect.TypeFor[Resolver]()
	scopeFactoryType = reflect.TypeFor[ScopeFactory]()
	scopeType        = reflect.TypeFor[*Scope]()
)

// Scope is a unit of ownership for resolved services. Scoped services are
// created once per Scope; transient services resolved from a Scope and
// scoped services it created are closed, in reverse creation order, when
// the Scope is closed.
//
// A Scope is safe for concurrent use, but is normally used by a single
// unit of work such as one consumed message.
type Scope struct {
	provider *Provider
	parent   *Scope

	mu          sync.Mutex
	instances   map[*descriptor]any
	disposables []io.Closer

	closed atomic.Bool
}

func newScope(p *Provider, parent *Scope) *Scope {
	return &Scope{
		provider:  p,
		parent:    parent,
		instances: make(map[*descriptor]any),
	}
}

// IsRoot reports whether this is the provider's root scope.
func (s *Scope) IsRoot() bool {
	return s.parent == nil
}

// IsClosed reports whether Close has been called.
func (s *Scope) IsClosed() bool {
	return s.closed.Load()
}

// CreateScope opens a sibling scope from the same provider. Scopes are not
// nested: closing this scope does not close the new one.
func (s *Scope) CreateScope() *Scope {
	return s.provider.CreateScope()
}

// Resolve returns the service registered for t.
func (s *Scope) Resolve(t reflect.Type) (any, error) {
	v, ok, err := s.TryResolve(t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("container: %s: %w", t, ErrNotRegistered)
	}
	return v, nil
}

// TryResolve returns the service registered for t, or found=false when no
// registration exists.
func (s *Scope) TryResolve(t reflect.Type) (any, bool, error) {
	if t == nil {
		return nil, false, fmt.Errorf("container: nil service type: %w", ErrInvalidArgument)
	}
	if s.closed.Load() {
		return nil, false, fmt.Errorf("container: resolving %s: %w", t, ErrScopeClosed)
	}

	switch t {
	case resolverType, scopeFactoryType, scopeType:
		return s, true, nil
	}

	d, ok := s.provider.descriptors[t]
	if !ok {
		return nil, false, nil
	}

	v, err := s.instance(d)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// ResolveAll resolves every group registration of t in registration order.
func (s *Scope) ResolveAll(t reflect.Type) ([]any, error) {
	if t == nil {
		return nil, fmt.Errorf("container: nil service type: %w", ErrInvalidArgument)
	}
	if s.closed.Load() {
		return nil, fmt.Errorf("container: resolving %s: %w", t, ErrScopeClosed)
	}

	group := s.provider.groups[t]
	out := make([]any, 0, len(group))
	for _, d := range group {
		v, err := s.instance(d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Scope) instance(d *descriptor) (any, error) {
	switch d.lifetime {
	case Singleton:
		return s.provider.root.cached(d)
	case Scoped:
		return s.cached(d)
	default:
		return s.transient(d)
	}
}

// Close closes every owned instance in reverse creation order. Only the first
// call does any work; later calls return nil. Errors from individual
// instances are joined.
func (s *Scope) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	disposables := s.disposables
	s.disposables = nil
	s.instances = nil
	s.mu.Unlock()

	var errs []error
	for i := len(disposables) - 1; i >= 0; i-- {
		if err := disposables[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scope) cached(d *descriptor) (any, error) {
	s.mu.Lock()
	if v, ok := s.instances[d]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	// the factory runs unlocked so it can resolve its own dependencies
	v, err := s.create(d)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		closeOwned(d, v)
		return nil, fmt.Errorf("container: resolving %s: %w", d.serviceType, ErrScopeClosed)
	}
	if existing, ok := s.instances[d]; ok {
		s.mu.Unlock()
		closeOwned(d, v)
		return existing, nil
	}
	s.instances[d] = v
	s.trackLocked(d, v)
	s.mu.Unlock()
	return v, nil
}

func (s *Scope) transient(d *descriptor) (any, error) {
	v, err := s.create(d)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		closeOwned(d, v)
		return nil, fmt.Errorf("container: resolving %s: %w", d.serviceType, ErrScopeClosed)
	}
	s.trackLocked(d, v)
	s.mu.Unlock()
	return v, nil
}

func (s *Scope) create(d *descriptor) (any, error) {
	v, err := d.factory(s)
	if err != nil {
		return nil, fmt.Errorf("container: constructing %s: %w", d.serviceType, err)
	}
	if v != nil && !reflect.TypeOf(v).AssignableTo(d.serviceType) {
		closeOwned(d, v)
		return nil, fmt.Errorf("container: %T is not assignable to %s: %w", v, d.serviceType, ErrTypeMismatch)
	}
	return v, nil
}

func (s *Scope) trackLocked(d *descriptor, v any) {
	if !d.owned {
		return
	}
	if c, ok := v.(io.Closer); ok && c != io.Closer(s) {
		s.disposables = append(s.disposables, c)
	}
}

func closeOwned(d *descriptor, v any) {
	if !d.owned {
		return
	}
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}
