package container

import (
	"fmt"
	"reflect"
	"sync"
)

// Lifetime controls how long a resolved instance is reused.
type Lifetime int

const (
	// Transient creates a new instance on every resolution. The instance is
	// owned by the scope that resolved it.
	Transient Lifetime = iota

	// Scoped creates one instance per scope.
	Scoped

	// Singleton creates one instance for the whole provider, owned by the root scope.
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

type descriptor struct {
	serviceType reflect.Type
	lifetime    Lifetime
	factory     Factory

	// owned is false for pre-built instances; they are never closed by the container.
	owned bool
}

// Collection gathers registrations before a Provider is built.
// Registering the same type twice replaces the earlier registration;
// use TryAdd to keep the first one.
type Collection struct {
	mu          sync.Mutex
	descriptors map[reflect.Type]*descriptor
	groups      map[reflect.Type][]*descriptor
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{
		descriptors: make(map[reflect.Type]*descriptor),
		groups:      make(map[reflect.Type][]*descriptor),
	}
}

// Add registers factory for serviceType, replacing any previous registration.
func (c *Collection) Add(serviceType reflect.Type, lifetime Lifetime, factory Factory) error {
	if serviceType == nil || factory == nil {
		return fmt.Errorf("container: service type and factory are required: %w", ErrInvalidArgument)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptors[serviceType] = &descriptor{serviceType: serviceType, lifetime: lifetime, factory: factory, owned: true}
	return nil
}

// TryAdd registers factory only when serviceType has no registration yet.
// It reports whether the registration was added.
func (c *Collection) TryAdd(serviceType reflect.Type, lifetime Lifetime, factory Factory) bool {
	if serviceType == nil || factory == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.descriptors[serviceType]; ok {
		return false
	}
	c.descriptors[serviceType] = &descriptor{serviceType: serviceType, lifetime: lifetime, factory: factory, owned: true}
	return true
}

// AddToGroup appends factory to the group of serviceType. Groups hold any
// number of registrations and are resolved together with ResolveAll; they are
// independent of the single registration made with Add.
func (c *Collection) AddToGroup(serviceType reflect.Type, lifetime Lifetime, factory Factory) error {
	if serviceType == nil || factory == nil {
		return fmt.Errorf("container: service type and factory are required: %w", ErrInvalidArgument)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[serviceType] = append(c.groups[serviceType], &descriptor{serviceType: serviceType, lifetime: lifetime, factory: factory, owned: true})
	return nil
}

// GroupLen returns the number of group registrations for serviceType.
func (c *Collection) GroupLen(serviceType reflect.Type) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups[serviceType])
}

// Contains reports whether serviceType is registered.
func (c *Collection) Contains(serviceType reflect.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.descriptors[serviceType]
	return ok
}

// Len returns the number of registrations.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.descriptors)
}

// Build snapshots the registrations into a Provider. Later changes to the
// Collection do not affect providers that were already built.
func (c *Collection) Build() *Provider {
	c.mu.Lock()
	snapshot := make(map[reflect.Type]*descriptor, len(c.descriptors))
	for t, d := range c.descriptors {
		snapshot[t] = d
	}
	groups := make(map[reflect.Type][]*descriptor, len(c.groups))
	for t, g := range c.groups {
		groups[t] = append([]*descriptor(nil), g...)
	}
	c.mu.Unlock()

	p := &Provider{descriptors: snapshot, groups: groups}
	p.root = newScope(p, nil)
	return p
}

// Provider is a built container. It owns the root scope, which holds singletons.
type Provider struct {
	descriptors map[reflect.Type]*descriptor
	groups      map[reflect.Type][]*descriptor
	root        *Scope
}

// CreateScope opens a new child scope.
func (p *Provider) CreateScope() *Scope {
	return newScope(p, p.root)
}

// Root returns the root scope. Services resolved from it live until Close.
func (p *Provider) Root() *Scope {
	return p.root
}

// Resolve resolves from the root scope.
func (p *Provider) Resolve(t reflect.Type) (any, error) {
	return p.root.Resolve(t)
}

// TryResolve resolves from the root scope.
func (p *Provider) TryResolve(t reflect.Type) (any, bool, error) {
	return p.root.TryResolve(t)
}

// ResolveAll resolves a group from the root scope.
func (p *Provider) ResolveAll(t reflect.Type) ([]any, error) {
	return p.root.ResolveAll(t)
}

// Close closes the root scope and with it every singleton the container created.
// Child scopes must be closed by their owners.
func (p *Provider) Close() error {
	return p.root.Close()
}
