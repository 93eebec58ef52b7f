package container

import "reflect"

// Resolver resolves services by type.
//
// This interface is implemented by *Scope.
type Resolver interface {
	// Resolve returns the service registered for t. It fails with
	// ErrNotRegistered when nothing is registered.
	Resolve(t reflect.Type) (any, error)

	// TryResolve reports found=false without an error when nothing is registered.
	// Factory failures are still returned as errors.
	TryResolve(t reflect.Type) (any, bool, error)

	// ResolveAll returns every group registration of t in registration order.
	// An empty group is not an error.
	ResolveAll(t reflect.Type) ([]any, error)
}

// ScopeFactory opens new child scopes.
//
// This interface is implemented by *Provider and *Scope.
type ScopeFactory interface {
	CreateScope() *Scope
}

// Factory builds a service instance. r is the scope the service is being
// resolved from, so factories can pull their own dependencies.
type Factory func(r Resolver) (any, error)
