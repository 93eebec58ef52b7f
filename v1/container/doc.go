// Package container is a small typed service container with transient, scoped
// and singleton lifetimes.
//
// Registrations are collected in a Collection and frozen into a Provider with
// Build. Every unit of work opens its own Scope; the Scope owns the scoped and
// transient instances it created and closes them, in reverse order, when the
// Scope is closed. Singletons live in the provider's root scope.
//
//	services := container.NewCollection()
//	_ = container.Provide(services, container.Scoped, func(r container.Resolver) (*UnitOfWork, error) {
//	    return NewUnitOfWork(), nil
//	})
//
//	provider := services.Build()
//	defer provider.Close()
//
//	scope := provider.CreateScope()
//	defer scope.Close()
//	uow, err := container.Resolve[*UnitOfWork](scope)
//
// Resolver and ScopeFactory are always resolvable and return the scope doing
// the resolving, so factories can open scopes of their own.
package container
