package container

import (
	"fmt"
	"reflect"
)

// Provide registers a typed factory for T, replacing any previous registration.
//
// Example:
//
//	container.Provide(services, container.Scoped, func(r container.Resolver) (*OrderConsumer, error) {
//	    repo, err := container.Resolve[OrderRepository](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewOrderConsumer(repo), nil
//	})
func Provide[T any](c *Collection, lifetime Lifetime, factory func(r Resolver) (T, error)) error {
	if c == nil || factory == nil {
		return fmt.Errorf("container: collection and factory are required: %w", ErrInvalidArgument)
	}
	return c.Add(reflect.TypeFor[T](), lifetime, erase(factory))
}

// TryProvide registers a typed factory for T unless T is already registered.
func TryProvide[T any](c *Collection, lifetime Lifetime, factory func(r Resolver) (T, error)) bool {
	if c == nil || factory == nil {
		return false
	}
	return c.TryAdd(reflect.TypeFor[T](), lifetime, erase(factory))
}

// Append adds a typed factory to the group of T.
func Append[T any](c *Collection, lifetime Lifetime, factory func(r Resolver) (T, error)) error {
	if c == nil || factory == nil {
		return fmt.Errorf("container: collection and factory are required: %w", ErrInvalidArgument)
	}
	return c.AddToGroup(reflect.TypeFor[T](), lifetime, erase(factory))
}

// Instance registers an existing value as a singleton. The container never
// closes values registered this way; their owner does.
func Instance[T any](c *Collection, value T) error {
	if c == nil {
		return fmt.Errorf("container: collection is required: %w", ErrInvalidArgument)
	}
	t := reflect.TypeFor[T]()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptors[t] = &descriptor{
		serviceType: t,
		lifetime:    Singleton,
		factory:     func(Resolver) (any, error) { return value, nil },
	}
	return nil
}

// TryInstance registers value unless T is already registered.
func TryInstance[T any](c *Collection, value T) bool {
	if c == nil {
		return false
	}
	t := reflect.TypeFor[T]()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.descriptors[t]; ok {
		return false
	}
	c.descriptors[t] = &descriptor{
		serviceType: t,
		lifetime:    Singleton,
		factory:     func(Resolver) (any, error) { return value, nil },
	}
	return true
}

// Resolve resolves T from r. A missing registration is an error.
func Resolve[T any](r Resolver) (T, error) {
	var zero T
	if r == nil {
		return zero, fmt.Errorf("container: resolver is required: %w", ErrInvalidArgument)
	}
	v, err := r.Resolve(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return cast[T](v)
}

// TryResolve resolves T from r, reporting found=false when T is not registered.
func TryResolve[T any](r Resolver) (T, bool, error) {
	var zero T
	if r == nil {
		return zero, false, fmt.Errorf("container: resolver is required: %w", ErrInvalidArgument)
	}
	v, ok, err := r.TryResolve(reflect.TypeFor[T]())
	if err != nil || !ok {
		return zero, false, err
	}
	typed, err := cast[T](v)
	if err != nil {
		return zero, false, err
	}
	return typed, true, nil
}

// ResolveAll resolves the group of T. Nil entries are skipped.
func ResolveAll[T any](r Resolver) ([]T, error) {
	if r == nil {
		return nil, fmt.Errorf("container: resolver is required: %w", ErrInvalidArgument)
	}
	values, err := r.ResolveAll(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		typed, err := cast[T](v)
		if err != nil {
			return nil, err
		}
		out = append(out, typed)
	}
	return out, nil
}

func cast[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: %T is not %s: %w", v, reflect.TypeFor[T](), ErrTypeMismatch)
	}
	return typed, nil
}

func erase[T any](factory func(r Resolver) (T, error)) Factory {
	return func(r Resolver) (any, error) {
		v, err := factory(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
