package container

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	mu     sync.Mutex
	closed []string
}

func (r *closeRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, name)
}

func (r *closeRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.closed...)
}

type widget struct {
	name     string
	recorder *closeRecorder
	closeErr error
	closes   atomic.Int32
}

func (w *widget) Close() error {
	w.closes.Add(1)
	if w.recorder != nil {
		w.recorder.record(w.name)
	}
	return w.closeErr
}

type greeter interface {
	Greet() string
}

type englishGreeter struct{}

func (englishGreeter) Greet() string { return "hello" }

func TestLifetimes(t *testing.T) {
	var created atomic.Int32
	newWidget := func(Resolver) (*widget, error) {
		created.Add(1)
		return &widget{}, nil
	}

	t.Run("Transient", func(t *testing.T) {
		services := NewCollection()
		require.NoError(t, Provide(services, Transient, newWidget))
		p := services.Build()
		defer p.Close()

		scope := p.CreateScope()
		a, err := Resolve[*widget](scope)
		require.NoError(t, err)
		b, err := Resolve[*widget](scope)
		require.NoError(t, err)
		assert.NotSame(t, a, b)

		require.NoError(t, scope.Close())
		assert.EqualValues(t, 1, a.closes.Load())
		assert.EqualValues(t, 1, b.closes.Load())
	})

	t.Run("Scoped", func(t *testing.T) {
		services := NewCollection()
		require.NoError(t, Provide(services, Scoped, newWidget))
		p := services.Build()
		defer p.Close()

		first := p.CreateScope()
		second := p.CreateScope()

		a1, err := Resolve[*widget](first)
		require.NoError(t, err)
		a2, err := Resolve[*widget](first)
		require.NoError(t, err)
		b, err := Resolve[*widget](second)
		require.NoError(t, err)

		assert.Same(t, a1, a2)
		assert.NotSame(t, a1, b)

		require.NoError(t, first.Close())
		assert.EqualValues(t, 1, a1.closes.Load())
		assert.Zero(t, b.closes.Load())
		require.NoError(t, second.Close())
		assert.EqualValues(t, 1, b.closes.Load())
	})

	t.Run("Singleton", func(t *testing.T) {
		services := NewCollection()
		require.NoError(t, Provide(services, Singleton, newWidget))
		p := services.Build()

		scope := p.CreateScope()
		a, err := Resolve[*widget](scope)
		require.NoError(t, err)
		b, err := Resolve[*widget](p.Root())
		require.NoError(t, err)
		assert.Same(t, a, b)

		require.NoError(t, scope.Close())
		assert.Zero(t, a.closes.Load(), "singletons outlive child scopes")

		require.NoError(t, p.Close())
		assert.EqualValues(t, 1, a.closes.Load())
	})
}

func TestScopeClose(t *testing.T) {
	t.Run("ClosesInReverseOrder", func(t *testing.T) {
		recorder := &closeRecorder{}
		services := NewCollection()
		require.NoError(t, Provide(services, Scoped, func(Resolver) (*widget, error) {
			return &widget{name: "first", recorder: recorder}, nil
		}))
		require.NoError(t, Provide(services, Transient, func(r Resolver) (valueWidget, error) {
			return valueWidget{widget: &widget{name: "second", recorder: recorder}}, nil
		}))

		p := services.Build()
		scope := p.CreateScope()
		_, err := Resolve[*widget](scope)
		require.NoError(t, err)
		_, err = Resolve[valueWidget](scope)
		require.NoError(t, err)

		require.NoError(t, scope.Close())
		assert.Equal(t, []string{"second", "first"}, recorder.names())
	})

	t.Run("IsIdempotent", func(t *testing.T) {
		services := NewCollection()
		require.NoError(t, Provide(services, Scoped, func(Resolver) (*widget, error) { return &widget{}, nil }))
		p := services.Build()
		scope := p.CreateScope()
		w, err := Resolve[*widget](scope)
		require.NoError(t, err)

		require.NoError(t, scope.Close())
		require.NoError(t, scope.Close())
		assert.EqualValues(t, 1, w.closes.Load())
		assert.True(t, scope.IsClosed())
	})

	t.Run("JoinsErrors", func(t *testing.T) {
		errA := errors.New("a failed")
		services := NewCollection()
		require.NoError(t, Provide(services, Transient, func(Resolver) (*widget, error) {
			return &widget{closeErr: errA}, nil
		}))
		p := services.Build()
		scope := p.CreateScope()
		_, err := Resolve[*widget](scope)
		require.NoError(t, err)
		_, err = Resolve[*widget](scope)
		require.NoError(t, err)

		err = scope.Close()
		require.Error(t, err)
		assert.ErrorIs(t, err, errA)
	})

	t.Run("ResolveAfterClose", func(t *testing.T) {
		services := NewCollection()
		require.NoError(t, Provide(services, Scoped, func(Resolver) (*widget, error) { return &widget{}, nil }))
		p := services.Build()
		scope := p.CreateScope()
		require.NoError(t, scope.Close())

		_, err := Resolve[*widget](scope)
		assert.ErrorIs(t, err, ErrScopeClosed)
	})
}

// valueWidget is a closer held by value, used to check closers of non-pointer types.
type valueWidget struct {
	*widget
}

func TestInstancesAreNotOwned(t *testing.T) {
	services := NewCollection()
	w := &widget{}
	require.NoError(t, Instance(services, w))

	p := services.Build()
	got, err := Resolve[*widget](p.CreateScope())
	require.NoError(t, err)
	assert.Same(t, w, got)

	require.NoError(t, p.Close())
	assert.Zero(t, w.closes.Load())
}

func TestResolveMissing(t *testing.T) {
	p := NewCollection().Build()

	_, err := Resolve[*widget](p.Root())
	assert.ErrorIs(t, err, ErrNotRegistered)

	v, ok, err := TryResolve[*widget](p.Root())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)

	_, err = Resolve[*widget](nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResolveInterface(t *testing.T) {
	services := NewCollection()
	require.NoError(t, Provide(services, Singleton, func(Resolver) (greeter, error) {
		return englishGreeter{}, nil
	}))

	g, err := Resolve[greeter](services.Build().Root())
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())
}

func TestResolverIsSelf(t *testing.T) {
	p := NewCollection().Build()
	scope := p.CreateScope()

	r, err := Resolve[Resolver](scope)
	require.NoError(t, err)
	assert.Same(t, scope, r)

	f, err := Resolve[ScopeFactory](scope)
	require.NoError(t, err)
	child := f.CreateScope()
	assert.NotSame(t, scope, child)
	assert.False(t, child.IsRoot())
	assert.True(t, p.Root().IsRoot())
}

func TestFactoryErrors(t *testing.T) {
	boom := errors.New("boom")
	services := NewCollection()
	require.NoError(t, Provide(services, Scoped, func(Resolver) (*widget, error) { return nil, boom }))

	_, err := Resolve[*widget](services.Build().CreateScope())
	assert.ErrorIs(t, err, boom)
}

func TestTypeMismatch(t *testing.T) {
	services := NewCollection()
	require.NoError(t, services.Add(widgetType, Transient, func(Resolver) (any, error) {
		return "not a widget", nil
	}))

	_, err := Resolve[*widget](services.Build().Root())
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestCollection(t *testing.T) {
	services := NewCollection()
	first := &widget{name: "first"}
	assert.True(t, TryInstance(services, first))
	assert.False(t, TryInstance(services, &widget{name: "second"}))
	assert.False(t, TryProvide(services, Scoped, func(Resolver) (*widget, error) { return &widget{}, nil }))
	assert.True(t, services.Contains(widgetType))
	assert.Equal(t, 1, services.Len())

	p := services.Build()
	// later registrations do not leak into built providers
	require.NoError(t, Instance(services, &widget{name: "third"}))
	got, err := Resolve[*widget](p.Root())
	require.NoError(t, err)
	assert.Same(t, first, got)

	assert.ErrorIs(t, services.Add(nil, Scoped, nil), ErrInvalidArgument)
}

func TestConcurrentScopedResolution(t *testing.T) {
	var created atomic.Int32
	services := NewCollection()
	require.NoError(t, Provide(services, Scoped, func(Resolver) (*widget, error) {
		created.Add(1)
		return &widget{}, nil
	}))
	scope := services.Build().CreateScope()

	var wg sync.WaitGroup
	results := make([]*widget, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := Resolve[*widget](scope)
			if err == nil {
				results[i] = w
			}
		}(i)
	}
	wg.Wait()

	for _, w := range results {
		assert.Same(t, results[0], w)
	}
	require.NoError(t, scope.Close())
	assert.EqualValues(t, 1, results[0].closes.Load())
}

var widgetType = reflect.TypeFor[*widget]()

func TestGroups(t *testing.T) {
	services := NewCollection()
	require.NoError(t, Append(services, Singleton, func(Resolver) (greeter, error) { return englishGreeter{}, nil }))
	require.NoError(t, Append(services, Transient, func(Resolver) (greeter, error) { return englishGreeter{}, nil }))
	require.NoError(t, Append(services, Scoped, func(Resolver) (*widget, error) { return &widget{}, nil }))
	assert.Equal(t, 2, services.GroupLen(reflect.TypeFor[greeter]()))
	assert.False(t, services.Contains(reflect.TypeFor[greeter]()), "groups do not register a single service")

	p := services.Build()
	scope := p.CreateScope()

	greeters, err := ResolveAll[greeter](scope)
	require.NoError(t, err)
	assert.Len(t, greeters, 2)

	first, err := ResolveAll[*widget](scope)
	require.NoError(t, err)
	second, err := ResolveAll[*widget](scope)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Same(t, first[0], second[0])

	empty, err := ResolveAll[*closeRecorder](scope)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, scope.Close())
	assert.EqualValues(t, 1, first[0].closes.Load())
}
