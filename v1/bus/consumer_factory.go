package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/bushost/v1/container"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// Pipe receives a message together with the consumer resolved for it.
type Pipe[C any] interface {
	Send(ctx context.Context, cc *ConsumerConsumeContext[C]) error
}

// PipeFunc adapts a function to Pipe.
type PipeFunc[C any] func(ctx context.Context, cc *ConsumerConsumeContext[C]) error

// Send calls f(ctx, cc).
func (f PipeFunc[C]) Send(ctx context.Context, cc *ConsumerConsumeContext[C]) error {
	return f(ctx, cc)
}

// ConsumerFactory supplies a consumer of type C for one message and hands it
// to next.
type ConsumerFactory[C any] interface {
	Send(ctx context.Context, cc ConsumeContext, next Pipe[C]) error
}

// ResolvingConsumerFactory resolves a fresh consumer from its own container
// scope for every message. The scope is closed when the pipe returns, fails or
// panics, which disposes the consumer and everything it resolved.
type ResolvingConsumerFactory[C any] struct {
	scopes   container.ScopeFactory
	observer observability.Observer
	tracer   Tracer
	name     string
}

// NewResolvingConsumerFactory returns a factory opening scopes from scopes.
func NewResolvingConsumerFactory[C any](scopes container.ScopeFactory) (*ResolvingConsumerFactory[C], error) {
	if scopes == nil {
		return nil, fmt.Errorf("bus: scope factory is required: %w", ErrInvalidArgument)
	}
	return &ResolvingConsumerFactory[C]{
		scopes: scopes,
		name:   reflect.TypeFor[C]().String(),
	}, nil
}

// WithObserver attaches an observer notified after every Send.
func (f *ResolvingConsumerFactory[C]) WithObserver(observer observability.Observer) *ResolvingConsumerFactory[C] {
	f.observer = observer
	return f
}

// WithTracer wraps every Send in a span.
func (f *ResolvingConsumerFactory[C]) WithTracer(tracer Tracer) *ResolvingConsumerFactory[C] {
	f.tracer = tracer
	return f
}

func (f *ResolvingConsumerFactory[C]) Send(ctx context.Context, cc ConsumeContext, next Pipe[C]) (err error) {
	if cc == nil || next == nil {
		return fmt.Errorf("bus: consume context and pipe are required: %w", ErrInvalidArgument)
	}

	start := time.Now()
	var span trace.Span
	if f.tracer != nil {
		ctx, span = f.tracer.StartSpan(ctx, "consume "+f.name)
	}

	scope := f.scopes.CreateScope()
	defer func() {
		if closeErr := scope.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("bus: closing consumer scope: %w", closeErr))
		}
		if span != nil {
			if err != nil {
				f.tracer.RecordErrorOnSpan(span, err)
			}
			span.End()
		}
		msg := cc.Message()
		observeOperation(f.observer, "consume", f.name, cc.InputAddress(), time.Since(start), err, int64(len(msg.Body)))
	}()

	consumer, err := container.Resolve[C](scope)
	if err != nil {
		return fmt.Errorf("bus: resolving consumer %s: %w", f.name, err)
	}

	return next.Send(ctx, PushConsumerScope(cc, consumer, scope))
}

// ConsumerHandler turns a consumer factory into an endpoint Handler that calls
// Consume on the resolved consumer.
func ConsumerHandler[C Consumer](factory ConsumerFactory[C]) Handler {
	pipe := PipeFunc[C](func(ctx context.Context, cc *ConsumerConsumeContext[C]) error {
		return cc.Consumer().Consume(ctx, cc)
	})
	return func(ctx context.Context, cc ConsumeContext) error {
		return factory.Send(ctx, cc, pipe)
	}
}
