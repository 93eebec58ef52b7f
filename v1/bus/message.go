package bus

import (
	"reflect"
	"sync"

	"github.com/Aleph-Alpha/bushost/v1/container"
)

// Message is a transport-neutral message.
type Message struct {
	ID          string
	Body        []byte
	Headers     map[string]any
	ContentType string
}

// PipeContext carries payloads keyed by type along a message pipeline.
type PipeContext interface {
	TryGetPayload(t reflect.Type) (any, bool)
	AddPayload(t reflect.Type, payload any)
}

// ConsumeContext is the context of one received message.
type ConsumeContext interface {
	PipeContext
	Message() Message
	InputAddress() string
}

// GetPayload returns the payload stored for P.
func GetPayload[P any](ctx PipeContext) (P, bool) {
	var zero P
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.TryGetPayload(reflect.TypeFor[P]())
	if !ok {
		return zero, false
	}
	p, ok := v.(P)
	return p, ok
}

// AddPayload stores payload under P.
func AddPayload[P any](ctx PipeContext, payload P) {
	ctx.AddPayload(reflect.TypeFor[P](), payload)
}

type payloads struct {
	mu    sync.RWMutex
	items map[reflect.Type]any
}

func (p *payloads) get(t reflect.Type) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.items[t]
	return v, ok
}

func (p *payloads) add(t reflect.Type, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.items == nil {
		p.items = make(map[reflect.Type]any)
	}
	p.items[t] = v
}

// ReceiveContext is the ConsumeContext transports create for each delivery.
type ReceiveContext struct {
	message      Message
	inputAddress string
	payloads     payloads
}

// NewConsumeContext returns the context for msg received on inputAddress.
func NewConsumeContext(msg Message, inputAddress string) *ReceiveContext {
	return &ReceiveContext{message: msg, inputAddress: inputAddress}
}

func (c *ReceiveContext) Message() Message     { return c.message }
func (c *ReceiveContext) InputAddress() string { return c.inputAddress }

func (c *ReceiveContext) TryGetPayload(t reflect.Type) (any, bool) {
	return c.payloads.get(t)
}

func (c *ReceiveContext) AddPayload(t reflect.Type, payload any) {
	c.payloads.add(t, payload)
}

// ConsumerConsumeContext pairs a ConsumeContext with the consumer handling it.
// Payloads added to it stay local and do not leak into the parent context;
// lookups fall back to the parent.
type ConsumerConsumeContext[C any] struct {
	ConsumeContext
	consumer C
	payloads payloads
}

// Consumer returns the consumer instance handling the message.
func (c *ConsumerConsumeContext[C]) Consumer() C {
	return c.consumer
}

func (c *ConsumerConsumeContext[C]) TryGetPayload(t reflect.Type) (any, bool) {
	if v, ok := c.payloads.get(t); ok {
		return v, true
	}
	return c.ConsumeContext.TryGetPayload(t)
}

func (c *ConsumerConsumeContext[C]) AddPayload(t reflect.Type, payload any) {
	c.payloads.add(t, payload)
}

// PushConsumerScope wraps ctx for consumer and attaches scope as a payload,
// retrievable with GetPayload[*container.Scope]. The scope is also visible as
// container.Resolver so handlers can resolve further scoped services.
func PushConsumerScope[C any](ctx ConsumeContext, consumer C, scope *container.Scope) *ConsumerConsumeContext[C] {
	cc := &ConsumerConsumeContext[C]{ConsumeContext: ctx, consumer: consumer}
	if scope != nil {
		cc.payloads.add(reflect.TypeFor[*container.Scope](), scope)
		cc.payloads.add(reflect.TypeFor[container.Resolver](), container.Resolver(scope))
	}
	return cc
}
