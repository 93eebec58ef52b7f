package rabbit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Aleph-Alpha/bushost/v1/bus"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// RabbitBus is a bus.Control over a single AMQP connection. Every receive
// endpoint consumes its durable queue on its own channel with a prefetch equal
// to the consumer limit and as many workers. Messages are acknowledged after
// all handlers succeed and rejected without requeue otherwise.
type RabbitBus struct {
	settings    Settings
	serviceName string
	logger      Logger
	observer    observability.Observer
	tracer      Tracer
	dial        dialFunc

	endpoints []*receiveEndpoint
	observers bus.Observers

	mu      sync.RWMutex
	running *runState
}

type runState struct {
	conn     *amqp.Connection
	publish  *amqp.Channel
	pubMu    sync.Mutex
	channels []*amqp.Channel
	tags     []string
	cancel   context.CancelFunc
	workers  sync.WaitGroup
}

// Address returns the broker URL without credentials.
func (b *RabbitBus) Address() string {
	return b.settings.Address()
}

func (b *RabbitBus) endpointAddress(queue string) string {
	return b.settings.Address() + "/" + url.PathEscape(queue)
}

// Start connects, declares every endpoint queue and starts consuming. Calling
// Start on a running bus does nothing.
func (b *RabbitBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running != nil {
		return nil
	}

	b.observers.PreStart(b)
	state, err := b.start(ctx)
	if err != nil {
		b.observers.StartFaulted(b, err)
		return err
	}
	b.running = state
	b.logInfo(ctx, "RabbitMQ bus started", map[string]interface{}{
		"address":   b.Address(),
		"endpoints": len(b.endpoints),
	})
	b.observers.PostStart(b)
	return nil
}

func (b *RabbitBus) start(ctx context.Context) (*runState, error) {
	conn, err := newConnection(ctx, b.settings, b.serviceName, b.dial, b.logger)
	if err != nil {
		return nil, err
	}

	consumeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	state := &runState{conn: conn, cancel: cancel}

	state.publish, err = conn.Channel()
	if err != nil {
		state.close()
		return nil, TranslateError(err)
	}

	for _, ep := range b.endpoints {
		ch, deliveries, tag, err := b.consume(conn, ep)
		if err != nil {
			state.close()
			return nil, fmt.Errorf("rabbit: endpoint %q: %w", ep.queue, err)
		}
		state.channels = append(state.channels, ch)
		state.tags = append(state.tags, tag)
		for range ep.limit {
			state.workers.Go(func() {
				for d := range deliveries {
					b.dispatch(consumeCtx, ep, d)
				}
			})
		}
	}
	return state, nil
}

func (b *RabbitBus) consume(conn *amqp.Connection, ep *receiveEndpoint) (*amqp.Channel, <-chan amqp.Delivery, string, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, "", TranslateError(err)
	}
	if err := ch.Qos(ep.limit, 0, false); err != nil {
		_ = ch.Close()
		return nil, nil, "", TranslateError(err)
	}
	if _, err := ch.QueueDeclare(ep.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, nil, "", TranslateError(err)
	}
	tag := consumerTag(b.serviceName, ep.queue)
	deliveries, err := ch.Consume(ep.queue, tag, false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, nil, "", TranslateError(err)
	}
	return ch, deliveries, tag, nil
}

func consumerTag(serviceName, queue string) string {
	if serviceName == "" {
		return queue + "-" + ulid.Make().String()
	}
	return serviceName + "-" + queue + "-" + ulid.Make().String()
}

// dispatch runs the endpoint handlers for one delivery and settles it.
func (b *RabbitBus) dispatch(ctx context.Context, ep *receiveEndpoint, d amqp.Delivery) {
	start := time.Now()
	if b.tracer != nil {
		ctx = b.tracer.SetCarrierOnContext(ctx, carrierFromHeaders(d.Headers))
	}

	cc := bus.NewConsumeContext(messageFromDelivery(d), ep.address)
	bus.AddPayload(cc, d)

	err := handle(ctx, ep.handlers, cc)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			err = TranslateError(ackErr)
		}
	} else {
		b.logError(ctx, "Message handling failed", err, map[string]interface{}{
			"queue":     ep.queue,
			"messageId": d.MessageId,
		})
		if nackErr := d.Nack(false, false); nackErr != nil {
			err = errors.Join(err, TranslateError(nackErr))
		}
	}
	observeOperation(b.observer, "consume", ep.queue, d.RoutingKey, time.Since(start), err, int64(len(d.Body)))
}

// handle calls every handler in order and stops at the first error. A
// panicking handler is reported as an error.
func handle(ctx context.Context, handlers []bus.Handler, cc bus.ConsumeContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rabbit: handler panicked: %v", r)
		}
	}()
	for _, h := range handlers {
		if err := h(ctx, cc); err != nil {
			return err
		}
	}
	return nil
}

// Stop cancels the consumers, waits for in-flight messages and closes the
// connection. When ctx ends first the handlers' context is cancelled and
// ctx.Err() is returned along with any close errors.
func (b *RabbitBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	state := b.running
	b.running = nil
	b.mu.Unlock()
	if state == nil {
		return nil
	}

	b.observers.PreStop(b)

	var errs []error
	for i, ch := range state.channels {
		if err := ch.Cancel(state.tags[i], false); err != nil {
			errs = append(errs, TranslateError(err))
		}
	}

	done := make(chan struct{})
	go func() {
		state.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	if err := state.close(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		b.observers.StopFaulted(b, err)
		return err
	}
	b.logInfo(ctx, "RabbitMQ bus stopped", map[string]interface{}{"address": b.Address()})
	b.observers.PostStop(b)
	return nil
}

func (s *runState) close() error {
	s.cancel()
	var errs []error
	for _, ch := range s.channels {
		if err := ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if s.publish != nil {
		if err := s.publish.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Publish sends msg to the queue named destination through the default
// exchange. Messages are persistent; a missing ID is filled with a ULID.
func (b *RabbitBus) Publish(ctx context.Context, destination string, msg bus.Message) error {
	start := time.Now()
	err := b.publish(ctx, destination, msg)
	observeOperation(b.observer, "publish", destination, "", time.Since(start), err, int64(len(msg.Body)))
	return err
}

func (b *RabbitBus) publish(ctx context.Context, destination string, msg bus.Message) error {
	if destination == "" {
		return fmt.Errorf("rabbit: destination is required: %w", bus.ErrInvalidArgument)
	}

	b.mu.RLock()
	state := b.running
	b.mu.RUnlock()
	if state == nil {
		return ErrNotStarted
	}

	publishing, err := b.publishing(ctx, msg)
	if err != nil {
		return err
	}

	state.pubMu.Lock()
	defer state.pubMu.Unlock()
	if err := state.publish.PublishWithContext(ctx, "", destination, false, false, publishing); err != nil {
		return TranslateError(err)
	}
	return nil
}

func (b *RabbitBus) publishing(ctx context.Context, msg bus.Message) (amqp.Publishing, error) {
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	if b.tracer != nil {
		for k, v := range b.tracer.GetCarrier(ctx) {
			headers[k] = v
		}
	}
	if err := headers.Validate(); err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbit: invalid headers: %w", err)
	}

	id := msg.ID
	if id == "" {
		id = ulid.Make().String()
	}
	contentType := msg.ContentType
	if contentType == "" {
		contentType = b.settings.ContentType
	}
	return amqp.Publishing{
		Headers:      headers,
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    time.Now().UTC(),
		AppId:        b.serviceName,
		Body:         msg.Body,
	}, nil
}

func messageFromDelivery(d amqp.Delivery) bus.Message {
	headers := make(map[string]any, len(d.Headers))
	for k, v := range d.Headers {
		headers[k] = v
	}
	return bus.Message{
		ID:          d.MessageId,
		Body:        d.Body,
		Headers:     headers,
		ContentType: d.ContentType,
	}
}

func carrierFromHeaders(headers amqp.Table) map[string]string {
	carrier := make(map[string]string, len(headers))
	for k, v := range headers {
		if s, ok := v.(string); ok {
			carrier[k] = s
		}
	}
	return carrier
}

func (b *RabbitBus) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if b.logger != nil {
		b.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (b *RabbitBus) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if b.logger != nil {
		b.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
