package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"

	"github.com/Aleph-Alpha/bushost/v1/bus"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// KafkaBus is a bus.Control over kafka-go. Every receive endpoint reads its
// topic in the configured consumer group with as many workers as its consumer
// limit. Offsets are committed once the handlers have run; a failing message
// is logged and committed as well, so it is not redelivered.
type KafkaBus struct {
	settings    Settings
	serviceName string
	groupID     string
	logger      Logger
	observer    observability.Observer
	tracer      Tracer

	newReader func(topic, groupID string) (reader, error)
	newWriter func() (writer, error)

	endpoints []*receiveEndpoint
	observers bus.Observers

	mu      sync.RWMutex
	running *runState
}

type runState struct {
	writer  writer
	readers []reader

	// stopFetch ends the fetch loops; cancelHandlers aborts in-flight handlers.
	stopFetch      context.CancelFunc
	cancelHandlers context.CancelFunc
	workers        sync.WaitGroup
}

// Address returns the first broker as kafka://host:port.
func (b *KafkaBus) Address() string {
	return b.settings.Address()
}

// GroupID returns the consumer group the endpoints read in.
func (b *KafkaBus) GroupID() string {
	return b.groupID
}

// Start creates the writer and one reader per endpoint and starts the workers.
// Calling Start on a running bus does nothing.
func (b *KafkaBus) Start(ctx context.Context) error {
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
	if b.logger != nil {
		b.logger.InfoWithContext(ctx, "Kafka bus started", nil, map[string]interface{}{
			"address":   b.Address(),
			"groupId":   b.groupID,
			"endpoints": len(b.endpoints),
		})
	}
	b.observers.PostStart(b)
	return nil
}

func (b *KafkaBus) start(ctx context.Context) (*runState, error) {
	w, err := b.newWriter()
	if err != nil {
		return nil, err
	}

	base := context.WithoutCancel(ctx)
	fetchCtx, stopFetch := context.WithCancel(base)
	handlerCtx, cancelHandlers := context.WithCancel(base)
	state := &runState{writer: w, stopFetch: stopFetch, cancelHandlers: cancelHandlers}

	for _, ep := range b.endpoints {
		r, err := b.newReader(ep.topic, b.groupID)
		if err != nil {
			_ = state.close()
			return nil, fmt.Errorf("kafka: endpoint %q: %w", ep.topic, err)
		}
		state.readers = append(state.readers, r)
		for range ep.limit {
			state.workers.Go(func() {
				b.work(fetchCtx, handlerCtx, ep, r)
			})
		}
	}
	return state, nil
}

// fetchRetryDelay is the pause after a failed fetch.
const fetchRetryDelay = time.Second

// work fetches until fetchCtx ends or the reader is closed.
func (b *KafkaBus) work(fetchCtx, handlerCtx context.Context, ep *receiveEndpoint, r reader) {
	for {
		m, err := r.FetchMessage(fetchCtx)
		if err != nil {
			if fetchCtx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			if b.logger != nil {
				b.logger.WarnWithContext(handlerCtx, "Kafka fetch failed", TranslateError(err), map[string]interface{}{"topic": ep.topic})
			}
			select {
			case <-fetchCtx.Done():
				return
			case <-time.After(fetchRetryDelay):
			}
			continue
		}
		b.dispatch(handlerCtx, ep, r, m)
	}
}

func (b *KafkaBus) dispatch(ctx context.Context, ep *receiveEndpoint, r reader, m kafka.Message) {
	start := time.Now()
	if b.tracer != nil {
		ctx = b.tracer.SetCarrierOnContext(ctx, carrierFromHeaders(m.Headers))
	}

	cc := bus.NewConsumeContext(messageFromKafka(m), ep.address)
	bus.AddPayload(cc, m)

	err := handle(ctx, ep.handlers, cc)
	if err != nil && b.logger != nil {
		b.logger.ErrorWithContext(ctx, "Message handling failed", err, map[string]interface{}{
			"topic":     ep.topic,
			"partition": m.Partition,
			"offset":    m.Offset,
		})
	}
	if commitErr := r.CommitMessages(ctx, m); commitErr != nil {
		err = errors.Join(err, TranslateError(commitErr))
	}
	observeOperation(b.observer, "consume", ep.topic, b.groupID, time.Since(start), err, int64(len(m.Value)))
}

// handle calls every handler in order and stops at the first error. A
// panicking handler is reported as an error.
func handle(ctx context.Context, handlers []bus.Handler, cc bus.ConsumeContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("kafka: handler panicked: %v", r)
		}
	}()
	for _, h := range handlers {
		if err := h(ctx, cc); err != nil {
			return err
		}
	}
	return nil
}

// Stop ends fetching, waits for in-flight messages and closes the readers and
// the writer. When ctx ends first the handlers' context is cancelled and
// ctx.Err() is returned along with any close errors.
func (b *KafkaBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	state := b.running
	b.running = nil
	b.mu.Unlock()
	if state == nil {
		return nil
	}

	b.observers.PreStop(b)
	state.stopFetch()

	var errs []error
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
	if b.logger != nil {
		b.logger.InfoWithContext(ctx, "Kafka bus stopped", nil, map[string]interface{}{"address": b.Address()})
	}
	b.observers.PostStop(b)
	return nil
}

func (s *runState) close() error {
	s.stopFetch()
	s.cancelHandlers()
	var errs []error
	for _, r := range s.readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Publish writes msg to the topic named destination. The message ID is the
// record key, so messages with the same ID land on the same partition. A
// missing ID is filled with a ULID.
func (b *KafkaBus) Publish(ctx context.Context, destination string, msg bus.Message) error {
	start := time.Now()
	err := b.publish(ctx, destination, msg)
	observeOperation(b.observer, "publish", destination, "", time.Since(start), err, int64(len(msg.Body)))
	return err
}

func (b *KafkaBus) publish(ctx context.Context, destination string, msg bus.Message) error {
	if destination == "" {
		return fmt.Errorf("kafka: destination is required: %w", bus.ErrInvalidArgument)
	}

	b.mu.RLock()
	state := b.running
	b.mu.RUnlock()
	if state == nil {
		return ErrNotStarted
	}

	record, err := b.record(ctx, destination, msg)
	if err != nil {
		return err
	}
	if err := state.writer.WriteMessages(ctx, record); err != nil {
		return TranslateError(err)
	}
	return nil
}

func (b *KafkaBus) record(ctx context.Context, topic string, msg bus.Message) (kafka.Message, error) {
	id := msg.ID
	if id == "" {
		id = ulid.Make().String()
	}
	contentType := msg.ContentType
	if contentType == "" {
		contentType = b.settings.ContentType
	}

	headers := []kafka.Header{
		{Key: HeaderMessageID, Value: []byte(id)},
		{Key: HeaderContentType, Value: []byte(contentType)},
	}
	for k, v := range msg.Headers {
		value, err := headerValue(v)
		if err != nil {
			return kafka.Message{}, fmt.Errorf("kafka: header %q: %w", k, err)
		}
		headers = append(headers, kafka.Header{Key: k, Value: value})
	}
	if b.tracer != nil {
		for k, v := range b.tracer.GetCarrier(ctx) {
			headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
		}
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(id),
		Value:   msg.Body,
		Headers: headers,
		Time:    time.Now().UTC(),
	}, nil
}

func headerValue(v any) ([]byte, error) {
	switch v := v.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Appendf(nil, "%v", v), nil
	default:
		return nil, fmt.Errorf("unsupported header type %T: %w", v, bus.ErrInvalidArgument)
	}
}

// messageFromKafka reads the message ID and content type back from the
// headers Publish writes. Every header is also exposed as a string.
func messageFromKafka(m kafka.Message) bus.Message {
	msg := bus.Message{
		Body:    m.Value,
		Headers: make(map[string]any, len(m.Headers)),
	}
	for _, h := range m.Headers {
		switch h.Key {
		case HeaderMessageID:
			msg.ID = string(h.Value)
		case HeaderContentType:
			msg.ContentType = string(h.Value)
		default:
			msg.Headers[h.Key] = string(h.Value)
		}
	}
	if msg.ID == "" && len(m.Key) > 0 {
		msg.ID = string(m.Key)
	}
	return msg
}

func carrierFromHeaders(headers []kafka.Header) map[string]string {
	carrier := make(map[string]string, len(headers))
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return carrier
}
