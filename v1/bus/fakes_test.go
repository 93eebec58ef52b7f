package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type fakeEndpoint struct {
	queue    string
	limit    int
	handlers []Handler
}

func (e *fakeEndpoint) InputAddress() string { return "fake://" + e.queue }
func (e *fakeEndpoint) Handle(h Handler)     { e.handlers = append(e.handlers, h) }

// fakeTransport records what a ServiceConfigurator asks for and delivers
// messages synchronously.
type fakeTransport struct {
	mu        sync.Mutex
	calls     []string
	endpoints map[string]*fakeEndpoint
	observers Observers

	createErr error
	startErr  error
	stopErr   error

	starts atomic.Int32
	stops  atomic.Int32
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{endpoints: make(map[string]*fakeEndpoint)}
}

func (f *fakeTransport) ReceiveEndpoint(queueName string, consumerLimit int, configure func(EndpointConfigurator)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "endpoint:"+queueName)
	ep := &fakeEndpoint{queue: queueName, limit: consumerLimit}
	configure(ep)
	f.endpoints[queueName] = ep
}

func (f *fakeTransport) BusObserver(o Observer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "observer")
	f.observers = append(f.observers, o)
}

func (f *fakeTransport) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeTransport) CreateBus(configurator ServiceConfigurator, serviceName string) (Control, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if err := configurator.Configure(f); err != nil {
		return nil, err
	}
	f.observers.PostCreate(f)
	return f, nil
}

func (f *fakeTransport) Address() string { return "fake://bus" }

func (f *fakeTransport) Publish(ctx context.Context, destination string, msg Message) error {
	f.mu.Lock()
	ep, ok := f.endpoints[destination]
	f.mu.Unlock()
	if !ok {
		return errors.New("no such endpoint")
	}
	var errs []error
	for _, h := range ep.handlers {
		errs = append(errs, h(ctx, NewConsumeContext(msg, ep.InputAddress())))
	}
	return errors.Join(errs...)
}

func (f *fakeTransport) Start(ctx context.Context) error {
	f.starts.Add(1)
	f.observers.PreStart(f)
	if f.startErr != nil {
		f.observers.StartFaulted(f, f.startErr)
		return f.startErr
	}
	f.observers.PostStart(f)
	return nil
}

func (f *fakeTransport) Stop(ctx context.Context) error {
	f.stops.Add(1)
	f.observers.PreStop(f)
	if f.stopErr != nil {
		f.observers.StopFaulted(f, f.stopErr)
		return f.stopErr
	}
	f.observers.PostStop(f)
	return nil
}

type fakeSpec struct {
	transport *fakeTransport
	err       error
}

func (s *fakeSpec) Configure(cfg Configurator) error {
	s.transport.record("service")
	return s.err
}

type staticEndpoint struct {
	queue string
}

func (e staticEndpoint) QueueName() string                 { return e.queue }
func (e staticEndpoint) ConsumerLimit() int                { return 2 }
func (e staticEndpoint) Configure(ec EndpointConfigurator) {}

type recordingObserver struct {
	NopObserver
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) add(e string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) PostStart(Bus) { o.add("post-start") }
func (o *recordingObserver) PostStop(Bus)  { o.add("post-stop") }
