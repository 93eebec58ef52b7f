package bus

import (
	"time"

	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// NopObserver implements Observer with empty callbacks.
type NopObserver struct{}

func (NopObserver) PostCreate(Bus)          {}
func (NopObserver) CreateFaulted(error)     {}
func (NopObserver) PreStart(Bus)            {}
func (NopObserver) PostStart(Bus)           {}
func (NopObserver) StartFaulted(Bus, error) {}
func (NopObserver) PreStop(Bus)             {}
func (NopObserver) PostStop(Bus)            {}
func (NopObserver) StopFaulted(Bus, error)  {}

// Observers fans lifecycle notifications out to every observer in order.
// Transports keep one per bus.
type Observers []Observer

func (o Observers) PostCreate(b Bus) {
	for _, ob := range o {
		ob.PostCreate(b)
	}
}

func (o Observers) CreateFaulted(err error) {
	for _, ob := range o {
		ob.CreateFaulted(err)
	}
}

func (o Observers) PreStart(b Bus) {
	for _, ob := range o {
		ob.PreStart(b)
	}
}

func (o Observers) PostStart(b Bus) {
	for _, ob := range o {
		ob.PostStart(b)
	}
}

func (o Observers) StartFaulted(b Bus, err error) {
	for _, ob := range o {
		ob.StartFaulted(b, err)
	}
}

func (o Observers) PreStop(b Bus) {
	for _, ob := range o {
		ob.PreStop(b)
	}
}

func (o Observers) PostStop(b Bus) {
	for _, ob := range o {
		ob.PostStop(b)
	}
}

func (o Observers) StopFaulted(b Bus, err error) {
	for _, ob := range o {
		ob.StopFaulted(b, err)
	}
}

// LoggingObserver logs every lifecycle transition.
type LoggingObserver struct {
	logger Logger
}

// NewLoggingObserver returns an Observer writing to logger.
func NewLoggingObserver(logger Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (l *LoggingObserver) PostCreate(b Bus) {
	l.logger.Debug("Bus created", nil, map[string]interface{}{"address": b.Address()})
}

func (l *LoggingObserver) CreateFaulted(err error) {
	l.logger.Error("Bus creation failed", err)
}

func (l *LoggingObserver) PreStart(b Bus) {
	l.logger.Info("Starting bus", nil, map[string]interface{}{"address": b.Address()})
}

func (l *LoggingObserver) PostStart(b Bus) {
	l.logger.Info("Bus started", nil, map[string]interface{}{"address": b.Address()})
}

func (l *LoggingObserver) StartFaulted(b Bus, err error) {
	l.logger.Error("Bus start failed", err, map[string]interface{}{"address": b.Address()})
}

func (l *LoggingObserver) PreStop(b Bus) {
	l.logger.Info("Stopping bus", nil, map[string]interface{}{"address": b.Address()})
}

func (l *LoggingObserver) PostStop(b Bus) {
	l.logger.Info("Bus stopped", nil, map[string]interface{}{"address": b.Address()})
}

func (l *LoggingObserver) StopFaulted(b Bus, err error) {
	l.logger.Error("Bus stop failed", err, map[string]interface{}{"address": b.Address()})
}

func observeOperation(observer observability.Observer, operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if observer == nil {
		return
	}
	observer.ObserveOperation(observability.OperationContext{
		Component:   "bus",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}
