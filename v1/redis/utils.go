package redis

import (
	"context"
	"errors"
	"time"
)

// TryGetSetting answers from the last loaded snapshot.
func (s *Source) TryGetSetting(name string) (string, bool) {
	v, ok := (*s.snapshot.Load())[name]
	return v, ok
}

// Len returns the number of settings in the current snapshot.
func (s *Source) Len() int {
	return len(*s.snapshot.Load())
}

// Refresh reloads the hash. On failure the previous snapshot stays in place.
// A missing hash loads as empty.
func (s *Source) Refresh(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSourceClosed
	}
	start := time.Now()
	values, err := s.client.HGetAll(ctx, s.cfg.Key).Result()
	if err == nil {
		s.snapshot.Store(&values)
	}
	observeOperation(s.observer, "refresh", s.cfg.Key, time.Since(start), err, int64(len(values)))
	return err
}

// Run refreshes every RefreshInterval until ctx ends or Close is called. It
// returns immediately when no interval is configured. Failures are logged and
// the loop keeps going. Only the first call runs; later calls return at once.
func (s *Source) Run(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	defer close(s.done)
	if s.cfg.RefreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
			err := s.Refresh(refreshCtx)
			cancel()
			if err != nil && !errors.Is(err, ErrSourceClosed) && s.logger != nil {
				s.logger.Warn("Failed to refresh settings from Redis", err, map[string]interface{}{"key": s.cfg.Key})
			}
		}
	}
}

// Done is closed when Run returns.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Close stops Run and closes the connection. The snapshot remains readable.
func (s *Source) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.stopOnce.Do(func() { close(s.stop) })
	return s.client.Close()
}
