package postgres

import (
	"context"
	"fmt"
	"time"
)

// TryGetSetting answers from the last loaded snapshot.
func (s *Store) TryGetSetting(name string) (string, bool) {
	v, ok := (*s.snapshot.Load())[name]
	return v, ok
}

// Len returns the number of settings in the current snapshot.
func (s *Store) Len() int {
	return len(*s.snapshot.Load())
}

// Load replaces the snapshot with the table's contents. On failure the
// previous snapshot stays in place.
func (s *Store) Load(ctx context.Context) error {
	start := time.Now()
	var rows []setting
	err := TranslateError(s.selectAll(s.db.WithContext(ctx), &rows).Error)
	if err == nil {
		values := make(map[string]string, len(rows))
		for _, row := range rows {
			values[row.Name] = row.Value
		}
		s.snapshot.Store(&values)
	}
	observeOperation(s.observer, "load", s.table, "", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("postgres: load %s: %w", s.table, err)
	}
	return nil
}

// Set inserts or updates one setting. The snapshot is not changed until the
// next Load.
func (s *Store) Set(ctx context.Context, name, value string) error {
	if name == "" {
		return fmt.Errorf("postgres: setting name is required: %w", ErrInvalidConfig)
	}
	start := time.Now()
	row := &setting{Name: name, Value: value, UpdatedAt: time.Now().UTC()}
	err := TranslateError(s.upsert(s.db.WithContext(ctx), row).Error)
	observeOperation(s.observer, "set", s.table, name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("postgres: set %s: %w", name, err)
	}
	return nil
}
