package postgres

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// setting is one row of the settings table.
type setting struct {
	Name      string `gorm:"column:name;primaryKey"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

// Store serves settings from a database table. Load reads the whole table
// into an in-memory snapshot; lookups only consult the snapshot. Store
// implements configuration.Provider.
type Store struct {
	db       *gorm.DB
	table    string
	observer observability.Observer

	snapshot atomic.Pointer[map[string]string]
}

// NewStore opens the connection pool. Call Migrate when the table may not
// exist yet and Load before the first lookup.
func NewStore(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(cfg.Connection.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", TranslateError(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: connection pool: %w", err)
	}
	maxOpen := cfg.ConnectionDetails.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 4
	}
	maxIdle := cfg.ConnectionDetails.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 1
	}
	maxLifetime := cfg.ConnectionDetails.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = time.Minute
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)

	return newStore(db, cfg.table()), nil
}

func newStore(db *gorm.DB, table string) *Store {
	s := &Store{db: db, table: table}
	empty := map[string]string{}
	s.snapshot.Store(&empty)
	return s
}

// WithObserver attaches an observer for load and set operations.
func (s *Store) WithObserver(observer observability.Observer) *Store {
	s.observer = observer
	return s
}

// Table returns the settings table name.
func (s *Store) Table() string {
	return s.table
}

// Migrate creates the settings table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Table(s.table).AutoMigrate(&setting{}); err != nil {
		return fmt.Errorf("postgres: migrate %s: %w", s.table, TranslateError(err))
	}
	return nil
}

// Close closes the connection pool. The snapshot remains readable.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) selectAll(tx *gorm.DB, rows *[]setting) *gorm.DB {
	return tx.Table(s.table).Select("name", "value").Order("name").Find(rows)
}

func (s *Store) upsert(tx *gorm.DB, row *setting) *gorm.DB {
	return tx.Table(s.table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(row)
}
