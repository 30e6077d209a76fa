// Package repository provides the gorm-backed persistence adapter for
// users, invite codes, submissions, rotation periods and raw events.
package repository

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the database handle and the per-owner append locks.
type Store struct {
	db    *gorm.DB
	locks *keyedLocks
}

// Option applies a configuration option to Open.
type Option func(*settings)

type settings struct {
	gormLogLevel logger.LogLevel
}

// WithGormLogLevel overrides gorm's own log verbosity.
func WithGormLogLevel(level logger.LogLevel) Option {
	return func(s *settings) {
		s.gormLogLevel = level
	}
}

// Open connects to the sqlite database at dsn and migrates the schema.
// Use ":memory:" for tests.
func Open(dsn string, opts ...Option) (*Store, error) {
	s := &settings{gormLogLevel: logger.Silent}
	for _, opt := range opts {
		opt(s)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(s.gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&InviteCode{},
		&SubmissionRow{},
		&PeriodRow{},
		&BoardEntry{},
		&EventRow{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db, locks: newKeyedLocks()}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
