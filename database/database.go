package database

import (
	"database/sql"
	"fmt"

	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	tagRepo      *TagRepo
	novelRepo    *NovelRepo
	novelTagRepo *NovelTagRepo
}

// Option configures the repositories built by New.
type Option func(*options)

type options struct {
	snapshot *sql.TxOptions
}

// WithSnapshotReads makes multi-statement reads run in a read-only
// repeatable-read transaction. Only use it with engines that support
// isolation levels (postgres).
func WithSnapshotReads() Option {
	return func(o *options) {
		o.snapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB, opts ...Option) Database {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return Database{
		tagRepo:      NewTagRepo(db),
		novelRepo:    NewNovelRepo(db, o.snapshot),
		novelTagRepo: NewNovelTagRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) NovelRepo() *NovelRepo {
	return d.novelRepo
}

func (d Database) NovelTagRepo() *NovelTagRepo {
	return d.novelTagRepo
}

// Migrate creates or updates the discovery tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.Migratable()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// UseReplicas routes plain reads to the given postgres replicas. Writes and
// transactions stay on the primary unless a query opts into dbresolver.Read.
func UseReplicas(db *gorm.DB, dsns []string) error {
	if len(dsns) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, 0, len(dsns))
	for _, dsn := range dsns {
		replicas = append(replicas, postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}))
	}

	return db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}))
}
