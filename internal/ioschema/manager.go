// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/gnocc"
	"github.com/gnames/gnocc/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// manager implements the gnocc.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) gnocc.SchemaManager {
	return &manager{operator: op}
}

// Create creates the database schema from scratch. PostGIS must be
// installed before AutoMigrate, because the location table has a
// geometry column.
func (m *manager) Create(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	for _, ext := range []string{"postgis"} {
		q := "CREATE EXTENSION IF NOT EXISTS " + ext
		if _, err := pool.Exec(ctx, q); err != nil {
			return ExtensionError(ext, err)
		}
	}

	if err := m.migrate(ctx); err != nil {
		return CreateSchemaError(err)
	}

	if err := m.addConstraints(ctx); err != nil {
		return err
	}

	if err := m.seedTerms(ctx); err != nil {
		return err
	}

	slog.Info("Schema created")
	return nil
}

// Migrate updates the database schema to the latest version
// using GORM AutoMigrate.
func (m *manager) Migrate(ctx context.Context) error {
	if m.operator.Pool() == nil {
		return NotConnectedError()
	}

	if err := m.migrate(ctx); err != nil {
		return MigrateSchemaError(err)
	}

	if err := m.addConstraints(ctx); err != nil {
		return err
	}

	slog.Info("Schema migrated")
	return nil
}

func (m *manager) migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(m.operator.Pool())
	defer sqlDB.Close()

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	return schema.Migrate(gormDB.WithContext(ctx))
}

// addConstraints adds foreign keys between entity tables and indexes
// of audit tables. Statements are idempotent.
func (m *manager) addConstraints(ctx context.Context) error {
	pool := m.operator.Pool()
	for _, fk := range foreignKeys {
		if _, err := pool.Exec(ctx, fk.sql()); err != nil {
			return ConstraintError(fk.name, err)
		}
	}

	for _, table := range schema.LogTables() {
		for _, q := range logIndexSQL(table) {
			if _, err := pool.Exec(ctx, q); err != nil {
				return ConstraintError(table, err)
			}
		}
	}
	return nil
}
