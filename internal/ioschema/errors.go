package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/errcode"
)

// NotConnectedError creates an error for when schema
// operation is attempted without database connection.
func NotConnectedError() error {
	msg := "Schema operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError creates an error for GORM
// connection failures.
func GORMConnectionError(err error) error {
	msg := `Cannot connect to database with GORM

<em>Possible causes:</em>
  - Connection pool not initialized
  - Database configuration issue

<em>How to fix:</em>
  1. Ensure database operator is connected
  2. Check database configuration`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to connect with GORM: %w", err),
	}
}

// ExtensionError creates an error for a PostgreSQL extension
// that cannot be installed.
func ExtensionError(ext string, err error) error {
	msg := `Cannot install <em>%s</em> extension

<em>Possible causes:</em>
  - The extension is not installed on the database server
  - The database user cannot create extensions

<em>How to fix:</em>
  1. Install PostGIS packages on the server (or use postgis/postgis image)
  2. Run CREATE EXTENSION postgis as a superuser`

	return &gn.Error{
		Code: errcode.SchemaExtensionError,
		Msg:  msg,
		Vars: []any{ext},
		Err:  fmt.Errorf("failed to create extension %s: %w", ext, err),
	}
}

// CreateSchemaError creates an error for schema
// creation failures.
func CreateSchemaError(err error) error {
	msg := `Cannot create database schema

<em>Possible causes:</em>
  - Insufficient database permissions
  - Invalid schema definitions

<em>How to fix:</em>
  1. Check database user has CREATE permissions
  2. Check database logs for details`

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to create schema: %w", err),
	}
}

// MigrateSchemaError creates an error for schema
// migration failures.
func MigrateSchemaError(err error) error {
	msg := `Cannot migrate database schema

<em>Possible causes:</em>
  - Incompatible schema changes
  - Insufficient database permissions

<em>How to fix:</em>
  1. Review migration compatibility
  2. Backup data before migration`

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to migrate schema: %w", err),
	}
}

// ConstraintError creates an error for a foreign key or index
// that cannot be added.
func ConstraintError(name string, err error) error {
	msg := `Cannot add constraint <em>%s</em>

<em>Possible causes:</em>
  - Existing rows violate the constraint
  - Table was not created`

	return &gn.Error{
		Code: errcode.SchemaConstraintError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("failed to add constraint %s: %w", name, err),
	}
}

// SeedError creates an error for vocabulary seeding failures.
func SeedError(err error) error {
	return &gn.Error{
		Code: errcode.SchemaSeedError,
		Msg:  "Cannot load controlled vocabularies",
		Vars: nil,
		Err:  fmt.Errorf("failed to seed vocabularies: %w", err),
	}
}
