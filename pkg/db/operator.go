package db

import (
	"context"

	"github.com/gnames/gnocc/pkg/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator defines the interface for basic database management operations.
// It provides connection lifecycle management and scoped sessions for the
// lookup, matching and writing components.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool. Schema management uses it
	// to open a GORM connection.
	Pool() *pgxpool.Pool

	// WithSession acquires one connection, runs fn with a Session bound to
	// it and releases the connection on every exit path. The user is the
	// identity recorded in audit logs.
	WithSession(ctx context.Context, user string, fn func(Session) error) error

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if the database has any tables in the public schema.
	// Used to determine if schema creation should prompt for confirmation.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops all tables in the public schema.
	// Used during schema initialization when overwriting existing data.
	DropAllTables(ctx context.Context) error
}

// Querier runs SQL statements. It is satisfied by a session, a pooled
// connection and a pgx.Tx, so read components work inside and outside
// of transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Session is one live connection to the store.
type Session interface {
	Querier

	// User is the identity recorded in audit logs.
	User() string

	// Tx runs fn inside one read-committed transaction. The transaction
	// commits when fn returns nil and rolls back on error or panic.
	Tx(ctx context.Context, fn func(pgx.Tx) error) error
}
