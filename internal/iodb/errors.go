package iodb

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE of a foreign key violation.
const fkViolation = "23503"

func caller() string {
	pc, _, _, _ := runtime.Caller(2)
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

// ConnectionError is returned when the store is unreachable or
// credentials are rejected.
func ConnectionError(
	host string,
	port int,
	database, user string,
	err error,
) error {
	msg := `Cannot connect to PostgreSQL database

<em>Possible causes:</em>
  - PostgreSQL is not running on <em>%s:%d</em>
  - Database <em>%s</em> does not exist
  - User <em>%s</em> has wrong credentials

<em>How to fix:</em>
  1. Check if PostgreSQL is running: pg_isready -h HOST -p PORT
  2. Review database settings in config.yaml or GNOCC_DATABASE_* variables`

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{host, port, database, user},
		Err: fmt.Errorf("from %s: failed to connect to %s:%d/%s: %w",
			caller(), host, port, database, err),
	}
}

// AcquireError is returned when a session cannot get a connection
// from the pool.
func AcquireError(err error) error {
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  "Cannot get a database connection",
		Err: fmt.Errorf("from %s: cannot acquire connection: %w",
			caller(), err),
	}
}

// NotConnectedError creates an error for operations attempted
// before Connect.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database operation attempted without database connection",
		Err:  fmt.Errorf("from %s: not connected to database", caller()),
	}
}

// TableCheckError is returned when listing of tables fails.
func TableCheckError(err error) error {
	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  "Cannot verify database state",
		Err: fmt.Errorf("from %s: failed to check database tables: %w",
			caller(), err),
	}
}

// TableExistsCheckError is returned when a table lookup fails.
func TableExistsCheckError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBTableExistsCheckError,
		Msg:  "Cannot check if table <em>%s</em> exists",
		Vars: []any{table},
		Err: fmt.Errorf("from %s: cannot check table %s: %w",
			caller(), table, err),
	}
}

// QueryTablesError is returned when the table list query fails.
func QueryTablesError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  "Cannot get the list of tables",
		Err: fmt.Errorf("from %s: cannot query tables: %w",
			caller(), err),
	}
}

// ScanTableError is returned when table names cannot be read.
func ScanTableError(err error) error {
	return &gn.Error{
		Code: errcode.DBScanTableError,
		Msg:  "Cannot read the list of tables",
		Err: fmt.Errorf("from %s: cannot scan table name: %w",
			caller(), err),
	}
}

// DropTableError is returned when a table cannot be dropped.
func DropTableError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  "Cannot drop table <em>%s</em>",
		Vars: []any{table},
		Err: fmt.Errorf("from %s: cannot drop table %s: %w",
			caller(), table, err),
	}
}

// NotFoundError is returned when a lookup matches no rows.
func NotFoundError(kind, key string) error {
	return &gn.Error{
		Code: errcode.NotFoundError,
		Msg:  "No <em>%s</em> found for '%s'",
		Vars: []any{kind, key},
		Err: fmt.Errorf("from %s: %s '%s' not found",
			caller(), kind, key),
	}
}

// AmbiguousReferenceError is returned when a lookup that must be
// unique matches several rows.
func AmbiguousReferenceError(kind, key string, count int) error {
	return &gn.Error{
		Code: errcode.AmbiguousReferenceError,
		Msg:  "<em>%d</em> records of <em>%s</em> match '%s', narrow it down",
		Vars: []any{count, kind, key},
		Err: fmt.Errorf("from %s: %s '%s' matches %d rows",
			caller(), kind, key, count),
	}
}

// IntegrityError is returned when a parent of an entity does not
// exist.
func IntegrityError(kind, key string, err error) error {
	if err == nil {
		err = errors.New("parent record does not exist")
	}
	return &gn.Error{
		Code: errcode.IntegrityError,
		Msg:  "Cannot write <em>%s</em>: referenced record '%s' does not exist",
		Vars: []any{kind, key},
		Err: fmt.Errorf("from %s: integrity violation for %s '%s': %w",
			caller(), kind, key, err),
	}
}

// StoreError keeps the message of the database driver verbatim.
func StoreError(op string, err error) error {
	return &gn.Error{
		Code: errcode.StoreError,
		Msg:  "Database rejected <em>%s</em>: %s",
		Vars: []any{op, err.Error()},
		Err:  fmt.Errorf("from %s: %s: %w", caller(), op, err),
	}
}

// Classify converts a driver error to IntegrityError or StoreError.
// Errors that already carry a code are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var gnErr *gn.Error
	if errors.As(err, &gnErr) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
		key := pgErr.ConstraintName
		if key == "" {
			key = pgErr.Detail
		}
		return IntegrityError(op, key, err)
	}
	return StoreError(op, err)
}
