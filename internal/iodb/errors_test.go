package iodb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConnectionError_Structure verifies error structure.
func TestConnectionError_Structure(t *testing.T) {
	originalErr := errors.New("connection refused")

	err := ConnectionError("localhost", 5432, "test", "postgres",
		originalErr)

	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Error should be of type *gn.Error")

	assert.Equal(t, errcode.DBConnectionError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
	assert.Len(t, gnErr.Vars, 4,
		"Should have 4 vars: host, port, database, user")
	assert.ErrorIs(t, gnErr.Err, originalErr)
	assert.Contains(t, gnErr.Err.Error(), "TestConnectionError_Structure")
}

func TestErrors_Structure(t *testing.T) {
	originalErr := errors.New("query failed")

	tests := []struct {
		name string
		err  error
		code gn.ErrorCode
		vars int
	}{
		{"acquire", AcquireError(originalErr), errcode.DBConnectionError, 0},
		{"table check", TableCheckError(originalErr), errcode.DBTableCheckError, 0},
		{"table exists", TableExistsCheckError("event", originalErr),
			errcode.DBTableExistsCheckError, 1},
		{"query tables", QueryTablesError(originalErr), errcode.DBQueryTablesError, 0},
		{"scan table", ScanTableError(originalErr), errcode.DBScanTableError, 0},
		{"drop table", DropTableError("event", originalErr), errcode.DBDropTableError, 1},
		{"integrity", IntegrityError("event", "fk_event_location", originalErr),
			errcode.IntegrityError, 2},
		{"store", StoreError("insert event", originalErr), errcode.StoreError, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gnErr, ok := tt.err.(*gn.Error)
			require.True(t, ok, "Error should be of type *gn.Error")
			assert.Equal(t, tt.code, gnErr.Code)
			assert.NotEmpty(t, gnErr.Msg)
			assert.Len(t, gnErr.Vars, tt.vars)
			assert.ErrorIs(t, gnErr.Err, originalErr)
		})
	}
}

func TestLookupErrors(t *testing.T) {
	err := NotFoundError("taxon", "Turdus merla")
	assert.True(t, errcode.Is(err, errcode.NotFoundError))

	err = AmbiguousReferenceError("taxon", "Salmo", 3)
	assert.True(t, errcode.Is(err, errcode.AmbiguousReferenceError))
	gnErr := err.(*gn.Error)
	assert.Equal(t, []any{3, "taxon", "Salmo"}, gnErr.Vars)
}

func TestClassify(t *testing.T) {
	fk := &pgconn.PgError{
		Code:           "23503",
		ConstraintName: "fk_event_location",
		Message:        "insert or update violates foreign key constraint",
	}
	notNull := &pgconn.PgError{Code: "23502", Message: "null value"}

	tests := []struct {
		name string
		err  error
		code gn.ErrorCode
	}{
		{"foreign key", fk, errcode.IntegrityError},
		{"wrapped foreign key", fmt.Errorf("exec: %w", fk), errcode.IntegrityError},
		{"not null", notNull, errcode.StoreError},
		{"plain", errors.New("conn closed"), errcode.StoreError},
		{"already coded", NotFoundError("event", "x"), errcode.NotFoundError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify("insert event", tt.err)
			assert.True(t, errcode.Is(res, tt.code))
		})
	}

	assert.NoError(t, Classify("noop", nil))

	res := Classify("insert event", notNull)
	gnErr := res.(*gn.Error)
	assert.Equal(t, notNull.Error(), gnErr.Vars[1], "driver message is kept verbatim")
}
