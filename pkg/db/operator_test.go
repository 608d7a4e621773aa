package db_test

import (
	"testing"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestImplementations ensures compile-time contract compliance: the
// pool and transactions are both Queriers, so read-only components
// work inside and outside of a transaction.
func TestImplementations(t *testing.T) {
	var _ db.Operator = iodb.NewPgxOperator()
	var _ db.Querier = (*pgxpool.Pool)(nil)
	var _ db.Querier = (pgx.Tx)(nil)
	var _ db.Querier = (db.Session)(nil)
}
