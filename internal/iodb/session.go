package iodb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// session implements db.Session on one pooled connection.
type session struct {
	conn *pgxpool.Conn
	user string
}

func (s *session) Exec(
	ctx context.Context,
	sql string,
	args ...any,
) (pgconn.CommandTag, error) {
	return s.conn.Exec(ctx, sql, args...)
}

func (s *session) Query(
	ctx context.Context,
	sql string,
	args ...any,
) (pgx.Rows, error) {
	return s.conn.Query(ctx, sql, args...)
}

func (s *session) QueryRow(
	ctx context.Context,
	sql string,
	args ...any,
) pgx.Row {
	return s.conn.QueryRow(ctx, sql, args...)
}

func (s *session) User() string {
	return s.user
}

// Tx runs fn in a read-committed transaction. Rollback is deferred,
// so it also runs when fn panics; after a commit it is a no-op.
func (s *session) Tx(
	ctx context.Context,
	fn func(pgx.Tx) error,
) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{
		IsoLevel: pgx.ReadCommitted,
	})
	if err != nil {
		return Classify("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return Classify("commit transaction", err)
	}
	return nil
}
