// Package ioaudit implements gnocc.Auditor. Every entity kind has an
// append-only log table; rows are only ever inserted.
package ioaudit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/gnocc"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/jackc/pgx/v5"
)

type auditor struct {
	enc gnfmt.GNjson
}

// New creates an Auditor.
func New() gnocc.Auditor {
	return &auditor{enc: gnfmt.GNjson{}}
}

func (a *auditor) Record(
	ctx context.Context,
	q db.Querier,
	user string,
	kind occur.Kind,
	entityID string,
	op occur.Operation,
	prior, next any,
) error {
	opName := "log " + string(op) + " of " + string(kind)

	newState, err := a.enc.Encode(next)
	if err != nil {
		return iodb.StoreError(opName, err)
	}

	var priorState any
	if prior != nil {
		bs, err := a.enc.Encode(prior)
		if err != nil {
			return iodb.StoreError(opName, err)
		}
		priorState = bs
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s
			(entity_id, username, operation, prior_state, new_state)
		VALUES ($1, $2, $3, $4, $5)`,
		pgx.Identifier{kind.LogTable()}.Sanitize())

	_, err = q.Exec(ctx, sql, entityID, user, string(op), priorState, newState)
	if err != nil {
		return iodb.StoreError(opName, err)
	}
	return nil
}

func (a *auditor) History(
	ctx context.Context,
	q db.Querier,
	kind occur.Kind,
	f occur.HistoryFilter,
) ([]occur.LogEntry, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.User != "" {
		add("username LIKE $%d", f.User)
	}
	if f.EntityID != "" {
		add("entity_id = $%d", f.EntityID)
	}
	if f.Operation != "" {
		add("operation = $%d", string(f.Operation))
	}
	if !f.From.IsZero() {
		add("logged_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("logged_at < $%d", f.To)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `SELECT id, entity_id, username, operation,
		prior_state, new_state, logged_at
		FROM %s`, pgx.Identifier{kind.LogTable()}.Sanitize())
	if len(conds) > 0 {
		b.WriteString("\nWHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString("\nORDER BY logged_at, id")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, "\nLIMIT $%d", len(args))
	}

	rows, err := q.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, iodb.Classify("read "+kind.LogTable(), err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (occur.LogEntry, error) {
		var e occur.LogEntry
		var op string
		var prior, next []byte
		var at time.Time
		err := row.Scan(&e.ID, &e.EntityID, &e.User, &op, &prior, &next, &at)
		e.Kind = kind
		e.Operation = occur.Operation(op)
		e.Prior = json.RawMessage(prior)
		e.New = json.RawMessage(next)
		e.LoggedAt = at
		return e, err
	})
	if err != nil {
		return nil, iodb.Classify("read "+kind.LogTable(), err)
	}
	return res, nil
}
