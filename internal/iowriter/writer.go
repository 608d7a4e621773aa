// Package iowriter implements gnocc.Writer. A submission is written as
// one transaction: parents are resolved or created before children,
// and every created row gets its audit entry in the same transaction.
package iowriter

import (
	"context"
	"log/slog"
	"slices"

	"github.com/gnames/gnocc/pkg/config"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/gnocc"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/jackc/pgx/v5"
)

// locationLockKey is the advisory lock that serializes location
// matching between sessions.
const locationLockKey int64 = 0x6e6f6661

type writer struct {
	mandatory occur.Mandatory
	tolerance float64
	serialize bool

	lookup  gnocc.Lookup
	matcher gnocc.Matcher
	auditor gnocc.Auditor
}

// New creates a Writer. Mandatory fields, matching tolerance and
// serialization of matching come from cfg.
func New(
	cfg *config.Config,
	lookup gnocc.Lookup,
	matcher gnocc.Matcher,
	auditor gnocc.Auditor,
) gnocc.Writer {
	return &writer{
		mandatory: cfg.MandatoryFields(),
		tolerance: cfg.Spatial.Tolerance,
		serialize: cfg.SerializeMatching(),
		lookup:    lookup,
		matcher:   matcher,
		auditor:   auditor,
	}
}

// Submit validates the whole chain first, nothing is written when any
// level is invalid. On error the transaction is rolled back and no IDs
// are returned.
func (w *writer) Submit(
	ctx context.Context,
	s db.Session,
	sub occur.Submission,
) (occur.EntityIDs, error) {
	sub.Occurrences = slices.Clone(sub.Occurrences)
	sub.Event.TaxonCoverage = slices.Clone(sub.Event.TaxonCoverage)
	sub.Normalize()
	if err := sub.Validate(w.mandatory); err != nil {
		return occur.EntityIDs{}, err
	}

	var res occur.EntityIDs
	err := s.Tx(ctx, func(tx pgx.Tx) error {
		res = occur.EntityIDs{}
		c := &chain{w: w, tx: tx, user: s.User(), ids: &res}
		return c.write(ctx, sub)
	})
	if err != nil {
		slog.Warn("Submission rolled back", "error", err)
		return occur.EntityIDs{}, err
	}

	slog.Info("Submission written",
		"user", s.User(),
		"dataset", res.DatasetID,
		"event", res.EventID,
		"location", res.LocationID,
		"new_location", res.CreatedCount(occur.KindLocation) > 0,
		"occurrences", len(res.OccurrenceIDs),
	)
	return res, nil
}

// chain keeps the state of one submission transaction.
type chain struct {
	w    *writer
	tx   pgx.Tx
	user string
	ids  *occur.EntityIDs
}

func (c *chain) write(ctx context.Context, sub occur.Submission) error {
	steps := []func(context.Context, occur.Submission) error{
		c.dataset,
		c.project,
		c.reference,
		c.location,
		c.event,
		c.occurrences,
	}
	for _, step := range steps {
		if err := step(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

// created records the insert in the audit table.
func (c *chain) created(
	ctx context.Context,
	kind occur.Kind,
	id string,
	entity any,
) error {
	err := c.w.auditor.Record(ctx, c.tx, c.user, kind, id,
		occur.OpInsert, nil, entity)
	if err != nil {
		return err
	}
	c.ids.Created = append(c.ids.Created, kind)
	slog.Debug("Created record", "kind", kind, "id", id)
	return nil
}
