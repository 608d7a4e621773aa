// Package iolookup implements gnocc.Lookup on PostgreSQL.
// Reference lists (terms, taxa, families) change rarely and are cached
// in memory for the configured TTL.
package iolookup

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/pkg/canonical"
	"github.com/gnames/gnocc/pkg/config"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/gnocc"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/patrickmn/go-cache"
)

// taxonRanks are ranks offered in taxon selection lists.
var taxonRanks = []string{"species", "hybrid", "genus"}

type lookup struct {
	norm  canonical.Normalizer
	cache *cache.Cache
}

// New creates a Lookup. The normalizer is used when a taxon name does
// not match exactly and may be nil. A non-positive Lookup.CacheTTL
// turns caching off.
func New(cfg *config.Config, norm canonical.Normalizer) gnocc.Lookup {
	res := &lookup{norm: norm}
	if ttl := time.Duration(cfg.Lookup.CacheTTL) * time.Second; ttl > 0 {
		res.cache = cache.New(ttl, 2*ttl)
	}
	return res
}

func (l *lookup) cached(key string) (any, bool) {
	if l.cache == nil {
		return nil, false
	}
	return l.cache.Get(key)
}

func (l *lookup) store(key string, val any) {
	if l.cache == nil {
		return
	}
	l.cache.Set(key, val, cache.DefaultExpiration)
}

// idLabels runs a query returning (id, label) text pairs.
func idLabels(
	ctx context.Context,
	q db.Querier,
	op, sql string,
	args ...any,
) ([]occur.IDLabel, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, iodb.Classify(op, err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (occur.IDLabel, error) {
		var v occur.IDLabel
		err := row.Scan(&v.ID, &v.Label)
		return v, err
	})
	if err != nil {
		return nil, iodb.Classify(op, err)
	}
	if res == nil {
		res = []occur.IDLabel{}
	}
	return res, nil
}

// values runs a query returning one text column and uses every value
// as both id and label.
func values(
	ctx context.Context,
	q db.Querier,
	op, sql string,
	args ...any,
) ([]occur.IDLabel, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, iodb.Classify(op, err)
	}
	strs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, iodb.Classify(op, err)
	}
	res := make([]occur.IDLabel, len(strs))
	for i, v := range strs {
		res[i] = occur.IDLabel{ID: v, Label: v}
	}
	return res, nil
}

// hit is a resolver row with the total number of matches.
type hit[T any] struct {
	id    T
	total int
}

// resolve expects the query to select an id and count(*) OVER ().
func resolve[T any](
	ctx context.Context,
	q db.Querier,
	kind, key, sql string,
	args ...any,
) (T, error) {
	var zero T
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, iodb.Classify("resolve "+kind, err)
	}
	hits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (hit[T], error) {
		var h hit[T]
		err := row.Scan(&h.id, &h.total)
		return h, err
	})
	if err != nil {
		return zero, iodb.Classify("resolve "+kind, err)
	}

	switch {
	case len(hits) == 0:
		return zero, iodb.NotFoundError(kind, key)
	case hits[0].total > 1:
		return zero, iodb.AmbiguousReferenceError(kind, key, hits[0].total)
	}
	return hits[0].id, nil
}

// notFound converts pgx.ErrNoRows of a reader to NotFoundError.
func notFound(kind, key, op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return iodb.NotFoundError(kind, key)
	}
	return iodb.Classify(op, err)
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}

// isUUID guards casts to uuid, which fail the whole query on bad input.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
