// Package iospatial implements gnocc.Matcher with PostGIS.
// Points are transformed to the store SRID, where distances are meters.
package iospatial

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/pkg/config"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/gnocc"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/jackc/pgx/v5"
)

// ST_DWithin includes the boundary. Ordering by id after distance makes
// ties deterministic.
const nearestQuery = `
	SELECT l.id::text, ST_Distance(l.geom, s.p)
	FROM location l,
		(SELECT ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), $3), $4) AS p) s
	WHERE ST_DWithin(l.geom, s.p, $5)
	ORDER BY 2, l.id
	LIMIT 1`

const transformQuery = `
	SELECT ST_X(p), ST_Y(p)
	FROM (SELECT ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), $3), $4) AS p) s`

type matcher struct {
	inputSRID int
}

// New creates a Matcher. Points without SRID are taken in the input SRID
// of the configuration.
func New(cfg *config.Config) gnocc.Matcher {
	return &matcher{inputSRID: cfg.Spatial.InputSRID}
}

func (m *matcher) srid(p occur.Point) int {
	if p.SRID == 0 {
		return m.inputSRID
	}
	return p.SRID
}

func (m *matcher) FindNearest(
	ctx context.Context,
	q db.Querier,
	p occur.Point,
	maxDistance float64,
) (gnocc.Match, bool, error) {
	var res gnocc.Match
	if maxDistance < 0 {
		return res, false, nil
	}

	err := q.QueryRow(ctx, nearestQuery,
		p.X, p.Y, m.srid(p), config.StoreSRID, maxDistance,
	).Scan(&res.LocationID, &res.Distance)
	if errors.Is(err, pgx.ErrNoRows) {
		return res, false, nil
	}
	if err != nil {
		return res, false, iodb.Classify("find nearest location", err)
	}

	slog.Debug("Found nearby location",
		"id", res.LocationID, "distance", res.Distance)
	return res, true, nil
}

func (m *matcher) Transform(
	ctx context.Context,
	q db.Querier,
	p occur.Point,
) (occur.Point, error) {
	srid := m.srid(p)
	if srid == config.StoreSRID {
		return occur.Point{X: p.X, Y: p.Y, SRID: srid}, nil
	}

	res := occur.Point{SRID: config.StoreSRID}
	err := q.QueryRow(ctx, transformQuery,
		p.X, p.Y, srid, config.StoreSRID,
	).Scan(&res.X, &res.Y)
	if err != nil {
		return occur.Point{}, iodb.Classify("transform point", err)
	}
	return res, nil
}
