package iospatial_test

import (
	"context"
	"testing"

	"github.com/gnames/gnocc/internal/iospatial"
	"github.com/gnames/gnocc/internal/iotesting"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addLocation(t *testing.T, q db.Querier, x, y float64) string {
	t.Helper()
	var id string
	err := q.QueryRow(context.Background(),
		`INSERT INTO location (geom)
		VALUES (ST_SetSRID(ST_MakePoint($1, $2), 25833))
		RETURNING id::text`, x, y).Scan(&id)
	require.NoError(t, err)
	return id
}

func utm(x, y float64) occur.Point {
	return occur.Point{X: x, Y: y, SRID: 25833}
}

func TestFindNearest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	op, cfg := iotesting.SetupDB(t)
	ctx := context.Background()
	q := op.Pool()
	m := iospatial.New(cfg)

	_, ok, err := m.FindNearest(ctx, q, utm(500000, 6600000), 50)
	require.NoError(t, err)
	assert.False(t, ok, "empty store has no matches")

	id := addLocation(t, q, 500000, 6600000)

	tests := []struct {
		msg   string
		p     occur.Point
		tol   float64
		found bool
		dist  float64
	}{
		{"same point", utm(500000, 6600000), 50, true, 0},
		{"2 m away", utm(500002, 6600000), 50, true, 2},
		{"exactly at tolerance", utm(500050, 6600000), 50, true, 50},
		{"beyond tolerance", utm(500050.5, 6600000), 50, false, 0},
		{"zero tolerance", utm(500000, 6600000), 0, true, 0},
		{"negative tolerance", utm(500000, 6600000), -1, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			res, ok, err := m.FindNearest(ctx, q, tt.p, tt.tol)
			require.NoError(t, err)
			assert.Equal(t, tt.found, ok)
			if !tt.found {
				return
			}
			assert.Equal(t, id, res.LocationID)
			assert.InDelta(t, tt.dist, res.Distance, 1e-6)
		})
	}
}

func TestFindNearestClosestWins(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	op, cfg := iotesting.SetupDB(t)
	ctx := context.Background()
	q := op.Pool()
	m := iospatial.New(cfg)

	addLocation(t, q, 500030, 6600000)
	near := addLocation(t, q, 500010, 6600000)

	res, ok, err := m.FindNearest(ctx, q, utm(500000, 6600000), 50)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, near, res.LocationID)
	assert.InDelta(t, 10, res.Distance, 1e-6)
}

func TestFindNearestTie(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	op, cfg := iotesting.SetupDB(t)
	ctx := context.Background()
	q := op.Pool()
	m := iospatial.New(cfg)

	a := addLocation(t, q, 499990, 6600000)
	b := addLocation(t, q, 500010, 6600000)
	lowest := min(a, b)

	for range 5 {
		res, ok, err := m.FindNearest(ctx, q, utm(500000, 6600000), 50)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, lowest, res.LocationID)
	}
}

func TestFindNearestInputSRID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	op, cfg := iotesting.SetupDB(t)
	ctx := context.Background()
	q := op.Pool()
	m := iospatial.New(cfg)

	// longitude 15 is the central meridian of UTM zone 33
	p, err := m.Transform(ctx, q, occur.Point{X: 15, Y: 60})
	require.NoError(t, err)
	assert.Equal(t, 25833, p.SRID)
	assert.InDelta(t, 500000, p.X, 0.01)
	assert.Greater(t, p.Y, 6_600_000.0)

	id := addLocation(t, q, p.X, p.Y+20)

	res, ok, err := m.FindNearest(ctx, q, occur.Point{X: 15, Y: 60, SRID: 4326}, 50)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, res.LocationID)
	assert.InDelta(t, 20, res.Distance, 0.01)

	same, err := m.Transform(ctx, q, utm(1, 2))
	require.NoError(t, err)
	assert.Equal(t, utm(1, 2), same)
}
