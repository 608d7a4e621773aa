package ioschema_test

import (
	"context"
	"testing"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/internal/ioschema"
	"github.com/gnames/gnocc/internal/iotesting"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/gnames/gnocc/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerNotConnected(t *testing.T) {
	ctx := context.Background()
	mgr := ioschema.NewManager(iodb.NewPgxOperator())

	err := mgr.Create(ctx)
	assert.True(t, errcode.Is(err, errcode.DBNotConnectedError))
	err = mgr.Migrate(ctx)
	assert.True(t, errcode.Is(err, errcode.DBNotConnectedError))
}

func TestManagerCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	op, _ := iotesting.SetupDB(t)
	pool := op.Pool()

	tables := []string{
		"m_dataset", "m_project", "m_reference", "location", "event",
		"occurrence", "event_taxon_coverage", "l_taxon", "l_ecotype",
		"l_term",
	}
	tables = append(tables, schema.LogTables()...)
	for _, table := range tables {
		ok, err := op.TableExists(ctx, table)
		require.NoError(t, err)
		assert.True(t, ok, table)
	}

	var fks int
	err := pool.QueryRow(ctx,
		`SELECT count(*) FROM pg_constraint
		WHERE contype = 'f' AND conname LIKE 'fk_%'`).Scan(&fks)
	require.NoError(t, err)
	assert.Equal(t, 10, fks)

	var gist int
	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM pg_indexes
		WHERE tablename = 'location' AND indexdef LIKE '%USING gist%'`,
	).Scan(&gist)
	require.NoError(t, err)
	assert.Equal(t, 1, gist, "location geometry is indexed")

	var terms int
	q := `SELECT count(*) FROM l_term WHERE vocabulary = 'access_rights'`
	require.NoError(t, pool.QueryRow(ctx, q).Scan(&terms))
	assert.Equal(t, 3, terms)

	// running both again changes nothing
	mgr := ioschema.NewManager(op)
	require.NoError(t, mgr.Create(ctx))
	require.NoError(t, mgr.Migrate(ctx))

	var again int
	require.NoError(t, pool.QueryRow(ctx, q).Scan(&again))
	assert.Equal(t, terms, again)

	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM pg_constraint
		WHERE contype = 'f' AND conname LIKE 'fk_%'`).Scan(&fks)
	require.NoError(t, err)
	assert.Equal(t, 10, fks)
}

func TestForeignKeysEnforced(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	op, _ := iotesting.SetupDB(t)

	_, err := op.Pool().Exec(ctx,
		`INSERT INTO m_project (dataset_id, name) VALUES ('nope', 'x')`)
	require.Error(t, err)
	err = iodb.Classify("insert project", err)
	assert.True(t, errcode.Is(err, errcode.IntegrityError))
}
