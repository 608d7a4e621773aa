package iotesting

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/internal/ioschema"
	"github.com/gnames/gnocc/pkg/config"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostGISImage is the container image used when GNOCC_TEST_CONTAINER is
// set.
const PostGISImage = "postgis/postgis:16-3.4"

// lockKey serializes test packages that share one test database.
const lockKey = 7_345_001

var container struct {
	sync.Mutex
	db *config.DatabaseConfig
}

// SetupDB connects to a fresh test database with the full schema.
// Tables are dropped and created again, so every test starts empty.
//
// With GNOCC_TEST_CONTAINER=1 the database runs in a PostGIS container
// started once per test binary; otherwise the gnocc_test database of
// the configured server is used, and test packages wait for each other
// on an advisory lock.
func SetupDB(t *testing.T) (db.Operator, *config.Config) {
	t.Helper()
	ctx := context.Background()

	cfg := GetTestConfig()
	if os.Getenv("GNOCC_TEST_CONTAINER") != "" {
		cfg.Database = *startContainer(t)
	}

	op := iodb.NewPgxOperator()
	require.NoError(t, op.Connect(ctx, &cfg.Database))
	t.Cleanup(func() { op.Close() })

	conn, err := op.Pool().Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "SELECT pg_advisory_lock($1)", lockKey)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(),
			"SELECT pg_advisory_unlock($1)", lockKey)
		conn.Release()
	})

	require.NoError(t, op.DropAllTables(ctx))
	require.NoError(t, ioschema.NewManager(op).Create(ctx))

	return op, cfg
}

func startContainer(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	container.Lock()
	defer container.Unlock()

	if container.db != nil {
		res := *container.db
		return &res
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, PostGISImage,
		tcpostgres.WithDatabase(TestDatabaseName),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	// the container outlives a single test and is removed by the
	// testcontainers reaper when the test binary exits
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	container.db = &config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "postgres",
		Password: "postgres",
		Database: TestDatabaseName,
		SSLMode:  "disable",
	}
	res := *container.db
	return &res
}

// Taxa are reference taxa inserted by SeedTaxa.
type Taxa struct {
	Blackbird int64
	Trout     int64
	Pike      int64
	SeaTrout  int64
}

// SeedTaxa inserts a few taxa and one ecotype.
func SeedTaxa(t *testing.T, op db.Operator) Taxa {
	t.Helper()
	ctx := context.Background()
	pool := op.Pool()

	var res Taxa
	q := `INSERT INTO l_taxon
		(scientific_name, canonical, family, taxon_rank, vernacular_name)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	rows := []struct {
		id                                   *int64
		name, canonical, family, rank, verna string
	}{
		{&res.Blackbird, "Turdus merula Linnaeus, 1758", "Turdus merula",
			"Turdidae", "species", "blackbird"},
		{&res.Trout, "Salmo trutta Linnaeus, 1758", "Salmo trutta",
			"Salmonidae", "species", "brown trout"},
		{&res.Pike, "Esox lucius", "Esox lucius",
			"Esocidae", "species", "pike"},
	}
	for _, v := range rows {
		err := pool.QueryRow(ctx, q, v.name, v.canonical, v.family,
			v.rank, v.verna).Scan(v.id)
		require.NoError(t, err)
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO l_ecotype (taxon_id, vernacular_name)
		VALUES ($1, 'sea trout') RETURNING id`,
		res.Trout).Scan(&res.SeaTrout)
	require.NoError(t, err)
	return res
}
