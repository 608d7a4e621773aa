package iotaxa

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnocc/internal/iodb"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

// saveBatchSize is the number of updates sent to the database at once.
const saveBatchSize = 1_000

type taxonName struct {
	id        int64
	name      string
	canonical string
}

// Reparse recomputes canonical forms of all taxa with the current
// parser and returns how many of them changed. Names that cannot be
// parsed get an empty canonical form.
func (m *manager) Reparse(ctx context.Context) (int, error) {
	pool := m.op.Pool()
	if pool == nil {
		return 0, iodb.NotConnectedError()
	}
	start := time.Now()

	var total int
	err := pool.QueryRow(ctx, "SELECT count(*) FROM l_taxon").Scan(&total)
	if err != nil {
		return 0, ReparseError(err)
	}

	bar := pb.Full.Start(total)
	bar.Set("prefix", "Reparsing taxa: ")
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	chIn := make(chan taxonName)
	chOut := make(chan taxonName)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chIn)
		return m.load(gCtx, chIn)
	})

	var wg sync.WaitGroup
	for range m.jobs {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return m.worker(gCtx, chIn, chOut, bar)
		})
	}
	go func() {
		wg.Wait()
		close(chOut)
	}()

	var updated int
	g.Go(func() error {
		var err error
		updated, err = m.save(gCtx, chOut)
		return err
	})

	if err = g.Wait(); err != nil {
		return 0, ReparseError(err)
	}

	// planner statistics of the canonical index
	if _, err = pool.Exec(ctx, "ANALYZE l_taxon"); err != nil {
		return updated, ReparseError(err)
	}

	slog.Info("Taxa reparsed",
		"total", total,
		"updated", updated,
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return updated, nil
}

func (m *manager) load(ctx context.Context, chIn chan<- taxonName) error {
	rows, err := m.op.Pool().Query(ctx,
		`SELECT id, scientific_name, coalesce(canonical, '')
		FROM l_taxon ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t taxonName
		if err = rows.Scan(&t.id, &t.name, &t.canonical); err != nil {
			return err
		}
		select {
		case chIn <- t:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return rows.Err()
}

// worker sends only taxa whose canonical form changed.
func (m *manager) worker(
	ctx context.Context,
	chIn <-chan taxonName,
	chOut chan<- taxonName,
	bar *pb.ProgressBar,
) error {
	for t := range chIn {
		bar.Increment()
		can, _ := m.norm.Canonical(t.name)
		if can == t.canonical {
			continue
		}
		t.canonical = can
		select {
		case chOut <- t:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *manager) save(ctx context.Context, chOut <-chan taxonName) (int, error) {
	pool := m.op.Pool()
	q := "UPDATE l_taxon SET canonical = $2 WHERE id = $1"

	var count int
	batch := &pgx.Batch{}
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		n := batch.Len()
		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		count += n
		batch = &pgx.Batch{}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		case t, ok := <-chOut:
			if !ok {
				return count, flush()
			}
			batch.Queue(q, t.id, t.canonical)
			if batch.Len() >= saveBatchSize {
				if err := flush(); err != nil {
					return count, err
				}
			}
		}
	}
}
