package iowriter_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/internal/ioaudit"
	"github.com/gnames/gnocc/internal/iolookup"
	"github.com/gnames/gnocc/internal/iospatial"
	"github.com/gnames/gnocc/internal/iotesting"
	"github.com/gnames/gnocc/internal/iowriter"
	"github.com/gnames/gnocc/pkg/canonical"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/gnames/gnocc/pkg/gnocc"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	op      db.Operator
	lookup  gnocc.Lookup
	auditor gnocc.Auditor
	writer  gnocc.Writer
	taxa    iotesting.Taxa
}

func setup(t *testing.T) env {
	t.Helper()
	op, cfg := iotesting.SetupDB(t)
	taxa := iotesting.SeedTaxa(t, op)

	norm := canonical.New(1)
	t.Cleanup(norm.Close)

	lookup := iolookup.New(cfg, norm)
	auditor := ioaudit.New()
	return env{
		op:      op,
		lookup:  lookup,
		auditor: auditor,
		writer:  iowriter.New(cfg, lookup, iospatial.New(cfg), auditor),
		taxa:    taxa,
	}
}

func (e env) submit(t *testing.T, sub occur.Submission) (occur.EntityIDs, error) {
	t.Helper()
	var res occur.EntityIDs
	var subErr error
	err := e.op.WithSession(context.Background(), iotesting.TestUser,
		func(s db.Session) error {
			res, subErr = e.writer.Submit(context.Background(), s, sub)
			return nil
		})
	require.NoError(t, err)
	return res, subErr
}

func (e env) session(t *testing.T, fn func(db.Session) error) error {
	t.Helper()
	var fnErr error
	err := e.op.WithSession(context.Background(), iotesting.TestUser,
		func(s db.Session) error {
			fnErr = fn(s)
			return nil
		})
	require.NoError(t, err)
	return fnErr
}

func (e env) count(t *testing.T, table string) int {
	t.Helper()
	var res int
	err := e.op.Pool().QueryRow(context.Background(),
		"SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&res)
	require.NoError(t, err)
	return res
}

func day(d int) time.Time {
	return time.Date(2023, 6, d, 0, 0, 0, 0, time.UTC)
}

func submission() occur.Submission {
	return occur.Submission{
		Dataset: occur.Dataset{
			Name:         "Freshwater fish",
			Organization: "NINA",
			RightsHolder: "NINA",
			AccessRights: "public",
		},
		Project: occur.Project{
			Name:         "Lake survey",
			Organization: "NINA",
			Number:       "P-17",
			StartYear:    2023,
			Leader:       "Ola Nordmann",
			Financer:     "Miljødirektoratet",
		},
		Reference: occur.Reference{
			Citation: "Nordmann 2023. Fish of Lake Mjøsa.",
			Author:   "Nordmann, O.",
			Title:    "Fish of Lake Mjøsa",
			Year:     2023,
		},
		Location: occur.Location{
			Point:           &occur.Point{X: 262000, Y: 6650000, SRID: 25833},
			WaterBody:       "Mjøsa",
			WaterBodyNumber: 212,
			Municipality:    "Hamar",
			County:          "Innlandet",
			CountryCode:     "no",
		},
		Event: occur.Event{
			DateStart:        day(1),
			DateEnd:          day(2),
			SamplingProtocol: "gillnet",
			RecordedBy:       "Kari Nordmann",
			TaxonCoverage:    []string{"Salmo trutta", "Esox lucius"},
		},
		Occurrences: []occur.Occurrence{
			{
				Taxon:              "Salmo trutta",
				Ecotype:            "Sea Trout",
				OrganismQuantity:   3,
				OccurrenceStatus:   "present",
				EstablishmentMeans: "native",
			},
		},
	}
}

func TestSubmitCreatesChain(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	e := setup(t)
	ctx := context.Background()

	ids, err := e.submit(t, submission())
	require.NoError(t, err)

	assert.Equal(t, iowriter.DatasetID("Freshwater fish", "NINA"), ids.DatasetID)
	assert.Positive(t, ids.ProjectID)
	assert.Positive(t, ids.ReferenceID)
	assert.NotEmpty(t, ids.LocationID)
	assert.NotEmpty(t, ids.EventID)
	require.Len(t, ids.OccurrenceIDs, 1)
	assert.Equal(t, occur.Kinds, ids.Created)
	assert.Zero(t, ids.LocationDistance)

	for _, table := range []string{"m_dataset", "m_project", "m_reference",
		"location", "event", "occurrence"} {
		assert.Equal(t, 1, e.count(t, table), table)
	}
	for _, k := range occur.Kinds {
		assert.Equal(t, 1, e.count(t, k.LogTable()), k.LogTable())
	}
	assert.Equal(t, 2, e.count(t, "event_taxon_coverage"))

	q := e.op.Pool()
	d, err := e.lookup.Dataset(ctx, q, ids.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, iotesting.TestUser, d.CreatedBy)

	loc, err := e.lookup.Location(ctx, q, ids.LocationID)
	require.NoError(t, err)
	assert.Equal(t, "NO", loc.CountryCode)
	assert.InDelta(t, 262000, loc.Point.X, 1e-6)
	assert.Equal(t, 25833, loc.Point.SRID)

	ev, err := e.lookup.Event(ctx, q, ids.EventID)
	require.NoError(t, err)
	assert.Equal(t, ids.ReferenceID, ev.ReferenceID)
	assert.Equal(t, ids.LocationID, ev.LocationID)
	assert.True(t, ev.DateStart.Equal(day(1)))
	assert.True(t, ev.DateEnd.Equal(day(2)))
	assert.Equal(t, []string{"Esox lucius", "Salmo trutta Linnaeus, 1758"},
		ev.TaxonCoverage)

	o, err := e.lookup.Occurrence(ctx, q, ids.OccurrenceIDs[0])
	require.NoError(t, err)
	assert.Equal(t, e.taxa.Trout, o.TaxonID)
	assert.Equal(t, e.taxa.SeaTrout, o.EcotypeID)
	assert.Equal(t, "sea trout", o.Ecotype)
	assert.Equal(t, 3.0, o.OrganismQuantity)
	assert.True(t, o.VerifiedDate.IsZero())

	c, err := e.lookup.Counts(ctx, q, ids.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, occur.Counts{Projects: 1, References: 1, Events: 1,
		Occurrences: 1}, c)

	c, err = e.lookup.ProjectCounts(ctx, q, ids.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, occur.Counts{References: 1, Events: 1, Occurrences: 1}, c)
}

func TestSubmitReusesNearbyLocation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	e := setup(t)

	first, err := e.submit(t, submission())
	require.NoError(t, err)

	sub := submission()
	sub.Location.Point = &occur.Point{X: 262002, Y: 6650000, SRID: 25833}
	sub.Event.DateStart, sub.Event.DateEnd = day(10), day(10)
	second, err := e.submit(t, sub)
	require.NoError(t, err)

	assert.Equal(t, first.DatasetID, second.DatasetID)
	assert.Equal(t, first.ProjectID, second.ProjectID)
	assert.Equal(t, first.ReferenceID, second.ReferenceID)
	assert.Equal(t, first.LocationID, second.LocationID)
	assert.InDelta(t, 2, second.LocationDistance, 1e-6)
	assert.NotEqual(t, first.EventID, second.EventID)
	assert.Equal(t, []occur.Kind{occur.KindEvent, occur.KindOccurrence},
		second.Created)

	assert.Equal(t, 1, e.count(t, "location"))
	assert.Equal(t, 1, e.count(t, "location_log"))
	assert.Equal(t, 2, e.count(t, "event"))

	sub.Location.Point = &occur.Point{X: 262100, Y: 6650000, SRID: 25833}
	third, err := e.submit(t, sub)
	require.NoError(t, err)
	assert.NotEqual(t, first.LocationID, third.LocationID)

	sub.Tolerance = 150
	fourth, err := e.submit(t, sub)
	require.NoError(t, err)
	assert.Equal(t, third.LocationID, fourth.LocationID)

	sub.ForceNewLocation = true
	fifth, err := e.submit(t, sub)
	require.NoError(t, err)
	assert.Equal(t, 1, fifth.CreatedCount(occur.KindLocation))
	assert.Equal(t, 3, e.count(t, "location"))
}

func TestSubmitLocationByReference(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	e := setup(t)

	first, err := e.submit(t, submission())
	require.NoError(t, err)

	sub := submission()
	sub.Location = occur.Location{WaterBodyNumber: 212}
	ids, err := e.submit(t, sub)
	require.NoError(t, err)
	assert.Equal(t, first.LocationID, ids.LocationID)

	sub.Location = occur.Location{ID: first.LocationID}
	ids, err = e.submit(t, sub)
	require.NoError(t, err)
	assert.Equal(t, first.LocationID, ids.LocationID)

	sub.Location = occur.Location{WaterBodyNumber: 999}
	_, err = e.submit(t, sub)
	assert.True(t, errcode.Is(err, errcode.NotFoundError))
}

func TestSubmitFailures(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	e := setup(t)

	tests := []struct {
		msg    string
		modify func(*occur.Submission)
		code   gn.ErrorCode
	}{
		{"missing date", func(s *occur.Submission) {
			s.Event.DateStart, s.Event.DateEnd = time.Time{}, time.Time{}
		}, errcode.ValidationError},
		{"unknown taxon", func(s *occur.Submission) {
			s.Occurrences = append(s.Occurrences, occur.Occurrence{
				Taxon:              "Salmo salar",
				OccurrenceStatus:   "present",
				EstablishmentMeans: "native",
			})
		}, errcode.NotFoundError},
		{"unknown ecotype", func(s *occur.Submission) {
			s.Occurrences[0].Ecotype = "lake trout"
		}, errcode.NotFoundError},
		{"unknown dataset id", func(s *occur.Submission) {
			s.Dataset = occur.Dataset{ID: "no-such-dataset"}
		}, errcode.IntegrityError},
		{"unknown location id", func(s *occur.Submission) {
			s.Location = occur.Location{ID: "0d7d0c4e-5b0a-4f57-9d44-3c0e1f3a8a11"}
		}, errcode.IntegrityError},
		{"unknown taxon id", func(s *occur.Submission) {
			s.Occurrences[0].Taxon = ""
			s.Occurrences[0].Ecotype = ""
			s.Occurrences[0].TaxonID = 999_999
		}, errcode.IntegrityError},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			sub := submission()
			tt.modify(&sub)
			ids, err := e.submit(t, sub)
			require.Error(t, err)
			assert.True(t, errcode.Is(err, tt.code), err.Error())
			assert.Empty(t, ids.DatasetID)

			for _, table := range []string{"m_dataset", "m_project",
				"m_reference", "location", "event", "occurrence",
				"event_taxon_coverage"} {
				assert.Zero(t, e.count(t, table), table)
			}
			for _, k := range occur.Kinds {
				assert.Zero(t, e.count(t, k.LogTable()), k.LogTable())
			}
		})
	}
}

func TestSubmitAuditFailureRollsBack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	e := setup(t)

	_, err := e.op.Pool().Exec(context.Background(), "DROP TABLE occurrence_log")
	require.NoError(t, err)

	_, err = e.submit(t, submission())
	assert.True(t, errcode.Is(err, errcode.StoreError))
	assert.Zero(t, e.count(t, "m_dataset"))
	assert.Zero(t, e.count(t, "event"))
	assert.Zero(t, e.count(t, "dataset_log"))
}

func TestUpdates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	e := setup(t)
	ctx := context.Background()
	q := e.op.Pool()

	ids, err := e.submit(t, submission())
	require.NoError(t, err)

	p, err := e.lookup.Project(ctx, q, ids.ProjectID)
	require.NoError(t, err)
	p.Leader = "Kari Nordmann"
	p.DatasetID = ""
	err = e.session(t, func(s db.Session) error {
		return e.writer.UpdateProject(ctx, s, p)
	})
	require.NoError(t, err)

	updated, err := e.lookup.Project(ctx, q, ids.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Kari Nordmann", updated.Leader)
	assert.Equal(t, ids.DatasetID, updated.DatasetID)

	logs, err := e.auditor.History(ctx, q, occur.KindProject,
		occur.HistoryFilter{Operation: occur.OpUpdate})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	var prior occur.Project
	require.NoError(t, json.Unmarshal(logs[0].Prior, &prior))
	assert.Equal(t, "Ola Nordmann", prior.Leader)

	loc, err := e.lookup.Location(ctx, q, ids.LocationID)
	require.NoError(t, err)
	loc.Point = &occur.Point{X: 262500, Y: 6650000, SRID: 25833}
	loc.VerbatimLocality = "north shore"
	err = e.session(t, func(s db.Session) error {
		return e.writer.UpdateLocation(ctx, s, loc)
	})
	require.NoError(t, err)
	moved, err := e.lookup.Location(ctx, q, ids.LocationID)
	require.NoError(t, err)
	assert.InDelta(t, 262500, moved.Point.X, 1e-6)
	assert.Equal(t, "north shore", moved.VerbatimLocality)

	ev, err := e.lookup.Event(ctx, q, ids.EventID)
	require.NoError(t, err)
	ev.TaxonCoverage = []string{"Turdus merula"}
	err = e.session(t, func(s db.Session) error {
		return e.writer.UpdateEvent(ctx, s, ev)
	})
	require.NoError(t, err)
	ev, err = e.lookup.Event(ctx, q, ids.EventID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Turdus merula Linnaeus, 1758"}, ev.TaxonCoverage)

	o, err := e.lookup.Occurrence(ctx, q, ids.OccurrenceIDs[0])
	require.NoError(t, err)
	o.Taxon, o.TaxonID = "Esox lucius", 0
	o.Ecotype, o.EcotypeID = "", 0
	err = e.session(t, func(s db.Session) error {
		return e.writer.UpdateOccurrence(ctx, s, o)
	})
	require.NoError(t, err)
	o, err = e.lookup.Occurrence(ctx, q, ids.OccurrenceIDs[0])
	require.NoError(t, err)
	assert.Equal(t, e.taxa.Pike, o.TaxonID)
	assert.Zero(t, o.EcotypeID)

	for _, k := range []occur.Kind{occur.KindProject, occur.KindLocation,
		occur.KindEvent, occur.KindOccurrence} {
		assert.Equal(t, 2, e.count(t, k.LogTable()), k.LogTable())
	}
	assert.Equal(t, 1, e.count(t, "dataset_log"))
}

func TestUpdateFailures(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	e := setup(t)
	ctx := context.Background()

	ids, err := e.submit(t, submission())
	require.NoError(t, err)

	err = e.session(t, func(s db.Session) error {
		return e.writer.UpdateReference(ctx, s, occur.Reference{
			ID: 999_999, Citation: "nothing"})
	})
	assert.True(t, errcode.Is(err, errcode.NotFoundError))

	err = e.session(t, func(s db.Session) error {
		return e.writer.UpdateDataset(ctx, s, occur.Dataset{ID: ids.DatasetID})
	})
	assert.True(t, errcode.Is(err, errcode.ValidationError))

	err = e.session(t, func(s db.Session) error {
		return e.writer.UpdateEvent(ctx, s, occur.Event{
			ID:               ids.EventID,
			LocationID:       "0d7d0c4e-5b0a-4f57-9d44-3c0e1f3a8a11",
			DateStart:        day(1),
			DateEnd:          day(1),
			SamplingProtocol: "gillnet",
			RecordedBy:       "Kari Nordmann",
		})
	})
	assert.True(t, errcode.Is(err, errcode.IntegrityError))

	assert.Equal(t, 1, e.count(t, "reference_log"))
	assert.Equal(t, 1, e.count(t, "dataset_log"))
	assert.Equal(t, 1, e.count(t, "event_log"))
}
