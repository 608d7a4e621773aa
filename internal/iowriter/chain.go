package iowriter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/pkg/config"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/gnames/gnuuid"
)

// DatasetID derives the id of a new dataset from its name and
// organization, so the same dataset gets the same id in every store.
func DatasetID(name, organization string) string {
	return gnuuid.New(name + "|" + organization).String()
}

func (c *chain) dataset(ctx context.Context, sub occur.Submission) error {
	d := sub.Dataset

	if d.ID != "" {
		if _, err := c.w.lookup.Dataset(ctx, c.tx, d.ID); err != nil {
			return missingParent(err, occur.KindProject, "dataset", d.ID)
		}
		c.ids.DatasetID = d.ID
		return nil
	}

	id, err := c.w.lookup.ResolveDataset(ctx, c.tx, d.Name, d.Organization)
	if err == nil {
		c.ids.DatasetID = id
		return nil
	}
	if !errcode.Is(err, errcode.NotFoundError) {
		return err
	}

	d.ID = DatasetID(d.Name, d.Organization)
	d.CreatedBy = c.user
	_, err = c.tx.Exec(ctx, `
		INSERT INTO m_dataset (id, name, organization, rights_holder,
			license, access_rights, citation, comment,
			information_withheld, data_generalizations, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		d.ID, d.Name, d.Organization, d.RightsHolder, d.License,
		d.AccessRights, d.Citation, d.Comment, d.InformationWithheld,
		d.DataGeneralizations, d.CreatedBy)
	if err != nil {
		return iodb.Classify("insert dataset", err)
	}
	c.ids.DatasetID = d.ID
	return c.created(ctx, occur.KindDataset, d.ID, d)
}

func (c *chain) project(ctx context.Context, sub occur.Submission) error {
	p := sub.Project
	p.DatasetID = c.ids.DatasetID

	if p.ID > 0 {
		stored, err := c.w.lookup.Project(ctx, c.tx, p.ID)
		if err != nil {
			return missingParent(err, occur.KindReference, "project", itoa(p.ID))
		}
		if stored.DatasetID != p.DatasetID {
			return iodb.IntegrityError(string(occur.KindProject), itoa(p.ID),
				fmt.Errorf("project belongs to dataset %s, not %s",
					stored.DatasetID, p.DatasetID))
		}
		c.ids.ProjectID = p.ID
		return nil
	}

	id, err := c.w.lookup.ResolveProject(ctx, c.tx, p.DatasetID, p.Name)
	if err == nil {
		c.ids.ProjectID = id
		return nil
	}
	if !errcode.Is(err, errcode.NotFoundError) {
		return err
	}

	err = c.tx.QueryRow(ctx, `
		INSERT INTO m_project (dataset_id, name, organization, number,
			start_year, end_year, leader, members, financer, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		p.DatasetID, p.Name, p.Organization, p.Number, p.StartYear,
		p.EndYear, p.Leader, p.Members, p.Financer, p.Remarks,
	).Scan(&p.ID)
	if err != nil {
		return iodb.Classify("insert project", err)
	}
	c.ids.ProjectID = p.ID
	return c.created(ctx, occur.KindProject, itoa(p.ID), p)
}

func (c *chain) reference(ctx context.Context, sub occur.Submission) error {
	r := sub.Reference
	r.ProjectID = c.ids.ProjectID

	if r.ID > 0 {
		stored, err := c.w.lookup.Reference(ctx, c.tx, r.ID)
		if err != nil {
			return missingParent(err, occur.KindEvent, "reference", itoa(r.ID))
		}
		if stored.ProjectID != r.ProjectID {
			return iodb.IntegrityError(string(occur.KindReference), itoa(r.ID),
				fmt.Errorf("reference belongs to project %d, not %d",
					stored.ProjectID, r.ProjectID))
		}
		c.ids.ReferenceID = r.ID
		return nil
	}

	id, err := c.w.lookup.ResolveReference(ctx, c.tx, r.ProjectID, r.Citation)
	if err == nil {
		c.ids.ReferenceID = id
		return nil
	}
	if !errcode.Is(err, errcode.NotFoundError) {
		return err
	}

	err = c.tx.QueryRow(ctx, `
		INSERT INTO m_reference (project_id, citation, type, author, title,
			year, journal, volume, issn, isbn, page)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		r.ProjectID, r.Citation, r.Type, r.Author, r.Title, r.Year,
		r.Journal, r.Volume, r.ISSN, r.ISBN, r.Page,
	).Scan(&r.ID)
	if err != nil {
		return iodb.Classify("insert reference", err)
	}
	c.ids.ReferenceID = r.ID
	return c.created(ctx, occur.KindReference, itoa(r.ID), r)
}

// location reuses a location given by id, by water body number or by
// proximity, and creates a new one otherwise.
func (c *chain) location(ctx context.Context, sub occur.Submission) error {
	l := sub.Location

	switch {
	case l.ID != "":
		if _, err := c.w.lookup.Location(ctx, c.tx, l.ID); err != nil {
			return missingParent(err, occur.KindEvent, "location", l.ID)
		}
		c.ids.LocationID = l.ID
		return nil
	case l.Point == nil:
		id, err := c.w.lookup.ResolveWaterBody(ctx, c.tx, l.WaterBodyNumber)
		if err != nil {
			return err
		}
		c.ids.LocationID = id
		return nil
	}

	if c.w.serialize {
		_, err := c.tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)",
			locationLockKey)
		if err != nil {
			return iodb.Classify("lock locations", err)
		}
	}

	if !sub.ForceNewLocation {
		tol := c.w.tolerance
		if sub.Tolerance > 0 {
			tol = sub.Tolerance
		}
		m, ok, err := c.w.matcher.FindNearest(ctx, c.tx, *l.Point, tol)
		if err != nil {
			return err
		}
		if ok {
			slog.Info("Reusing location",
				"id", m.LocationID, "distance", m.Distance, "tolerance", tol)
			c.ids.LocationID = m.LocationID
			c.ids.LocationDistance = m.Distance
			return nil
		}
	}

	p, err := c.w.matcher.Transform(ctx, c.tx, *l.Point)
	if err != nil {
		return err
	}
	l.Point = &p

	err = c.tx.QueryRow(ctx, `
		INSERT INTO location (geom, location_type, verbatim_locality,
			water_body, water_body_number, municipality, county,
			country_code)
		VALUES (ST_SetSRID(ST_MakePoint($1, $2), $3), $4, $5, $6, $7, $8,
			$9, $10)
		RETURNING id::text`,
		p.X, p.Y, config.StoreSRID, l.LocationType, l.VerbatimLocality,
		l.WaterBody, l.WaterBodyNumber, l.Municipality, l.County,
		l.CountryCode,
	).Scan(&l.ID)
	if err != nil {
		return iodb.Classify("insert location", err)
	}
	c.ids.LocationID = l.ID
	return c.created(ctx, occur.KindLocation, l.ID, l)
}

func (c *chain) event(ctx context.Context, sub occur.Submission) error {
	e := sub.Event
	e.ReferenceID = c.ids.ReferenceID
	e.LocationID = c.ids.LocationID

	err := c.tx.QueryRow(ctx, `
		INSERT INTO event (reference_id, location_id, date_start, date_end,
			sampling_protocol, sample_size_unit, sample_size_value,
			sampling_effort, field_number, recorded_by, reliability,
			remarks)
		VALUES ($1, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id::text`,
		e.ReferenceID, e.LocationID, e.DateStart, e.DateEnd,
		e.SamplingProtocol, e.SampleSizeUnit, e.SampleSizeValue,
		e.SamplingEffort, e.FieldNumber, e.RecordedBy, e.Reliability,
		e.Remarks,
	).Scan(&e.ID)
	if err != nil {
		return iodb.Classify("insert event", err)
	}

	if err = c.coverage(ctx, e.ID, e.TaxonCoverage); err != nil {
		return err
	}

	c.ids.EventID = e.ID
	return c.created(ctx, occur.KindEvent, e.ID, e)
}

// coverage links an event to the taxa its sampling targeted.
func (c *chain) coverage(ctx context.Context, eventID string, names []string) error {
	for _, name := range names {
		taxonID, err := c.w.lookup.ResolveTaxon(ctx, c.tx, name)
		if err != nil {
			return err
		}
		_, err = c.tx.Exec(ctx, `
			INSERT INTO event_taxon_coverage (event_id, taxon_id)
			VALUES ($1::uuid, $2)
			ON CONFLICT DO NOTHING`, eventID, taxonID)
		if err != nil {
			return iodb.Classify("insert taxon coverage", err)
		}
	}
	return nil
}

func (c *chain) occurrences(ctx context.Context, sub occur.Submission) error {
	for _, o := range sub.Occurrences {
		o.EventID = c.ids.EventID
		if err := c.w.resolveTaxa(ctx, c.tx, &o); err != nil {
			return err
		}

		err := c.tx.QueryRow(ctx, `
			INSERT INTO occurrence (event_id, taxon_id, ecotype_id,
				organism_quantity_type, organism_quantity,
				occurrence_status, population_trend, establishment_means,
				establishment_remarks, spawning_condition,
				spawning_location, record_number, verified_by,
				verified_date, reliability, remarks)
			VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
				$12, $13, $14, $15, $16)
			RETURNING id::text`,
			o.EventID, o.TaxonID, nullID(o.EcotypeID),
			o.OrganismQuantityType, o.OrganismQuantity, o.OccurrenceStatus,
			o.PopulationTrend, o.EstablishmentMeans, o.EstablishmentRemarks,
			o.SpawningCondition, o.SpawningLocation, o.RecordNumber,
			o.VerifiedBy, nullDate(o.VerifiedDate), o.Reliability, o.Remarks,
		).Scan(&o.ID)
		if err != nil {
			return iodb.Classify("insert occurrence", err)
		}

		c.ids.OccurrenceIDs = append(c.ids.OccurrenceIDs, o.ID)
		if err = c.created(ctx, occur.KindOccurrence, o.ID, o); err != nil {
			return err
		}
	}
	return nil
}

// missingParent turns NotFoundError of an explicitly given parent into
// IntegrityError of the child.
func missingParent(err error, child occur.Kind, parent, id string) error {
	if errcode.Is(err, errcode.NotFoundError) {
		return iodb.IntegrityError(string(child), parent+" "+id, err)
	}
	return err
}

func nullID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}
