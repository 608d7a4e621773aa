package iowriter

import (
	"context"
	"errors"
	"slices"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/pkg/config"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/jackc/pgx/v5"
)

// update locks the row, reads its prior state, applies write and logs
// both states. Children of the row are never touched.
func update[T any](
	ctx context.Context,
	w *writer,
	s db.Session,
	kind occur.Kind,
	id string,
	lockSQL string,
	lockArg any,
	read func(db.Querier) (T, error),
	write func(pgx.Tx, T) (T, error),
) error {
	return s.Tx(ctx, func(tx pgx.Tx) error {
		var one int
		err := tx.QueryRow(ctx, lockSQL, lockArg).Scan(&one)
		if errors.Is(err, pgx.ErrNoRows) {
			return iodb.NotFoundError(string(kind), id)
		}
		if err != nil {
			return iodb.Classify("lock "+string(kind), err)
		}

		prior, err := read(tx)
		if err != nil {
			return err
		}
		next, err := write(tx, prior)
		if err != nil {
			return err
		}
		return w.auditor.Record(ctx, tx, s.User(), kind, id,
			occur.OpUpdate, prior, next)
	})
}

func (w *writer) UpdateDataset(
	ctx context.Context,
	s db.Session,
	d occur.Dataset,
) error {
	d.Normalize()
	if err := occur.ValidateEntity(occur.KindDataset, d, w.mandatory); err != nil {
		return err
	}
	return update(ctx, w, s, occur.KindDataset, d.ID,
		"SELECT 1 FROM m_dataset WHERE id = $1 FOR UPDATE", d.ID,
		func(q db.Querier) (occur.Dataset, error) {
			return w.lookup.Dataset(ctx, q, d.ID)
		},
		func(tx pgx.Tx, prior occur.Dataset) (occur.Dataset, error) {
			d.CreatedBy = prior.CreatedBy
			_, err := tx.Exec(ctx, `
				UPDATE m_dataset SET name = $2, organization = $3,
					rights_holder = $4, license = $5, access_rights = $6,
					citation = $7, comment = $8, information_withheld = $9,
					data_generalizations = $10, updated_at = now()
				WHERE id = $1`,
				d.ID, d.Name, d.Organization, d.RightsHolder, d.License,
				d.AccessRights, d.Citation, d.Comment, d.InformationWithheld,
				d.DataGeneralizations)
			return d, iodb.Classify("update dataset", err)
		})
}

// UpdateProject keeps the dataset of the project when DatasetID is empty.
func (w *writer) UpdateProject(
	ctx context.Context,
	s db.Session,
	p occur.Project,
) error {
	p.Normalize()
	if err := occur.ValidateEntity(occur.KindProject, p, w.mandatory); err != nil {
		return err
	}
	return update(ctx, w, s, occur.KindProject, itoa(p.ID),
		"SELECT 1 FROM m_project WHERE id = $1 FOR UPDATE", p.ID,
		func(q db.Querier) (occur.Project, error) {
			return w.lookup.Project(ctx, q, p.ID)
		},
		func(tx pgx.Tx, prior occur.Project) (occur.Project, error) {
			if p.DatasetID == "" {
				p.DatasetID = prior.DatasetID
			}
			_, err := tx.Exec(ctx, `
				UPDATE m_project SET dataset_id = $2, name = $3,
					organization = $4, number = $5, start_year = $6,
					end_year = $7, leader = $8, members = $9, financer = $10,
					remarks = $11, updated_at = now()
				WHERE id = $1`,
				p.ID, p.DatasetID, p.Name, p.Organization, p.Number,
				p.StartYear, p.EndYear, p.Leader, p.Members, p.Financer,
				p.Remarks)
			return p, iodb.Classify("update project", err)
		})
}

// UpdateReference keeps the project of the reference when ProjectID is 0.
func (w *writer) UpdateReference(
	ctx context.Context,
	s db.Session,
	r occur.Reference,
) error {
	r.Normalize()
	if err := occur.ValidateEntity(occur.KindReference, r, w.mandatory); err != nil {
		return err
	}
	return update(ctx, w, s, occur.KindReference, itoa(r.ID),
		"SELECT 1 FROM m_reference WHERE id = $1 FOR UPDATE", r.ID,
		func(q db.Querier) (occur.Reference, error) {
			return w.lookup.Reference(ctx, q, r.ID)
		},
		func(tx pgx.Tx, prior occur.Reference) (occur.Reference, error) {
			if r.ProjectID == 0 {
				r.ProjectID = prior.ProjectID
			}
			_, err := tx.Exec(ctx, `
				UPDATE m_reference SET project_id = $2, citation = $3,
					type = $4, author = $5, title = $6, year = $7,
					journal = $8, volume = $9, issn = $10, isbn = $11,
					page = $12, updated_at = now()
				WHERE id = $1`,
				r.ID, r.ProjectID, r.Citation, r.Type, r.Author, r.Title,
				r.Year, r.Journal, r.Volume, r.ISSN, r.ISBN, r.Page)
			return r, iodb.Classify("update reference", err)
		})
}

// UpdateLocation moves the location when a point is given. Moving does
// not merge it with nearby locations.
func (w *writer) UpdateLocation(
	ctx context.Context,
	s db.Session,
	l occur.Location,
) error {
	l.Normalize()
	if err := occur.ValidateEntity(occur.KindLocation, l, w.mandatory); err != nil {
		return err
	}
	return update(ctx, w, s, occur.KindLocation, l.ID,
		"SELECT 1 FROM location WHERE id = $1::uuid FOR UPDATE", l.ID,
		func(q db.Querier) (occur.Location, error) {
			return w.lookup.Location(ctx, q, l.ID)
		},
		func(tx pgx.Tx, prior occur.Location) (occur.Location, error) {
			p := prior.Point
			if l.Point != nil {
				tp, err := w.matcher.Transform(ctx, tx, *l.Point)
				if err != nil {
					return l, err
				}
				p = &tp
			}
			l.Point = p
			_, err := tx.Exec(ctx, `
				UPDATE location SET geom = ST_SetSRID(ST_MakePoint($2, $3), $4),
					location_type = $5, verbatim_locality = $6,
					water_body = $7, water_body_number = $8,
					municipality = $9, county = $10, country_code = $11,
					updated_at = now()
				WHERE id = $1::uuid`,
				l.ID, p.X, p.Y, config.StoreSRID, l.LocationType,
				l.VerbatimLocality, l.WaterBody, l.WaterBodyNumber,
				l.Municipality, l.County, l.CountryCode)
			return l, iodb.Classify("update location", err)
		})
}

// UpdateEvent keeps the reference of the event when ReferenceID is 0
// and replaces its taxon coverage.
func (w *writer) UpdateEvent(
	ctx context.Context,
	s db.Session,
	e occur.Event,
) error {
	e.TaxonCoverage = slices.Clone(e.TaxonCoverage)
	e.Normalize()
	if err := occur.ValidateEntity(occur.KindEvent, e, w.mandatory); err != nil {
		return err
	}
	return update(ctx, w, s, occur.KindEvent, e.ID,
		"SELECT 1 FROM event WHERE id = $1::uuid FOR UPDATE", e.ID,
		func(q db.Querier) (occur.Event, error) {
			return w.lookup.Event(ctx, q, e.ID)
		},
		func(tx pgx.Tx, prior occur.Event) (occur.Event, error) {
			if e.ReferenceID == 0 {
				e.ReferenceID = prior.ReferenceID
			}
			_, err := tx.Exec(ctx, `
				UPDATE event SET reference_id = $2, location_id = $3::uuid,
					date_start = $4, date_end = $5, sampling_protocol = $6,
					sample_size_unit = $7, sample_size_value = $8,
					sampling_effort = $9, field_number = $10,
					recorded_by = $11, reliability = $12, remarks = $13,
					updated_at = now()
				WHERE id = $1::uuid`,
				e.ID, e.ReferenceID, e.LocationID, e.DateStart, e.DateEnd,
				e.SamplingProtocol, e.SampleSizeUnit, e.SampleSizeValue,
				e.SamplingEffort, e.FieldNumber, e.RecordedBy, e.Reliability,
				e.Remarks)
			if err != nil {
				return e, iodb.Classify("update event", err)
			}

			_, err = tx.Exec(ctx,
				"DELETE FROM event_taxon_coverage WHERE event_id = $1::uuid", e.ID)
			if err != nil {
				return e, iodb.Classify("update taxon coverage", err)
			}
			c := &chain{w: w, tx: tx}
			return e, c.coverage(ctx, e.ID, e.TaxonCoverage)
		})
}

// UpdateOccurrence keeps the event of the occurrence when EventID is
// empty. Taxon and ecotype are resolved by name unless ids are given.
func (w *writer) UpdateOccurrence(
	ctx context.Context,
	s db.Session,
	o occur.Occurrence,
) error {
	o.Normalize()
	if err := occur.ValidateEntity(occur.KindOccurrence, o, w.mandatory); err != nil {
		return err
	}
	return update(ctx, w, s, occur.KindOccurrence, o.ID,
		"SELECT 1 FROM occurrence WHERE id = $1::uuid FOR UPDATE", o.ID,
		func(q db.Querier) (occur.Occurrence, error) {
			return w.lookup.Occurrence(ctx, q, o.ID)
		},
		func(tx pgx.Tx, prior occur.Occurrence) (occur.Occurrence, error) {
			if o.EventID == "" {
				o.EventID = prior.EventID
			}
			if err := w.resolveTaxa(ctx, tx, &o); err != nil {
				return o, err
			}
			_, err := tx.Exec(ctx, `
				UPDATE occurrence SET event_id = $2::uuid, taxon_id = $3,
					ecotype_id = $4, organism_quantity_type = $5,
					organism_quantity = $6, occurrence_status = $7,
					population_trend = $8, establishment_means = $9,
					establishment_remarks = $10, spawning_condition = $11,
					spawning_location = $12, record_number = $13,
					verified_by = $14, verified_date = $15,
					reliability = $16, remarks = $17, updated_at = now()
				WHERE id = $1::uuid`,
				o.ID, o.EventID, o.TaxonID, nullID(o.EcotypeID),
				o.OrganismQuantityType, o.OrganismQuantity, o.OccurrenceStatus,
				o.PopulationTrend, o.EstablishmentMeans, o.EstablishmentRemarks,
				o.SpawningCondition, o.SpawningLocation, o.RecordNumber,
				o.VerifiedBy, nullDate(o.VerifiedDate), o.Reliability, o.Remarks)
			return o, iodb.Classify("update occurrence", err)
		})
}

// resolveTaxa fills in taxon and ecotype ids from their names.
func (w *writer) resolveTaxa(
	ctx context.Context,
	q db.Querier,
	o *occur.Occurrence,
) error {
	if o.TaxonID == 0 {
		id, err := w.lookup.ResolveTaxon(ctx, q, o.Taxon)
		if err != nil {
			return err
		}
		o.TaxonID = id
	}
	if o.EcotypeID == 0 && o.Ecotype != "" {
		id, err := w.lookup.ResolveEcotype(ctx, q, o.TaxonID, o.Ecotype)
		if err != nil {
			return err
		}
		o.EcotypeID = id
	}
	return nil
}
