package iolookup

import (
	"context"
	"time"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/pkg/config"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/jackc/pgx/v5"
)

func (l *lookup) Dataset(
	ctx context.Context,
	q db.Querier,
	id string,
) (occur.Dataset, error) {
	var d occur.Dataset
	err := q.QueryRow(ctx, `
		SELECT id, name, organization, rights_holder, license,
			access_rights, citation, comment, information_withheld,
			data_generalizations, created_by
		FROM m_dataset WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Organization, &d.RightsHolder, &d.License,
		&d.AccessRights, &d.Citation, &d.Comment, &d.InformationWithheld,
		&d.DataGeneralizations, &d.CreatedBy)
	if err != nil {
		return d, notFound(string(occur.KindDataset), id, "read dataset", err)
	}
	return d, nil
}

func (l *lookup) Project(
	ctx context.Context,
	q db.Querier,
	id int64,
) (occur.Project, error) {
	var p occur.Project
	err := q.QueryRow(ctx, `
		SELECT id, dataset_id, name, organization, number, start_year,
			end_year, leader, members, financer, remarks
		FROM m_project WHERE id = $1`, id,
	).Scan(&p.ID, &p.DatasetID, &p.Name, &p.Organization, &p.Number,
		&p.StartYear, &p.EndYear, &p.Leader, &p.Members, &p.Financer,
		&p.Remarks)
	if err != nil {
		return p, notFound(string(occur.KindProject), itoa(id), "read project", err)
	}
	return p, nil
}

func (l *lookup) Reference(
	ctx context.Context,
	q db.Querier,
	id int64,
) (occur.Reference, error) {
	var r occur.Reference
	err := q.QueryRow(ctx, `
		SELECT id, project_id, type, citation, author, title, year,
			journal, volume, issn, isbn, page
		FROM m_reference WHERE id = $1`, id,
	).Scan(&r.ID, &r.ProjectID, &r.Type, &r.Citation, &r.Author, &r.Title,
		&r.Year, &r.Journal, &r.Volume, &r.ISSN, &r.ISBN, &r.Page)
	if err != nil {
		return r, notFound(string(occur.KindReference), itoa(id), "read reference", err)
	}
	return r, nil
}

// Location returns the point in the store reference system.
func (l *lookup) Location(
	ctx context.Context,
	q db.Querier,
	id string,
) (occur.Location, error) {
	if !isUUID(id) {
		return occur.Location{}, iodb.NotFoundError(string(occur.KindLocation), id)
	}
	res := occur.Location{Point: &occur.Point{SRID: config.StoreSRID}}
	err := q.QueryRow(ctx, `
		SELECT id::text, ST_X(geom), ST_Y(geom), location_type,
			verbatim_locality, water_body, water_body_number,
			municipality, county, country_code
		FROM location WHERE id = $1::uuid`, id,
	).Scan(&res.ID, &res.Point.X, &res.Point.Y, &res.LocationType,
		&res.VerbatimLocality, &res.WaterBody, &res.WaterBodyNumber,
		&res.Municipality, &res.County, &res.CountryCode)
	if err != nil {
		return occur.Location{}, notFound(string(occur.KindLocation), id, "read location", err)
	}
	return res, nil
}

// Event returns the event with scientific names of its taxon coverage.
func (l *lookup) Event(
	ctx context.Context,
	q db.Querier,
	id string,
) (occur.Event, error) {
	var e occur.Event
	if !isUUID(id) {
		return e, iodb.NotFoundError(string(occur.KindEvent), id)
	}
	err := q.QueryRow(ctx, `
		SELECT id::text, reference_id, location_id::text, date_start,
			date_end, sampling_protocol, sample_size_unit,
			sample_size_value, sampling_effort, field_number, recorded_by,
			reliability, remarks
		FROM event WHERE id = $1::uuid`, id,
	).Scan(&e.ID, &e.ReferenceID, &e.LocationID, &e.DateStart, &e.DateEnd,
		&e.SamplingProtocol, &e.SampleSizeUnit, &e.SampleSizeValue,
		&e.SamplingEffort, &e.FieldNumber, &e.RecordedBy, &e.Reliability,
		&e.Remarks)
	if err != nil {
		return e, notFound(string(occur.KindEvent), id, "read event", err)
	}

	rows, err := q.Query(ctx, `
		SELECT t.scientific_name
		FROM event_taxon_coverage c
		JOIN l_taxon t ON t.id = c.taxon_id
		WHERE c.event_id = $1::uuid
		ORDER BY t.scientific_name`, id)
	if err != nil {
		return e, iodb.Classify("read taxon coverage", err)
	}
	e.TaxonCoverage, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return e, iodb.Classify("read taxon coverage", err)
	}
	if len(e.TaxonCoverage) == 0 {
		e.TaxonCoverage = nil
	}
	return e, nil
}

// Occurrence returns the occurrence with names of its taxon and
// ecotype.
func (l *lookup) Occurrence(
	ctx context.Context,
	q db.Querier,
	id string,
) (occur.Occurrence, error) {
	var o occur.Occurrence
	if !isUUID(id) {
		return o, iodb.NotFoundError(string(occur.KindOccurrence), id)
	}
	var ecotypeID *int64
	var ecotype *string
	var verified *time.Time
	err := q.QueryRow(ctx, `
		SELECT o.id::text, o.event_id::text, t.scientific_name, o.taxon_id,
			e.vernacular_name, o.ecotype_id, o.organism_quantity_type,
			o.organism_quantity, o.occurrence_status, o.population_trend,
			o.establishment_means, o.establishment_remarks,
			o.spawning_condition, o.spawning_location, o.record_number,
			o.verified_by, o.verified_date, o.reliability, o.remarks
		FROM occurrence o
		JOIN l_taxon t ON t.id = o.taxon_id
		LEFT JOIN l_ecotype e ON e.id = o.ecotype_id
		WHERE o.id = $1::uuid`, id,
	).Scan(&o.ID, &o.EventID, &o.Taxon, &o.TaxonID, &ecotype, &ecotypeID,
		&o.OrganismQuantityType, &o.OrganismQuantity, &o.OccurrenceStatus,
		&o.PopulationTrend, &o.EstablishmentMeans, &o.EstablishmentRemarks,
		&o.SpawningCondition, &o.SpawningLocation, &o.RecordNumber,
		&o.VerifiedBy, &verified, &o.Reliability, &o.Remarks)
	if err != nil {
		return o, notFound(string(occur.KindOccurrence), id, "read occurrence", err)
	}
	if ecotypeID != nil {
		o.EcotypeID = *ecotypeID
	}
	if ecotype != nil {
		o.Ecotype = *ecotype
	}
	if verified != nil {
		o.VerifiedDate = *verified
	}
	return o, nil
}

// Counts returns sizes of the content of a dataset.
func (l *lookup) Counts(
	ctx context.Context,
	q db.Querier,
	datasetID string,
) (occur.Counts, error) {
	var c occur.Counts
	err := q.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM m_project p WHERE p.dataset_id = $1),
			(SELECT count(*) FROM m_reference r
				JOIN m_project p ON p.id = r.project_id
				WHERE p.dataset_id = $1),
			(SELECT count(*) FROM event e
				JOIN m_reference r ON r.id = e.reference_id
				JOIN m_project p ON p.id = r.project_id
				WHERE p.dataset_id = $1),
			(SELECT count(*) FROM occurrence o
				JOIN event e ON e.id = o.event_id
				JOIN m_reference r ON r.id = e.reference_id
				JOIN m_project p ON p.id = r.project_id
				WHERE p.dataset_id = $1)`, datasetID,
	).Scan(&c.Projects, &c.References, &c.Events, &c.Occurrences)
	if err != nil {
		return c, iodb.Classify("count dataset content", err)
	}
	return c, nil
}

// ProjectCounts sums up references, events and occurrences of a
// project. Counts.Projects is always zero.
func (l *lookup) ProjectCounts(
	ctx context.Context,
	q db.Querier,
	projectID int64,
) (occur.Counts, error) {
	var c occur.Counts
	err := q.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM m_reference r WHERE r.project_id = $1),
			(SELECT count(*) FROM event e
				JOIN m_reference r ON r.id = e.reference_id
				WHERE r.project_id = $1),
			(SELECT count(*) FROM occurrence o
				JOIN event e ON e.id = o.event_id
				JOIN m_reference r ON r.id = e.reference_id
				WHERE r.project_id = $1)`, projectID,
	).Scan(&c.References, &c.Events, &c.Occurrences)
	if err != nil {
		return c, iodb.Classify("count project content", err)
	}
	return c, nil
}
