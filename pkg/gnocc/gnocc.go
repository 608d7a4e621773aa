// Package gnocc defines contracts of the occurrence store components.
// Implementations live in internal/io* packages.
package gnocc

import (
	"context"

	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/occur"
)

// SchemaManager defines the interface for database schema management.
// It uses GORM AutoMigrate, so both methods are safe to run multiple
// times.
type SchemaManager interface {
	// Create installs PostGIS, creates all tables, foreign keys and the
	// spatial index, and seeds controlled vocabularies.
	Create(ctx context.Context) error

	// Migrate brings existing tables up to date with the models.
	Migrate(ctx context.Context) error
}

// Lookup resolves human-entered values to identifiers and provides
// lists for selection widgets. All methods are read-only. Lists return
// an empty slice when nothing matches.
type Lookup interface {
	Datasets(ctx context.Context, q db.Querier) ([]occur.IDLabel, error)
	// Projects lists projects of a dataset, or all projects for an empty
	// datasetID.
	Projects(ctx context.Context, q db.Querier, datasetID string) ([]occur.IDLabel, error)
	// References lists references of a project, or all of them for 0.
	References(ctx context.Context, q db.Querier, projectID int64) ([]occur.IDLabel, error)
	// Taxa lists species, hybrids and genera whose scientific or
	// vernacular name starts with the fragment.
	Taxa(ctx context.Context, q db.Querier, fragment string) ([]occur.IDLabel, error)
	// Families maps family names to scientific names of their taxa.
	Families(ctx context.Context, q db.Querier) (map[string][]string, error)
	Ecotypes(ctx context.Context, q db.Querier, taxon string) ([]occur.IDLabel, error)
	Terms(ctx context.Context, q db.Querier, vocabulary string) ([]occur.IDLabel, error)
	Institutions(ctx context.Context, q db.Querier) ([]occur.IDLabel, error)
	AccessRights(ctx context.Context, q db.Querier) ([]occur.IDLabel, error)
	Countries(ctx context.Context, q db.Querier) ([]occur.IDLabel, error)
	Counties(ctx context.Context, q db.Querier, country string) ([]occur.IDLabel, error)
	Municipalities(ctx context.Context, q db.Querier, country, county string) ([]occur.IDLabel, error)
	Locations(ctx context.Context, q db.Querier, f occur.LocationFilter) ([]occur.IDLabel, error)
	// Users lists names that appear in audit logs.
	Users(ctx context.Context, q db.Querier) ([]occur.IDLabel, error)

	// Resolvers fail with NotFoundError or AmbiguousReferenceError.
	ResolveDataset(ctx context.Context, q db.Querier, name, organization string) (string, error)
	ResolveProject(ctx context.Context, q db.Querier, datasetID, name string) (int64, error)
	ResolveReference(ctx context.Context, q db.Querier, projectID int64, citation string) (int64, error)
	ResolveTaxon(ctx context.Context, q db.Querier, name string) (int64, error)
	ResolveEcotype(ctx context.Context, q db.Querier, taxonID int64, name string) (int64, error)
	ResolveWaterBody(ctx context.Context, q db.Querier, number int) (string, error)

	// Readers return stored rows, NotFoundError for unknown ids.
	Dataset(ctx context.Context, q db.Querier, id string) (occur.Dataset, error)
	Project(ctx context.Context, q db.Querier, id int64) (occur.Project, error)
	Reference(ctx context.Context, q db.Querier, id int64) (occur.Reference, error)
	Location(ctx context.Context, q db.Querier, id string) (occur.Location, error)
	Event(ctx context.Context, q db.Querier, id string) (occur.Event, error)
	Occurrence(ctx context.Context, q db.Querier, id string) (occur.Occurrence, error)
	Counts(ctx context.Context, q db.Querier, datasetID string) (occur.Counts, error)
	ProjectCounts(ctx context.Context, q db.Querier, projectID int64) (occur.Counts, error)
}

// Match is a location found by the Matcher.
type Match struct {
	LocationID string
	// Distance in meters from the searched point.
	Distance float64
}

// Matcher decides whether a point belongs to an existing location.
type Matcher interface {
	// FindNearest returns the closest location within maxDistance meters,
	// boundary included. Equidistant candidates resolve to the lowest id.
	// A point without SRID is taken in the configured input SRID.
	FindNearest(ctx context.Context, q db.Querier, p occur.Point, maxDistance float64) (Match, bool, error)

	// Transform converts a point to the store reference system.
	Transform(ctx context.Context, q db.Querier, p occur.Point) (occur.Point, error)
}

// Auditor writes and reads append-only log tables.
type Auditor interface {
	// Record writes one log row with q, which must be the transaction of
	// the mutation. Prior is nil for inserts.
	Record(
		ctx context.Context,
		q db.Querier,
		user string,
		kind occur.Kind,
		entityID string,
		op occur.Operation,
		prior, next any,
	) error

	// History returns log rows ordered by time.
	History(ctx context.Context, q db.Querier, kind occur.Kind, f occur.HistoryFilter) ([]occur.LogEntry, error)
}

// Writer is the only way to create or change entities.
type Writer interface {
	// Submit writes a whole entity chain in one transaction.
	Submit(ctx context.Context, s db.Session, sub occur.Submission) (occur.EntityIDs, error)

	// Update methods change one entity and log its prior state.
	UpdateDataset(ctx context.Context, s db.Session, d occur.Dataset) error
	UpdateProject(ctx context.Context, s db.Session, p occur.Project) error
	UpdateReference(ctx context.Context, s db.Session, r occur.Reference) error
	UpdateLocation(ctx context.Context, s db.Session, l occur.Location) error
	UpdateEvent(ctx context.Context, s db.Session, e occur.Event) error
	UpdateOccurrence(ctx context.Context, s db.Session, o occur.Occurrence) error
}

// TaxaManager maintains the reference list of taxa.
type TaxaManager interface {
	// Import adds taxa and their ecotypes in one transaction and returns
	// the number of new taxa. Known scientific names are not duplicated.
	Import(ctx context.Context, s db.Session, taxa []occur.Taxon) (int, error)

	// Reparse recomputes canonical forms of all taxa and returns how many
	// of them changed.
	Reparse(ctx context.Context) (int, error)
}
