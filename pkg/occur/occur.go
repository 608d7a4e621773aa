// Package occur contains the entity model of species-occurrence
// submissions: the provenance chain Dataset, Project, Reference, the
// shared Location, and the Event with its Occurrences.
//
// The package is pure. It does no I/O and knows nothing about the
// store; io packages translate these types to and from rows.
package occur

import (
	"encoding/json"
	"time"
)

// Kind names an entity kind. Every kind has its own table and its
// own append-only log table.
type Kind string

const (
	KindDataset    Kind = "dataset"
	KindProject    Kind = "project"
	KindReference  Kind = "reference"
	KindLocation   Kind = "location"
	KindEvent      Kind = "event"
	KindOccurrence Kind = "occurrence"
)

// Kinds lists entity kinds in the order a submission writes them.
var Kinds = []Kind{
	KindDataset,
	KindProject,
	KindReference,
	KindLocation,
	KindEvent,
	KindOccurrence,
}

// ParseKind converts a user-provided string to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// LogTable returns the name of the audit table of the kind.
func (k Kind) LogTable() string {
	return string(k) + "_log"
}

// Operation is the kind of mutation recorded in a log table.
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
)

// Dataset is the root of provenance.
type Dataset struct {
	// ID is either given by the user or derived from name and
	// organization.
	ID                  string `json:"id"                   yaml:"id"`
	Name                string `json:"name"                 yaml:"name"`
	Organization        string `json:"organization"         yaml:"organization"`
	RightsHolder        string `json:"rights_holder"        yaml:"rights_holder"`
	License             string `json:"license"              yaml:"license"`
	AccessRights        string `json:"access_rights"        yaml:"access_rights"`
	Citation            string `json:"citation"             yaml:"citation"`
	Comment             string `json:"comment"              yaml:"comment"`
	InformationWithheld string `json:"information_withheld" yaml:"information_withheld"`
	DataGeneralizations string `json:"data_generalizations" yaml:"data_generalizations"`
	// CreatedBy is the user that owns the dataset. Set by the writer.
	CreatedBy string `json:"created_by" yaml:"-"`
}

// Project belongs to exactly one Dataset.
type Project struct {
	ID           int64  `json:"id"           yaml:"id"`
	DatasetID    string `json:"dataset_id"   yaml:"-"`
	Name         string `json:"name"         yaml:"name"`
	Organization string `json:"organization" yaml:"organization"`
	Number       string `json:"number"       yaml:"number"`
	StartYear    int    `json:"start_year"   yaml:"start_year"`
	EndYear      int    `json:"end_year"     yaml:"end_year"`
	Leader       string `json:"leader"       yaml:"leader"`
	Members      string `json:"members"      yaml:"members"`
	Financer     string `json:"financer"     yaml:"financer"`
	Remarks      string `json:"remarks"      yaml:"remarks"`
}

// Reference is a publication or report an Event is taken from.
type Reference struct {
	ID        int64  `json:"id"         yaml:"id"`
	ProjectID int64  `json:"project_id" yaml:"-"`
	Type      string `json:"type"       yaml:"type"`
	// Citation is the free-text citation, unique within a project.
	Citation string `json:"citation" yaml:"citation"`
	Author   string `json:"author"   yaml:"author"`
	Title    string `json:"title"    yaml:"title"`
	Year     int    `json:"year"     yaml:"year"`
	Journal  string `json:"journal"  yaml:"journal"`
	Volume   string `json:"volume"   yaml:"volume"`
	ISSN     string `json:"issn"     yaml:"issn"`
	ISBN     string `json:"isbn"     yaml:"isbn"`
	Page     string `json:"page"     yaml:"page"`
}

// Point is a coordinate pair in the reference system given by SRID.
type Point struct {
	X    float64 `json:"x"    yaml:"x"`
	Y    float64 `json:"y"    yaml:"y"`
	SRID int     `json:"srid" yaml:"srid"`
}

// Location is a place shared by Events. Its identity is spatial.
type Location struct {
	// ID is a UUID assigned by the store.
	ID string `json:"id" yaml:"id"`
	// Point is given in any SRID on input and is returned in the
	// store SRID on output.
	Point            *Point `json:"point"             yaml:"point"`
	LocationType     string `json:"location_type"     yaml:"location_type"`
	VerbatimLocality string `json:"verbatim_locality" yaml:"verbatim_locality"`
	WaterBody        string `json:"water_body"        yaml:"water_body"`
	// WaterBodyNumber is a registry number of a lake or river. A
	// submission may refer to a known location by it.
	WaterBodyNumber int    `json:"water_body_number" yaml:"water_body_number"`
	Municipality    string `json:"municipality"      yaml:"municipality"`
	County          string `json:"county"            yaml:"county"`
	CountryCode     string `json:"country_code"      yaml:"country_code"`
}

// Event is a sampling event at one Location taken from one Reference.
type Event struct {
	ID               string    `json:"id"                yaml:"id"`
	ReferenceID      int64     `json:"reference_id"      yaml:"-"`
	LocationID       string    `json:"location_id"       yaml:"-"`
	DateStart        time.Time `json:"date_start"        yaml:"date_start"`
	DateEnd          time.Time `json:"date_end"          yaml:"date_end"`
	SamplingProtocol string    `json:"sampling_protocol" yaml:"sampling_protocol"`
	SampleSizeUnit   string    `json:"sample_size_unit"  yaml:"sample_size_unit"`
	SampleSizeValue  float64   `json:"sample_size_value" yaml:"sample_size_value"`
	SamplingEffort   int       `json:"sampling_effort"   yaml:"sampling_effort"`
	FieldNumber      string    `json:"field_number"      yaml:"field_number"`
	RecordedBy       string    `json:"recorded_by"       yaml:"recorded_by"`
	Reliability      string    `json:"reliability"       yaml:"reliability"`
	Remarks          string    `json:"remarks"           yaml:"remarks"`
	// TaxonCoverage lists names of taxa the sampling targeted.
	TaxonCoverage []string `json:"taxon_coverage,omitempty" yaml:"taxon_coverage"`
}

// Occurrence is an observation of one taxon during an Event.
type Occurrence struct {
	ID      string `json:"id"       yaml:"id"`
	EventID string `json:"event_id" yaml:"-"`
	// Taxon is the scientific name, resolved to TaxonID by the writer.
	Taxon   string `json:"taxon"    yaml:"taxon"`
	TaxonID int64  `json:"taxon_id" yaml:"-"`
	// Ecotype is optional and resolved to EcotypeID within the taxon.
	Ecotype              string    `json:"ecotype"                yaml:"ecotype"`
	EcotypeID            int64     `json:"ecotype_id"             yaml:"-"`
	OrganismQuantityType string    `json:"organism_quantity_type" yaml:"organism_quantity_type"`
	OrganismQuantity     float64   `json:"organism_quantity"      yaml:"organism_quantity"`
	OccurrenceStatus     string    `json:"occurrence_status"      yaml:"occurrence_status"`
	PopulationTrend      string    `json:"population_trend"       yaml:"population_trend"`
	EstablishmentMeans   string    `json:"establishment_means"    yaml:"establishment_means"`
	EstablishmentRemarks string    `json:"establishment_remarks"  yaml:"establishment_remarks"`
	SpawningCondition    string    `json:"spawning_condition"     yaml:"spawning_condition"`
	SpawningLocation     string    `json:"spawning_location"      yaml:"spawning_location"`
	RecordNumber         string    `json:"record_number"          yaml:"record_number"`
	VerifiedBy           string    `json:"verified_by"            yaml:"verified_by"`
	VerifiedDate         time.Time `json:"verified_date"          yaml:"verified_date"`
	Reliability          string    `json:"reliability"            yaml:"reliability"`
	Remarks              string    `json:"remarks"                yaml:"remarks"`
}

// Submission is the full entity chain entered by a user at once.
type Submission struct {
	Dataset     Dataset      `yaml:"dataset"`
	Project     Project      `yaml:"project"`
	Reference   Reference    `yaml:"reference"`
	Location    Location     `yaml:"location"`
	Event       Event        `yaml:"event"`
	Occurrences []Occurrence `yaml:"occurrences"`

	// ForceNewLocation creates a new Location even if an existing one
	// lies within tolerance.
	ForceNewLocation bool `yaml:"force_new_location"`

	// Tolerance overrides the configured matching distance in meters
	// when positive.
	Tolerance float64 `yaml:"tolerance"`
}

// EntityIDs are identifiers of all rows a submission resolved or
// created.
type EntityIDs struct {
	DatasetID     string
	ProjectID     int64
	ReferenceID   int64
	LocationID    string
	EventID       string
	OccurrenceIDs []string

	// Created lists kinds for which at least one new row was inserted,
	// in insertion order. Occurrences appear once per inserted row.
	Created []Kind

	// LocationDistance is the distance in meters to a reused location.
	// It is zero when the location was created or given explicitly.
	LocationDistance float64
}

// CreatedCount returns how many rows of the given kind were created.
func (e EntityIDs) CreatedCount(k Kind) int {
	var res int
	for _, v := range e.Created {
		if v == k {
			res++
		}
	}
	return res
}

// IDLabel is an entry of a selection list.
type IDLabel struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Counts summarize the content of a dataset.
type Counts struct {
	Projects    int64 `json:"projects"`
	References  int64 `json:"references"`
	Events      int64 `json:"events"`
	Occurrences int64 `json:"occurrences"`
}

// LogEntry is one row of an audit log table.
type LogEntry struct {
	ID        int64           `json:"id"`
	Kind      Kind            `json:"kind"`
	EntityID  string          `json:"entity_id"`
	User      string          `json:"user"`
	Operation Operation       `json:"operation"`
	Prior     json.RawMessage `json:"prior,omitempty"`
	New       json.RawMessage `json:"new"`
	LoggedAt  time.Time       `json:"logged_at"`
}

// HistoryFilter narrows down LogEntry queries. Zero values do not
// filter.
type HistoryFilter struct {
	// User is a LIKE pattern, for example "ola%".
	User      string
	EntityID  string
	Operation Operation
	From      time.Time
	To        time.Time
	Limit     int
}

// LocationFilter narrows down location lists.
type LocationFilter struct {
	CountryCode  string
	County       string
	Municipality string
	// WaterBody is a case-insensitive name prefix.
	WaterBody string
	Limit     int
}
