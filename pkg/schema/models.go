// Package schema provides GORM models of the occurrence store.
// Tables are created by AutoMigrate; foreign keys between entity
// tables are added by the schema manager afterwards.
package schema

import (
	"time"

	"github.com/gnames/gnocc/pkg/occur"
	"gorm.io/datatypes"
)

// Dataset is the root of provenance.
type Dataset struct {
	ID                  string    `gorm:"primaryKey;type:text"`
	Name                string    `gorm:"type:text;not null;uniqueIndex:idx_dataset_name_org"`
	Organization        string    `gorm:"type:text;not null;uniqueIndex:idx_dataset_name_org"`
	RightsHolder        string    `gorm:"type:text"`
	License             string    `gorm:"type:text"`
	AccessRights        string    `gorm:"type:text"`
	Citation            string    `gorm:"type:text"`
	Comment             string    `gorm:"type:text"`
	InformationWithheld string    `gorm:"type:text"`
	DataGeneralizations string    `gorm:"type:text"`
	CreatedBy           string    `gorm:"type:text"`
	CreatedAt           time.Time `gorm:"not null;default:now()"`
	UpdatedAt           time.Time `gorm:"not null;default:now()"`
}

func (Dataset) TableName() string { return "m_dataset" }

// Project belongs to a Dataset. Names are unique within a dataset.
type Project struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	DatasetID    string    `gorm:"type:text;not null;uniqueIndex:idx_project_dataset_name"`
	Name         string    `gorm:"type:text;not null;uniqueIndex:idx_project_dataset_name"`
	Organization string    `gorm:"type:text"`
	Number       string    `gorm:"type:text"`
	StartYear    int       `gorm:"not null;default:0"`
	EndYear      int       `gorm:"not null;default:0"`
	Leader       string    `gorm:"type:text"`
	Members      string    `gorm:"type:text"`
	Financer     string    `gorm:"type:text"`
	Remarks      string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
	UpdatedAt    time.Time `gorm:"not null;default:now()"`
}

func (Project) TableName() string { return "m_project" }

// Reference belongs to a Project. Citations are unique within a project.
type Reference struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ProjectID int64     `gorm:"not null;uniqueIndex:idx_reference_project_citation"`
	Citation  string    `gorm:"type:text;not null;uniqueIndex:idx_reference_project_citation"`
	Type      string    `gorm:"type:text"`
	Author    string    `gorm:"type:text"`
	Title     string    `gorm:"type:text"`
	Year      int       `gorm:"not null;default:0"`
	Journal   string    `gorm:"type:text"`
	Volume    string    `gorm:"type:text"`
	ISSN      string    `gorm:"column:issn;type:text"`
	ISBN      string    `gorm:"column:isbn;type:text"`
	Page      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Reference) TableName() string { return "m_reference" }

// Location keeps points in ETRS89 / UTM zone 33N (EPSG:25833).
type Location struct {
	ID               string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Geom             string    `gorm:"type:geometry(Point,25833);not null;index:idx_location_geom,type:gist"`
	LocationType     string    `gorm:"type:text"`
	VerbatimLocality string    `gorm:"type:text"`
	WaterBody        string    `gorm:"type:text"`
	WaterBodyNumber  int       `gorm:"not null;default:0;index"`
	CountryCode      string    `gorm:"type:text;index:idx_location_admin,priority:1"`
	County           string    `gorm:"type:text;index:idx_location_admin,priority:2"`
	Municipality     string    `gorm:"type:text;index:idx_location_admin,priority:3"`
	CreatedAt        time.Time `gorm:"not null;default:now()"`
	UpdatedAt        time.Time `gorm:"not null;default:now()"`
}

func (Location) TableName() string { return "location" }

// Event is a sampling event of a Reference at a Location.
type Event struct {
	ID               string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ReferenceID      int64     `gorm:"not null;index"`
	LocationID       string    `gorm:"type:uuid;not null;index"`
	DateStart        time.Time `gorm:"type:date;not null"`
	DateEnd          time.Time `gorm:"type:date;not null"`
	SamplingProtocol string    `gorm:"type:text"`
	SampleSizeUnit   string    `gorm:"type:text"`
	SampleSizeValue  float64   `gorm:"not null;default:0"`
	SamplingEffort   int       `gorm:"not null;default:0"`
	FieldNumber      string    `gorm:"type:text"`
	RecordedBy       string    `gorm:"type:text"`
	Reliability      string    `gorm:"type:text"`
	Remarks          string    `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"not null;default:now()"`
	UpdatedAt        time.Time `gorm:"not null;default:now()"`
}

func (Event) TableName() string { return "event" }

// Occurrence is an observation of a taxon during an Event.
type Occurrence struct {
	ID                   string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EventID              string     `gorm:"type:uuid;not null;index"`
	TaxonID              int64      `gorm:"not null;index"`
	EcotypeID            *int64     `gorm:"index"`
	OrganismQuantityType string     `gorm:"type:text"`
	OrganismQuantity     float64    `gorm:"not null;default:0"`
	OccurrenceStatus     string     `gorm:"type:text"`
	PopulationTrend      string     `gorm:"type:text"`
	EstablishmentMeans   string     `gorm:"type:text"`
	EstablishmentRemarks string     `gorm:"type:text"`
	SpawningCondition    string     `gorm:"type:text"`
	SpawningLocation     string     `gorm:"type:text"`
	RecordNumber         string     `gorm:"type:text"`
	VerifiedBy           string     `gorm:"type:text"`
	VerifiedDate         *time.Time `gorm:"type:date"`
	Reliability          string     `gorm:"type:text"`
	Remarks              string     `gorm:"type:text"`
	CreatedAt            time.Time  `gorm:"not null;default:now()"`
	UpdatedAt            time.Time  `gorm:"not null;default:now()"`
}

func (Occurrence) TableName() string { return "occurrence" }

// TaxonCoverage lists taxa targeted by the sampling of an Event.
type TaxonCoverage struct {
	EventID string `gorm:"primaryKey;type:uuid"`
	TaxonID int64  `gorm:"primaryKey"`
}

func (TaxonCoverage) TableName() string { return "event_taxon_coverage" }

// Taxon is a reference list of taxa, loaded by administrators.
type Taxon struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	ScientificName string `gorm:"type:text;not null;index"`
	// Canonical is the name without authorship, used when a submitted
	// name does not match ScientificName exactly.
	Canonical      string `gorm:"type:text;index"`
	Family         string `gorm:"type:text"`
	TaxonRank      string `gorm:"type:text"`
	VernacularName string `gorm:"type:text"`
}

func (Taxon) TableName() string { return "l_taxon" }

// Ecotype is a named form of a taxon.
type Ecotype struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	TaxonID        int64  `gorm:"not null;index"`
	VernacularName string `gorm:"type:text;not null"`
}

func (Ecotype) TableName() string { return "l_ecotype" }

// Term is an entry of a controlled vocabulary.
type Term struct {
	Vocabulary  string `gorm:"primaryKey;type:text"`
	Term        string `gorm:"primaryKey;type:text"`
	Description string `gorm:"type:text"`
}

func (Term) TableName() string { return "l_term" }

// LogEntry is the layout of every audit table. One table per entity
// kind is created from it, see LogTables.
type LogEntry struct {
	ID         int64          `gorm:"primaryKey;autoIncrement"`
	EntityID   string         `gorm:"type:text;not null"`
	Username   string         `gorm:"type:text;not null"`
	Operation  string         `gorm:"type:text;not null"`
	PriorState datatypes.JSON `gorm:"type:jsonb"`
	NewState   datatypes.JSON `gorm:"type:jsonb;not null"`
	LoggedAt   time.Time      `gorm:"not null;default:now()"`
}

// LogTables returns names of audit tables in the order of entity kinds.
func LogTables() []string {
	res := make([]string, len(occur.Kinds))
	for i, k := range occur.Kinds {
		res[i] = k.LogTable()
	}
	return res
}
