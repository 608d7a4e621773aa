package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all entity and reference models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&Taxon{},
		&Ecotype{},
		&Term{},
		&Dataset{},
		&Project{},
		&Reference{},
		&Location{},
		&Event{},
		&Occurrence{},
		&TaxonCoverage{},
	}
}

// Migrate runs GORM AutoMigrate to create or update schema, including
// one audit table per entity kind.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return err
	}
	for _, table := range LogTables() {
		if err := db.Table(table).AutoMigrate(&LogEntry{}); err != nil {
			return err
		}
	}
	return nil
}
