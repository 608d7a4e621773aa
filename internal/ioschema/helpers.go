package ioschema

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

type foreignKey struct {
	name, table, column, refTable string
}

var foreignKeys = []foreignKey{
	{"fk_ecotype_taxon", "l_ecotype", "taxon_id", "l_taxon"},
	{"fk_project_dataset", "m_project", "dataset_id", "m_dataset"},
	{"fk_reference_project", "m_reference", "project_id", "m_project"},
	{"fk_event_reference", "event", "reference_id", "m_reference"},
	{"fk_event_location", "event", "location_id", "location"},
	{"fk_occurrence_event", "occurrence", "event_id", "event"},
	{"fk_occurrence_taxon", "occurrence", "taxon_id", "l_taxon"},
	{"fk_occurrence_ecotype", "occurrence", "ecotype_id", "l_ecotype"},
	{"fk_coverage_event", "event_taxon_coverage", "event_id", "event"},
	{"fk_coverage_taxon", "event_taxon_coverage", "taxon_id", "l_taxon"},
}

// sql returns a statement that adds the key unless it exists.
func (fk foreignKey) sql() string {
	return fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = '%s'
	) THEN
		ALTER TABLE %s ADD CONSTRAINT %s
			FOREIGN KEY (%s) REFERENCES %s (id);
	END IF;
END $$`,
		fk.name,
		pgx.Identifier{fk.table}.Sanitize(),
		pgx.Identifier{fk.name}.Sanitize(),
		pgx.Identifier{fk.column}.Sanitize(),
		pgx.Identifier{fk.refTable}.Sanitize(),
	)
}

// logIndexSQL returns index statements of an audit table. Index names
// are prefixed by the table, because all audit tables share one model.
func logIndexSQL(table string) []string {
	t := pgx.Identifier{table}.Sanitize()
	return []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (entity_id)",
			pgx.Identifier{table + "_entity_idx"}.Sanitize(), t),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (logged_at)",
			pgx.Identifier{table + "_logged_at_idx"}.Sanitize(), t),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (username)",
			pgx.Identifier{table + "_username_idx"}.Sanitize(), t),
	}
}
