package iolookup

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/gnames/gnocc/pkg/occur"
)

// ResolveDataset finds a dataset by name within an organization. An
// empty organization matches datasets of any organization.
func (l *lookup) ResolveDataset(
	ctx context.Context,
	q db.Querier,
	name, organization string,
) (string, error) {
	name, organization = occur.Clean(name), occur.Clean(organization)
	key := name
	if organization != "" {
		key += " (" + organization + ")"
	}
	return resolve[string](ctx, q, string(occur.KindDataset), key, `
		SELECT id, count(*) OVER () FROM m_dataset
		WHERE name = $1 AND ($2::text = '' OR organization = $2)
		ORDER BY id LIMIT 2`, name, organization)
}

// ResolveProject finds a project by name within a dataset, or among all
// projects for an empty datasetID.
func (l *lookup) ResolveProject(
	ctx context.Context,
	q db.Querier,
	datasetID, name string,
) (int64, error) {
	name = occur.Clean(name)
	return resolve[int64](ctx, q, string(occur.KindProject), name, `
		SELECT id, count(*) OVER () FROM m_project
		WHERE name = $2 AND ($1::text = '' OR dataset_id = $1)
		ORDER BY id LIMIT 2`, datasetID, name)
}

// ResolveReference finds a reference by its citation within a project,
// or among all references for projectID 0.
func (l *lookup) ResolveReference(
	ctx context.Context,
	q db.Querier,
	projectID int64,
	citation string,
) (int64, error) {
	citation = occur.Clean(citation)
	return resolve[int64](ctx, q, string(occur.KindReference), citation, `
		SELECT id, count(*) OVER () FROM m_reference
		WHERE citation = $2 AND ($1::bigint = 0 OR project_id = $1)
		ORDER BY id LIMIT 2`, projectID, citation)
}

// ResolveTaxon matches the scientific name exactly first. If nothing
// matches, the canonical form of the name is compared to canonical
// forms of the taxa.
func (l *lookup) ResolveTaxon(
	ctx context.Context,
	q db.Querier,
	name string,
) (int64, error) {
	name = occur.Clean(name)
	id, err := resolve[int64](ctx, q, "taxon", name, `
		SELECT id, count(*) OVER () FROM l_taxon
		WHERE scientific_name = $1
		ORDER BY id LIMIT 2`, name)
	if err == nil || !errcode.Is(err, errcode.NotFoundError) || l.norm == nil {
		return id, err
	}

	can, ok := l.norm.Canonical(name)
	if !ok {
		return 0, err
	}
	slog.Debug("Resolving taxon by canonical form",
		"name", name, "canonical", can)
	return resolve[int64](ctx, q, "taxon", name, `
		SELECT id, count(*) OVER () FROM l_taxon
		WHERE canonical = $1
		ORDER BY id LIMIT 2`, can)
}

// ResolveEcotype matches vernacular names of ecotypes of a taxon,
// ignoring case.
func (l *lookup) ResolveEcotype(
	ctx context.Context,
	q db.Querier,
	taxonID int64,
	name string,
) (int64, error) {
	name = occur.Clean(name)
	return resolve[int64](ctx, q, "ecotype", name, `
		SELECT id, count(*) OVER () FROM l_ecotype
		WHERE taxon_id = $1 AND lower(vernacular_name) = lower($2)
		ORDER BY id LIMIT 2`, taxonID, name)
}

// ResolveWaterBody finds the location registered under a water body
// number.
func (l *lookup) ResolveWaterBody(
	ctx context.Context,
	q db.Querier,
	number int,
) (string, error) {
	return resolve[string](ctx, q, "water body", strconv.Itoa(number), `
		SELECT id::text, count(*) OVER () FROM location
		WHERE water_body_number = $1
		ORDER BY id LIMIT 2`, number)
}
