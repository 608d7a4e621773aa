package iolookup

import (
	"context"
	"strings"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/format"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/jackc/pgx/v5"
)

func (l *lookup) Datasets(
	ctx context.Context,
	q db.Querier,
) ([]occur.IDLabel, error) {
	rows, err := q.Query(ctx,
		`SELECT id, name FROM m_dataset ORDER BY name, id`)
	if err != nil {
		return nil, iodb.Classify("list datasets", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (occur.IDLabel, error) {
		var id, name string
		err := row.Scan(&id, &name)
		return occur.IDLabel{ID: id, Label: format.DatasetLabel(id, name)}, err
	})
	if err != nil {
		return nil, iodb.Classify("list datasets", err)
	}
	return nonNil(res), nil
}

func (l *lookup) Projects(
	ctx context.Context,
	q db.Querier,
	datasetID string,
) ([]occur.IDLabel, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, organization FROM m_project
		WHERE $1::text = '' OR dataset_id = $1
		ORDER BY name, id`, datasetID)
	if err != nil {
		return nil, iodb.Classify("list projects", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (occur.IDLabel, error) {
		var id int64
		var name, org string
		err := row.Scan(&id, &name, &org)
		return occur.IDLabel{ID: itoa(id), Label: format.ProjectLabel(name, org)}, err
	})
	if err != nil {
		return nil, iodb.Classify("list projects", err)
	}
	return nonNil(res), nil
}

func (l *lookup) References(
	ctx context.Context,
	q db.Querier,
	projectID int64,
) ([]occur.IDLabel, error) {
	rows, err := q.Query(ctx, `
		SELECT id, citation, author, title, year FROM m_reference
		WHERE $1::bigint = 0 OR project_id = $1
		ORDER BY author, year, title, id`, projectID)
	if err != nil {
		return nil, iodb.Classify("list references", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (occur.IDLabel, error) {
		var r occur.Reference
		err := row.Scan(&r.ID, &r.Citation, &r.Author, &r.Title, &r.Year)
		return occur.IDLabel{ID: itoa(r.ID), Label: format.ReferenceLabel(r)}, err
	})
	if err != nil {
		return nil, iodb.Classify("list references", err)
	}
	return nonNil(res), nil
}

// Taxa matches the start of scientific or vernacular names, ignoring
// case. Labels add the vernacular name in parentheses.
func (l *lookup) Taxa(
	ctx context.Context,
	q db.Querier,
	fragment string,
) ([]occur.IDLabel, error) {
	fragment = occur.Clean(fragment)
	key := "taxa:" + strings.ToLower(fragment)
	if v, ok := l.cached(key); ok {
		return v.([]occur.IDLabel), nil
	}

	res, err := idLabels(ctx, q, "list taxa", `
		SELECT id::text,
			CASE WHEN vernacular_name <> ''
				THEN scientific_name || ' (' || vernacular_name || ')'
				ELSE scientific_name END
		FROM l_taxon
		WHERE taxon_rank = ANY($1)
			AND (scientific_name ILIKE $2::text || '%'
				OR vernacular_name ILIKE $2::text || '%')
		ORDER BY scientific_name, id`,
		taxonRanks, escapeLike(fragment))
	if err != nil {
		return nil, err
	}
	l.store(key, res)
	return res, nil
}

// Families groups names of species, hybrids and genera by family.
func (l *lookup) Families(
	ctx context.Context,
	q db.Querier,
) (map[string][]string, error) {
	if v, ok := l.cached("families"); ok {
		return v.(map[string][]string), nil
	}

	rows, err := q.Query(ctx, `
		SELECT family, scientific_name FROM l_taxon
		WHERE family <> '' AND taxon_rank = ANY($1)
		ORDER BY family, scientific_name`, taxonRanks)
	if err != nil {
		return nil, iodb.Classify("list families", err)
	}
	res := make(map[string][]string)
	var family, name string
	_, err = pgx.ForEachRow(rows, []any{&family, &name}, func() error {
		res[family] = append(res[family], name)
		return nil
	})
	if err != nil {
		return nil, iodb.Classify("list families", err)
	}
	l.store("families", res)
	return res, nil
}

// Ecotypes lists ecotypes of a taxon given by scientific or canonical
// name.
func (l *lookup) Ecotypes(
	ctx context.Context,
	q db.Querier,
	taxon string,
) ([]occur.IDLabel, error) {
	return idLabels(ctx, q, "list ecotypes", `
		SELECT e.id::text, e.vernacular_name
		FROM l_ecotype e
		JOIN l_taxon t ON t.id = e.taxon_id
		WHERE t.scientific_name = $1 OR t.canonical = $1
		ORDER BY e.vernacular_name, e.id`, occur.Clean(taxon))
}

func (l *lookup) Terms(
	ctx context.Context,
	q db.Querier,
	vocabulary string,
) ([]occur.IDLabel, error) {
	key := "terms:" + vocabulary
	if v, ok := l.cached(key); ok {
		return v.([]occur.IDLabel), nil
	}
	res, err := values(ctx, q, "list terms", `
		SELECT term FROM l_term WHERE vocabulary = $1 ORDER BY term`,
		vocabulary)
	if err != nil {
		return nil, err
	}
	l.store(key, res)
	return res, nil
}

// Institutions lists organizations of datasets and projects.
func (l *lookup) Institutions(
	ctx context.Context,
	q db.Querier,
) ([]occur.IDLabel, error) {
	return values(ctx, q, "list institutions", `
		SELECT organization FROM m_dataset WHERE organization <> ''
		UNION
		SELECT organization FROM m_project WHERE organization <> ''
		ORDER BY 1`)
}

// AccessRights lists the controlled terms and values already in use.
func (l *lookup) AccessRights(
	ctx context.Context,
	q db.Querier,
) ([]occur.IDLabel, error) {
	return values(ctx, q, "list access rights", `
		SELECT term FROM l_term WHERE vocabulary = 'access_rights'
		UNION
		SELECT access_rights FROM m_dataset WHERE access_rights <> ''
		ORDER BY 1`)
}

func (l *lookup) Countries(
	ctx context.Context,
	q db.Querier,
) ([]occur.IDLabel, error) {
	return values(ctx, q, "list countries", `
		SELECT DISTINCT country_code FROM location
		WHERE country_code <> ''
		ORDER BY 1`)
}

func (l *lookup) Counties(
	ctx context.Context,
	q db.Querier,
	country string,
) ([]occur.IDLabel, error) {
	return values(ctx, q, "list counties", `
		SELECT DISTINCT county FROM location
		WHERE county <> '' AND ($1::text = '' OR country_code = $1)
		ORDER BY 1`, strings.ToUpper(occur.Clean(country)))
}

func (l *lookup) Municipalities(
	ctx context.Context,
	q db.Querier,
	country, county string,
) ([]occur.IDLabel, error) {
	return values(ctx, q, "list municipalities", `
		SELECT DISTINCT municipality FROM location
		WHERE municipality <> ''
			AND ($1::text = '' OR country_code = $1)
			AND ($2::text = '' OR county = $2)
		ORDER BY 1`,
		strings.ToUpper(occur.Clean(country)), occur.Clean(county))
}

func (l *lookup) Locations(
	ctx context.Context,
	q db.Querier,
	f occur.LocationFilter,
) ([]occur.IDLabel, error) {
	sql := `
		SELECT id::text, location_type, verbatim_locality, water_body,
			water_body_number, municipality, county, country_code
		FROM location
		WHERE ($1::text = '' OR country_code = $1)
			AND ($2::text = '' OR county = $2)
			AND ($3::text = '' OR municipality = $3)
			AND ($4::text = '' OR water_body ILIKE $4::text || '%')
		ORDER BY water_body, municipality, id`
	args := []any{
		strings.ToUpper(occur.Clean(f.CountryCode)),
		occur.Clean(f.County),
		occur.Clean(f.Municipality),
		escapeLike(occur.Clean(f.WaterBody)),
	}
	if f.Limit > 0 {
		sql += " LIMIT $5"
		args = append(args, f.Limit)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, iodb.Classify("list locations", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (occur.IDLabel, error) {
		var v occur.Location
		err := row.Scan(&v.ID, &v.LocationType, &v.VerbatimLocality,
			&v.WaterBody, &v.WaterBodyNumber, &v.Municipality, &v.County,
			&v.CountryCode)
		return occur.IDLabel{ID: v.ID, Label: format.LocationLabel(v)}, err
	})
	if err != nil {
		return nil, iodb.Classify("list locations", err)
	}
	return nonNil(res), nil
}

// Users lists everyone who appears in any audit table.
func (l *lookup) Users(
	ctx context.Context,
	q db.Querier,
) ([]occur.IDLabel, error) {
	parts := make([]string, len(occur.Kinds))
	for i, k := range occur.Kinds {
		parts[i] = "SELECT username FROM " + pgx.Identifier{k.LogTable()}.Sanitize()
	}
	sql := strings.Join(parts, "\nUNION\n") + "\nORDER BY 1"
	return values(ctx, q, "list users", sql)
}

// escapeLike makes LIKE wildcards of user input literal.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNil(res []occur.IDLabel) []occur.IDLabel {
	if res == nil {
		return []occur.IDLabel{}
	}
	return res
}
