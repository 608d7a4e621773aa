// Package iotaxa maintains the reference list of taxa. Taxa and their
// ecotypes are imported from YAML files, canonical forms of scientific
// names are computed with gnparser.
package iotaxa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/gnames/gnocc/internal/iodb"
	"github.com/gnames/gnocc/internal/iofs"
	"github.com/gnames/gnocc/pkg/canonical"
	"github.com/gnames/gnocc/pkg/db"
	"github.com/gnames/gnocc/pkg/gnocc"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"
)

type manager struct {
	op   db.Operator
	norm canonical.Normalizer
	jobs int
}

// New creates a TaxaManager. Reparse runs jobs workers, at least one.
func New(
	op db.Operator,
	norm canonical.Normalizer,
	jobs int,
) gnocc.TaxaManager {
	return &manager{op: op, norm: norm, jobs: max(jobs, 1)}
}

// Read loads a taxa file:
//
//	taxa:
//	  - scientific_name: Salmo trutta Linnaeus, 1758
//	    family: Salmonidae
//	    vernacular_name: brown trout
//	    ecotypes: [sea trout, lake trout]
func Read(path string) ([]occur.Taxon, error) {
	data, err := iofs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Taxa []occur.Taxon `yaml:"taxa"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("file is empty")
		}
		return nil, TaxaFileError(path, err)
	}
	if len(doc.Taxa) == 0 {
		return nil, TaxaFileError(path, errors.New("no taxa found"))
	}
	return doc.Taxa, nil
}

// Import adds taxa in one transaction and returns the number of new
// ones. A taxon with a stored scientific name is not added again, but
// its new ecotypes are.
func (m *manager) Import(
	ctx context.Context,
	s db.Session,
	taxa []occur.Taxon,
) (int, error) {
	taxa = slices.Clone(taxa)
	var problems []string
	for i := range taxa {
		taxa[i].Ecotypes = slices.Clone(taxa[i].Ecotypes)
		taxa[i].Normalize()
		if taxa[i].ScientificName == "" {
			problems = append(problems,
				fmt.Sprintf("taxon[%d]: missing scientific_name", i))
		}
	}
	if len(problems) > 0 {
		return 0, occur.ValidationError(problems)
	}

	var res int
	err := s.Tx(ctx, func(tx pgx.Tx) error {
		res = 0
		for _, t := range taxa {
			id, isNew, err := m.addTaxon(ctx, tx, t)
			if err != nil {
				return err
			}
			if isNew {
				res++
			}
			for _, e := range t.Ecotypes {
				if e == "" {
					continue
				}
				if err = addEcotype(ctx, tx, id, e); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Taxa imported", "new", res, "total", len(taxa))
	return res, nil
}

func (m *manager) addTaxon(
	ctx context.Context,
	tx pgx.Tx,
	t occur.Taxon,
) (int64, bool, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`SELECT id FROM l_taxon WHERE scientific_name = $1
		ORDER BY id LIMIT 1`, t.ScientificName,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, iodb.Classify("find taxon", err)
	}

	can, _ := m.norm.Canonical(t.ScientificName)
	err = tx.QueryRow(ctx,
		`INSERT INTO l_taxon
			(scientific_name, canonical, family, taxon_rank, vernacular_name)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		t.ScientificName, can, t.Family, t.Rank, t.VernacularName,
	).Scan(&id)
	if err != nil {
		return 0, false, iodb.Classify("insert taxon", err)
	}
	return id, true, nil
}

func addEcotype(ctx context.Context, tx pgx.Tx, taxonID int64, name string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO l_ecotype (taxon_id, vernacular_name)
		SELECT $1::bigint, $2::text
		WHERE NOT EXISTS (
			SELECT 1 FROM l_ecotype
			WHERE taxon_id = $1::bigint AND lower(vernacular_name) = lower($2::text)
		)`, taxonID, name)
	return iodb.Classify("insert ecotype", err)
}
