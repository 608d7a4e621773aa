package ioschema

import (
	"context"
	_ "embed"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var vocabularyYAML []byte

// vocabulary maps vocabulary names to their terms.
type vocabulary map[string][]string

func loadVocabulary() (vocabulary, error) {
	var res vocabulary
	if err := yaml.Unmarshal(vocabularyYAML, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// seedTerms inserts controlled vocabularies. Existing terms are kept.
func (m *manager) seedTerms(ctx context.Context) error {
	voc, err := loadVocabulary()
	if err != nil {
		return SeedError(err)
	}

	q := `INSERT INTO l_term (vocabulary, term)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`

	batch := &pgx.Batch{}
	for name, terms := range voc {
		for _, term := range terms {
			batch.Queue(q, name, term)
		}
	}

	count := batch.Len()
	if err = m.operator.Pool().SendBatch(ctx, batch).Close(); err != nil {
		return SeedError(err)
	}
	slog.Info("Seeded vocabularies", "vocabularies", len(voc), "terms", count)
	return nil
}
