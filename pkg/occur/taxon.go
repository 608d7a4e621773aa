package occur

import "strings"

// Taxon is an entry of the reference list of taxa. Occurrences and
// taxon coverage of events can only name taxa from this list.
type Taxon struct {
	ID             int64    `json:"id"              yaml:"id"`
	ScientificName string   `json:"scientific_name" yaml:"scientific_name"`
	Family         string   `json:"family"          yaml:"family"`
	Rank           string   `json:"rank"            yaml:"rank"`
	VernacularName string   `json:"vernacular_name" yaml:"vernacular_name"`
	Ecotypes       []string `json:"ecotypes"        yaml:"ecotypes"`
}

// Normalize cleans fields and defaults the rank to species. Ranks are
// lowercase.
func (t *Taxon) Normalize() {
	cleanAll(&t.ScientificName, &t.Family, &t.Rank, &t.VernacularName)
	t.Rank = strings.ToLower(t.Rank)
	if t.Rank == "" {
		t.Rank = "species"
	}
	for i := range t.Ecotypes {
		t.Ecotypes[i] = Clean(t.Ecotypes[i])
	}
}
