package occur

import (
	"maps"
	"slices"
)

// Fielder is implemented by entities that can be checked for
// mandatory fields.
type Fielder interface {
	Fields() map[string]any
}

func (d Dataset) Fields() map[string]any {
	return map[string]any{
		"id":                   d.ID,
		"name":                 d.Name,
		"organization":         d.Organization,
		"rights_holder":        d.RightsHolder,
		"license":              d.License,
		"access_rights":        d.AccessRights,
		"citation":             d.Citation,
		"comment":              d.Comment,
		"information_withheld": d.InformationWithheld,
		"data_generalizations": d.DataGeneralizations,
	}
}

func (p Project) Fields() map[string]any {
	return map[string]any{
		"name":         p.Name,
		"organization": p.Organization,
		"number":       p.Number,
		"start_year":   p.StartYear,
		"end_year":     p.EndYear,
		"leader":       p.Leader,
		"members":      p.Members,
		"financer":     p.Financer,
		"remarks":      p.Remarks,
	}
}

func (r Reference) Fields() map[string]any {
	return map[string]any{
		"type":     r.Type,
		"citation": r.Citation,
		"author":   r.Author,
		"title":    r.Title,
		"year":     r.Year,
		"journal":  r.Journal,
		"volume":   r.Volume,
		"issn":     r.ISSN,
		"isbn":     r.ISBN,
		"page":     r.Page,
	}
}

func (l Location) Fields() map[string]any {
	return map[string]any{
		"point":             l.Point,
		"location_type":     l.LocationType,
		"verbatim_locality": l.VerbatimLocality,
		"water_body":        l.WaterBody,
		"water_body_number": l.WaterBodyNumber,
		"municipality":      l.Municipality,
		"county":            l.County,
		"country_code":      l.CountryCode,
	}
}

func (e Event) Fields() map[string]any {
	return map[string]any{
		"date_start":        e.DateStart,
		"date_end":          e.DateEnd,
		"sampling_protocol": e.SamplingProtocol,
		"sample_size_unit":  e.SampleSizeUnit,
		"sample_size_value": e.SampleSizeValue,
		"sampling_effort":   e.SamplingEffort,
		"field_number":      e.FieldNumber,
		"recorded_by":       e.RecordedBy,
		"reliability":       e.Reliability,
		"remarks":           e.Remarks,
		"taxon_coverage":    e.TaxonCoverage,
	}
}

func (o Occurrence) Fields() map[string]any {
	return map[string]any{
		"taxon":                  o.Taxon,
		"ecotype":                o.Ecotype,
		"organism_quantity_type": o.OrganismQuantityType,
		"organism_quantity":      o.OrganismQuantity,
		"occurrence_status":      o.OccurrenceStatus,
		"population_trend":       o.PopulationTrend,
		"establishment_means":    o.EstablishmentMeans,
		"establishment_remarks":  o.EstablishmentRemarks,
		"spawning_condition":     o.SpawningCondition,
		"spawning_location":      o.SpawningLocation,
		"record_number":          o.RecordNumber,
		"verified_by":            o.VerifiedBy,
		"verified_date":          o.VerifiedDate,
		"reliability":            o.Reliability,
		"remarks":                o.Remarks,
	}
}

var fieldNames = map[Kind][]string{
	KindDataset:    slices.Sorted(maps.Keys(Dataset{}.Fields())),
	KindProject:    slices.Sorted(maps.Keys(Project{}.Fields())),
	KindReference:  slices.Sorted(maps.Keys(Reference{}.Fields())),
	KindLocation:   slices.Sorted(maps.Keys(Location{}.Fields())),
	KindEvent:      slices.Sorted(maps.Keys(Event{}.Fields())),
	KindOccurrence: slices.Sorted(maps.Keys(Occurrence{}.Fields())),
}

// FieldNames returns sorted names of fields that can be made mandatory
// for the kind.
func FieldNames(k Kind) []string {
	return slices.Clone(fieldNames[k])
}

// IsField reports whether name is a field of the kind.
func IsField(k Kind, name string) bool {
	_, ok := slices.BinarySearch(fieldNames[k], name)
	return ok
}
