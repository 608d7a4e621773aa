package occur

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mandatory maps entity kinds to names of fields that must not be
// empty. It comes from configuration.
type Mandatory map[Kind][]string

// Missing returns names of mandatory fields of f that are empty, in
// the order they were given. Names unknown to f are ignored.
func Missing(f Fielder, mandatory []string) []string {
	var res []string
	fields := f.Fields()
	for _, name := range mandatory {
		v, ok := fields[name]
		if !ok || !isEmpty(v) || slices.Contains(res, name) {
			continue
		}
		res = append(res, name)
	}
	return res
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case time.Time:
		return t.IsZero()
	case *Point:
		return t == nil
	case []string:
		return len(t) == 0
	default:
		return v == nil
	}
}

// Validate checks every level of the submission. Every problem found
// is reported in one ValidationError, so a caller can fix all of them
// at once.
func (s Submission) Validate(m Mandatory) error {
	var problems []string
	add := func(label string, msgs []string) {
		for _, v := range msgs {
			problems = append(problems, label+": "+v)
		}
	}

	add("dataset", entityProblems(KindDataset, s.Dataset, m, true))
	add("project", entityProblems(KindProject, s.Project, m, true))
	add("reference", entityProblems(KindReference, s.Reference, m, true))
	add("location", entityProblems(KindLocation, s.Location, m, true))
	add("event", entityProblems(KindEvent, s.Event, m, true))

	if len(s.Occurrences) == 0 {
		add("occurrence", []string{"at least one occurrence is required"})
	}
	for i, o := range s.Occurrences {
		label := fmt.Sprintf("occurrence[%d]", i)
		add(label, entityProblems(KindOccurrence, o, m, true))
	}

	if s.Tolerance < 0 {
		add("location", []string{"tolerance cannot be negative"})
	}

	if len(problems) > 0 {
		return ValidationError(problems)
	}
	return nil
}

// ValidateEntity checks one entity before an update. Updates always
// need the ID of the row.
func ValidateEntity(k Kind, f Fielder, m Mandatory) error {
	problems := entityProblems(k, f, m, false)
	if len(problems) == 0 {
		return nil
	}
	for i := range problems {
		problems[i] = string(k) + ": " + problems[i]
	}
	return ValidationError(problems)
}

func entityProblems(k Kind, f Fielder, m Mandatory, isNew bool) []string {
	var res []string
	// a submission that points to a stored row does not repeat its fields
	ref := isNew && isReference(f)
	if !ref {
		for _, v := range Missing(f, m[k]) {
			if !givenByID(f, v) {
				res = append(res, "missing "+v)
			}
		}
	}

	missingKey := func(names ...string) {
		for _, v := range Missing(f, names) {
			msg := "missing " + v
			if !slices.Contains(res, msg) {
				res = append(res, msg)
			}
		}
	}

	switch e := f.(type) {
	case Dataset:
		if !isNew && e.ID == "" {
			res = append(res, "missing id")
		}
		if e.ID == "" || !isNew {
			missingKey("name", "organization")
		}
	case Project:
		if !isNew && e.ID <= 0 {
			res = append(res, "missing id")
		}
		if !ref {
			missingKey("name")
		}
		if e.StartYear > 0 && e.EndYear > 0 && e.EndYear < e.StartYear {
			res = append(res, "end_year is before start_year")
		}
	case Reference:
		if !isNew && e.ID <= 0 {
			res = append(res, "missing id")
		}
		if !ref {
			missingKey("citation")
		}
	case Location:
		res = append(res, locationProblems(e, isNew)...)
	case Event:
		if !isNew {
			res = append(res, uuidProblems("id", e.ID)...)
			res = append(res, uuidProblems("location_id", e.LocationID)...)
		}
		if !e.DateStart.IsZero() && !e.DateEnd.IsZero() &&
			e.DateEnd.Before(e.DateStart) {
			res = append(res, "date_end is before date_start")
		}
		if e.SampleSizeValue < 0 || e.SamplingEffort < 0 {
			res = append(res, "sample size and effort cannot be negative")
		}
	case Occurrence:
		if !isNew {
			res = append(res, uuidProblems("id", e.ID)...)
		}
		if e.TaxonID == 0 {
			missingKey("taxon")
		}
		if e.OrganismQuantity < 0 {
			res = append(res, "organism_quantity cannot be negative")
		}
	}
	return res
}

// isReference tells if a new submission refers to an existing row by id.
func isReference(f Fielder) bool {
	switch e := f.(type) {
	case Dataset:
		return e.ID != ""
	case Project:
		return e.ID > 0
	case Reference:
		return e.ID > 0
	case Location:
		return e.ID != ""
	}
	return false
}

// givenByID tells if an empty name field is replaced by its id.
func givenByID(f Fielder, field string) bool {
	o, ok := f.(Occurrence)
	if !ok {
		return false
	}
	return (field == "taxon" && o.TaxonID > 0) ||
		(field == "ecotype" && o.EcotypeID > 0)
}

func locationProblems(l Location, isNew bool) []string {
	var res []string
	if l.ID != "" || !isNew {
		res = append(res, uuidProblems("id", l.ID)...)
	}
	if isNew && l.ID == "" && l.Point == nil && l.WaterBodyNumber == 0 {
		res = append(res, "one of id, point or water_body_number is required")
	}
	if p := l.Point; p != nil {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) ||
			math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			res = append(res, "point coordinates must be finite numbers")
		}
		if p.SRID < 0 {
			res = append(res, "point srid cannot be negative")
		}
	}
	if l.WaterBodyNumber < 0 {
		res = append(res, "water_body_number cannot be negative")
	}
	return res
}

func uuidProblems(field, id string) []string {
	if id == "" {
		return []string{"missing " + field}
	}
	if _, err := uuid.Parse(id); err != nil {
		return []string{fmt.Sprintf("%s '%s' is not a valid UUID", field, id)}
	}
	return nil
}
