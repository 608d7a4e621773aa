package occur

import (
	"strings"

	"github.com/gnames/gnlib"
	"golang.org/x/text/unicode/norm"
)

// Clean fixes broken UTF-8, composes characters to NFC and trims
// spaces. Names typed on different keyboards ("å" vs "a" + ring) must
// compare equal in the store.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = gnlib.FixUtf8(s)
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}

func cleanAll(ss ...*string) {
	for _, s := range ss {
		*s = Clean(*s)
	}
}

// Normalize cleans text fields of every level of a submission. An
// event with only one date is treated as a single-day event.
func (s *Submission) Normalize() {
	s.Dataset.Normalize()
	s.Project.Normalize()
	s.Reference.Normalize()
	s.Location.Normalize()
	s.Event.Normalize()
	for i := range s.Occurrences {
		s.Occurrences[i].Normalize()
	}
}

func (d *Dataset) Normalize() {
	cleanAll(&d.ID, &d.Name, &d.Organization, &d.RightsHolder, &d.License,
		&d.AccessRights, &d.Citation, &d.Comment, &d.InformationWithheld,
		&d.DataGeneralizations)
}

func (p *Project) Normalize() {
	cleanAll(&p.Name, &p.Organization, &p.Number, &p.Leader, &p.Members,
		&p.Financer, &p.Remarks)
}

func (r *Reference) Normalize() {
	cleanAll(&r.Type, &r.Citation, &r.Author, &r.Title, &r.Journal,
		&r.Volume, &r.ISSN, &r.ISBN, &r.Page)
}

func (l *Location) Normalize() {
	cleanAll(&l.ID, &l.LocationType, &l.VerbatimLocality, &l.WaterBody,
		&l.Municipality, &l.County, &l.CountryCode)
	l.CountryCode = strings.ToUpper(l.CountryCode)
}

func (e *Event) Normalize() {
	cleanAll(&e.ID, &e.LocationID, &e.SamplingProtocol, &e.SampleSizeUnit,
		&e.FieldNumber, &e.RecordedBy, &e.Reliability, &e.Remarks)
	for i := range e.TaxonCoverage {
		e.TaxonCoverage[i] = Clean(e.TaxonCoverage[i])
	}
	switch {
	case e.DateStart.IsZero() && !e.DateEnd.IsZero():
		e.DateStart = e.DateEnd
	case e.DateEnd.IsZero() && !e.DateStart.IsZero():
		e.DateEnd = e.DateStart
	}
}

func (o *Occurrence) Normalize() {
	cleanAll(&o.ID, &o.Taxon, &o.Ecotype, &o.OrganismQuantityType,
		&o.OccurrenceStatus, &o.PopulationTrend, &o.EstablishmentMeans,
		&o.EstablishmentRemarks, &o.SpawningCondition, &o.SpawningLocation,
		&o.RecordNumber, &o.VerifiedBy, &o.Reliability, &o.Remarks)
}
