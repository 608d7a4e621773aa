package occur_test

import (
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() occur.Submission {
	return occur.Submission{
		Dataset:   occur.Dataset{Name: "BirdSurvey2020", Organization: "NINA"},
		Project:   occur.Project{Name: "Forest Birds"},
		Reference: occur.Reference{Citation: "Smith 2020"},
		Location: occur.Location{
			Point: &occur.Point{X: 10.5, Y: 63.2, SRID: 4326},
		},
		Event: occur.Event{
			DateStart: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
			DateEnd:   time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		Occurrences: []occur.Occurrence{
			{Taxon: "Turdus merula", OrganismQuantity: 3},
		},
	}
}

func TestValidateReferencesByID(t *testing.T) {
	mandatory := occur.Mandatory{
		occur.KindDataset:   {"rights_holder"},
		occur.KindProject:   {"leader"},
		occur.KindReference: {"year"},
	}
	s := validSubmission()
	err := s.Validate(mandatory)
	require.Error(t, err)
	for _, v := range []string{"dataset: missing rights_holder",
		"project: missing leader", "reference: missing year"} {
		assert.Contains(t, err.Error(), v)
	}

	s.Dataset = occur.Dataset{ID: "ds-1"}
	s.Project = occur.Project{ID: 2}
	s.Reference = occur.Reference{ID: 5}
	assert.NoError(t, s.Validate(mandatory))
}

func TestSubmissionValidate(t *testing.T) {
	mandatory := occur.Mandatory{
		occur.KindEvent:      {"date_start", "date_end"},
		occur.KindOccurrence: {"occurrence_status"},
	}

	tests := []struct {
		msg      string
		modify   func(*occur.Submission)
		problems []string
	}{
		{
			msg: "valid",
			modify: func(s *occur.Submission) {
				s.Occurrences[0].OccurrenceStatus = "present"
			},
		},
		{
			msg: "missing date",
			modify: func(s *occur.Submission) {
				s.Event.DateStart = time.Time{}
				s.Event.DateEnd = time.Time{}
				s.Occurrences[0].OccurrenceStatus = "present"
			},
			problems: []string{"event: missing date_start", "event: missing date_end"},
		},
		{
			msg: "missing dataset keys",
			modify: func(s *occur.Submission) {
				s.Dataset = occur.Dataset{}
				s.Occurrences[0].OccurrenceStatus = "present"
			},
			problems: []string{"dataset: missing name", "dataset: missing organization"},
		},
		{
			msg: "dataset by id",
			modify: func(s *occur.Submission) {
				s.Dataset = occur.Dataset{ID: "ds-1"}
				s.Occurrences[0].OccurrenceStatus = "present"
			},
		},
		{
			msg: "no location",
			modify: func(s *occur.Submission) {
				s.Location = occur.Location{}
				s.Occurrences[0].OccurrenceStatus = "present"
			},
			problems: []string{"location: one of id, point or water_body_number is required"},
		},
		{
			msg: "bad location id",
			modify: func(s *occur.Submission) {
				s.Location = occur.Location{ID: "abc"}
				s.Occurrences[0].OccurrenceStatus = "present"
			},
			problems: []string{"location: id 'abc' is not a valid UUID"},
		},
		{
			msg: "dates reversed",
			modify: func(s *occur.Submission) {
				s.Event.DateStart = time.Date(2020, 6, 2, 0, 0, 0, 0, time.UTC)
				s.Occurrences[0].OccurrenceStatus = "present"
			},
			problems: []string{"event: date_end is before date_start"},
		},
		{
			msg: "occurrence problems",
			modify: func(s *occur.Submission) {
				s.Occurrences = append(s.Occurrences, occur.Occurrence{
					OrganismQuantity: -1,
				})
				s.Occurrences[0].OccurrenceStatus = "present"
			},
			problems: []string{
				"occurrence[1]: missing occurrence_status",
				"occurrence[1]: missing taxon",
				"occurrence[1]: organism_quantity cannot be negative",
			},
		},
		{
			msg: "no occurrences",
			modify: func(s *occur.Submission) {
				s.Occurrences = nil
			},
			problems: []string{"occurrence: at least one occurrence is required"},
		},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			s := validSubmission()
			v.modify(&s)
			err := s.Validate(mandatory)
			if len(v.problems) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errcode.Is(err, errcode.ValidationError))
			gnErr, ok := err.(*gn.Error)
			require.True(t, ok)
			require.Len(t, gnErr.Vars, 1)
			details := gnErr.Vars[0].(string)
			for _, p := range v.problems {
				assert.Contains(t, details, p)
			}
		})
	}
}

func TestValidateEntity(t *testing.T) {
	m := occur.Mandatory{occur.KindProject: {"leader"}}

	err := occur.ValidateEntity(occur.KindProject,
		occur.Project{ID: 3, Name: "Lakes", Leader: "Ola"}, m)
	assert.NoError(t, err)

	err = occur.ValidateEntity(occur.KindProject,
		occur.Project{Name: "Lakes"}, m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project: missing leader")
	assert.Contains(t, err.Error(), "project: missing id")

	err = occur.ValidateEntity(occur.KindEvent, occur.Event{ID: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event: id 'x' is not a valid UUID")
}

func TestMissing(t *testing.T) {
	d := occur.Dataset{Name: "Fish", Organization: " "}
	res := occur.Missing(d, []string{"name", "organization", "license",
		"unknown", "license"})
	assert.Equal(t, []string{"organization", "license"}, res)
}

func TestFieldNames(t *testing.T) {
	names := occur.FieldNames(occur.KindEvent)
	assert.Contains(t, names, "date_start")
	assert.True(t, occur.IsField(occur.KindOccurrence, "taxon"))
	assert.False(t, occur.IsField(occur.KindOccurrence, "date_start"))
	assert.False(t, occur.IsField(occur.Kind("bogus"), "name"))
}

func TestNormalize(t *testing.T) {
	s := validSubmission()
	s.Dataset.Name = "  Fiskeundersøkelse "
	s.Location.CountryCode = "no"
	s.Event.DateStart = time.Time{}
	s.Normalize()

	assert.Equal(t, "Fiskeundersøkelse", s.Dataset.Name)
	assert.Equal(t, "NO", s.Location.CountryCode)
	assert.Equal(t, s.Event.DateEnd, s.Event.DateStart)
}

func TestParseKind(t *testing.T) {
	k, ok := occur.ParseKind("event")
	assert.True(t, ok)
	assert.Equal(t, occur.KindEvent, k)
	assert.Equal(t, "event_log", k.LogTable())

	_, ok = occur.ParseKind("taxon")
	assert.False(t, ok)
}

func TestCreatedCount(t *testing.T) {
	ids := occur.EntityIDs{Created: []occur.Kind{
		occur.KindEvent, occur.KindOccurrence, occur.KindOccurrence,
	}}
	assert.Equal(t, 2, ids.CreatedCount(occur.KindOccurrence))
	assert.Equal(t, 0, ids.CreatedCount(occur.KindDataset))
}
