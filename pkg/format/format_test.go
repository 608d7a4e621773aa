package format_test

import (
	"testing"
	"time"

	"github.com/gnames/gnocc/pkg/format"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/stretchr/testify/assert"
)

func TestDatasetLabel(t *testing.T) {
	label := format.DatasetLabel("ds-1", "Fish survey - Oslo")
	assert.Equal(t, "ds-1 - Fish survey - Oslo", label)

	id, name, ok := format.SplitDatasetLabel(label)
	assert.True(t, ok)
	assert.Equal(t, "ds-1", id)
	assert.Equal(t, "Fish survey - Oslo", name)

	_, _, ok = format.SplitDatasetLabel("no separator")
	assert.False(t, ok)
}

func TestProjectLabel(t *testing.T) {
	tests := []struct {
		msg, name, org, label string
	}{
		{"plain", "Lake survey", "NINA", "Lake survey - NINA"},
		{"no organization", "Lake survey", "", "Lake survey"},
		{"dash in name", "Lake - river survey", "NINA",
			"Lake - river survey - NINA"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			label := format.ProjectLabel(tt.name, tt.org)
			assert.Equal(t, tt.label, label)
			name, org := format.SplitProjectLabel(label)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.org, org)
		})
	}
}

func TestReferenceLabel(t *testing.T) {
	tests := []struct {
		msg   string
		ref   occur.Reference
		label string
	}{
		{"full", occur.Reference{ID: 7, Author: "Hesthagen, T.",
			Title: "Fish in lakes", Year: 1999, Citation: "ignored"},
			"Hesthagen, T.: Fish in lakes (1999) @7"},
		{"no year", occur.Reference{ID: 7, Author: "Hesthagen, T.",
			Title: "Fish in lakes"},
			"Hesthagen, T.: Fish in lakes @7"},
		{"citation", occur.Reference{ID: 12, Title: "Fish in lakes",
			Citation: "Hesthagen 1999"}, "Hesthagen 1999 @12"},
		{"empty", occur.Reference{ID: 3}, "reference @3"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			label := format.ReferenceLabel(tt.ref)
			assert.Equal(t, tt.label, label)
			id, ok := format.SplitReferenceLabel(label)
			assert.True(t, ok)
			assert.Equal(t, tt.ref.ID, id)
		})
	}

	for _, v := range []string{"Hesthagen 1999", "x @", "x @abc", "x @-1"} {
		_, ok := format.SplitReferenceLabel(v)
		assert.False(t, ok, v)
	}
}

func TestLocationLabel(t *testing.T) {
	id := "0d7d0c4e-5b0a-4f57-9d44-3c0e1f3a8a11"
	tests := []struct {
		msg   string
		loc   occur.Location
		label string
	}{
		{"full", occur.Location{ID: id, WaterBody: "Mjøsa",
			WaterBodyNumber: 212, Municipality: "Hamar",
			County: "Innlandet", CountryCode: "NO"},
			"Mjøsa [212], Hamar, Innlandet, NO @" + id},
		{"number only", occur.Location{ID: id, WaterBodyNumber: 5},
			"[5] @" + id},
		{"verbatim", occur.Location{ID: id, VerbatimLocality: "by the bridge"},
			"by the bridge @" + id},
		{"empty", occur.Location{ID: id}, "location @" + id},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			label := format.LocationLabel(tt.loc)
			assert.Equal(t, tt.label, label)
			res, ok := format.SplitLocationLabel(label)
			assert.True(t, ok)
			assert.Equal(t, id, res)
		})
	}
}

func TestSummaries(t *testing.T) {
	c := occur.Counts{Projects: 1, References: 2, Events: 1234, Occurrences: 98765}

	d := occur.Dataset{Name: "Fish survey", Organization: "NINA"}
	assert.Equal(t,
		"Fish survey (NINA): 1 project, 2 references, 1,234 events, 98,765 occurrences",
		format.DatasetSummary(d, c))

	p := occur.Project{Name: "Lake survey", Organization: "NINA",
		StartYear: 2001, EndYear: 2004}
	assert.Equal(t,
		"Lake survey - NINA (2001-2004): 2 references, 1,234 events, 98,765 occurrences",
		format.ProjectSummary(p, c))

	p = occur.Project{Name: "Lake survey", StartYear: 2001}
	assert.Equal(t,
		"Lake survey (2001): 0 references, 0 events, 0 occurrences",
		format.ProjectSummary(p, occur.Counts{}))
}

func TestHistoryLine(t *testing.T) {
	e := occur.LogEntry{
		Kind:      occur.KindEvent,
		EntityID:  "e-1",
		User:      "ola",
		Operation: occur.OpInsert,
		LoggedAt:  time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, "2024-05-01 10:30:00  ola      insert event e-1",
		format.HistoryLine(e))
}
