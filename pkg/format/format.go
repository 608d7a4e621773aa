// Package format renders entities as the labels and summaries shown in
// selection lists, and parses labels back to identifiers.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnocc/pkg/occur"
)

const (
	sep   = " - "
	idSep = " @"
)

// DatasetLabel returns "<id> - <name>".
func DatasetLabel(id, name string) string {
	return id + sep + name
}

// SplitDatasetLabel is the inverse of DatasetLabel. Dataset ids never
// contain the separator, so the label is split at its first occurrence.
func SplitDatasetLabel(label string) (id, name string, ok bool) {
	id, name, ok = strings.Cut(label, sep)
	if !ok || id == "" {
		return "", "", false
	}
	return id, name, true
}

// ProjectLabel returns "<name> - <organization>", or just the name when
// the organization is empty.
func ProjectLabel(name, organization string) string {
	if organization == "" {
		return name
	}
	return name + sep + organization
}

// SplitProjectLabel is the inverse of ProjectLabel. Project names may
// contain the separator, organization codes do not.
func SplitProjectLabel(label string) (name, organization string) {
	i := strings.LastIndex(label, sep)
	if i < 0 {
		return label, ""
	}
	return label[:i], label[i+len(sep):]
}

// ReferenceLabel returns "<author>: <title> (<year>) @<id>". When author
// or title are missing the citation is used instead.
func ReferenceLabel(r occur.Reference) string {
	var b strings.Builder
	switch {
	case r.Author != "" && r.Title != "":
		b.WriteString(r.Author + ": " + r.Title)
		if r.Year > 0 {
			fmt.Fprintf(&b, " (%d)", r.Year)
		}
	case r.Citation != "":
		b.WriteString(r.Citation)
	default:
		b.WriteString("reference")
	}
	b.WriteString(idSep + strconv.FormatInt(r.ID, 10))
	return b.String()
}

// SplitReferenceLabel returns the id at the end of a ReferenceLabel.
func SplitReferenceLabel(label string) (int64, bool) {
	i := strings.LastIndex(label, idSep)
	if i < 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(label[i+len(idSep):], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// LocationLabel joins water body, municipality, county and country of
// a location and ends with "@<id>". Locations without names fall back
// to the verbatim locality.
func LocationLabel(l occur.Location) string {
	var parts []string
	wb := l.WaterBody
	if l.WaterBodyNumber > 0 {
		wb = strings.TrimSpace(fmt.Sprintf("%s [%d]", wb, l.WaterBodyNumber))
	}
	for _, v := range []string{wb, l.Municipality, l.County, l.CountryCode} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 && l.VerbatimLocality != "" {
		parts = append(parts, l.VerbatimLocality)
	}
	if len(parts) == 0 {
		parts = append(parts, "location")
	}
	return strings.Join(parts, ", ") + idSep + l.ID
}

// SplitLocationLabel returns the id at the end of a LocationLabel.
func SplitLocationLabel(label string) (string, bool) {
	i := strings.LastIndex(label, idSep)
	if i < 0 || i+len(idSep) == len(label) {
		return "", false
	}
	return label[i+len(idSep):], true
}

// DatasetSummary describes a dataset with the size of its content.
func DatasetSummary(d occur.Dataset, c occur.Counts) string {
	return fmt.Sprintf("%s (%s): %s, %s, %s, %s",
		d.Name, d.Organization,
		plural(c.Projects, "project"),
		plural(c.References, "reference"),
		plural(c.Events, "event"),
		plural(c.Occurrences, "occurrence"),
	)
}

// ProjectSummary describes a project with the size of its content.
// Counts.Projects is ignored.
func ProjectSummary(p occur.Project, c occur.Counts) string {
	res := ProjectLabel(p.Name, p.Organization)
	if years := projectYears(p); years != "" {
		res += " " + years
	}
	return fmt.Sprintf("%s: %s, %s, %s", res,
		plural(c.References, "reference"),
		plural(c.Events, "event"),
		plural(c.Occurrences, "occurrence"),
	)
}

func projectYears(p occur.Project) string {
	switch {
	case p.StartYear > 0 && p.EndYear > 0 && p.EndYear != p.StartYear:
		return fmt.Sprintf("(%d-%d)", p.StartYear, p.EndYear)
	case p.StartYear > 0:
		return fmt.Sprintf("(%d)", p.StartYear)
	default:
		return ""
	}
}

// HistoryLine renders a log entry as one line of text.
func HistoryLine(e occur.LogEntry) string {
	return fmt.Sprintf("%s  %-8s %-6s %s %s",
		e.LoggedAt.UTC().Format(time.DateTime),
		e.User, e.Operation, e.Kind, e.EntityID)
}

func plural(n int64, word string) string {
	if n != 1 {
		word += "s"
	}
	return humanize.Comma(n) + " " + word
}
