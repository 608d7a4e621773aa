package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupArg(t *testing.T) {
	tests := []struct {
		msg       string
		args      []string
		kind, arg string
		code      gn.ErrorCode
	}{
		{"list", []string{"datasets"}, "datasets", "", errcode.UnknownError},
		{"case", []string{"Countries"}, "countries", "", errcode.UnknownError},
		{"families", []string{"families"}, "families", "", errcode.UnknownError},
		{"with arg", []string{"taxa", "salmo"}, "taxa", "salmo", errcode.UnknownError},
		{"missing arg", []string{"terms"}, "", "", errcode.UsageError},
		{"unknown", []string{"fishes"}, "", "", errcode.UsageError},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			kind, arg, err := lookupArg(tt.args)
			if tt.code == errcode.UnknownError {
				require.NoError(t, err)
				assert.Equal(t, tt.kind, kind)
				assert.Equal(t, tt.arg, arg)
				return
			}
			assert.True(t, errcode.Is(err, tt.code))
		})
	}
}

func TestLookupKinds(t *testing.T) {
	kinds := lookupKinds()
	assert.Len(t, kinds, len(listers)+1)
	assert.Equal(t, "access-rights", kinds[0])
	assert.Contains(t, kinds, "families")
	for k := range needsArg {
		assert.Contains(t, listers, k)
	}
}

func TestPrintOutput(t *testing.T) {
	ls := []occur.IDLabel{
		{ID: "1", Label: "Lake survey - NINA"},
		{ID: "2", Label: "River survey - NTNU"},
	}

	buf := new(bytes.Buffer)
	printIDLabels(buf, ls)
	assert.Equal(t,
		"1\tLake survey - NINA\n2\tRiver survey - NTNU\n", buf.String())

	buf.Reset()
	require.NoError(t, printJSON(buf, ls))
	assert.Contains(t, buf.String(), `"label": "River survey - NTNU"`)
}

func TestParseHelpers(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	for _, s := range []string{"0", "-1", "x"} {
		_, err = parseID(s)
		assert.True(t, errcode.Is(err, errcode.UsageError), s)
	}

	p, err := parsePoint("10.75", "59.91", 0)
	require.NoError(t, err)
	assert.Equal(t, occur.Point{X: 10.75, Y: 59.91}, p)
	_, err = parsePoint("ten", "59.91", 4326)
	assert.True(t, errcode.Is(err, errcode.UsageError))

	k, err := parseKind("Location")
	require.NoError(t, err)
	assert.Equal(t, occur.KindLocation, k)
	_, err = parseKind("lake")
	assert.True(t, errcode.Is(err, errcode.UsageError))
}

func TestHistoryFilter(t *testing.T) {
	f, err := historyFilter(historyFlags{
		user:      "ola%",
		entity:    "abc",
		operation: "UPDATE",
		from:      "2024-01-01",
		to:        "2024-02-01T12:00:00Z",
		limit:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, occur.HistoryFilter{
		User:      "ola%",
		EntityID:  "abc",
		Operation: occur.OpUpdate,
		From:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
		Limit:     10,
	}, f)

	f, err = historyFilter(historyFlags{})
	require.NoError(t, err)
	assert.Zero(t, f)

	bad := []historyFlags{
		{operation: "delete"},
		{from: "yesterday"},
		{from: "2024-02-01", to: "2024-01-01"},
		{from: "2024-01-01", to: "2024-01-01"},
	}
	for _, v := range bad {
		_, err = historyFilter(v)
		assert.True(t, errcode.Is(err, errcode.UsageError), "%+v", v)
	}
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		use  string
		ok   [][]string
		fail [][]string
	}{
		{"lookup", [][]string{{"datasets"}, {"taxa", "sal"}},
			[][]string{nil, {"a", "b", "c"}}},
		{"nearest", [][]string{{"10", "60"}}, [][]string{{"10"}}},
		{"history", [][]string{{"event"}}, [][]string{nil}},
		{"show", [][]string{{"project", "1"}}, [][]string{{"project"}}},
	}

	root := getRootCmd()
	for _, tt := range tests {
		cmd, _, err := root.Find([]string{tt.use})
		require.NoError(t, err, tt.use)
		for _, args := range tt.ok {
			assert.NoError(t, cmd.Args(cmd, args), tt.use)
		}
		for _, args := range tt.fail {
			assert.Error(t, cmd.Args(cmd, args), tt.use)
		}
	}
}

func TestGetTaxaCmd(t *testing.T) {
	cmd := getTaxaCmd()
	assert.Equal(t, "taxa", cmd.Use)

	imp, _, err := cmd.Find([]string{"import"})
	require.NoError(t, err)
	assert.Error(t, imp.Args(imp, nil))
	assert.NoError(t, imp.Args(imp, []string{"fishes.yaml"}))

	rep, _, err := cmd.Find([]string{"reparse"})
	require.NoError(t, err)
	assert.Error(t, rep.Args(rep, []string{"x"}))
	jobs := rep.Flags().Lookup("jobs")
	require.NotNil(t, jobs)
	assert.Equal(t, "4", jobs.DefValue)
}
