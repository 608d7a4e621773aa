package schema_test

import (
	"testing"

	"github.com/gnames/gnocc/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestLogTables(t *testing.T) {
	assert.Equal(t, []string{
		"dataset_log", "project_log", "reference_log",
		"location_log", "event_log", "occurrence_log",
	}, schema.LogTables())
}

func TestTableNames(t *testing.T) {
	type tabler interface{ TableName() string }

	seen := make(map[string]bool)
	for _, m := range schema.AllModels() {
		tm, ok := m.(tabler)
		if !assert.True(t, ok, "%T has no TableName", m) {
			continue
		}
		name := tm.TableName()
		assert.False(t, seen[name], "duplicate table %s", name)
		seen[name] = true
	}
	assert.True(t, seen["location"])
	assert.True(t, seen["m_dataset"])
}
