package ioaudit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gnames/gnocc/internal/ioaudit"
	"github.com/gnames/gnocc/internal/iotesting"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/gnames/gnocc/pkg/occur"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	op, _ := iotesting.SetupDB(t)
	ctx := context.Background()
	q := op.Pool()
	a := ioaudit.New()

	p1 := occur.Project{ID: 1, Name: "Lake survey", Leader: "Ola"}
	p2 := p1
	p2.Leader = "Kari"

	require.NoError(t, a.Record(ctx, q, "ola", occur.KindProject, "1",
		occur.OpInsert, nil, p1))
	require.NoError(t, a.Record(ctx, q, "kari", occur.KindProject, "1",
		occur.OpUpdate, p1, p2))
	require.NoError(t, a.Record(ctx, q, "ola", occur.KindProject, "2",
		occur.OpInsert, nil, occur.Project{ID: 2, Name: "River survey"}))

	all, err := a.History(ctx, q, occur.KindProject, occur.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, occur.KindProject, all[0].Kind)
	assert.Equal(t, "ola", all[0].User)
	assert.Equal(t, occur.OpInsert, all[0].Operation)
	assert.Nil(t, all[0].Prior)
	assert.False(t, all[0].LoggedAt.IsZero())

	var prior, next occur.Project
	require.NoError(t, json.Unmarshal(all[1].Prior, &prior))
	require.NoError(t, json.Unmarshal(all[1].New, &next))
	assert.Equal(t, "Ola", prior.Leader)
	assert.Equal(t, "Kari", next.Leader)

	tests := []struct {
		msg string
		f   occur.HistoryFilter
		n   int
	}{
		{"user", occur.HistoryFilter{User: "ola"}, 2},
		{"user pattern", occur.HistoryFilter{User: "k%"}, 1},
		{"entity", occur.HistoryFilter{EntityID: "1"}, 2},
		{"operation", occur.HistoryFilter{Operation: occur.OpUpdate}, 1},
		{"combined", occur.HistoryFilter{User: "ola", EntityID: "1"}, 1},
		{"limit", occur.HistoryFilter{Limit: 2}, 2},
		{"from past", occur.HistoryFilter{
			From: time.Now().Add(-time.Hour)}, 3},
		{"to past", occur.HistoryFilter{
			To: time.Now().Add(-time.Hour)}, 0},
		{"unknown user", occur.HistoryFilter{User: "nobody"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			res, err := a.History(ctx, q, occur.KindProject, tt.f)
			require.NoError(t, err)
			assert.Len(t, res, tt.n)
		})
	}

	res, err := a.History(ctx, q, occur.KindEvent, occur.HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestRecordFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	op, _ := iotesting.SetupDB(t)
	ctx := context.Background()
	q := op.Pool()
	a := ioaudit.New()

	_, err := q.Exec(ctx, "DROP TABLE event_log")
	require.NoError(t, err)

	err = a.Record(ctx, q, "ola", occur.KindEvent, "e-1", occur.OpInsert,
		nil, occur.Event{})
	assert.True(t, errcode.Is(err, errcode.StoreError))

	err = a.Record(ctx, q, "ola", occur.KindEvent, "e-1", occur.OpInsert,
		nil, func() {})
	assert.True(t, errcode.Is(err, errcode.StoreError),
		"values that cannot be encoded are store errors")
}
