package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/plan"
)

var base = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func samplePlan(id, station string, at time.Time, trains ...string) *plan.StationWorkPlan {
	wp := plan.New(id, station, plan.ModeStable)
	wp.CreatedAt = at
	wp.Changes = 1
	for i, tr := range trains {
		wp.Assign(tr, plan.Assignment{Edge: graph.EdgeID(4 + i), From: 1})
	}
	wp.AddSwitch(plan.SwitchPlanUnit{Vertex: 1, Begin: 0, End: 5})
	return wp
}

func TestRecordRoundTrip(t *testing.T) {
	wp := samplePlan("p1", "north", base, "t1", "t2")
	rec := NewRecord(wp)
	assert.Equal(t, 1, rec.Switches)
	assert.True(t, rec.HasTrain("t2"))
	assert.False(t, rec.HasTrain("t3"))

	back := rec.Plan()
	assert.Equal(t, wp.ID, back.ID)
	assert.Equal(t, plan.ModeStable, back.Mode)
	assert.Equal(t, wp.Trains(), back.Trains())
	a, ok := back.Platform("t2")
	require.True(t, ok)
	assert.Equal(t, plan.Assignment{Edge: 5, From: 1}, a)
	assert.Empty(t, back.Switches)
}

func TestQueryMatch(t *testing.T) {
	rec := NewRecord(samplePlan("p1", "north", base, "t1"))
	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty", Query{}, true},
		{"station", Query{Station: "north"}, true},
		{"other station", Query{Station: "south"}, false},
		{"mode", Query{Mode: "cold"}, false},
		{"train", Query{TrainID: "t1"}, true},
		{"missing train", Query{TrainID: "t9"}, false},
		{"before start", Query{Start: base.Add(time.Minute)}, false},
		{"after end", Query{End: base.Add(-time.Minute)}, false},
		{"window", Query{Start: base.Add(-time.Minute), End: base.Add(time.Minute)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Match(rec))
		})
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	// appended out of order on purpose
	require.NoError(t, s.Append(ctx, NewRecord(samplePlan("p2", "north", base.Add(2*time.Minute), "t1", "t2"))))
	require.NoError(t, s.Append(ctx, NewRecord(samplePlan("p1", "north", base, "t1"))))
	require.NoError(t, s.Append(ctx, NewRecord(samplePlan("p3", "south", base.Add(time.Minute), "t9"))))

	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"p1", "p3", "p2"}, []string{all[0].PlanID, all[1].PlanID, all[2].PlanID})

	byTrain, err := s.Query(ctx, Query{TrainID: "t2"})
	require.NoError(t, err)
	require.Len(t, byTrain, 1)
	assert.Equal(t, "p2", byTrain[0].PlanID)

	last, err := Latest(ctx, s, "north")
	require.NoError(t, err)
	assert.Equal(t, "p2", last.PlanID)
	assert.True(t, last.Timestamp.Equal(base.Add(2*time.Minute)))

	_, err = Latest(ctx, s, "east")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl")
	s, err := NewJSONLStore(path)
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()
	exerciseStore(t, s)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	all, err := s.Query(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRotatingJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist", "plans.jsonl")
	s, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()
	exerciseStore(t, s)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl")
	s, err := NewRotatingJSONLStore(path, 1, 3, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	trains := make([]string, 2000)
	for i := range trains {
		trains[i] = "train-with-a-long-identifier-" + time.Duration(i).String()
	}
	rec := NewRecord(samplePlan("big", "north", base, trains...))
	for i := 0; i < 20; i++ {
		require.NoError(t, s.Append(context.Background(), rec))
	}
	files, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "plans*.jsonl"))
	assert.Greater(t, len(files), 1, "expected rotated files")

	out, err := s.Query(context.Background(), Query{Station: "north"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"jsonl", "jsonl-rotating", "sqlite"} {
		cfg := Config{Backend: backend, Path: filepath.Join(dir, backend+".store")}
		cfg.SetDefaults()
		require.NoError(t, cfg.Validate())
		s, err := Open(cfg)
		require.NoError(t, err, backend)
		require.NoError(t, s.Append(context.Background(), NewRecord(samplePlan("p", "s", base, "t"))))
		require.NoError(t, s.Close())
	}

	cfg := Config{Backend: "mongo"}
	cfg.SetDefaults()
	assert.Error(t, cfg.Validate())
	_, err := Open(cfg)
	assert.Error(t, err)
}
