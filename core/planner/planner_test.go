package planner

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railplan/core/blocking"
	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/metrics"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/paths"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/core/sat"
	"github.com/kilianp07/railplan/test/stations"
)

func train(id string) model.Train {
	return model.Train{ID: id, Length: 30, Speed: 10, Type: graph.TrainPassenger}
}

func window(arr, dep, stop int) model.SingleTrainSchedule {
	return model.SingleTrainSchedule{Arrival: arr, Departure: dep, Stop: stop, Entry: stations.In, Exit: stations.Out}
}

func twoTrains(t *testing.T, g *graph.Graph, a, b model.SingleTrainSchedule) *model.TrainSchedule {
	t.Helper()
	s := model.NewTrainSchedule(g)
	require.NoError(t, s.Add(train("t1"), a))
	require.NoError(t, s.Add(train("t2"), b))
	return s
}

func edgeOf(t *testing.T, wp *plan.StationWorkPlan, id string) graph.EdgeID {
	t.Helper()
	a, ok := wp.Platform(id)
	require.True(t, ok, "train %s not planned", id)
	return a.Edge
}

func TestOverlappingTrainsGetDifferentPlatforms(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := twoTrains(t, g, window(0, 100, 20), window(10, 110, 20))

	wp, err := New(1, nil, nil).CalculateWorkPlan(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, plan.ModeCold, wp.Mode)
	assert.Equal(t, "two-platforms", wp.Station)
	assert.NotEmpty(t, wp.ID)
	assert.Equal(t, []string{"t1", "t2"}, wp.Trains())
	assert.NotEqual(t, edgeOf(t, wp, "t1"), edgeOf(t, wp, "t2"))
	for _, id := range wp.Trains() {
		a, _ := wp.Platform(id)
		assert.Equal(t, stations.SwitchIn, a.From)
	}
}

func TestSinglePlatformOverlapIsInfeasible(t *testing.T) {
	g := stations.SinglePlatform(graph.TrainPassenger)
	s := model.NewTrainSchedule(g)
	line := func(arr, dep int) model.SingleTrainSchedule {
		return model.SingleTrainSchedule{Arrival: arr, Departure: dep, Stop: 20, Entry: stations.LineIn, Exit: stations.LineOut}
	}
	require.NoError(t, s.Add(train("t1"), line(0, 100)))
	require.NoError(t, s.Add(train("t2"), line(10, 110)))

	_, err := New(1, nil, nil).CalculateWorkPlan(context.Background(), s)
	assert.ErrorIs(t, err, ErrInfeasible)

	require.True(t, s.Remove("t2"))
	require.NoError(t, s.Add(train("t2"), line(200, 300)))
	wp, err := New(1, nil, nil).CalculateWorkPlan(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, stations.LineEdgeLight, edgeOf(t, wp, "t1"))
	assert.Equal(t, stations.LineEdgeLight, edgeOf(t, wp, "t2"))
}

func TestUnreachableTrain(t *testing.T) {
	tests := []struct {
		name  string
		train model.Train
		sch   model.SingleTrainSchedule
	}{
		{"too long", model.Train{ID: "long", Length: 60, Speed: 10, Type: graph.TrainPassenger}, window(0, 500, 10)},
		{"too tight", train("tight"), window(0, 20, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := model.NewTrainSchedule(stations.TwoPlatforms(graph.TrainPassenger))
			require.NoError(t, s.Add(tt.train, tt.sch))
			_, err := New(0, nil, nil).CalculateWorkPlan(context.Background(), s)
			assert.ErrorIs(t, err, ErrUnreachableTrain)
		})
	}
}

func TestInvalidGraphRejected(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	require.NoError(t, g.AddVertex(graph.NewDeadEnd(42, 99)))
	s := model.NewTrainSchedule(g)
	require.NoError(t, s.Add(train("t1"), window(0, 100, 10)))

	_, err := New(0, nil, nil).CalculateWorkPlan(context.Background(), s)
	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.ErrorIs(t, err, graph.ErrUnknownEdge)
}

func TestPlanUnits(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := model.NewTrainSchedule(g)
	require.NoError(t, s.Add(train("t1"), window(0, 100, 20)))
	prev := plan.New("p0", g.Name, plan.ModeManual)
	prev.Assign("t1", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})

	wp, err := New(1, nil, nil).RecalculateStationWorkPlan(context.Background(), s, prev)
	require.NoError(t, err)
	require.Equal(t, stations.EdgeA, edgeOf(t, wp, "t1"))

	assert.Equal(t, []plan.SwitchPlanUnit{
		{Vertex: stations.SwitchIn, Begin: -1, End: 7, Status: graph.SwitchBranch1, TrainID: "t1"},
		{Vertex: stations.SwitchOut, Begin: 92, End: 101, Status: graph.SwitchBranch1, TrainID: "t1"},
	}, wp.Switches)
	assert.Empty(t, wp.Lights)
}

func TestTrafficLightUnits(t *testing.T) {
	g := stations.SinglePlatform(graph.TrainPassenger)
	s := model.NewTrainSchedule(g)
	require.NoError(t, s.Add(train("t1"), model.SingleTrainSchedule{Arrival: 10, Departure: 100, Stop: 20, Entry: stations.LineIn, Exit: stations.LineOut}))

	wp, err := New(1, nil, nil).CalculateWorkPlan(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []plan.TrafficLightPlanUnit{
		{Vertex: stations.LineLight, Begin: plan.OpenBegin, End: 9, Status: graph.LightStop},
		{Vertex: stations.LineLight, Begin: 9, End: 17, Status: graph.LightPassing, TrainID: "t1"},
		{Vertex: stations.LineLight, Begin: 17, End: plan.OpenEnd, Status: graph.LightStop},
	}, wp.Lights)
}

func TestStableReplanKeepsFeasiblePlan(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := twoTrains(t, g, window(0, 100, 20), window(10, 110, 20))

	for _, first := range []graph.EdgeID{stations.EdgeA, stations.EdgeB} {
		second := stations.EdgeA
		if first == stations.EdgeA {
			second = stations.EdgeB
		}
		prev := plan.New("p0", g.Name, plan.ModeManual)
		prev.Assign("t1", plan.Assignment{Edge: first, From: stations.SwitchIn})
		prev.Assign("t2", plan.Assignment{Edge: second, From: stations.SwitchIn})

		wp, err := New(1, nil, nil).RecalculateStationWorkPlan(context.Background(), s, prev)
		require.NoError(t, err)
		assert.Equal(t, plan.ModeStable, wp.Mode)
		assert.Equal(t, 0, wp.Changes)
		assert.Equal(t, first, edgeOf(t, wp, "t1"))
		assert.Equal(t, second, edgeOf(t, wp, "t2"))
	}
}

func TestStableReplanMovesFewestTrains(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	prev := plan.New("p0", g.Name, plan.ModeManual)
	for _, id := range []string{"t1", "t2", "t3"} {
		prev.Assign(id, plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})
	}
	s := model.NewTrainSchedule(g)
	require.NoError(t, s.Add(train("t1"), window(0, 100, 20)))
	// t2 now overlaps t1; t3 stays far away.
	require.NoError(t, s.Add(train("t2"), window(10, 110, 20)))
	require.NoError(t, s.Add(train("t3"), window(400, 500, 20)))

	wp, err := New(1, nil, nil).RecalculateStationWorkPlan(context.Background(), s, prev)
	require.NoError(t, err)
	assert.Equal(t, 1, wp.Changes)
	assert.NotEqual(t, edgeOf(t, wp, "t1"), edgeOf(t, wp, "t2"))
	assert.Equal(t, stations.EdgeA, edgeOf(t, wp, "t3"))
}

func TestBlockedExitForcesReassignment(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := twoTrains(t, g, window(0, 100, 20), window(200, 300, 20))
	prev := plan.New("p0", g.Name, plan.ModeManual)
	prev.Assign("t1", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})
	prev.Assign("t2", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})

	p := New(1, nil, nil)
	require.NoError(t, g.BlockEdge(stations.EdgeAOut))
	wp, err := p.RecalculateStationWorkPlan(context.Background(), s, prev)
	require.NoError(t, err)
	assert.Equal(t, stations.EdgeB, edgeOf(t, wp, "t1"))
	assert.Equal(t, stations.EdgeB, edgeOf(t, wp, "t2"))
	assert.Equal(t, 2, wp.Changes)

	require.NoError(t, g.BlockEdge(stations.EdgeBOut))
	_, err = p.RecalculateStationWorkPlan(context.Background(), s, wp)
	assert.ErrorIs(t, err, ErrUnreachableTrain)
}

func TestLiveReplanKeepsPassedTrain(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := twoTrains(t, g, window(0, 100, 20), window(50, 200, 20))
	prev := plan.New("p0", g.Name, plan.ModeManual)
	prev.Assign("t1", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})
	prev.Assign("t2", plan.Assignment{Edge: stations.EdgeB, From: stations.SwitchIn})

	require.NoError(t, g.BlockEdge(stations.EdgeA))
	live := map[string]model.LiveState{
		"t1": {From: stations.PlatformA, To: stations.SwitchOut, ObservedAt: 95, PassedPlatform: true},
	}
	wp, err := New(1, nil, nil).RecalculateLive(context.Background(), s, prev, live)
	require.NoError(t, err)
	assert.Equal(t, plan.ModeLive, wp.Mode)
	assert.Equal(t, stations.EdgeA, edgeOf(t, wp, "t1"))
	assert.Equal(t, stations.EdgeB, edgeOf(t, wp, "t2"))
	assert.Equal(t, 0, wp.Changes)
}

func TestLiveReplanReroutesApproachingTrain(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := model.NewTrainSchedule(g)
	require.NoError(t, s.Add(train("t1"), window(0, 100, 20)))
	prev := plan.New("p0", g.Name, plan.ModeManual)
	prev.Assign("t1", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})

	require.NoError(t, g.BlockEdge(stations.EdgeA))
	live := map[string]model.LiveState{"t1": {From: stations.In, To: stations.SwitchIn, ObservedAt: 5}}
	wp, err := New(1, nil, nil).RecalculateLive(context.Background(), s, prev, live)
	require.NoError(t, err)
	assert.Equal(t, stations.EdgeB, edgeOf(t, wp, "t1"))
	assert.Equal(t, 1, wp.Changes)
	require.NotEmpty(t, wp.Switches)
	assert.Equal(t, graph.SwitchBranch2, wp.Switches[0].Status)
	assert.Equal(t, 4, wp.Switches[0].Begin)
}

func TestLiveReplanErrors(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := model.NewTrainSchedule(g)
	require.NoError(t, s.Add(train("t1"), window(0, 100, 20)))
	p := New(1, nil, nil)

	_, err := p.RecalculateLive(context.Background(), s, nil, map[string]model.LiveState{"ghost": {From: stations.In, To: stations.SwitchIn}})
	assert.ErrorIs(t, err, ErrUnknownTrain)

	passed := map[string]model.LiveState{"t1": {From: stations.PlatformA, To: stations.SwitchOut, PassedPlatform: true}}
	_, err = p.RecalculateLive(context.Background(), s, nil, passed)
	assert.ErrorIs(t, err, ErrUnassignedTrain)

	prev := plan.New("p0", g.Name, plan.ModeManual)
	prev.Assign("t1", plan.Assignment{Edge: stations.EdgeIn, From: stations.In})
	_, err = p.RecalculateLive(context.Background(), s, prev, map[string]model.LiveState{"t1": {From: stations.In, To: stations.Out, PassedPlatform: true}})
	assert.ErrorIs(t, err, graph.ErrUnknownEdge)
}

func TestMatchWorkPlanToStation(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := twoTrains(t, g, window(0, 100, 20), window(10, 110, 20))
	p := New(1, nil, nil)
	ctx := context.Background()

	wp, err := p.CalculateWorkPlan(ctx, s)
	require.NoError(t, err)
	ok, err := p.MatchWorkPlanToStation(ctx, s, wp)
	require.NoError(t, err)
	assert.True(t, ok)

	same := plan.New("same", g.Name, plan.ModeManual)
	same.Assign("t1", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})
	same.Assign("t2", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})
	ok, err = p.MatchWorkPlanToStation(ctx, s, same)
	require.NoError(t, err)
	assert.False(t, ok)

	missing := plan.New("missing", g.Name, plan.ModeManual)
	missing.Assign("t1", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})
	_, err = p.MatchWorkPlanToStation(ctx, s, missing)
	assert.ErrorIs(t, err, ErrUnassignedTrain)

	wrong := plan.New("wrong", g.Name, plan.ModeManual)
	wrong.Assign("t1", plan.Assignment{Edge: stations.EdgeIn, From: stations.In})
	wrong.Assign("t2", plan.Assignment{Edge: stations.EdgeB, From: stations.SwitchIn})
	_, err = p.MatchWorkPlanToStation(ctx, s, wrong)
	assert.ErrorIs(t, err, ErrIncompatiblePlatform)

	require.NoError(t, g.BlockEdge(stations.EdgeBOut))
	ok, err = p.MatchWorkPlanToStation(ctx, s, wp)
	require.NoError(t, err)
	assert.False(t, ok)
}

type unknownModel struct{ *sat.Gini }

func (unknownModel) Solve(context.Context) (sat.Status, error) { return sat.StatusUnknown, nil }

type failingModel struct{ *sat.Gini }

func (failingModel) Solve(context.Context) (sat.Status, error) {
	return sat.StatusUnknown, errors.New("solver crashed")
}

func withModel(t *testing.T, f func() sat.Model) {
	t.Helper()
	orig := newModel
	newModel = f
	t.Cleanup(func() { newModel = orig })
}

func TestSolverFailures(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := twoTrains(t, g, window(0, 100, 20), window(10, 110, 20))

	withModel(t, func() sat.Model { return unknownModel{sat.NewGini()} })
	_, err := New(1, nil, nil).CalculateWorkPlan(context.Background(), s)
	assert.ErrorIs(t, err, ErrInfeasible)

	withModel(t, func() sat.Model { return failingModel{sat.NewGini()} })
	_, err = New(1, nil, nil).CalculateWorkPlan(context.Background(), s)
	assert.ErrorContains(t, err, "solver crashed")
}

type recordingSink struct {
	plans       []metrics.PlanEvent
	assignments []metrics.AssignmentEvent
}

func (r *recordingSink) RecordPlan(ev metrics.PlanEvent) error {
	r.plans = append(r.plans, ev)
	return nil
}

func (r *recordingSink) RecordAssignments(evs []metrics.AssignmentEvent) error {
	r.assignments = append(r.assignments, evs...)
	return nil
}

func TestMetricsRecorded(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := twoTrains(t, g, window(0, 100, 20), window(10, 110, 20))
	sink := &recordingSink{}

	wp, err := New(1, nil, sink).CalculateWorkPlan(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, sink.plans, 1)
	ev := sink.plans[0]
	assert.Equal(t, wp.ID, ev.PlanID)
	assert.Equal(t, "cold", ev.Mode)
	assert.Equal(t, "OPTIMAL", ev.Status)
	assert.Equal(t, 2, ev.Trains)
	assert.Equal(t, 2, ev.Platforms)
	assert.Equal(t, 4, ev.Vars)
	assert.Len(t, sink.assignments, 2)
}

// realisedClaims recomputes the occupation windows of every planned train.
func realisedClaims(t *testing.T, s *model.TrainSchedule, wp *plan.StationWorkPlan, margin int) map[string]blocking.Claims {
	t.Helper()
	calc, err := paths.Compute(s.Graph())
	require.NoError(t, err)
	out := make(map[string]blocking.Claims)
	for _, e := range s.Entries() {
		a, ok := wp.Platform(e.Train.ID)
		require.True(t, ok)
		edge, _ := s.Graph().Edge(a.Edge)
		to, _ := edge.Opposite(a.From)
		p := paths.Platform{From: a.From, To: to, Edge: a.Edge}
		entry, ok := calc.EntryPath(e.Schedule.Entry, p)
		require.True(t, ok)
		exit, ok := calc.ExitPath(p, e.Schedule.Exit)
		require.True(t, ok)
		assert.True(t, e.Train.Fits(edge))
		out[e.Train.ID] = blocking.NewCalculator(margin).Route(e.Train, e.Schedule, entry, exit)
	}
	return out
}

func TestRandomSchedulesAreConflictFree(t *testing.T) {
	// Arrivals are 35 to 54 apart and stays last 40 to 59, so at most two
	// trains share the station and every round has a solution.
	const rounds = 25
	rng := rand.New(rand.NewSource(7))
	solved := 0
	for round := 0; round < rounds; round++ {
		g := stations.TwoPlatforms(graph.TrainPassenger)
		s := model.NewTrainSchedule(g)
		arr := 0
		for i := 0; i < 4; i++ {
			arr += 35 + rng.Intn(20)
			dep := arr + 40 + rng.Intn(20)
			require.NoError(t, s.Add(train(string(rune('a'+i))), window(arr, dep, 10)))
		}
		wp, err := New(1, nil, nil).CalculateWorkPlan(context.Background(), s)
		if errors.Is(err, ErrInfeasible) {
			continue
		}
		require.NoError(t, err)
		solved++
		require.Equal(t, s.Len(), wp.Len())
		claims := realisedClaims(t, s, wp, 1)
		ids := wp.Trains()
		for i := range ids {
			for j := i + 1; j < len(ids); j++ {
				e, hit := claims[ids[i]].Conflicts(claims[ids[j]])
				assert.False(t, hit, "round %d: %s and %s overlap on edge %d", round, ids[i], ids[j], e)
			}
		}
	}
	assert.Equal(t, rounds, solved)
}
