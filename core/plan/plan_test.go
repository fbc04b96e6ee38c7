package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railplan/core/graph"
)

func TestAssignKeepsOrder(t *testing.T) {
	p := New("p1", "st", ModeCold)
	p.Assign("b", Assignment{Edge: 1, From: 0})
	p.Assign("a", Assignment{Edge: 2, From: 0})
	p.Assign("b", Assignment{Edge: 3, From: 0})

	assert.Equal(t, []string{"b", "a"}, p.Trains())
	a, ok := p.Platform("b")
	require.True(t, ok)
	assert.Equal(t, graph.EdgeID(3), a.Edge)
	assert.Equal(t, 2, p.Len())
	assert.False(t, p.Stale)
}

func TestSetPlatformMarksStale(t *testing.T) {
	p := New("p1", "st", ModeCold)
	p.Assign("a", Assignment{Edge: 1})
	require.NoError(t, p.SetPlatform("a", Assignment{Edge: 2}))
	assert.True(t, p.Stale)
	assert.Error(t, p.SetPlatform("ghost", Assignment{Edge: 2}))
}

func TestFillTrafficLightGaps(t *testing.T) {
	p := New("p1", "st", ModeCold)
	p.AddLight(TrafficLightPlanUnit{Vertex: 7, Begin: 30, End: 40, Status: graph.LightPassing, TrainID: "b"})
	p.AddLight(TrafficLightPlanUnit{Vertex: 7, Begin: 10, End: 20, Status: graph.LightPassing, TrainID: "a"})
	p.AddLight(TrafficLightPlanUnit{Vertex: 7, Begin: 35, End: 50, Status: graph.LightPassing, TrainID: "c"})

	p.FillTrafficLightGaps([]graph.VertexID{7, 9})

	var seven []TrafficLightPlanUnit
	var nine []TrafficLightPlanUnit
	for _, u := range p.Lights {
		switch u.Vertex {
		case 7:
			seven = append(seven, u)
		case 9:
			nine = append(nine, u)
		}
	}
	assert.Equal(t, []TrafficLightPlanUnit{
		{Vertex: 7, Begin: OpenBegin, End: 10, Status: graph.LightStop},
		{Vertex: 7, Begin: 10, End: 20, Status: graph.LightPassing, TrainID: "a"},
		{Vertex: 7, Begin: 20, End: 30, Status: graph.LightStop},
		{Vertex: 7, Begin: 30, End: 50, Status: graph.LightPassing, TrainID: "b"},
		{Vertex: 7, Begin: 50, End: OpenEnd, Status: graph.LightStop},
	}, seven)
	assert.Equal(t, []TrafficLightPlanUnit{{Vertex: 9, Begin: OpenBegin, End: OpenEnd, Status: graph.LightStop}}, nine)

	for i := 1; i < len(p.Lights); i++ {
		assert.LessOrEqual(t, p.Lights[i-1].Begin, p.Lights[i].Begin)
	}
}

func TestSortSwitches(t *testing.T) {
	p := New("p1", "st", ModeCold)
	p.AddSwitch(SwitchPlanUnit{Vertex: 2, Begin: 5})
	p.AddSwitch(SwitchPlanUnit{Vertex: 1, Begin: 5})
	p.AddSwitch(SwitchPlanUnit{Vertex: 3, Begin: -1})
	p.Sort()
	got := []graph.VertexID{}
	for _, u := range p.Switches {
		got = append(got, u.Vertex)
	}
	assert.Equal(t, []graph.VertexID{3, 1, 2}, got)
}
