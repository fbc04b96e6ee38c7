package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/test/stations"
)

func TestValidateAcceptsFixtures(t *testing.T) {
	require.NoError(t, stations.TwoPlatforms(graph.TrainPassenger).Validate())
	require.NoError(t, stations.SinglePlatform(graph.TrainCargo).Validate())
}

func TestAddEdgeRejectsInvalid(t *testing.T) {
	g := graph.New("bad")
	require.NoError(t, g.AddVertex(graph.NewInput(0, 0)))
	require.NoError(t, g.AddVertex(graph.NewOutput(1, 0)))

	err := g.AddEdge(&graph.Edge{ID: 0, Length: 1, Start: 0, End: 0})
	assert.ErrorIs(t, err, graph.ErrSelfLoop)
	err = g.AddEdge(&graph.Edge{ID: 0, Length: -1, Start: 0, End: 1})
	assert.ErrorIs(t, err, graph.ErrNegativeLength)
	err = g.AddEdge(&graph.Edge{ID: 0, Length: 1, Start: 0, End: 9})
	assert.ErrorIs(t, err, graph.ErrUnknownVertex)

	require.NoError(t, g.AddEdge(&graph.Edge{ID: 0, Length: 1, Start: 0, End: 1, Type: graph.TrainNone}))
	assert.ErrorIs(t, g.AddEdge(&graph.Edge{ID: 0, Length: 1, Start: 0, End: 1}), graph.ErrDuplicateID)
	assert.ErrorIs(t, g.AddVertex(graph.NewInput(0, 0)), graph.ErrDuplicateID)
	assert.NoError(t, g.Validate())
}

func TestValidateDisconnected(t *testing.T) {
	g := graph.New("split")
	require.NoError(t, g.AddVertex(graph.NewInput(0, 0)))
	require.NoError(t, g.AddVertex(graph.NewOutput(1, 0)))
	require.NoError(t, g.AddVertex(graph.NewInput(2, 1)))
	require.NoError(t, g.AddVertex(graph.NewOutput(3, 1)))
	require.NoError(t, g.AddEdge(&graph.Edge{ID: 0, Length: 1, Start: 0, End: 1, Type: graph.TrainNone}))
	require.NoError(t, g.AddEdge(&graph.Edge{ID: 1, Length: 1, Start: 2, End: 3, Type: graph.TrainNone}))
	assert.False(t, g.Connected())
	assert.ErrorIs(t, g.Validate(), graph.ErrDisconnected)
}

func TestValidateConnectionShape(t *testing.T) {
	tests := []struct {
		name   string
		vertex *graph.Vertex
	}{
		{"input with two sides", &graph.Vertex{ID: 1, Kind: graph.KindInput, Connections: []graph.Connection{{A: 0, B: 0}}}},
		{"connection with empty side", &graph.Vertex{ID: 1, Kind: graph.KindConnection, Connections: []graph.Connection{{A: graph.NoEdge, B: 0}}}},
		{"switch with one pair", &graph.Vertex{ID: 1, Kind: graph.KindSwitch, Connections: []graph.Connection{{A: 0, B: 1}}, Switch: &graph.SwitchState{}}},
		{"light without state", &graph.Vertex{ID: 1, Kind: graph.KindTraffic, Connections: []graph.Connection{{A: 0, B: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New("shape")
			require.NoError(t, g.AddVertex(graph.NewInput(0, 0)))
			require.NoError(t, g.AddVertex(tt.vertex))
			require.NoError(t, g.AddVertex(graph.NewOutput(2, 1)))
			require.NoError(t, g.AddEdge(&graph.Edge{ID: 0, Length: 1, Start: 0, End: 1, Type: graph.TrainNone}))
			require.NoError(t, g.AddEdge(&graph.Edge{ID: 1, Length: 1, Start: 1, End: 2, Type: graph.TrainNone}))
			assert.ErrorIs(t, g.Validate(), graph.ErrInvalidConnections)
		})
	}
}

func TestFindEdgeIsSymmetric(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	e, ok := g.FindEdge(stations.SwitchIn, stations.PlatformA)
	require.True(t, ok)
	assert.Equal(t, stations.EdgeA, e.ID)
	e, ok = g.FindEdge(stations.PlatformA, stations.SwitchIn)
	require.True(t, ok)
	assert.Equal(t, stations.EdgeA, e.ID)
	_, ok = g.FindEdge(stations.In, stations.Out)
	assert.False(t, ok)
}

func TestInputsOutputsAndTypes(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainCargo)
	require.Len(t, g.Inputs(), 1)
	require.Len(t, g.Outputs(), 1)
	assert.True(t, g.IsInput(stations.In))
	assert.False(t, g.IsInput(stations.Out))
	assert.True(t, g.IsOutput(stations.Out))
	types := g.EdgeTypes()
	assert.True(t, types[graph.TrainCargo])
	assert.False(t, types[graph.TrainPassenger])
}

func TestSwitchMutations(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	v, _ := g.Vertex(stations.SwitchIn)
	assert.Len(t, v.ActiveConnections(), 2)

	require.NoError(t, g.SetSwitchStatus(stations.SwitchIn, graph.SwitchBranch2))
	require.NoError(t, g.FreezeSwitch(stations.SwitchIn))
	active := v.ActiveConnections()
	require.Len(t, active, 1)
	assert.Equal(t, stations.EdgeB, active[0].B)

	assert.ErrorIs(t, g.SetSwitchStatus(stations.SwitchIn, graph.SwitchBranch1), graph.ErrSwitchFrozen)
	require.NoError(t, g.ThawSwitch(stations.SwitchIn))
	require.NoError(t, g.SetSwitchStatus(stations.SwitchIn, graph.SwitchBranch1))

	assert.ErrorIs(t, g.FreezeSwitch(stations.In), graph.ErrNotSwitch)
	assert.ErrorIs(t, g.SetLightStatus(stations.In, graph.LightPassing), graph.ErrNotTrafficLight)
	assert.ErrorIs(t, g.BlockEdge(99), graph.ErrUnknownEdge)
	assert.ErrorIs(t, g.BlockVertex(99), graph.ErrUnknownVertex)
}

func TestHiddenVertexExposesNothing(t *testing.T) {
	g := stations.TwoPlatforms(graph.TrainPassenger)
	require.NoError(t, g.SetHidden(stations.PlatformA, true))
	v, _ := g.Vertex(stations.PlatformA)
	assert.Empty(t, v.ActiveConnections())
	assert.Equal(t, []graph.EdgeID{stations.EdgeA, stations.EdgeAOut}, v.IncidentEdges())
}

func TestParseEnums(t *testing.T) {
	k, err := graph.ParseVertexKind("DEADEND")
	require.NoError(t, err)
	assert.Equal(t, graph.KindDeadEnd, k)
	_, err = graph.ParseVertexKind("PLATFORM")
	assert.Error(t, err)

	tt, err := graph.ParseTrainType("CARGO")
	require.NoError(t, err)
	assert.Equal(t, graph.TrainCargo, tt)
	assert.True(t, graph.TrainNone.Accepts(graph.TrainCargo))
	assert.False(t, graph.TrainPassenger.Accepts(graph.TrainCargo))
	assert.True(t, graph.TrainPassenger.Accepts(graph.TrainNone))
}
