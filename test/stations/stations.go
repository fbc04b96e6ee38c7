// Package stations builds small station topologies shared by tests.
package stations

import "github.com/kilianp07/railplan/core/graph"

// Vertex and edge ids of the TwoPlatforms topology.
const (
	In        graph.VertexID = 0
	SwitchIn  graph.VertexID = 1
	PlatformA graph.VertexID = 2
	PlatformB graph.VertexID = 3
	SwitchOut graph.VertexID = 4
	Out       graph.VertexID = 5

	EdgeIn   graph.EdgeID = 0
	EdgeA    graph.EdgeID = 1
	EdgeB    graph.EdgeID = 2
	EdgeAOut graph.EdgeID = 3
	EdgeBOut graph.EdgeID = 4
	EdgeOut  graph.EdgeID = 5
)

// TwoPlatforms returns
//
//	In -0- SwitchIn -1(platform)- PlatformA -3- SwitchOut -5- Out
//	              \-2(platform)- PlatformB -4-/
//
// Both platforms are 50 long and accept platformType; approach edges are 10
// long.
func TwoPlatforms(platformType graph.TrainType) *graph.Graph {
	g := graph.New("two-platforms")
	must(g.AddVertex(graph.NewInput(In, EdgeIn)))
	must(g.AddVertex(graph.NewSwitch(SwitchIn, EdgeIn, EdgeA, EdgeB)))
	must(g.AddVertex(graph.NewConnection(PlatformA, EdgeA, EdgeAOut)))
	must(g.AddVertex(graph.NewConnection(PlatformB, EdgeB, EdgeBOut)))
	must(g.AddVertex(graph.NewSwitch(SwitchOut, EdgeOut, EdgeAOut, EdgeBOut)))
	must(g.AddVertex(graph.NewOutput(Out, EdgeOut)))
	must(g.AddEdge(&graph.Edge{ID: EdgeIn, Length: 10, Start: In, End: SwitchIn, Type: graph.TrainNone}))
	must(g.AddEdge(&graph.Edge{ID: EdgeA, Length: 50, Start: SwitchIn, End: PlatformA, Type: platformType}))
	must(g.AddEdge(&graph.Edge{ID: EdgeB, Length: 50, Start: SwitchIn, End: PlatformB, Type: platformType}))
	must(g.AddEdge(&graph.Edge{ID: EdgeAOut, Length: 10, Start: PlatformA, End: SwitchOut, Type: graph.TrainNone}))
	must(g.AddEdge(&graph.Edge{ID: EdgeBOut, Length: 10, Start: PlatformB, End: SwitchOut, Type: graph.TrainNone}))
	must(g.AddEdge(&graph.Edge{ID: EdgeOut, Length: 10, Start: SwitchOut, End: Out, Type: graph.TrainNone}))
	return g
}

// Vertex and edge ids of the SinglePlatform topology.
const (
	LineIn       graph.VertexID = 10
	LineLight    graph.VertexID = 11
	LinePlatform graph.VertexID = 12
	LineOut      graph.VertexID = 13

	LineEdgeIn       graph.EdgeID = 10
	LineEdgeLight    graph.EdgeID = 11
	LineEdgePlatform graph.EdgeID = 12
)

// SinglePlatform returns a line
//
//	LineIn -10- LineLight -11(platform)- LinePlatform -12- LineOut
//
// with a traffic light protecting the only platform.
func SinglePlatform(platformType graph.TrainType) *graph.Graph {
	g := graph.New("single-platform")
	must(g.AddVertex(graph.NewInput(LineIn, LineEdgeIn)))
	must(g.AddVertex(graph.NewTrafficLight(LineLight, LineEdgeIn, LineEdgeLight)))
	must(g.AddVertex(graph.NewConnection(LinePlatform, LineEdgeLight, LineEdgePlatform)))
	must(g.AddVertex(graph.NewOutput(LineOut, LineEdgePlatform)))
	must(g.AddEdge(&graph.Edge{ID: LineEdgeIn, Length: 20, Start: LineIn, End: LineLight, Type: graph.TrainNone}))
	must(g.AddEdge(&graph.Edge{ID: LineEdgeLight, Length: 40, Start: LineLight, End: LinePlatform, Type: platformType}))
	must(g.AddEdge(&graph.Edge{ID: LineEdgePlatform, Length: 20, Start: LinePlatform, End: LineOut, Type: graph.TrainNone}))
	return g
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
