package graph

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Validate checks the structural invariants required before planning: every
// connection pair is consistent with its vertex kind and references incident
// edges, no edge is a self-loop and the graph is connected.
func (g *Graph) Validate() error {
	if len(g.vertices) == 0 {
		return ErrEmptyGraph
	}
	for _, e := range g.edges {
		if e.Start == e.End {
			return fmt.Errorf("edge %d: %w", e.ID, ErrSelfLoop)
		}
	}
	for _, v := range g.vertices {
		if err := g.checkConnections(v); err != nil {
			return err
		}
	}
	for _, e := range g.edges {
		for _, end := range [2]VertexID{e.Start, e.End} {
			v, _ := g.Vertex(end)
			if !references(v, e.ID) {
				return fmt.Errorf("edge %d not listed by endpoint %d: %w", e.ID, end, ErrInvalidConnections)
			}
		}
	}
	if !g.Connected() {
		return ErrDisconnected
	}
	return nil
}

func references(v *Vertex, e EdgeID) bool {
	for _, c := range v.Connections {
		if c.Has(e) {
			return true
		}
	}
	return false
}

func (g *Graph) checkConnections(v *Vertex) error {
	bad := func(reason string) error {
		return fmt.Errorf("vertex %d (%s): %s: %w", v.ID, v.Kind, reason, ErrInvalidConnections)
	}
	switch v.Kind {
	case KindInput, KindOutput, KindDeadEnd:
		if len(v.Connections) != 1 || v.Connections[0].A != NoEdge || v.Connections[0].B == NoEdge {
			return bad("expected a single (none, edge) pair")
		}
	case KindConnection, KindTraffic:
		if len(v.Connections) != 1 {
			return bad("expected a single pair")
		}
		c := v.Connections[0]
		if c.A == NoEdge || c.B == NoEdge || c.A == c.B {
			return bad("pair must join two distinct edges")
		}
		if v.Kind == KindTraffic && v.Light == nil {
			return bad("missing light state")
		}
	case KindSwitch:
		if len(v.Connections) != 2 {
			return bad("expected two pairs")
		}
		c1, c2 := v.Connections[0], v.Connections[1]
		if c1.A == NoEdge || c1.B == NoEdge || c2.B == NoEdge || c1.A != c2.A || c1.B == c2.B || c1.A == c1.B || c2.A == c2.B {
			return bad("pairs must share the input edge and diverge")
		}
		if v.Switch == nil {
			return bad("missing switch state")
		}
	default:
		return bad("unknown kind")
	}
	for _, id := range v.IncidentEdges() {
		e, ok := g.Edge(id)
		if !ok {
			return fmt.Errorf("vertex %d references edge %d: %w", v.ID, id, ErrUnknownEdge)
		}
		if !e.Touches(v.ID) {
			return bad(fmt.Sprintf("edge %d is not incident", id))
		}
	}
	return nil
}

// Connected reports whether every vertex can be reached from every other one
// ignoring blocking and switch state.
func (g *Graph) Connected() bool {
	if len(g.vertices) == 0 {
		return false
	}
	ug := simple.NewUndirectedGraph()
	for i := range g.vertices {
		ug.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.edges {
		if e.Start == e.End {
			continue
		}
		a, b := g.vIndex[e.Start], g.vIndex[e.End]
		ug.SetEdge(ug.NewEdge(simple.Node(int64(a)), simple.Node(int64(b))))
	}
	return len(topo.ConnectedComponents(ug)) == 1
}
