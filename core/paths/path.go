package paths

import (
	"errors"
	"fmt"

	"github.com/kilianp07/railplan/core/graph"
)

// ErrCorruptConnections reports a walk that the connection pairs of the graph
// do not allow. It means the graph data is inconsistent.
var ErrCorruptConnections = errors.New("corrupt connection pairs")

// GraphPath is a contiguous walk through the station.
type GraphPath struct {
	Vertices []graph.VertexID
	Edges    []graph.EdgeID
	Length   int
}

// NewPath starts a walk at v.
func NewPath(v graph.VertexID) GraphPath {
	return GraphPath{Vertices: []graph.VertexID{v}}
}

// Last returns the final vertex of the walk.
func (p GraphPath) Last() graph.VertexID { return p.Vertices[len(p.Vertices)-1] }

// First returns the starting vertex of the walk.
func (p GraphPath) First() graph.VertexID { return p.Vertices[0] }

// LastEdge returns the final edge of the walk, or graph.NoEdge.
func (p GraphPath) LastEdge() graph.EdgeID {
	if len(p.Edges) == 0 {
		return graph.NoEdge
	}
	return p.Edges[len(p.Edges)-1]
}

// Clone returns a copy that does not share slices with p.
func (p GraphPath) Clone() GraphPath {
	return GraphPath{
		Vertices: append([]graph.VertexID(nil), p.Vertices...),
		Edges:    append([]graph.EdgeID(nil), p.Edges...),
		Length:   p.Length,
	}
}

// CanAppend reports whether the walk may continue to v over edge e: e must
// join the last vertex and v, and unless the walk has a single vertex it must
// share a connection pair with the edge the walk arrived on.
func (p GraphPath) CanAppend(g *graph.Graph, v graph.VertexID, e graph.EdgeID) bool {
	last, ok := g.Vertex(p.Last())
	if !ok {
		return false
	}
	edge, ok := g.Edge(e)
	if !ok || !edge.Joins(last.ID, v) {
		return false
	}
	in := p.LastEdge()
	for _, c := range last.ActiveConnections() {
		if in == graph.NoEdge {
			if c.Has(e) {
				return true
			}
			continue
		}
		if c.Has(in) && c.Other(in) == e {
			return true
		}
	}
	return false
}

// TryAppend extends the walk when CanAppend allows it.
func (p *GraphPath) TryAppend(g *graph.Graph, v graph.VertexID, e graph.EdgeID) bool {
	if !p.CanAppend(g, v, e) {
		return false
	}
	edge, _ := g.Edge(e)
	p.Vertices = append(p.Vertices, v)
	p.Edges = append(p.Edges, e)
	p.Length += edge.Length
	return true
}

func (p GraphPath) String() string {
	return fmt.Sprintf("%v (len %d)", p.Vertices, p.Length)
}
