package paths

import "github.com/kilianp07/railplan/core/graph"

// Position is a directed location: the train stands on Cur having arrived
// from Prev over Via. A fresh position has Prev == graph.NoVertex and
// Via == graph.NoEdge. An exit position has Cur == graph.NoVertex.
type Position struct {
	Prev graph.VertexID
	Cur  graph.VertexID
	Via  graph.EdgeID
}

func fresh(v graph.VertexID) Position {
	return Position{Prev: graph.NoVertex, Cur: v, Via: graph.NoEdge}
}

func exitOf(v graph.VertexID) Position {
	return Position{Prev: v, Cur: graph.NoVertex, Via: graph.NoEdge}
}

func (p Position) isExit() bool { return p.Cur == graph.NoVertex }

// Platform is a typed edge traversed in one direction, from From to To.
type Platform struct {
	From graph.VertexID
	To   graph.VertexID
	Edge graph.EdgeID
}

func (p Platform) position() Position {
	return Position{Prev: p.From, Cur: p.To, Via: p.Edge}
}
