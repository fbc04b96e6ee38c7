package graph

// Edge is an undirected track segment. Start and End only name the two
// endpoints; traversal is allowed in both directions.
type Edge struct {
	ID      EdgeID
	Length  int
	Start   VertexID
	End     VertexID
	Type    TrainType
	Blocked bool
}

// Joins reports whether the edge connects a and b in either order.
func (e *Edge) Joins(a, b VertexID) bool {
	return (e.Start == a && e.End == b) || (e.Start == b && e.End == a)
}

// Touches reports whether v is one of the endpoints.
func (e *Edge) Touches(v VertexID) bool {
	return e.Start == v || e.End == v
}

// Opposite returns the endpoint that is not v.
func (e *Edge) Opposite(v VertexID) (VertexID, bool) {
	switch v {
	case e.Start:
		return e.End, true
	case e.End:
		return e.Start, true
	}
	return NoVertex, false
}

// IsPlatform reports whether trains may dwell on the edge.
func (e *Edge) IsPlatform() bool {
	return e.Type != TrainNone
}
