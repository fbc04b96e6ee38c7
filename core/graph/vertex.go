package graph

// Connection is one way to pass through a vertex: a train arriving on A may
// leave on B and the other way round. Either side may be NoEdge on terminal
// vertices.
type Connection struct {
	A EdgeID
	B EdgeID
}

// Has reports whether e is one side of the pair.
func (c Connection) Has(e EdgeID) bool {
	return e != NoEdge && (c.A == e || c.B == e)
}

// Other returns the side opposite to e, or NoEdge when e is not part of c.
func (c Connection) Other(e EdgeID) EdgeID {
	switch {
	case e == NoEdge:
		return NoEdge
	case c.A == e:
		return c.B
	case c.B == e:
		return c.A
	}
	return NoEdge
}

// SwitchState is the payload of a switch vertex.
type SwitchState struct {
	Status    SwitchStatus
	Condition WorkCondition
}

// LightState is the payload of a traffic light vertex.
type LightState struct {
	Status LightStatus
}

// Vertex is a node of the station graph. Switch is set only for KindSwitch
// and Light only for KindTraffic.
type Vertex struct {
	ID          VertexID
	Kind        VertexKind
	Blocked     bool
	Hidden      bool
	Connections []Connection
	Switch      *SwitchState
	Light       *LightState
}

// NewInput returns an input vertex fed by edge e.
func NewInput(id VertexID, e EdgeID) *Vertex {
	return &Vertex{ID: id, Kind: KindInput, Connections: []Connection{{A: NoEdge, B: e}}}
}

// NewOutput returns an output vertex reached through edge e.
func NewOutput(id VertexID, e EdgeID) *Vertex {
	return &Vertex{ID: id, Kind: KindOutput, Connections: []Connection{{A: NoEdge, B: e}}}
}

// NewDeadEnd returns a dead end closing edge e.
func NewDeadEnd(id VertexID, e EdgeID) *Vertex {
	return &Vertex{ID: id, Kind: KindDeadEnd, Connections: []Connection{{A: NoEdge, B: e}}}
}

// NewConnection returns a pass-through vertex joining e1 and e2.
func NewConnection(id VertexID, e1, e2 EdgeID) *Vertex {
	return &Vertex{ID: id, Kind: KindConnection, Connections: []Connection{{A: e1, B: e2}}}
}

// NewTrafficLight returns a traffic light between e1 and e2 showing stop.
func NewTrafficLight(id VertexID, e1, e2 EdgeID) *Vertex {
	return &Vertex{
		ID:          id,
		Kind:        KindTraffic,
		Connections: []Connection{{A: e1, B: e2}},
		Light:       &LightState{Status: LightStop},
	}
}

// NewSwitch returns a working switch whose common edge in diverges into
// branch1 and branch2. The switch starts on branch1.
func NewSwitch(id VertexID, in, branch1, branch2 EdgeID) *Vertex {
	return &Vertex{
		ID:          id,
		Kind:        KindSwitch,
		Connections: []Connection{{A: in, B: branch1}, {A: in, B: branch2}},
		Switch:      &SwitchState{Status: SwitchBranch1, Condition: SwitchWorking},
	}
}

// ActiveConnections returns the pairs usable for traversal. Hidden vertices
// expose none and a frozen switch keeps only the pair matching its status.
func (v *Vertex) ActiveConnections() []Connection {
	if v.Hidden {
		return nil
	}
	if v.Kind == KindSwitch && v.Switch != nil && v.Switch.Condition == SwitchFrozen {
		i := v.Switch.Status.Index()
		if i < len(v.Connections) {
			return v.Connections[i : i+1]
		}
		return nil
	}
	return v.Connections
}

// IncidentEdges returns every distinct edge referenced by the vertex
// connections, in declaration order.
func (v *Vertex) IncidentEdges() []EdgeID {
	var out []EdgeID
	seen := make(map[EdgeID]bool)
	for _, c := range v.Connections {
		for _, e := range [2]EdgeID{c.A, c.B} {
			if e == NoEdge || seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// PairIndex returns the index of the first connection pair containing both
// edges, or -1.
func (v *Vertex) PairIndex(e1, e2 EdgeID) int {
	for i, c := range v.Connections {
		if c.Has(e1) && c.Other(e1) == e2 {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether the vertex is an input, output or dead end.
func (v *Vertex) IsTerminal() bool {
	return v.Kind == KindInput || v.Kind == KindOutput || v.Kind == KindDeadEnd
}
