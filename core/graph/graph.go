package graph

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownVertex      = errors.New("unknown vertex")
	ErrUnknownEdge        = errors.New("unknown edge")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrNegativeLength     = errors.New("negative edge length")
	ErrSelfLoop           = errors.New("self-loop edge")
	ErrDisconnected       = errors.New("graph is not connected")
	ErrInvalidConnections = errors.New("invalid connection pairs")
	ErrEmptyGraph         = errors.New("graph has no vertices")
	ErrNotSwitch          = errors.New("vertex is not a switch")
	ErrNotTrafficLight    = errors.New("vertex is not a traffic light")
	ErrSwitchFrozen       = errors.New("switch is frozen")
	ErrInvalidID          = errors.New("ids must be non-negative")
)

// Graph is the arena owning every vertex and edge of one station. Iteration
// order always follows insertion order.
type Graph struct {
	Name string

	vertices []*Vertex
	edges    []*Edge
	vIndex   map[VertexID]int
	eIndex   map[EdgeID]int
}

// New returns an empty graph.
func New(name string) *Graph {
	return &Graph{
		Name:   name,
		vIndex: make(map[VertexID]int),
		eIndex: make(map[EdgeID]int),
	}
}

// AddVertex registers v. Connection pairs may reference edges added later;
// they are checked by Validate.
func (g *Graph) AddVertex(v *Vertex) error {
	if v.ID < 0 {
		return fmt.Errorf("vertex %d: %w", v.ID, ErrInvalidID)
	}
	if _, ok := g.vIndex[v.ID]; ok {
		return fmt.Errorf("vertex %d: %w", v.ID, ErrDuplicateID)
	}
	g.vIndex[v.ID] = len(g.vertices)
	g.vertices = append(g.vertices, v)
	return nil
}

// AddEdge registers e. Both endpoints must already exist.
func (g *Graph) AddEdge(e *Edge) error {
	if e.ID < 0 {
		return fmt.Errorf("edge %d: %w", e.ID, ErrInvalidID)
	}
	if _, ok := g.eIndex[e.ID]; ok {
		return fmt.Errorf("edge %d: %w", e.ID, ErrDuplicateID)
	}
	if e.Length < 0 {
		return fmt.Errorf("edge %d: %w", e.ID, ErrNegativeLength)
	}
	if e.Start == e.End {
		return fmt.Errorf("edge %d: %w", e.ID, ErrSelfLoop)
	}
	for _, v := range [2]VertexID{e.Start, e.End} {
		if _, ok := g.vIndex[v]; !ok {
			return fmt.Errorf("edge %d endpoint %d: %w", e.ID, v, ErrUnknownVertex)
		}
	}
	g.eIndex[e.ID] = len(g.edges)
	g.edges = append(g.edges, e)
	return nil
}

// Vertex looks a vertex up by id.
func (g *Graph) Vertex(id VertexID) (*Vertex, bool) {
	i, ok := g.vIndex[id]
	if !ok {
		return nil, false
	}
	return g.vertices[i], true
}

// Edge looks an edge up by id.
func (g *Graph) Edge(id EdgeID) (*Edge, bool) {
	i, ok := g.eIndex[id]
	if !ok {
		return nil, false
	}
	return g.edges[i], true
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*Vertex { return g.vertices }

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge { return g.edges }

func (g *Graph) ofKind(k VertexKind) []*Vertex {
	var out []*Vertex
	for _, v := range g.vertices {
		if v.Kind == k {
			out = append(out, v)
		}
	}
	return out
}

// Inputs returns the entry vertices of the station.
func (g *Graph) Inputs() []*Vertex { return g.ofKind(KindInput) }

// Outputs returns the exit vertices of the station.
func (g *Graph) Outputs() []*Vertex { return g.ofKind(KindOutput) }

// IsInput reports whether id names an input vertex.
func (g *Graph) IsInput(id VertexID) bool {
	v, ok := g.Vertex(id)
	return ok && v.Kind == KindInput
}

// IsOutput reports whether id names an output vertex.
func (g *Graph) IsOutput(id VertexID) bool {
	v, ok := g.Vertex(id)
	return ok && v.Kind == KindOutput
}

// FindEdge returns the first edge incident to a that joins a and b.
func (g *Graph) FindEdge(a, b VertexID) (*Edge, bool) {
	v, ok := g.Vertex(a)
	if !ok {
		return nil, false
	}
	for _, id := range v.IncidentEdges() {
		e, ok := g.Edge(id)
		if ok && e.Joins(a, b) {
			return e, true
		}
	}
	return nil, false
}

// EdgeTypes returns the set of capacity tags carried by at least one edge.
func (g *Graph) EdgeTypes() map[TrainType]bool {
	out := make(map[TrainType]bool)
	for _, e := range g.edges {
		out[e.Type] = true
	}
	return out
}

// BlockVertex marks a vertex as unusable.
func (g *Graph) BlockVertex(id VertexID) error { return g.setVertexBlocked(id, true) }

// UnblockVertex clears the blocked flag of a vertex.
func (g *Graph) UnblockVertex(id VertexID) error { return g.setVertexBlocked(id, false) }

func (g *Graph) setVertexBlocked(id VertexID, b bool) error {
	v, ok := g.Vertex(id)
	if !ok {
		return fmt.Errorf("vertex %d: %w", id, ErrUnknownVertex)
	}
	v.Blocked = b
	return nil
}

// BlockEdge marks an edge as unusable.
func (g *Graph) BlockEdge(id EdgeID) error { return g.setEdgeBlocked(id, true) }

// UnblockEdge clears the blocked flag of an edge.
func (g *Graph) UnblockEdge(id EdgeID) error { return g.setEdgeBlocked(id, false) }

func (g *Graph) setEdgeBlocked(id EdgeID, b bool) error {
	e, ok := g.Edge(id)
	if !ok {
		return fmt.Errorf("edge %d: %w", id, ErrUnknownEdge)
	}
	e.Blocked = b
	return nil
}

// SetHidden hides or shows the connections of a vertex.
func (g *Graph) SetHidden(id VertexID, hidden bool) error {
	v, ok := g.Vertex(id)
	if !ok {
		return fmt.Errorf("vertex %d: %w", id, ErrUnknownVertex)
	}
	v.Hidden = hidden
	return nil
}

func (g *Graph) switchState(id VertexID) (*SwitchState, error) {
	v, ok := g.Vertex(id)
	if !ok {
		return nil, fmt.Errorf("vertex %d: %w", id, ErrUnknownVertex)
	}
	if v.Kind != KindSwitch || v.Switch == nil {
		return nil, fmt.Errorf("vertex %d: %w", id, ErrNotSwitch)
	}
	return v.Switch, nil
}

// SetSwitchStatus moves a working switch to the given branch.
func (g *Graph) SetSwitchStatus(id VertexID, s SwitchStatus) error {
	st, err := g.switchState(id)
	if err != nil {
		return err
	}
	if st.Condition == SwitchFrozen && st.Status != s {
		return fmt.Errorf("vertex %d: %w", id, ErrSwitchFrozen)
	}
	st.Status = s
	return nil
}

// FreezeSwitch pins a switch on its current branch.
func (g *Graph) FreezeSwitch(id VertexID) error {
	st, err := g.switchState(id)
	if err != nil {
		return err
	}
	st.Condition = SwitchFrozen
	return nil
}

// ThawSwitch lets a frozen switch move again.
func (g *Graph) ThawSwitch(id VertexID) error {
	st, err := g.switchState(id)
	if err != nil {
		return err
	}
	st.Condition = SwitchWorking
	return nil
}

// SetLightStatus changes the signal of a traffic light.
func (g *Graph) SetLightStatus(id VertexID, s LightStatus) error {
	v, ok := g.Vertex(id)
	if !ok {
		return fmt.Errorf("vertex %d: %w", id, ErrUnknownVertex)
	}
	if v.Kind != KindTraffic || v.Light == nil {
		return fmt.Errorf("vertex %d: %w", id, ErrNotTrafficLight)
	}
	v.Light.Status = s
	return nil
}
