package interchange

import (
	"errors"
	"fmt"

	"github.com/kilianp07/railplan/core/graph"
)

// ErrMalformed is wrapped by every decoding error caused by document content.
var ErrMalformed = errors.New("malformed document")

// Pair is one connection pair of a vertex.
type Pair struct {
	Item1 int `json:"Item1" yaml:"Item1"`
	Item2 int `json:"Item2" yaml:"Item2"`
}

// VertexDoc describes one vertex. The status fields are only meaningful for
// switches and traffic lights and may be omitted.
type VertexDoc struct {
	ID              int    `json:"id" yaml:"id"`
	VertexType      string `json:"vertexType" yaml:"vertexType"`
	EdgeConnections []Pair `json:"edgeConnections" yaml:"edgeConnections"`
	Blocked         bool   `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	Hidden          bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	SwitchStatus    string `json:"switchStatus,omitempty" yaml:"switchStatus,omitempty"`
	WorkCondition   string `json:"workCondition,omitempty" yaml:"workCondition,omitempty"`
	LightStatus     string `json:"lightStatus,omitempty" yaml:"lightStatus,omitempty"`
}

// EdgeDoc describes one edge.
type EdgeDoc struct {
	ID       int    `json:"id" yaml:"id"`
	Length   int    `json:"length" yaml:"length"`
	StartID  int    `json:"startId" yaml:"startId"`
	EndID    int    `json:"endId" yaml:"endId"`
	EdgeType string `json:"edgeType" yaml:"edgeType"`
	Blocked  bool   `json:"blocked,omitempty" yaml:"blocked,omitempty"`
}

// GraphDoc is the document form of a station graph.
type GraphDoc struct {
	Name     string      `json:"name,omitempty" yaml:"name,omitempty"`
	Vertices []VertexDoc `json:"vertices" yaml:"vertices"`
	Edges    []EdgeDoc   `json:"edges" yaml:"edges"`
}

// EncodeGraph converts g to its document form.
func EncodeGraph(g *graph.Graph) GraphDoc {
	doc := GraphDoc{Name: g.Name}
	for _, v := range g.Vertices() {
		vd := VertexDoc{
			ID:         int(v.ID),
			VertexType: token(vertexTypePrefix, v.Kind),
			Blocked:    v.Blocked,
			Hidden:     v.Hidden,
		}
		for _, c := range v.Connections {
			vd.EdgeConnections = append(vd.EdgeConnections, Pair{Item1: int(c.A), Item2: int(c.B)})
		}
		if v.Switch != nil {
			vd.SwitchStatus = token(switchStatusPrefix, v.Switch.Status)
			vd.WorkCondition = token(workConditionPrefix, v.Switch.Condition)
		}
		if v.Light != nil {
			vd.LightStatus = token(lightStatusPrefix, v.Light.Status)
		}
		doc.Vertices = append(doc.Vertices, vd)
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EncodeEdge(e))
	}
	return doc
}

// EncodeEdge converts one edge to its document form.
func EncodeEdge(e *graph.Edge) EdgeDoc {
	return EdgeDoc{
		ID:       int(e.ID),
		Length:   e.Length,
		StartID:  int(e.Start),
		EndID:    int(e.End),
		EdgeType: token(trainTypePrefix, e.Type),
		Blocked:  e.Blocked,
	}
}

// DecodeGraph builds and validates a graph. name is used when the document
// carries none.
func DecodeGraph(doc GraphDoc, name string) (*graph.Graph, error) {
	if doc.Name != "" {
		name = doc.Name
	}
	g := graph.New(name)
	for _, vd := range doc.Vertices {
		v, err := decodeVertex(vd)
		if err != nil {
			return nil, err
		}
		if err := g.AddVertex(v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}
	for _, ed := range doc.Edges {
		t, err := parseTrainType(ed.EdgeType)
		if err != nil {
			return nil, fmt.Errorf("%w: edge %d: %w", ErrMalformed, ed.ID, err)
		}
		e := &graph.Edge{
			ID:      graph.EdgeID(ed.ID),
			Length:  ed.Length,
			Start:   graph.VertexID(ed.StartID),
			End:     graph.VertexID(ed.EndID),
			Type:    t,
			Blocked: ed.Blocked,
		}
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeVertex(vd VertexDoc) (*graph.Vertex, error) {
	kind, err := parseVertexKind(vd.VertexType)
	if err != nil {
		return nil, fmt.Errorf("%w: vertex %d: %w", ErrMalformed, vd.ID, err)
	}
	id := graph.VertexID(vd.ID)
	pairs := vd.EdgeConnections
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: vertex %d has no connections", ErrMalformed, vd.ID)
	}
	first := pairs[0]

	var v *graph.Vertex
	switch kind {
	case graph.KindInput, graph.KindOutput, graph.KindDeadEnd:
		e := first.Item2
		if e == int(graph.NoEdge) {
			e = first.Item1
		}
		switch kind {
		case graph.KindInput:
			v = graph.NewInput(id, graph.EdgeID(e))
		case graph.KindOutput:
			v = graph.NewOutput(id, graph.EdgeID(e))
		default:
			v = graph.NewDeadEnd(id, graph.EdgeID(e))
		}
	case graph.KindConnection:
		v = graph.NewConnection(id, graph.EdgeID(first.Item1), graph.EdgeID(first.Item2))
	case graph.KindTraffic:
		v = graph.NewTrafficLight(id, graph.EdgeID(first.Item1), graph.EdgeID(first.Item2))
		if v.Light.Status, err = parseLightStatus(vd.LightStatus); err != nil {
			return nil, fmt.Errorf("%w: vertex %d: %w", ErrMalformed, vd.ID, err)
		}
	case graph.KindSwitch:
		if len(pairs) != 2 {
			return nil, fmt.Errorf("%w: switch %d needs two connection pairs, got %d", ErrMalformed, vd.ID, len(pairs))
		}
		in, b1, b2, ok := switchEdges(pairs[0], pairs[1])
		if !ok {
			return nil, fmt.Errorf("%w: switch %d pairs share no edge", ErrMalformed, vd.ID)
		}
		v = graph.NewSwitch(id, in, b1, b2)
		if v.Switch.Status, err = parseSwitchStatus(vd.SwitchStatus); err != nil {
			return nil, fmt.Errorf("%w: vertex %d: %w", ErrMalformed, vd.ID, err)
		}
		if v.Switch.Condition, err = parseWorkCondition(vd.WorkCondition); err != nil {
			return nil, fmt.Errorf("%w: vertex %d: %w", ErrMalformed, vd.ID, err)
		}
	}
	v.Blocked = vd.Blocked
	v.Hidden = vd.Hidden
	return v, nil
}

// switchEdges finds the edge shared by both pairs of a switch and the two
// branches leaving it, keeping the pair order.
func switchEdges(p0, p1 Pair) (in, b1, b2 graph.EdgeID, ok bool) {
	for _, c := range [2]int{p0.Item1, p0.Item2} {
		if c == int(graph.NoEdge) {
			continue
		}
		var o0, o1 int
		switch c {
		case p0.Item1:
			o0 = p0.Item2
		default:
			o0 = p0.Item1
		}
		switch c {
		case p1.Item1:
			o1 = p1.Item2
		case p1.Item2:
			o1 = p1.Item1
		default:
			continue
		}
		return graph.EdgeID(c), graph.EdgeID(o0), graph.EdgeID(o1), true
	}
	return graph.NoEdge, graph.NoEdge, graph.NoEdge, false
}
