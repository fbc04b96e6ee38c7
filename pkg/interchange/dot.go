package interchange

import (
	"fmt"
	"io"
	"strings"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/kilianp07/railplan/core/graph"
)

var vertexShapes = map[graph.VertexKind]string{
	graph.KindTraffic:    "triangle",
	graph.KindSwitch:     "diamond",
	graph.KindConnection: "point",
	graph.KindInput:      "invhouse",
	graph.KindOutput:     "house",
	graph.KindDeadEnd:    "box",
}

type dotNode struct {
	v *graph.Vertex
}

func (n dotNode) ID() int64     { return int64(n.v.ID) }
func (n dotNode) DOTID() string { return fmt.Sprintf("v%d", n.v.ID) }

func (n dotNode) Attributes() []encoding.Attribute {
	label := fmt.Sprintf("%d %s", n.v.ID, n.v.Kind)
	switch {
	case n.v.Switch != nil:
		label += "\n" + n.v.Switch.Status.String()
		if n.v.Switch.Condition == graph.SwitchFrozen {
			label += " " + n.v.Switch.Condition.String()
		}
	case n.v.Light != nil:
		label += "\n" + n.v.Light.Status.String()
	}
	attrs := []encoding.Attribute{
		{Key: "label", Value: label},
		{Key: "shape", Value: vertexShapes[n.v.Kind]},
	}
	if n.v.Blocked || n.v.Hidden {
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: "red"})
	}
	return attrs
}

type dotLine struct {
	from, to dotNode
	e        *graph.Edge
}

func (l dotLine) From() gonum.Node         { return l.from }
func (l dotLine) To() gonum.Node           { return l.to }
func (l dotLine) ID() int64                { return int64(l.e.ID) }
func (l dotLine) ReversedLine() gonum.Line { return dotLine{from: l.to, to: l.from, e: l.e} }

func (l dotLine) Attributes() []encoding.Attribute {
	label := fmt.Sprintf("e%d len=%d", l.e.ID, l.e.Length)
	if l.e.IsPlatform() {
		label += " " + l.e.Type.String()
	}
	attrs := []encoding.Attribute{{Key: "label", Value: label}}
	if l.e.IsPlatform() {
		attrs = append(attrs, encoding.Attribute{Key: "penwidth", Value: "3"})
	}
	if l.e.Blocked {
		attrs = append(attrs, encoding.Attribute{Key: "style", Value: "dashed"})
	}
	return attrs
}

// MarshalDOT renders g as a Graphviz document.
func MarshalDOT(g *graph.Graph) ([]byte, error) {
	mg := multi.NewUndirectedGraph()
	nodes := make(map[graph.VertexID]dotNode, len(g.Vertices()))
	for _, v := range g.Vertices() {
		n := dotNode{v: v}
		nodes[v.ID] = n
		mg.AddNode(n)
	}
	for _, e := range g.Edges() {
		from, ok := nodes[e.Start]
		if !ok {
			return nil, fmt.Errorf("edge %d start %d: %w", e.ID, e.Start, graph.ErrUnknownVertex)
		}
		to, ok := nodes[e.End]
		if !ok {
			return nil, fmt.Errorf("edge %d end %d: %w", e.ID, e.End, graph.ErrUnknownVertex)
		}
		mg.SetLine(dotLine{from: from, to: to, e: e})
	}
	return dot.MarshalMulti(mg, dotName(g.Name), "", "\t")
}

// WriteDOT writes the Graphviz rendering of g to w.
func WriteDOT(w io.Writer, g *graph.Graph) error {
	b, err := MarshalDOT(g)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func dotName(name string) string {
	if name == "" {
		return "station"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}
