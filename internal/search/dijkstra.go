// Package search provides a shortest-path search over any comparable state
// type with non-negative step costs. States are discovered lazily and handed
// to gonum's Dijkstra as an implicit graph.
package search

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Step is a transition to a neighbouring state.
type Step[S comparable] struct {
	To   S
	Cost int
}

// Tree is the shortest-path tree produced by Run.
type Tree[S comparable] struct {
	start     S
	startCost int
	space     *space[S]
	shortest  path.Shortest
	settled   []S
}

// Dist returns the shortest distance to s.
func (t *Tree[S]) Dist(s S) (int, bool) {
	if s == t.start {
		return t.startCost, true
	}
	id, ok := t.space.ids[s]
	if !ok {
		return 0, false
	}
	w := t.shortest.WeightTo(id)
	if math.IsInf(w, 1) {
		return 0, false
	}
	return t.startCost + int(w), true
}

// Settled returns every reached state ordered by distance. Ties on distance
// are broken by discovery order, so the sequence is deterministic for a
// deterministic neighbour function.
func (t *Tree[S]) Settled() []S { return t.settled }

// Path returns the states from the start to s. It returns false when s was
// not reached.
func (t *Tree[S]) Path(s S) ([]S, bool) {
	if s == t.start {
		return []S{s}, true
	}
	if _, ok := t.Dist(s); !ok {
		return nil, false
	}
	nodes, _ := t.shortest.To(t.space.ids[s])
	if len(nodes) == 0 {
		return nil, false
	}
	out := make([]S, len(nodes))
	for i, n := range nodes {
		out[i] = t.space.states[n.ID()]
	}
	return out, true
}

// space is the implicit graph explored by the search. Node ids follow
// discovery order.
type space[S comparable] struct {
	ids      map[S]int64
	states   []S
	weights  map[[2]int64]float64
	adj      map[int64][]graph.Node
	next     func(S) []Step[S]
	terminal func(S) bool
}

func (g *space[S]) id(s S) int64 {
	if id, ok := g.ids[s]; ok {
		return id
	}
	id := int64(len(g.states))
	g.ids[s] = id
	g.states = append(g.states, s)
	return id
}

// From implements traverse.Graph. Terminal states have no successors.
func (g *space[S]) From(id int64) graph.Nodes {
	nodes, ok := g.adj[id]
	if !ok {
		nodes = g.expand(id)
		g.adj[id] = nodes
	}
	if len(nodes) == 0 {
		return graph.Empty
	}
	return iterator.NewOrderedNodes(nodes)
}

func (g *space[S]) expand(id int64) []graph.Node {
	s := g.states[id]
	if g.terminal != nil && g.terminal(s) {
		return nil
	}
	var nodes []graph.Node
	for _, st := range g.next(s) {
		to := g.id(st.To)
		if to == id {
			continue
		}
		cost := float64(max(st.Cost, 0))
		key := [2]int64{id, to}
		if w, ok := g.weights[key]; ok {
			g.weights[key] = math.Min(w, cost)
			continue
		}
		g.weights[key] = cost
		nodes = append(nodes, simple.Node(to))
	}
	return nodes
}

// Edge implements traverse.Graph.
func (g *space[S]) Edge(uid, vid int64) graph.Edge {
	w, ok := g.weights[[2]int64{uid, vid}]
	if !ok {
		return nil
	}
	return simple.WeightedEdge{F: simple.Node(uid), T: simple.Node(vid), W: w}
}

// Weight implements path.Weighted.
func (g *space[S]) Weight(xid, yid int64) (float64, bool) {
	if xid == yid {
		return 0, true
	}
	w, ok := g.weights[[2]int64{xid, yid}]
	return w, ok
}

// Run settles states from start, whose distance is startCost. Terminal
// states are reached but never expanded. Negative step costs are treated as
// zero.
func Run[S comparable](start S, startCost int, next func(S) []Step[S], terminal func(S) bool) *Tree[S] {
	g := &space[S]{
		ids:      make(map[S]int64),
		weights:  make(map[[2]int64]float64),
		adj:      make(map[int64][]graph.Node),
		next:     next,
		terminal: terminal,
	}
	root := g.id(start)
	t := &Tree[S]{
		start:     start,
		startCost: startCost,
		space:     g,
		shortest:  path.DijkstraFrom(simple.Node(root), g),
	}

	type reached struct {
		id   int64
		dist float64
	}
	var all []reached
	for i := range g.states {
		id, w := int64(i), 0.0
		if id != root {
			if w = t.shortest.WeightTo(id); math.IsInf(w, 1) {
				continue
			}
		}
		all = append(all, reached{id: id, dist: w})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].id < all[j].id
	})
	t.settled = make([]S, len(all))
	for i, r := range all {
		t.settled[i] = g.states[r.id]
	}
	return t
}
