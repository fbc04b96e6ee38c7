package paths

import (
	"fmt"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/internal/search"
)

// Calculator holds every route discovered for one state of the graph. It
// must be rebuilt with Compute after any blocking or switch change.
type Calculator struct {
	g         *graph.Graph
	platforms []Platform
	known     map[Platform]bool
	entry     map[graph.VertexID]map[Platform]GraphPath
	entryList map[graph.VertexID][]GraphPath
	exit      map[Platform]map[graph.VertexID]GraphPath
	exitList  map[Platform][]GraphPath
}

// Compute runs the entry search from every input of g, then the exit search
// from every platform found on the way.
func Compute(g *graph.Graph) (*Calculator, error) {
	c := &Calculator{
		g:         g,
		known:     make(map[Platform]bool),
		entry:     make(map[graph.VertexID]map[Platform]GraphPath),
		entryList: make(map[graph.VertexID][]GraphPath),
		exit:      make(map[Platform]map[graph.VertexID]GraphPath),
		exitList:  make(map[Platform][]GraphPath),
	}
	for _, in := range g.Inputs() {
		found, err := c.searchPlatforms(fresh(in.ID), 0)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", in.ID, err)
		}
		c.entry[in.ID] = make(map[Platform]GraphPath)
		for _, f := range found {
			c.entry[in.ID][f.platform] = f.path
			c.entryList[in.ID] = append(c.entryList[in.ID], f.path)
			c.addPlatform(f.platform)
		}
	}
	for i := 0; i < len(c.platforms); i++ {
		if _, err := c.exitsOf(c.platforms[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Graph returns the graph the calculator was built from.
func (c *Calculator) Graph() *graph.Graph { return c.g }

func (c *Calculator) addPlatform(p Platform) {
	if c.known[p] {
		return
	}
	c.known[p] = true
	c.platforms = append(c.platforms, p)
}

func (c *Calculator) exitsOf(p Platform) (map[graph.VertexID]GraphPath, error) {
	if m, ok := c.exit[p]; ok {
		return m, nil
	}
	found, err := c.searchExits(p.position())
	if err != nil {
		return nil, fmt.Errorf("platform %d->%d: %w", p.From, p.To, err)
	}
	m := make(map[graph.VertexID]GraphPath)
	for _, f := range found {
		m[f.Last()] = f
		c.exitList[p] = append(c.exitList[p], f)
	}
	c.exit[p] = m
	return m, nil
}

// AddPlatform registers p, computing its exit routes when it was not known.
// Live searches use it for platforms only reachable from a train position.
func (c *Calculator) AddPlatform(p Platform) error {
	if _, err := c.exitsOf(p); err != nil {
		return err
	}
	c.addPlatform(p)
	return nil
}

// Platforms returns every directed platform reachable from some input, in
// discovery order.
func (c *Calculator) Platforms() []Platform { return c.platforms }

// PathsFromEntry returns the shortest route from entry to every platform it
// reaches. It is empty when the entry is blocked or isolated.
func (c *Calculator) PathsFromEntry(entry graph.VertexID) []GraphPath {
	return c.entryList[entry]
}

// PathsFromPlatform returns the shortest route from p to every output it
// reaches. Each route starts with the platform edge itself.
func (c *Calculator) PathsFromPlatform(p Platform) []GraphPath {
	return c.exitList[p]
}

// EntryPath returns the route from entry to p.
func (c *Calculator) EntryPath(entry graph.VertexID, p Platform) (GraphPath, bool) {
	path, ok := c.entry[entry][p]
	return path, ok
}

// ExitPath returns the route from p to exit.
func (c *Calculator) ExitPath(p Platform, exit graph.VertexID) (GraphPath, bool) {
	path, ok := c.exit[p][exit]
	return path, ok
}

// HasPathEntryToPlatform reports whether entry reaches p.
func (c *Calculator) HasPathEntryToPlatform(entry graph.VertexID, p Platform) bool {
	_, ok := c.EntryPath(entry, p)
	return ok
}

// HasPathPlatformToExit reports whether p reaches exit.
func (c *Calculator) HasPathPlatformToExit(p Platform, exit graph.VertexID) bool {
	_, ok := c.ExitPath(p, exit)
	return ok
}

// MaxLengthOfPath returns the longest entry to exit route through a platform
// that fits a train of the given length and type, counting the platform edge
// once. It returns 0 when no such route exists.
func (c *Calculator) MaxLengthOfPath(entries, exits []graph.VertexID, trainLength int, t graph.TrainType) int {
	best := 0
	for _, p := range c.platforms {
		e, ok := c.g.Edge(p.Edge)
		if !ok || e.Length < trainLength || !(t == graph.TrainNone || e.Type == t) {
			continue
		}
		for _, in := range entries {
			ip, ok := c.EntryPath(in, p)
			if !ok {
				continue
			}
			for _, out := range exits {
				op, ok := c.ExitPath(p, out)
				if !ok {
					continue
				}
				if l := ip.Length + op.Length - e.Length; l > best {
					best = l
				}
			}
		}
	}
	return best
}

// PlatformOf returns the directed platform a route ends on.
func (c *Calculator) PlatformOf(p GraphPath) (Platform, bool) {
	n := len(p.Vertices)
	if n < 2 {
		return Platform{}, false
	}
	e, ok := c.g.Edge(p.LastEdge())
	if !ok || !e.IsPlatform() {
		return Platform{}, false
	}
	return Platform{From: p.Vertices[n-2], To: p.Vertices[n-1], Edge: e.ID}, true
}

// PathsFromPosition runs the entry search from a train moving from the
// vertex from towards to. Routes start with that edge. A train already on a
// platform edge gets a single route made of that edge.
func (c *Calculator) PathsFromPosition(from, to graph.VertexID) ([]GraphPath, error) {
	start, err := c.directed(from, to)
	if err != nil {
		return nil, err
	}
	e, _ := c.g.Edge(start.Via)
	found, err := c.searchPlatforms(start, e.Length)
	if err != nil {
		return nil, err
	}
	out := make([]GraphPath, 0, len(found))
	for _, f := range found {
		out = append(out, f.path)
	}
	return out, nil
}

// ExitPathsFromPosition runs the exit search from a train moving from the
// vertex from towards to. Routes start with that edge.
func (c *Calculator) ExitPathsFromPosition(from, to graph.VertexID) ([]GraphPath, error) {
	start, err := c.directed(from, to)
	if err != nil {
		return nil, err
	}
	return c.searchExits(start)
}

func (c *Calculator) directed(from, to graph.VertexID) (Position, error) {
	e, ok := c.g.FindEdge(from, to)
	if !ok {
		return Position{}, fmt.Errorf("no edge between %d and %d: %w", from, to, graph.ErrUnknownEdge)
	}
	return Position{Prev: from, Cur: to, Via: e.ID}, nil
}

type platformHit struct {
	platform Platform
	path     GraphPath
}

func (c *Calculator) searchPlatforms(start Position, startCost int) ([]platformHit, error) {
	if !c.usable(start) {
		return nil, nil
	}
	terminal := func(p Position) bool {
		e, ok := c.g.Edge(p.Via)
		return ok && e.IsPlatform()
	}
	tree := search.Run(start, startCost, func(p Position) []search.Step[Position] {
		return c.next(p, false)
	}, terminal)
	var out []platformHit
	for _, pos := range tree.Settled() {
		if !terminal(pos) {
			continue
		}
		path, err := c.materialize(tree, start, pos)
		if err != nil {
			return nil, err
		}
		out = append(out, platformHit{
			platform: Platform{From: pos.Prev, To: pos.Cur, Edge: pos.Via},
			path:     path,
		})
	}
	return out, nil
}

func (c *Calculator) searchExits(start Position) ([]GraphPath, error) {
	if !c.usable(start) {
		return nil, nil
	}
	e, _ := c.g.Edge(start.Via)
	tree := search.Run(start, e.Length, func(p Position) []search.Step[Position] {
		return c.next(p, true)
	}, Position.isExit)
	var out []GraphPath
	for _, pos := range tree.Settled() {
		if !pos.isExit() || !c.g.IsOutput(pos.Prev) {
			continue
		}
		route, ok := tree.Path(pos)
		if !ok {
			return nil, fmt.Errorf("exit %d: %w", pos.Prev, ErrCorruptConnections)
		}
		path, err := c.build(start, route[:len(route)-1])
		if err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, nil
}

func (c *Calculator) materialize(tree *search.Tree[Position], start, pos Position) (GraphPath, error) {
	route, ok := tree.Path(pos)
	if !ok {
		return GraphPath{}, fmt.Errorf("position %d->%d: %w", pos.Prev, pos.Cur, ErrCorruptConnections)
	}
	return c.build(start, route)
}

// build turns a chain of positions into a GraphPath, validating every step
// against the connection pairs.
func (c *Calculator) build(start Position, route []Position) (GraphPath, error) {
	var path GraphPath
	if start.Via == graph.NoEdge {
		path = NewPath(start.Cur)
	} else {
		path = NewPath(start.Prev)
		if !path.TryAppend(c.g, start.Cur, start.Via) {
			return GraphPath{}, fmt.Errorf("start %d->%d: %w", start.Prev, start.Cur, ErrCorruptConnections)
		}
	}
	for _, pos := range route[1:] {
		if !path.TryAppend(c.g, pos.Cur, pos.Via) {
			return GraphPath{}, fmt.Errorf("step %d->%d over edge %d: %w", pos.Prev, pos.Cur, pos.Via, ErrCorruptConnections)
		}
	}
	return path, nil
}

func (c *Calculator) usable(p Position) bool {
	v, ok := c.g.Vertex(p.Cur)
	if !ok || v.Blocked {
		return false
	}
	if p.Via == graph.NoEdge {
		return true
	}
	e, ok := c.g.Edge(p.Via)
	return ok && !e.Blocked
}

// next lists the positions reachable from p. With exits set, leaving a vertex
// through the empty side of a pair yields the exit position of that vertex.
func (c *Calculator) next(p Position, exits bool) []search.Step[Position] {
	v, ok := c.g.Vertex(p.Cur)
	if !ok {
		return nil
	}
	var out []search.Step[Position]
	seen := make(map[graph.EdgeID]bool)
	for _, conn := range v.ActiveConnections() {
		var candidates []graph.EdgeID
		if p.Via == graph.NoEdge {
			candidates = []graph.EdgeID{conn.A, conn.B}
		} else {
			if !conn.Has(p.Via) {
				continue
			}
			candidates = []graph.EdgeID{conn.Other(p.Via)}
		}
		for _, id := range candidates {
			if id == graph.NoEdge {
				if exits && p.Via != graph.NoEdge {
					out = append(out, search.Step[Position]{To: exitOf(v.ID)})
				}
				continue
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			e, ok := c.g.Edge(id)
			if !ok || e.Blocked {
				continue
			}
			w, ok := e.Opposite(v.ID)
			if !ok {
				continue
			}
			if wv, ok := c.g.Vertex(w); !ok || wv.Blocked {
				continue
			}
			out = append(out, search.Step[Position]{To: Position{Prev: v.ID, Cur: w, Via: id}, Cost: e.Length})
		}
	}
	return out
}
