package planner

import (
	"fmt"

	"github.com/kilianp07/railplan/core/blocking"
	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/paths"
	"github.com/kilianp07/railplan/core/plan"
)

// cell is one feasible (train, platform) choice with the route realising it.
type cell struct {
	platform int
	entry    paths.GraphPath
	exit     paths.GraphPath
	entryAt  int
	exitAt   int
	claims   blocking.Claims
}

// slot gathers the feasible cells of one train.
type slot struct {
	train    model.Train
	schedule model.SingleTrainSchedule
	cells    []*cell
	passed   bool
	// prev is the platform index of the previous plan, or -1.
	prev int
	// target is the platform index a validated plan pins, or -1.
	target int
}

func (s *slot) cell(platform int) *cell {
	for _, c := range s.cells {
		if c.platform == platform {
			return c
		}
	}
	return nil
}

// problem is the per-call state of the planner.
type problem struct {
	g         *graph.Graph
	calc      *paths.Calculator
	platforms []paths.Platform
	index     map[paths.Platform]int
	slots     []*slot
}

func newProblem(g *graph.Graph) (*problem, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: schedule is not bound to a graph", ErrInvalidGraph)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}
	calc, err := paths.Compute(g)
	if err != nil {
		return nil, err
	}
	pr := &problem{g: g, calc: calc, index: make(map[paths.Platform]int)}
	for _, p := range calc.Platforms() {
		pr.platformIndex(p)
	}
	return pr, nil
}

func (pr *problem) platformIndex(p paths.Platform) int {
	if i, ok := pr.index[p]; ok {
		return i
	}
	pr.index[p] = len(pr.platforms)
	pr.platforms = append(pr.platforms, p)
	return len(pr.platforms) - 1
}

// directed resolves a plan assignment into a directed platform of the graph.
func (pr *problem) directed(a plan.Assignment) (paths.Platform, error) {
	e, ok := pr.g.Edge(a.Edge)
	if !ok {
		return paths.Platform{}, fmt.Errorf("%w: edge %d: %w", ErrIncompatiblePlatform, a.Edge, graph.ErrUnknownEdge)
	}
	to, ok := e.Opposite(a.From)
	if !ok {
		return paths.Platform{}, fmt.Errorf("%w: vertex %d is not an end of edge %d", ErrIncompatiblePlatform, a.From, a.Edge)
	}
	return paths.Platform{From: a.From, To: to, Edge: e.ID}, nil
}

// fits tells whether a route through platform p lets the train stop for the
// required time between arrival and departure.
func (pr *problem) fits(t model.Train, s model.SingleTrainSchedule, p paths.Platform, entry, exit paths.GraphPath) bool {
	e, ok := pr.g.Edge(p.Edge)
	if !ok || !t.Fits(e) {
		return false
	}
	transit := t.TravelTime(entry.Length + exit.Length + t.Length - e.Length)
	return s.Arrival+s.Stop+transit <= s.Departure
}

func newSlot(e model.Entry) *slot {
	return &slot{train: e.Train, schedule: e.Schedule, prev: -1, target: -1}
}

// scheduled builds the cells of a train entering through its input.
func (pl *Planner) scheduled(pr *problem, e model.Entry) *slot {
	s := newSlot(e)
	for i, p := range pr.platforms {
		entry, ok := pr.calc.EntryPath(e.Schedule.Entry, p)
		if !ok {
			continue
		}
		exit, ok := pr.calc.ExitPath(p, e.Schedule.Exit)
		if !ok || !pr.fits(e.Train, e.Schedule, p, entry, exit) {
			continue
		}
		s.cells = append(s.cells, pl.routeCell(i, e.Train, e.Schedule, entry, exit))
	}
	return s
}

// approaching builds the cells of a train already inside the station that
// has not reached its platform yet. Routes start at its live position and
// its arrival becomes the observation time.
func (pl *Planner) approaching(pr *problem, e model.Entry, live model.LiveState) (*slot, error) {
	sch := e.Schedule
	sch.Arrival = live.ObservedAt
	s := newSlot(model.Entry{Train: e.Train, Schedule: sch})
	routes, err := pr.calc.PathsFromPosition(live.From, live.To)
	if err != nil {
		return nil, fmt.Errorf("train %s live position: %w", e.Train.ID, err)
	}
	for _, entry := range routes {
		p, ok := pr.calc.PlatformOf(entry)
		if !ok {
			continue
		}
		if err := pr.calc.AddPlatform(p); err != nil {
			return nil, err
		}
		i := pr.platformIndex(p)
		exit, ok := pr.calc.ExitPath(p, sch.Exit)
		if !ok || !pr.fits(e.Train, sch, p, entry, exit) || s.cell(i) != nil {
			continue
		}
		s.cells = append(s.cells, pl.routeCell(i, e.Train, sch, entry, exit))
	}
	return s, nil
}

// departed builds the single cell of a train that has left its platform: it
// keeps the previous platform and only claims the way out from its live
// position.
func (pl *Planner) departed(pr *problem, e model.Entry, live model.LiveState, prev plan.Assignment) (*slot, error) {
	p, err := pr.directed(prev)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", e.Train.ID, err)
	}
	sch := e.Schedule
	sch.Stop = 0
	s := newSlot(model.Entry{Train: e.Train, Schedule: sch})
	s.passed = true
	routes, err := pr.calc.ExitPathsFromPosition(live.From, live.To)
	if err != nil {
		return nil, fmt.Errorf("train %s live position: %w", e.Train.ID, err)
	}
	for _, exit := range routes {
		if exit.Last() != sch.Exit {
			continue
		}
		s.cells = append(s.cells, &cell{
			platform: pr.platformIndex(p),
			exit:     exit,
			exitAt:   live.ObservedAt,
			claims:   pl.blocking.ExitLeg(e.Train, live.ObservedAt, exit),
		})
		break
	}
	return s, nil
}

func (pl *Planner) routeCell(platform int, t model.Train, s model.SingleTrainSchedule, entry, exit paths.GraphPath) *cell {
	return &cell{
		platform: platform,
		entry:    entry,
		exit:     exit,
		entryAt:  s.Arrival,
		exitAt:   blocking.ExitStart(t, s.Departure, exit),
		claims:   pl.blocking.Route(t, s, entry, exit),
	}
}
