package planner

import (
	"fmt"

	"github.com/kilianp07/railplan/core/blocking"
	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/paths"
	"github.com/kilianp07/railplan/core/plan"
)

// reconstruct reads the solved assignment back into a work plan.
func (pl *Planner) reconstruct(pr *problem, enc *encoding, mode plan.Mode, prev *plan.StationWorkPlan) (*plan.StationWorkPlan, error) {
	wp := plan.New(newPlanID(), pr.g.Name, mode)
	wp.CreatedAt = pl.now().UTC()
	for i, s := range pr.slots {
		c := enc.selected(pr, i)
		if c == nil {
			return nil, fmt.Errorf("%w: train %s has no selected platform", ErrInfeasible, s.train.ID)
		}
		p := pr.platforms[c.platform]
		wp.Assign(s.train.ID, plan.Assignment{Edge: p.Edge, From: p.From})
		if prev != nil {
			if old, ok := prev.Platform(s.train.ID); ok && old.Edge != p.Edge {
				wp.Changes++
			}
		}
		if len(c.entry.Vertices) > 0 {
			pl.emit(wp, pr.g, s.train, c.entry, pl.blocking.Leg(s.train, c.entryAt, c.entry))
		}
		pl.emit(wp, pr.g, s.train, c.exit, pl.blocking.Leg(s.train, c.exitAt, c.exit))
	}
	var lights []graph.VertexID
	for _, v := range pr.g.Vertices() {
		if v.Kind == graph.KindTraffic {
			lights = append(lights, v.ID)
		}
	}
	wp.FillTrafficLightGaps(lights)
	wp.Sort()
	return wp, nil
}

// emit adds a unit for every inner vertex of route that is a switch or a
// traffic light, held over window.
func (pl *Planner) emit(wp *plan.StationWorkPlan, g *graph.Graph, t model.Train, route paths.GraphPath, window blocking.Interval) {
	for k := 1; k < len(route.Vertices)-1; k++ {
		v, ok := g.Vertex(route.Vertices[k])
		if !ok {
			continue
		}
		switch v.Kind {
		case graph.KindTraffic:
			wp.AddLight(plan.TrafficLightPlanUnit{
				Vertex:  v.ID,
				Begin:   window.Begin,
				End:     window.End,
				Status:  graph.LightPassing,
				TrainID: t.ID,
			})
		case graph.KindSwitch:
			idx := v.PairIndex(route.Edges[k-1], route.Edges[k])
			if idx < 0 {
				pl.log.Warnf("train %s crosses switch %d on edges %d and %d outside its pairs", t.ID, v.ID, route.Edges[k-1], route.Edges[k])
				continue
			}
			wp.AddSwitch(plan.SwitchPlanUnit{
				Vertex:  v.ID,
				Begin:   window.Begin,
				End:     window.End,
				Status:  graph.SwitchStatus(idx),
				TrainID: t.ID,
			})
		}
	}
}
