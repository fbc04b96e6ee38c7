package plan

import (
	"math"
	"sort"

	"github.com/kilianp07/railplan/core/graph"
)

// Open bounds of the first and last stop unit of a traffic light.
const (
	OpenBegin = math.MinInt32
	OpenEnd   = math.MaxInt32
)

// SwitchPlanUnit holds a switch on Status between Begin and End.
type SwitchPlanUnit struct {
	Vertex  graph.VertexID
	Begin   int
	End     int
	Status  graph.SwitchStatus
	TrainID string
}

// TrafficLightPlanUnit shows Status on a light between Begin and End.
// TrainID is empty for synthesised stop units and names the first train of
// merged passing units.
type TrafficLightPlanUnit struct {
	Vertex  graph.VertexID
	Begin   int
	End     int
	Status  graph.LightStatus
	TrainID string
}

// AddSwitch appends a switch unit.
func (p *StationWorkPlan) AddSwitch(u SwitchPlanUnit) { p.Switches = append(p.Switches, u) }

// AddLight appends a traffic light unit.
func (p *StationWorkPlan) AddLight(u TrafficLightPlanUnit) { p.Lights = append(p.Lights, u) }

// Sort orders both unit lists by begin time, then vertex.
func (p *StationWorkPlan) Sort() {
	sort.SliceStable(p.Switches, func(i, j int) bool {
		a, b := p.Switches[i], p.Switches[j]
		if a.Begin != b.Begin {
			return a.Begin < b.Begin
		}
		return a.Vertex < b.Vertex
	})
	sort.SliceStable(p.Lights, func(i, j int) bool {
		a, b := p.Lights[i], p.Lights[j]
		if a.Begin != b.Begin {
			return a.Begin < b.Begin
		}
		return a.Vertex < b.Vertex
	})
}

// FillTrafficLightGaps rewrites the light units so that every light in
// lights has a covering timeline: overlapping passing units are merged and
// stop units fill the time before, between and after them. A light without
// passing units gets a single stop unit.
func (p *StationWorkPlan) FillTrafficLightGaps(lights []graph.VertexID) {
	passing := make(map[graph.VertexID][]TrafficLightPlanUnit)
	for _, u := range p.Lights {
		if u.Status == graph.LightPassing {
			passing[u.Vertex] = append(passing[u.Vertex], u)
		}
	}
	var out []TrafficLightPlanUnit
	for _, v := range lights {
		units := mergePassing(passing[v])
		cursor := OpenBegin
		for _, u := range units {
			if u.Begin > cursor {
				out = append(out, TrafficLightPlanUnit{Vertex: v, Begin: cursor, End: u.Begin, Status: graph.LightStop})
			}
			out = append(out, u)
			cursor = u.End
		}
		if cursor < OpenEnd {
			out = append(out, TrafficLightPlanUnit{Vertex: v, Begin: cursor, End: OpenEnd, Status: graph.LightStop})
		}
	}
	p.Lights = out
	p.Sort()
}

func mergePassing(units []TrafficLightPlanUnit) []TrafficLightPlanUnit {
	if len(units) == 0 {
		return nil
	}
	sort.SliceStable(units, func(i, j int) bool { return units[i].Begin < units[j].Begin })
	out := []TrafficLightPlanUnit{units[0]}
	for _, u := range units[1:] {
		last := &out[len(out)-1]
		if u.Begin <= last.End {
			if u.End > last.End {
				last.End = u.End
			}
			continue
		}
		out = append(out, u)
	}
	return out
}
