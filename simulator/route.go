package main

import (
	"fmt"
	"slices"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/infra/mqtt"
)

// Observation is a position a track sensor reports at a station time.
type Observation struct {
	TrainID string
	At      int
	Msg     mqtt.PositionMessage
}

// Observations derives the sensor reports of every planned train: one on
// the entry edge at arrival and one behind the platform once the dwell time
// has elapsed. The result is ordered by time.
func Observations(s *model.TrainSchedule, wp *plan.StationWorkPlan) ([]Observation, error) {
	g := s.Graph()
	var out []Observation
	for _, e := range s.Entries() {
		a, ok := wp.Platform(e.Train.ID)
		if !ok {
			continue
		}
		to, err := beyond(g, e.Schedule.Entry, graph.NoEdge)
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", e.Train.ID, err)
		}
		out = append(out, Observation{
			TrainID: e.Train.ID,
			At:      e.Schedule.Arrival,
			Msg:     mqtt.PositionMessage{From: int(e.Schedule.Entry), To: int(to), ObservedAt: e.Schedule.Arrival},
		})

		pe, ok := g.Edge(a.Edge)
		if !ok {
			return nil, fmt.Errorf("train %s: %w", e.Train.ID, graph.ErrUnknownEdge)
		}
		end, ok := pe.Opposite(a.From)
		if !ok {
			return nil, fmt.Errorf("train %s: vertex %d is not an end of edge %d", e.Train.ID, a.From, a.Edge)
		}
		next, err := beyond(g, end, a.Edge)
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", e.Train.ID, err)
		}
		at := e.Schedule.Arrival + e.Schedule.Stop
		out = append(out, Observation{
			TrainID: e.Train.ID,
			At:      at,
			Msg:     mqtt.PositionMessage{From: int(end), To: int(next), ObservedAt: at, PassedPlatform: true},
		})
	}
	slices.SortStableFunc(out, func(a, b Observation) int { return a.At - b.At })
	return out, nil
}

// beyond returns the vertex reached by leaving v on the edge paired with
// came. NoEdge picks the first edge of v.
func beyond(g *graph.Graph, v graph.VertexID, came graph.EdgeID) (graph.VertexID, error) {
	vx, ok := g.Vertex(v)
	if !ok {
		return graph.NoVertex, graph.ErrUnknownVertex
	}
	for _, c := range vx.Connections {
		next := c.B
		if came != graph.NoEdge {
			if !c.Has(came) {
				continue
			}
			next = c.Other(came)
		}
		if next == graph.NoEdge {
			continue
		}
		e, ok := g.Edge(next)
		if !ok {
			return graph.NoVertex, graph.ErrUnknownEdge
		}
		if to, ok := e.Opposite(v); ok {
			return to, nil
		}
	}
	return graph.NoVertex, fmt.Errorf("no way out of vertex %d", v)
}
