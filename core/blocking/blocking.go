// Package blocking turns a train route into the time windows during which
// each traversed edge is occupied.
package blocking

import (
	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/paths"
)

// Interval is a closed time window [Begin, End].
type Interval struct {
	Begin int
	End   int
}

// Overlaps reports whether two closed intervals share at least one instant.
func (i Interval) Overlaps(o Interval) bool {
	return min(i.End, o.End) >= max(i.Begin, o.Begin)
}

// Claims maps an edge to every window it is occupied. Windows for the same
// edge are kept as separate entries.
type Claims map[graph.EdgeID][]Interval

func (c Claims) add(e graph.EdgeID, iv Interval) {
	c[e] = append(c[e], iv)
}

// Merge appends every window of o to c.
func (c Claims) Merge(o Claims) {
	for e, ivs := range o {
		c[e] = append(c[e], ivs...)
	}
}

// Conflicts reports whether c and o occupy a shared edge at overlapping
// times, and returns the first such edge in ascending id order.
func (c Claims) Conflicts(o Claims) (graph.EdgeID, bool) {
	found := graph.NoEdge
	for e, a := range c {
		b, ok := o[e]
		if !ok || (found != graph.NoEdge && e > found) {
			continue
		}
		if anyOverlap(a, b) {
			found = e
		}
	}
	return found, found != graph.NoEdge
}

func anyOverlap(a, b []Interval) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Overlaps(y) {
				return true
			}
		}
	}
	return false
}

// Calculator computes claims widened by a fixed margin.
type Calculator struct {
	Margin int
}

// NewCalculator returns a calculator using margin as time inaccuracy.
func NewCalculator(margin int) Calculator {
	return Calculator{Margin: margin}
}

// Leg returns the window of a whole route started at begin: every edge of
// the route is held from begin until the train has covered the full route.
func (c Calculator) Leg(train model.Train, begin int, p paths.GraphPath) Interval {
	return Interval{Begin: begin - c.Margin, End: begin + train.TravelTime(p.Length) + c.Margin}
}

// Route returns the claims of a train following entry to its platform, then
// exit out of the station. The platform edge, which ends entry and starts
// exit, additionally receives the dwell window.
func (c Calculator) Route(train model.Train, s model.SingleTrainSchedule, entry, exit paths.GraphPath) Claims {
	out := make(Claims)
	in := c.Leg(train, s.Arrival, entry)
	for _, e := range entry.Edges {
		out.add(e, in)
	}
	c.addExit(out, train, s.Departure, exit)
	if plat := entry.LastEdge(); plat != graph.NoEdge {
		out.add(plat, Interval{
			Begin: s.Arrival + train.TravelTime(entry.Length) - c.Margin,
			End:   s.Departure - train.TravelTime(exit.Length) + c.Margin,
		})
	}
	return out
}

// ExitLeg returns the claims of a train that has left its platform and only
// follows exit, starting at begin.
func (c Calculator) ExitLeg(train model.Train, begin int, exit paths.GraphPath) Claims {
	out := make(Claims)
	iv := c.Leg(train, begin, exit)
	for _, e := range exit.Edges {
		out.add(e, iv)
	}
	return out
}

// ExitStart returns the time a train must leave its platform to reach the
// end of exit at departure.
func ExitStart(train model.Train, departure int, exit paths.GraphPath) int {
	return departure - train.TravelTime(exit.Length)
}

func (c Calculator) addExit(out Claims, train model.Train, departure int, exit paths.GraphPath) {
	iv := c.Leg(train, ExitStart(train, departure, exit), exit)
	for _, e := range exit.Edges {
		out.add(e, iv)
	}
}
