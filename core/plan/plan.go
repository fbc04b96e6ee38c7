// Package plan holds the result of a planning call: the platform assigned to
// every train and the timed commands for switches and traffic lights.
package plan

import (
	"fmt"
	"time"

	"github.com/kilianp07/railplan/core/graph"
)

// Mode records which planning operation produced a plan.
type Mode string

const (
	ModeCold   Mode = "cold"
	ModeStable Mode = "stable"
	ModeLive   Mode = "live"
	ModeManual Mode = "manual"
)

// Assignment is the platform of one train: the typed edge it dwells on and
// the vertex it enters that edge from.
type Assignment struct {
	Edge graph.EdgeID
	From graph.VertexID
}

// StationWorkPlan is the solved work plan of one station.
type StationWorkPlan struct {
	ID        string
	Station   string
	Mode      Mode
	CreatedAt time.Time
	// Changes counts trains whose platform differs from the previous plan.
	Changes int

	Switches []SwitchPlanUnit
	Lights   []TrafficLightPlanUnit
	// Stale is set when an assignment changed after the units were derived.
	Stale bool

	order       []string
	assignments map[string]Assignment
}

// New returns an empty plan.
func New(id, station string, mode Mode) *StationWorkPlan {
	return &StationWorkPlan{
		ID:          id,
		Station:     station,
		Mode:        mode,
		CreatedAt:   time.Now().UTC(),
		assignments: make(map[string]Assignment),
	}
}

// Assign records the platform of a train. Trains keep the order of their
// first assignment.
func (p *StationWorkPlan) Assign(trainID string, a Assignment) {
	if p.assignments == nil {
		p.assignments = make(map[string]Assignment)
	}
	if _, ok := p.assignments[trainID]; !ok {
		p.order = append(p.order, trainID)
	}
	p.assignments[trainID] = a
}

// SetPlatform changes the platform of an already planned train after the
// fact. Device units no longer match the assignments and the plan is marked
// stale until it is rebuilt.
func (p *StationWorkPlan) SetPlatform(trainID string, a Assignment) error {
	if _, ok := p.assignments[trainID]; !ok {
		return fmt.Errorf("train %s is not part of plan %s", trainID, p.ID)
	}
	p.assignments[trainID] = a
	p.Stale = true
	return nil
}

// Platform returns the assignment of a train.
func (p *StationWorkPlan) Platform(trainID string) (Assignment, bool) {
	a, ok := p.assignments[trainID]
	return a, ok
}

// Trains returns the planned train ids in assignment order.
func (p *StationWorkPlan) Trains() []string { return p.order }

// Len returns the number of planned trains.
func (p *StationWorkPlan) Len() int { return len(p.order) }
