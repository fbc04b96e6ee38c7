package events

import "github.com/kilianp07/railplan/core/plan"

// PlanComputed is published once a plan has been solved and stored.
type PlanComputed struct {
	Plan *plan.StationWorkPlan
}

// ReplanFailed is emitted when a planning call fails. The previous plan stays
// in force.
type ReplanFailed struct {
	Station string
	Mode    plan.Mode
	Err     error
}
