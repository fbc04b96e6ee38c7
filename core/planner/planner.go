package planner

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/railplan/core/blocking"
	"github.com/kilianp07/railplan/core/logger"
	"github.com/kilianp07/railplan/core/metrics"
	"github.com/kilianp07/railplan/core/sat"
)

var (
	// ErrInvalidGraph wraps a structural graph error found before planning.
	ErrInvalidGraph = errors.New("invalid station graph")
	// ErrUnreachableTrain means a train has no feasible platform at all.
	ErrUnreachableTrain = errors.New("train has no feasible platform")
	// ErrInfeasible means no conflict-free assignment exists.
	ErrInfeasible = errors.New("no conflict-free assignment")
	// ErrUnassignedTrain means a plan lacks a scheduled train.
	ErrUnassignedTrain = errors.New("train has no assigned platform")
	// ErrIncompatiblePlatform means an assigned edge cannot hold the train.
	ErrIncompatiblePlatform = errors.New("platform incompatible with train")
	// ErrUnknownTrain means a live state names a train outside the schedule.
	ErrUnknownTrain = errors.New("train not in schedule")
)

// newModel builds the boolean model of a planning call. Tests replace it to
// observe or fake the solver.
var newModel = func() sat.Model { return sat.NewGini() }

// newPlanID generates plan identifiers.
var newPlanID = func() string { return uuid.NewString() }

// Planner computes station work plans. A Planner holds no state between
// calls and may be shared, but the graph of a schedule must not be mutated
// while a call runs.
type Planner struct {
	blocking blocking.Calculator
	log      logger.Logger
	sink     metrics.PlanSink
	now      func() time.Time
}

// New returns a Planner widening every occupation window by margin time
// units. Nil log and sink default to no-op implementations.
func New(margin int, log logger.Logger, sink metrics.PlanSink) *Planner {
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Planner{
		blocking: blocking.NewCalculator(margin),
		log:      log,
		sink:     sink,
		now:      time.Now,
	}
}

// Margin returns the time inaccuracy applied to every window.
func (p *Planner) Margin() int { return p.blocking.Margin }
