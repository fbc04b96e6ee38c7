package metrics

import "time"

// PlanEvent describes one planning call.
type PlanEvent struct {
	PlanID    string
	Station   string
	Mode      string
	Status    string
	Trains    int
	Platforms int
	Vars      int
	Clauses   int
	Changes   int
	Duration  time.Duration
	Time      time.Time
}

// PlanSink records planning calls.
type PlanSink interface {
	RecordPlan(ev PlanEvent) error
}

// AssignmentEvent is the platform chosen for one train by a plan.
type AssignmentEvent struct {
	PlanID  string
	Station string
	TrainID string
	EdgeID  int
	Changed bool
	Time    time.Time
}

// AssignmentRecorder is implemented by sinks tracking individual
// assignments.
type AssignmentRecorder interface {
	RecordAssignments(evs []AssignmentEvent) error
}

// PositionEvent is one live train observation received by the service.
type PositionEvent struct {
	Station string
	TrainID string
	From    int
	To      int
	Passed  bool
	Time    time.Time
}

// PositionRecorder is implemented by sinks tracking live observations.
type PositionRecorder interface {
	RecordPosition(ev PositionEvent) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordPlan(PlanEvent) error                { return nil }
func (NopSink) RecordAssignments([]AssignmentEvent) error { return nil }
func (NopSink) RecordPosition(PositionEvent) error        { return nil }

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []PlanSink
}

// NewMultiSink returns a MultiSink over sinks.
func NewMultiSink(sinks ...PlanSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordPlan(ev PlanEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlan(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordAssignments forwards to the sinks that track assignments.
func (m *MultiSink) RecordAssignments(evs []AssignmentEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AssignmentRecorder); ok {
			if err := rec.RecordAssignments(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPosition forwards to the sinks that track live positions.
func (m *MultiSink) RecordPosition(ev PositionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PositionRecorder); ok {
			if err := rec.RecordPosition(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
