package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kilianp07/railplan/core/graph"
)

var (
	ErrInvalidSchedule      = errors.New("invalid schedule")
	ErrDuplicateTrain       = errors.New("train already scheduled")
	ErrScheduleCollision    = errors.New("schedule collision")
	ErrNotInput             = errors.New("entry vertex is not an input")
	ErrNotOutput            = errors.New("exit vertex is not an output")
	ErrUnsupportedTrainType = errors.New("no platform accepts the train type")
)

// SingleTrainSchedule is the timetable of one train inside a station.
type SingleTrainSchedule struct {
	Arrival   int
	Departure int
	Stop      int
	Entry     graph.VertexID
	Exit      graph.VertexID
}

// Validate checks the time window of the schedule.
func (s SingleTrainSchedule) Validate() error {
	if s.Arrival < 0 || s.Departure < 0 || s.Stop < 0 {
		return fmt.Errorf("%w: negative time (arrival=%d departure=%d stop=%d)", ErrInvalidSchedule, s.Arrival, s.Departure, s.Stop)
	}
	if s.Departure < s.Arrival+s.Stop {
		return fmt.Errorf("%w: departure %d before arrival %d + stop %d", ErrInvalidSchedule, s.Departure, s.Arrival, s.Stop)
	}
	return nil
}

// Entry binds a train to its timetable.
type Entry struct {
	Train    Train
	Schedule SingleTrainSchedule
}

// TrainSchedule is the ordered set of trains expected at one station.
type TrainSchedule struct {
	graph   *graph.Graph
	entries []Entry
	index   map[string]int
}

// NewTrainSchedule returns an empty schedule bound to g.
func NewTrainSchedule(g *graph.Graph) *TrainSchedule {
	return &TrainSchedule{graph: g, index: make(map[string]int)}
}

// Graph returns the station the schedule is bound to.
func (s *TrainSchedule) Graph() *graph.Graph { return s.graph }

// Len returns the number of scheduled trains.
func (s *TrainSchedule) Len() int { return len(s.entries) }

// Entries returns a copy of the scheduled trains in insertion order.
func (s *TrainSchedule) Entries() []Entry { return slices.Clone(s.entries) }

// Get returns the entry of the train with the given id.
func (s *TrainSchedule) Get(id string) (Entry, bool) {
	i, ok := s.index[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Add registers a train. It rejects invalid trains and timetables, entries
// and exits that are not inputs and outputs of the bound graph, trains whose
// type no edge carries when they must stop, and collisions on the same
// entry and arrival or the same exit and departure.
func (s *TrainSchedule) Add(t Train, sch SingleTrainSchedule) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := sch.Validate(); err != nil {
		return fmt.Errorf("train %s: %w", t.ID, err)
	}
	if s.graph == nil {
		return fmt.Errorf("train %s: no station graph: %w", t.ID, ErrInvalidSchedule)
	}
	if _, ok := s.index[t.ID]; ok {
		return fmt.Errorf("train %s: %w", t.ID, ErrDuplicateTrain)
	}
	if !s.graph.IsInput(sch.Entry) {
		return fmt.Errorf("train %s vertex %d: %w", t.ID, sch.Entry, ErrNotInput)
	}
	if !s.graph.IsOutput(sch.Exit) {
		return fmt.Errorf("train %s vertex %d: %w", t.ID, sch.Exit, ErrNotOutput)
	}
	if sch.Stop != 0 && t.Type != graph.TrainNone && !s.graph.EdgeTypes()[t.Type] {
		return fmt.Errorf("train %s type %s: %w", t.ID, t.Type, ErrUnsupportedTrainType)
	}
	for _, e := range s.entries {
		if e.Schedule.Entry == sch.Entry && e.Schedule.Arrival == sch.Arrival {
			return fmt.Errorf("train %s and %s enter at %d on vertex %d: %w", t.ID, e.Train.ID, sch.Arrival, sch.Entry, ErrScheduleCollision)
		}
		if e.Schedule.Exit == sch.Exit && e.Schedule.Departure == sch.Departure {
			return fmt.Errorf("train %s and %s leave at %d on vertex %d: %w", t.ID, e.Train.ID, sch.Departure, sch.Exit, ErrScheduleCollision)
		}
	}
	s.index[t.ID] = len(s.entries)
	s.entries = append(s.entries, Entry{Train: t, Schedule: sch})
	return nil
}

// Remove drops a train from the schedule.
func (s *TrainSchedule) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.entries); j++ {
		s.index[s.entries[j].Train.ID] = j
	}
	return true
}
