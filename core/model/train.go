package model

import (
	"errors"
	"fmt"

	"github.com/kilianp07/railplan/core/graph"
)

// TrainType is the category of a train.
type TrainType = graph.TrainType

var ErrInvalidTrain = errors.New("invalid train")

// Train is the immutable description of a rolling stock unit.
type Train struct {
	ID     string    // unique within a schedule
	Length int       // length in track units, > 0
	Speed  int       // track units per time unit, > 0
	Type   TrainType // PASSENGER, CARGO or NONE
}

// Validate checks the physical parameters of the train.
func (t Train) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidTrain)
	}
	if t.Length <= 0 {
		return fmt.Errorf("%w: train %s length %d must be positive", ErrInvalidTrain, t.ID, t.Length)
	}
	if t.Speed <= 0 {
		return fmt.Errorf("%w: train %s speed %d must be positive", ErrInvalidTrain, t.ID, t.Speed)
	}
	if t.Type < graph.TrainPassenger || t.Type > graph.TrainNone {
		return fmt.Errorf("%w: train %s has unknown type %d", ErrInvalidTrain, t.ID, int(t.Type))
	}
	return nil
}

// TravelTime returns the whole number of time units the train needs to
// cover length, rounded up.
func (t Train) TravelTime(length int) int {
	if length <= 0 {
		return 0
	}
	return (length + t.Speed - 1) / t.Speed
}

// Fits reports whether the train can dwell on edge e.
func (t Train) Fits(e *graph.Edge) bool {
	return e.IsPlatform() && e.Length >= t.Length && e.Type.Accepts(t.Type)
}
