package events

import (
	"time"

	"github.com/kilianp07/railplan/core/model"
)

// PositionUpdate is published for every live train observation.
type PositionUpdate struct {
	Station string
	TrainID string
	State   model.LiveState
	Time    time.Time
}
