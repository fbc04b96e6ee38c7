package app

import (
	"maps"
	"sync"
	"time"

	"github.com/kilianp07/railplan/core/events"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/internal/eventbus"
)

// Tracker keeps the latest observed position of every train of a station.
type Tracker struct {
	station string
	bus     eventbus.EventBus
	now     func() time.Time

	mu     sync.RWMutex
	states map[string]model.LiveState
}

// NewTracker returns a Tracker publishing PositionUpdate events on bus.
func NewTracker(station string, bus eventbus.EventBus) *Tracker {
	return &Tracker{station: station, bus: bus, now: time.Now, states: make(map[string]model.LiveState)}
}

// Update records the position of a train. Observations older than the
// stored one are ignored.
func (t *Tracker) Update(trainID string, st model.LiveState) {
	t.mu.Lock()
	if old, ok := t.states[trainID]; ok && old.ObservedAt > st.ObservedAt {
		t.mu.Unlock()
		return
	}
	t.states[trainID] = st
	t.mu.Unlock()
	if t.bus != nil {
		t.bus.Publish(events.PositionUpdate{Station: t.station, TrainID: trainID, State: st, Time: t.now()})
	}
}

// Forget drops a train, typically once it left the station.
func (t *Tracker) Forget(trainID string) {
	t.mu.Lock()
	delete(t.states, trainID)
	t.mu.Unlock()
}

// Snapshot returns the positions of the trains scheduled in s.
func (t *Tracker) Snapshot(s *model.TrainSchedule) map[string]model.LiveState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := maps.Clone(t.states)
	for id := range out {
		if _, ok := s.Get(id); !ok {
			delete(out, id)
		}
	}
	return out
}
