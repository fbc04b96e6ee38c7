package mqtt

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/pkg/interchange"
)

// Publisher distributes a solved plan to the station devices.
type Publisher interface {
	PublishPlan(wp *plan.StationWorkPlan, s *model.TrainSchedule) error
}

// UnitCommand is one timed state of a device.
type UnitCommand struct {
	Begin   int    `json:"begin"`
	End     int    `json:"end"`
	Status  string `json:"status"`
	TrainID string `json:"train_id,omitempty"`
}

// DeviceCommand is the payload published to a switch or light topic. It
// replaces the whole timeline of the device.
type DeviceCommand struct {
	CommandID string        `json:"command_id"`
	PlanID    string        `json:"plan_id"`
	Vertex    int           `json:"vertex"`
	Units     []UnitCommand `json:"units"`
	Timestamp int64         `json:"timestamp"`
}

// PublishPlan publishes the plan document, retained, followed by one command
// per switch and traffic light. Every topic is attempted; the joined errors
// are returned.
func (p *PahoClient) PublishPlan(wp *plan.StationWorkPlan, s *model.TrainSchedule) error {
	doc, err := interchange.EncodePlan(wp, s)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	errs := []error{p.publish(PlanTopic(p.prefix, wp.Station), "plan", true, payload)}
	for _, c := range DeviceCommands(wp) {
		payload, err := json.Marshal(c.Command)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, p.publish(c.Topic(p.prefix, wp.Station), "device", true, payload))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	p.logger.Infof("published plan %s for %s", wp.ID, wp.Station)
	return nil
}

// Addressed pairs a device command with its device kind.
type Addressed struct {
	Light   bool
	Command DeviceCommand
}

// Topic returns the device topic of the command.
func (a Addressed) Topic(prefix, station string) string {
	if a.Light {
		return LightTopic(prefix, station, graph.VertexID(a.Command.Vertex))
	}
	return SwitchTopic(prefix, station, graph.VertexID(a.Command.Vertex))
}

// DeviceCommands groups the units of wp per device, switches first, each in
// ascending vertex order.
func DeviceCommands(wp *plan.StationWorkPlan) []Addressed {
	now := time.Now().UnixMilli()
	var out []Addressed
	index := make(map[[2]int]int)
	add := func(light bool, v graph.VertexID, u UnitCommand) {
		kind := 0
		if light {
			kind = 1
		}
		key := [2]int{kind, int(v)}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Addressed{Light: light, Command: DeviceCommand{
				CommandID: uuid.NewString(),
				PlanID:    wp.ID,
				Vertex:    int(v),
				Timestamp: now,
			}})
		}
		out[i].Command.Units = append(out[i].Command.Units, u)
	}
	for _, u := range wp.Switches {
		add(false, u.Vertex, UnitCommand{Begin: u.Begin, End: u.End, Status: u.Status.String(), TrainID: u.TrainID})
	}
	for _, u := range wp.Lights {
		add(true, u.Vertex, UnitCommand{Begin: u.Begin, End: u.End, Status: u.Status.String(), TrainID: u.TrainID})
	}
	slices.SortStableFunc(out, func(a, b Addressed) int {
		if a.Light != b.Light {
			if a.Light {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Command.Vertex, b.Command.Vertex)
	})
	return out
}

// MockPublisher records published plans. Used in tests.
type MockPublisher struct {
	Plans []*plan.StationWorkPlan
	Fail  bool
	mu    sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishPlan records the plan or fails when configured to.
func (m *MockPublisher) PublishPlan(wp *plan.StationWorkPlan, _ *model.TrainSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Plans = append(m.Plans, wp)
	return nil
}

// Published returns the number of recorded plans.
func (m *MockPublisher) Published() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Plans)
}
