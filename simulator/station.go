package main

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/infra/mqtt"
	"github.com/kilianp07/railplan/pkg/interchange"
)

// SimulatedStation follows the plans published for a station and reports
// the trains moving along them as the station clock advances.
type SimulatedStation struct {
	Schedule    *model.TrainSchedule
	TopicPrefix string
	Sensor      Sensor
	// Unit is the wall clock duration of one station time unit.
	Unit time.Duration

	mu      sync.Mutex
	pending []Observation
	start   time.Time
}

// NewSimulatedStation creates a station whose clock starts now.
func NewSimulatedStation(s *model.TrainSchedule, prefix string, sensor Sensor, unit time.Duration) *SimulatedStation {
	return &SimulatedStation{
		Schedule:    s,
		TopicPrefix: prefix,
		Sensor:      sensor,
		Unit:        unit,
		start:       time.Now(),
	}
}

// Now returns the current station time.
func (st *SimulatedStation) Now() int {
	return int(time.Since(st.start) / st.Unit)
}

// Follow replaces the pending observations with those of wp that lie in the
// future of the station clock.
func (st *SimulatedStation) Follow(wp *plan.StationWorkPlan) error {
	obs, err := Observations(st.Schedule, wp)
	if err != nil {
		return err
	}
	now := st.Now()
	keep := obs[:0]
	for _, o := range obs {
		if o.At >= now {
			keep = append(keep, o)
		}
	}
	st.mu.Lock()
	st.pending = keep
	st.mu.Unlock()
	log.Printf("following plan %s: %d observations ahead", wp.ID, len(keep))
	return nil
}

// Due removes and returns the observations whose time has come.
func (st *SimulatedStation) Due(now int) []Observation {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := 0
	for i < len(st.pending) && st.pending[i].At <= now {
		i++
	}
	due := st.pending[:i:i]
	st.pending = st.pending[i:]
	return due
}

// Run connects to the broker, listens for plans and reports observations
// until ctx is done.
func (st *SimulatedStation) Run(ctx context.Context, broker string) error {
	name := st.Schedule.Graph().Name
	topic := mqtt.PlanTopic(st.TopicPrefix, name)
	cli, err := dialStation(broker, name, func(c paho.Client) {
		if tok := c.Subscribe(topic, 1, st.onPlan); tok.Wait() && tok.Error() != nil {
			log.Printf("subscribe %s: %v", topic, tok.Error())
		}
	})
	if err != nil {
		return err
	}
	defer cli.Disconnect(250)
	ticker := time.NewTicker(st.Unit)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, o := range st.Due(st.Now()) {
				go st.Sensor.Report(ctx, cli, st.positionTopic(o.TrainID), o.Msg)
			}
		}
	}
}

func (st *SimulatedStation) positionTopic(trainID string) string {
	return st.TopicPrefix + "/" + st.Schedule.Graph().Name + "/train/" + trainID + "/position"
}

func (st *SimulatedStation) onPlan(_ paho.Client, msg paho.Message) {
	var doc interchange.PlanDoc
	if err := json.Unmarshal(msg.Payload(), &doc); err != nil {
		log.Printf("decode plan: %v", err)
		return
	}
	wp, err := interchange.DecodePlan(doc, st.Schedule)
	if err != nil {
		log.Printf("plan %s: %v", doc.ID, err)
		return
	}
	if err := st.Follow(wp); err != nil {
		log.Printf("plan %s: %v", doc.ID, err)
	}
}
