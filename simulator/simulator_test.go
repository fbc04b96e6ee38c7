package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/infra/mqtt"
	"github.com/kilianp07/railplan/test/stations"
)

type doneToken struct{ paho.Token }

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }

type recorder struct {
	topics   []string
	payloads [][]byte
}

func (r *recorder) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	r.topics = append(r.topics, topic)
	r.payloads = append(r.payloads, payload.([]byte))
	return doneToken{}
}

func fixture(t *testing.T) (*model.TrainSchedule, *plan.StationWorkPlan) {
	t.Helper()
	s := model.NewTrainSchedule(stations.TwoPlatforms(graph.TrainPassenger))
	add := func(id string, arr, dep int) {
		err := s.Add(model.Train{ID: id, Length: 30, Speed: 10, Type: graph.TrainPassenger},
			model.SingleTrainSchedule{Arrival: arr, Departure: dep, Stop: 20, Entry: stations.In, Exit: stations.Out})
		if err != nil {
			t.Fatal(err)
		}
	}
	add("late", 50, 150)
	add("early", 0, 100)
	wp := plan.New("p1", "two-platforms", plan.ModeCold)
	wp.Assign("late", plan.Assignment{Edge: stations.EdgeB, From: stations.SwitchIn})
	wp.Assign("early", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})
	return s, wp
}

func TestObservations(t *testing.T) {
	s, wp := fixture(t)
	obs, err := Observations(s, wp)
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 4 {
		t.Fatalf("expected 4 observations, got %d", len(obs))
	}
	want := []Observation{
		{TrainID: "early", At: 0, Msg: mqtt.PositionMessage{From: 0, To: 1, ObservedAt: 0}},
		{TrainID: "early", At: 20, Msg: mqtt.PositionMessage{From: 2, To: 4, ObservedAt: 20, PassedPlatform: true}},
		{TrainID: "late", At: 50, Msg: mqtt.PositionMessage{From: 0, To: 1, ObservedAt: 50}},
		{TrainID: "late", At: 70, Msg: mqtt.PositionMessage{From: 3, To: 4, ObservedAt: 70, PassedPlatform: true}},
	}
	for i := range want {
		if obs[i] != want[i] {
			t.Errorf("observation %d: expected %+v, got %+v", i, want[i], obs[i])
		}
	}
}

func TestObservationsSkipUnplannedTrains(t *testing.T) {
	s, _ := fixture(t)
	wp := plan.New("p2", "two-platforms", plan.ModeCold)
	wp.Assign("early", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})
	obs, err := Observations(s, wp)
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}

	wp.Assign("late", plan.Assignment{Edge: stations.EdgeA, From: stations.PlatformB})
	if _, err := Observations(s, wp); err == nil {
		t.Fatal("expected error for a platform entered from a foreign vertex")
	}
}

func TestFollowAndDue(t *testing.T) {
	s, wp := fixture(t)
	st := NewSimulatedStation(s, "railplan", ReliableSensor{}, time.Hour)
	if err := st.Follow(wp); err != nil {
		t.Fatal(err)
	}
	due := st.Due(20)
	if len(due) != 2 || due[0].TrainID != "early" || due[1].TrainID != "early" {
		t.Fatalf("unexpected due observations %+v", due)
	}
	if len(st.Due(20)) != 0 {
		t.Fatal("observations reported twice")
	}
	if len(st.Due(100)) != 2 {
		t.Fatal("expected the late train")
	}
	if got := st.positionTopic("ic1"); got != "railplan/two-platforms/train/ic1/position" {
		t.Fatalf("unexpected topic %s", got)
	}
	if tr, ok := mqtt.TrainFromTopic(st.positionTopic("ic1")); !ok || tr != "ic1" {
		t.Fatal("position topic not understood by the planner side")
	}
}

func TestReliableSensorPublishes(t *testing.T) {
	r := &recorder{}
	msg := mqtt.PositionMessage{From: 0, To: 1, ObservedAt: 3}
	ReliableSensor{}.Report(context.Background(), r, "x/train/a/position", msg)
	if len(r.topics) != 1 {
		t.Fatalf("expected one publish, got %d", len(r.topics))
	}
	var got mqtt.PositionMessage
	if err := json.Unmarshal(r.payloads[0], &got); err != nil {
		t.Fatal(err)
	}
	if got != msg {
		t.Fatalf("expected %+v, got %+v", msg, got)
	}
}

func TestLossySensorDropsEverything(t *testing.T) {
	r := &recorder{}
	s := LossySensor{DropRate: 1}
	for i := 0; i < 10; i++ {
		s.Report(context.Background(), r, "x", mqtt.PositionMessage{})
	}
	if len(r.topics) != 0 {
		t.Fatalf("expected no publish, got %d", len(r.topics))
	}
}

func TestSensorDelayHonoursContext(t *testing.T) {
	r := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ReliableSensor{Delay: time.Minute}.Report(ctx, r, "x", mqtt.PositionMessage{})
	if len(r.topics) != 0 {
		t.Fatal("cancelled report was published")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Broker: "tcp://localhost:1883", Graph: "g.json", Schedule: "s.json", Unit: time.Second}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	bad := cfg
	bad.DropRate = 2
	if err := bad.Validate(); err == nil {
		t.Fatal("expected drop rate error")
	}
	bad = cfg
	bad.Unit = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected unit error")
	}
	bad = cfg
	bad.Schedule = ""
	if err := bad.Validate(); err == nil {
		t.Fatal("expected missing schedule error")
	}
}

func TestDialStationReportsBrokerErrors(t *testing.T) {
	called := false
	_, err := dialStation("tcp://127.0.0.1:1", "two-platforms", func(paho.Client) { called = true })
	if err == nil {
		t.Fatal("expected connect error")
	}
	if called {
		t.Fatal("connect handler ran without a connection")
	}
}
