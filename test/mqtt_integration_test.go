package test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/planner"
	"github.com/kilianp07/railplan/infra/mqtt"
	"github.com/kilianp07/railplan/pkg/interchange"
	"github.com/kilianp07/railplan/test/stations"
	"github.com/kilianp07/railplan/test/util"
)

func TestMQTTPlanAndPositionsRoundTrip(t *testing.T) {
	if !util.DockerAvailable() {
		t.Skip("docker not installed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	defer cleanup()

	// observer sees everything the planner side publishes
	received := make(chan paho.Message, 16)
	obs := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("observer"))
	tok := obs.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer obs.Disconnect(100)
	tok = obs.Subscribe("it/#", 1, func(_ paho.Client, m paho.Message) { received <- m })
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	cfg := mqtt.Config{Broker: broker, ClientID: "railplan-it", TopicPrefix: "it"}
	pc, err := mqtt.NewPahoClient(cfg)
	require.NoError(t, err)
	defer pc.Disconnect()

	g := stations.TwoPlatforms(graph.TrainPassenger)
	s := model.NewTrainSchedule(g)
	require.NoError(t, s.Add(
		model.Train{ID: "ic1", Length: 30, Speed: 10, Type: graph.TrainPassenger},
		model.SingleTrainSchedule{Arrival: 0, Departure: 100, Stop: 20, Entry: stations.In, Exit: stations.Out},
	))
	wp, err := planner.New(1, nil, nil).CalculateWorkPlan(ctx, s)
	require.NoError(t, err)
	require.NoError(t, pc.PublishPlan(wp, s))

	topics := map[string][]byte{}
	want := 1 + len(mqtt.DeviceCommands(wp))
	for len(topics) < want {
		select {
		case m := <-received:
			topics[m.Topic()] = m.Payload()
		case <-ctx.Done():
			t.Fatalf("received %d of %d messages", len(topics), want)
		}
	}
	raw, ok := topics[mqtt.PlanTopic("it", g.Name)]
	require.True(t, ok)
	var doc interchange.PlanDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, wp.ID, doc.ID)
	raw, ok = topics[mqtt.SwitchTopic("it", g.Name, stations.SwitchIn)]
	require.True(t, ok)
	var cmd mqtt.DeviceCommand
	require.NoError(t, json.Unmarshal(raw, &cmd))
	assert.Equal(t, wp.ID, cmd.PlanID)
	assert.NotEmpty(t, cmd.Units)

	positions := make(chan model.LiveState, 1)
	require.NoError(t, pc.SubscribePositions(g.Name, func(id string, st model.LiveState) {
		if id == "ic1" {
			positions <- st
		}
	}))
	payload, err := json.Marshal(mqtt.PositionMessage{From: 0, To: 1, ObservedAt: 5})
	require.NoError(t, err)
	tok = obs.Publish("it/"+g.Name+"/train/ic1/position", 1, false, payload)
	require.True(t, tok.WaitTimeout(5*time.Second))
	select {
	case st := <-positions:
		assert.Equal(t, model.LiveState{From: stations.In, To: stations.SwitchIn, ObservedAt: 5}, st)
	case <-ctx.Done():
		t.Fatal("position not delivered")
	}
}
