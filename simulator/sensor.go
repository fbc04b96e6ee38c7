package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/railplan/infra/mqtt"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Sensor defines how a track sensor reports an observation.
type Sensor interface {
	Report(ctx context.Context, cli publisher, topic string, msg mqtt.PositionMessage)
}

// ReliableSensor reports every observation after an optional fixed delay.
type ReliableSensor struct {
	Delay time.Duration
}

// Report implements Sensor.
func (s ReliableSensor) Report(ctx context.Context, cli publisher, topic string, msg mqtt.PositionMessage) {
	if !wait(ctx, s.Delay) {
		return
	}
	publishPosition(cli, topic, msg)
}

// LossySensor drops observations with the configured probability and
// waits for the specified delay before sending the others.
type LossySensor struct {
	Delay    time.Duration
	DropRate float64
}

// Report implements Sensor.
func (s LossySensor) Report(ctx context.Context, cli publisher, topic string, msg mqtt.PositionMessage) {
	if s.DropRate > 0 && rng.Float64() < s.DropRate {
		log.Printf("dropped observation on %s", topic)
		return
	}
	if !wait(ctx, s.Delay) {
		return
	}
	publishPosition(cli, topic, msg)
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func publishPosition(cli publisher, topic string, msg mqtt.PositionMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal position: %v", err)
		return
	}
	token := cli.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("position publish timeout on %s", topic)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("publish position error on %s: %v", topic, err)
	}
}
