package mqtt

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
)

// PositionMessage is the payload reported by track side sensors. The train
// runs on the edge between From and To towards To.
type PositionMessage struct {
	From           int  `json:"from"`
	To             int  `json:"to"`
	ObservedAt     int  `json:"observed_at"`
	PassedPlatform bool `json:"passed_platform"`
}

// LiveState converts the message to the planner representation.
func (m PositionMessage) LiveState() model.LiveState {
	return model.LiveState{
		From:           graph.VertexID(m.From),
		To:             graph.VertexID(m.To),
		ObservedAt:     m.ObservedAt,
		PassedPlatform: m.PassedPlatform,
	}
}

// PositionHandler receives decoded train positions.
type PositionHandler func(trainID string, st model.LiveState)

// SubscribePositions subscribes to the position topics of station.
// Malformed messages are logged and dropped.
func (p *PahoClient) SubscribePositions(station string, h PositionHandler) error {
	topic := PositionTopic(p.prefix, station)
	if err := p.subscribe(topic, p.positionHandler(h)); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	p.logger.Infof("listening for positions on %s", topic)
	return nil
}

func (p *PahoClient) positionHandler(h PositionHandler) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		trainID, ok := TrainFromTopic(msg.Topic())
		if !ok {
			p.logger.Warnf("unexpected position topic %s", msg.Topic())
			return
		}
		var m PositionMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			p.logger.Errorf("failed to decode position of %s: %v", trainID, err)
			return
		}
		h(trainID, m.LiveState())
	}
}
