package mqtt

import (
	"fmt"
	"strings"

	"github.com/kilianp07/railplan/core/graph"
)

// PlanTopic carries the full plan document of a station.
func PlanTopic(prefix, station string) string {
	return fmt.Sprintf("%s/%s/plan", prefix, station)
}

// SwitchTopic carries the command timeline of one switch.
func SwitchTopic(prefix, station string, v graph.VertexID) string {
	return fmt.Sprintf("%s/%s/switch/%d", prefix, station, v)
}

// LightTopic carries the command timeline of one traffic light.
func LightTopic(prefix, station string, v graph.VertexID) string {
	return fmt.Sprintf("%s/%s/light/%d", prefix, station, v)
}

// PositionTopic is the wildcard subscription for train positions of a station.
func PositionTopic(prefix, station string) string {
	return fmt.Sprintf("%s/%s/train/+/position", prefix, station)
}

// TrainFromTopic extracts the train id from a position topic.
func TrainFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	n := len(parts)
	if n < 4 || parts[n-1] != "position" || parts[n-3] != "train" || parts[n-2] == "" {
		return "", false
	}
	return parts[n-2], true
}
