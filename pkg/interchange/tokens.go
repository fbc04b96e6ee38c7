package interchange

import (
	"fmt"
	"strings"

	"github.com/kilianp07/railplan/core/graph"
)

const (
	vertexTypePrefix    = "VertexType"
	trainTypePrefix     = "TrainType"
	switchStatusPrefix  = "SwitchStatus"
	workConditionPrefix = "SwitchWorkCondition"
	lightStatusPrefix   = "TrafficLightStatus"
)

func token(prefix string, member fmt.Stringer) string {
	return prefix + "_" + member.String()
}

// member strips the optional type prefix of a token.
func member(prefix, tok string) string {
	return strings.TrimPrefix(strings.TrimSpace(tok), prefix+"_")
}

func parseVertexKind(tok string) (graph.VertexKind, error) {
	return graph.ParseVertexKind(member(vertexTypePrefix, tok))
}

func parseTrainType(tok string) (graph.TrainType, error) {
	if tok == "" {
		return graph.TrainNone, nil
	}
	return graph.ParseTrainType(member(trainTypePrefix, tok))
}

func parseSwitchStatus(tok string) (graph.SwitchStatus, error) {
	switch member(switchStatusPrefix, tok) {
	case "", graph.SwitchBranch1.String():
		return graph.SwitchBranch1, nil
	case graph.SwitchBranch2.String():
		return graph.SwitchBranch2, nil
	}
	return 0, fmt.Errorf("unknown switch status %q", tok)
}

func parseWorkCondition(tok string) (graph.WorkCondition, error) {
	switch member(workConditionPrefix, tok) {
	case "", graph.SwitchWorking.String():
		return graph.SwitchWorking, nil
	case graph.SwitchFrozen.String():
		return graph.SwitchFrozen, nil
	}
	return 0, fmt.Errorf("unknown switch work condition %q", tok)
}

func parseLightStatus(tok string) (graph.LightStatus, error) {
	switch member(lightStatusPrefix, tok) {
	case "", graph.LightStop.String():
		return graph.LightStop, nil
	case graph.LightPassing.String():
		return graph.LightPassing, nil
	}
	return 0, fmt.Errorf("unknown traffic light status %q", tok)
}
