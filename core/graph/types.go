package graph

import "fmt"

// VertexID identifies a vertex within one graph.
type VertexID int

// EdgeID identifies an edge within one graph.
type EdgeID int

// NoEdge marks the empty side of a connection pair.
const NoEdge EdgeID = -1

// NoVertex marks an undefined vertex in a directed position.
const NoVertex VertexID = -1

// VertexKind selects the role of a vertex and the payload it carries.
type VertexKind int

const (
	KindTraffic VertexKind = iota
	KindSwitch
	KindConnection
	KindInput
	KindOutput
	KindDeadEnd
)

var vertexKindNames = [...]string{"TRAFFIC", "SWITCH", "CONNECTION", "INPUT", "OUTPUT", "DEADEND"}

func (k VertexKind) String() string {
	if k < 0 || int(k) >= len(vertexKindNames) {
		return fmt.Sprintf("VertexKind(%d)", int(k))
	}
	return vertexKindNames[k]
}

// ParseVertexKind converts a member name such as "INPUT" into a VertexKind.
func ParseVertexKind(s string) (VertexKind, error) {
	for i, n := range vertexKindNames {
		if n == s {
			return VertexKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown vertex kind %q", s)
}

// TrainType is both the category of a train and the capacity tag of an
// edge. An edge tagged TrainNone accepts any train and is never a platform.
type TrainType int

const (
	TrainPassenger TrainType = iota
	TrainCargo
	TrainNone
)

var trainTypeNames = [...]string{"PASSENGER", "CARGO", "NONE"}

func (t TrainType) String() string {
	if t < 0 || int(t) >= len(trainTypeNames) {
		return fmt.Sprintf("TrainType(%d)", int(t))
	}
	return trainTypeNames[t]
}

// ParseTrainType converts a member name such as "CARGO" into a TrainType.
func ParseTrainType(s string) (TrainType, error) {
	for i, n := range trainTypeNames {
		if n == s {
			return TrainType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown train type %q", s)
}

// Accepts reports whether an edge with capacity tag t can hold a train of
// type train.
func (t TrainType) Accepts(train TrainType) bool {
	return t == TrainNone || train == TrainNone || t == train
}

// SwitchStatus selects which connection pair of a switch is active.
type SwitchStatus int

const (
	SwitchBranch1 SwitchStatus = iota
	SwitchBranch2
)

func (s SwitchStatus) String() string {
	if s == SwitchBranch2 {
		return "PASSINGCON2"
	}
	return "PASSINGCON1"
}

// Index returns the connection pair index selected by the status.
func (s SwitchStatus) Index() int { return int(s) }

// WorkCondition tells whether a switch may change its status.
type WorkCondition int

const (
	SwitchWorking WorkCondition = iota
	SwitchFrozen
)

func (c WorkCondition) String() string {
	if c == SwitchFrozen {
		return "FREEZED"
	}
	return "WORKING"
}

// LightStatus is the signal shown by a traffic light.
type LightStatus int

const (
	LightStop LightStatus = iota
	LightPassing
)

func (s LightStatus) String() string {
	if s == LightPassing {
		return "PASSING"
	}
	return "STOP"
}
