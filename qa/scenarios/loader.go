package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/test/stations"
)

// TrainDef is a scheduled train of a scenario.
type TrainDef struct {
	ID        string `yaml:"id"`
	Length    int    `yaml:"length"`
	Speed     int    `yaml:"speed"`
	Type      string `yaml:"type"`
	Arrival   int    `yaml:"arrival"`
	Departure int    `yaml:"departure"`
	Stop      int    `yaml:"stop"`
}

// PositionDef is a live observation fed to a live step.
type PositionDef struct {
	From           int  `yaml:"from"`
	To             int  `yaml:"to"`
	ObservedAt     int  `yaml:"observed_at"`
	PassedPlatform bool `yaml:"passed_platform"`
}

func (p PositionDef) ToModel() model.LiveState {
	return model.LiveState{
		From:           graph.VertexID(p.From),
		To:             graph.VertexID(p.To),
		ObservedAt:     p.ObservedAt,
		PassedPlatform: p.PassedPlatform,
	}
}

// Expected holds the checks of one step. Unset fields are not checked.
type Expected struct {
	Feasible  bool           `yaml:"feasible"`
	Changes   *int           `yaml:"changes,omitempty"`
	Platforms map[string]int `yaml:"platforms,omitempty"`
	Distinct  bool           `yaml:"distinct,omitempty"`
}

// Step mutates the station, then runs one action against the plan in force.
type Step struct {
	Action         string                 `yaml:"action"`
	BlockEdges     []int                  `yaml:"block_edges,omitempty"`
	UnblockEdges   []int                  `yaml:"unblock_edges,omitempty"`
	BlockVertices  []int                  `yaml:"block_vertices,omitempty"`
	FreezeSwitches []int                  `yaml:"freeze_switches,omitempty"`
	Positions      map[string]PositionDef `yaml:"positions,omitempty"`
	Expected       Expected               `yaml:"expected"`
}

type Scenario struct {
	Name         string     `yaml:"name"`
	Description  string     `yaml:"description,omitempty"`
	Station      string     `yaml:"station"`
	PlatformType string     `yaml:"platform_type"`
	Margin       int        `yaml:"margin"`
	Trains       []TrainDef `yaml:"trains"`
	Steps        []Step     `yaml:"steps"`
	Published    int        `yaml:"published"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Schedule builds the scenario station and binds the trains to it, entering
// at the station input and leaving at its output.
func (sc *Scenario) Schedule() (*model.TrainSchedule, error) {
	pt, err := graph.ParseTrainType(sc.PlatformType)
	if err != nil {
		return nil, err
	}
	var (
		g         *graph.Graph
		entry, ex graph.VertexID
	)
	switch sc.Station {
	case "two_platforms":
		g, entry, ex = stations.TwoPlatforms(pt), stations.In, stations.Out
	case "single_platform":
		g, entry, ex = stations.SinglePlatform(pt), stations.LineIn, stations.LineOut
	default:
		return nil, fmt.Errorf("unknown station %q", sc.Station)
	}
	s := model.NewTrainSchedule(g)
	for _, td := range sc.Trains {
		tt, err := graph.ParseTrainType(td.Type)
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", td.ID, err)
		}
		tr := model.Train{ID: td.ID, Length: td.Length, Speed: td.Speed, Type: tt}
		st := model.SingleTrainSchedule{Arrival: td.Arrival, Departure: td.Departure, Stop: td.Stop, Entry: entry, Exit: ex}
		if err := s.Add(tr, st); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (st Step) apply(g *graph.Graph) error {
	for _, id := range st.BlockEdges {
		if err := g.BlockEdge(graph.EdgeID(id)); err != nil {
			return err
		}
	}
	for _, id := range st.UnblockEdges {
		if err := g.UnblockEdge(graph.EdgeID(id)); err != nil {
			return err
		}
	}
	for _, id := range st.BlockVertices {
		if err := g.BlockVertex(graph.VertexID(id)); err != nil {
			return err
		}
	}
	for _, id := range st.FreezeSwitches {
		if err := g.FreezeSwitch(graph.VertexID(id)); err != nil {
			return err
		}
	}
	return nil
}
