package interchange

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
)

// PlanEntryDoc assigns a train to the edge it dwells on. From names the
// vertex the train enters the edge from and defaults to the edge start.
type PlanEntryDoc struct {
	Train TrainDoc `json:"train" yaml:"train"`
	Edge  EdgeDoc  `json:"edge" yaml:"edge"`
	From  *int     `json:"from,omitempty" yaml:"from,omitempty"`
}

// SwitchUnitDoc is a timed switch command.
type SwitchUnitDoc struct {
	Vertex  int    `json:"vertex" yaml:"vertex"`
	Begin   int    `json:"begin" yaml:"begin"`
	End     int    `json:"end" yaml:"end"`
	Status  string `json:"status" yaml:"status"`
	TrainID string `json:"trainId,omitempty" yaml:"trainId,omitempty"`
}

// LightUnitDoc is a timed traffic light command.
type LightUnitDoc struct {
	Vertex  int    `json:"vertex" yaml:"vertex"`
	Begin   int    `json:"begin" yaml:"begin"`
	End     int    `json:"end" yaml:"end"`
	Status  string `json:"status" yaml:"status"`
	TrainID string `json:"trainId,omitempty" yaml:"trainId,omitempty"`
}

// PlanDoc is the full document form of a work plan.
type PlanDoc struct {
	ID          string          `json:"id" yaml:"id"`
	Station     string          `json:"station" yaml:"station"`
	Mode        string          `json:"mode" yaml:"mode"`
	CreatedAt   time.Time       `json:"createdAt" yaml:"createdAt"`
	Changes     int             `json:"changes" yaml:"changes"`
	Assignments []PlanEntryDoc  `json:"assignments" yaml:"assignments"`
	Switches    []SwitchUnitDoc `json:"switches,omitempty" yaml:"switches,omitempty"`
	Lights      []LightUnitDoc  `json:"lights,omitempty" yaml:"lights,omitempty"`
}

// EncodePlan converts wp to its document form. Trains are looked up in s,
// whose graph provides the platform edges.
func EncodePlan(wp *plan.StationWorkPlan, s *model.TrainSchedule) (PlanDoc, error) {
	doc := PlanDoc{
		ID:        wp.ID,
		Station:   wp.Station,
		Mode:      string(wp.Mode),
		CreatedAt: wp.CreatedAt,
		Changes:   wp.Changes,
	}
	g := s.Graph()
	for _, id := range wp.Trains() {
		a, _ := wp.Platform(id)
		entry, ok := s.Get(id)
		if !ok {
			return PlanDoc{}, fmt.Errorf("train %s of plan %s is not scheduled", id, wp.ID)
		}
		e, ok := g.Edge(a.Edge)
		if !ok {
			return PlanDoc{}, fmt.Errorf("train %s edge %d: %w", id, a.Edge, graph.ErrUnknownEdge)
		}
		from := int(a.From)
		doc.Assignments = append(doc.Assignments, PlanEntryDoc{
			Train: EncodeTrain(entry.Train),
			Edge:  EncodeEdge(e),
			From:  &from,
		})
	}
	for _, u := range wp.Switches {
		doc.Switches = append(doc.Switches, SwitchUnitDoc{
			Vertex: int(u.Vertex), Begin: u.Begin, End: u.End,
			Status: token(switchStatusPrefix, u.Status), TrainID: u.TrainID,
		})
	}
	for _, u := range wp.Lights {
		doc.Lights = append(doc.Lights, LightUnitDoc{
			Vertex: int(u.Vertex), Begin: u.Begin, End: u.End,
			Status: token(lightStatusPrefix, u.Status), TrainID: u.TrainID,
		})
	}
	return doc, nil
}

// DecodePlan rebuilds a work plan against schedule s. Entries without a
// train id are bound to the first unclaimed scheduled train with the same
// length, speed and type. Device units are decoded as given.
func DecodePlan(doc PlanDoc, s *model.TrainSchedule) (*plan.StationWorkPlan, error) {
	station := doc.Station
	if station == "" {
		station = s.Graph().Name
	}
	mode := plan.Mode(doc.Mode)
	if mode == "" {
		mode = plan.ModeManual
	}
	wp := plan.New(doc.ID, station, mode)
	if !doc.CreatedAt.IsZero() {
		wp.CreatedAt = doc.CreatedAt
	}
	wp.Changes = doc.Changes

	claimed := make(map[string]bool)
	for i, pe := range doc.Assignments {
		id, err := resolveTrain(pe.Train, s, claimed)
		if err != nil {
			return nil, fmt.Errorf("plan entry %d: %w", i, err)
		}
		claimed[id] = true
		from := pe.Edge.StartID
		if pe.From != nil {
			from = *pe.From
		}
		wp.Assign(id, plan.Assignment{Edge: graph.EdgeID(pe.Edge.ID), From: graph.VertexID(from)})
	}
	for _, u := range doc.Switches {
		st, err := parseSwitchStatus(u.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: switch unit %d: %w", ErrMalformed, u.Vertex, err)
		}
		wp.AddSwitch(plan.SwitchPlanUnit{Vertex: graph.VertexID(u.Vertex), Begin: u.Begin, End: u.End, Status: st, TrainID: u.TrainID})
	}
	for _, u := range doc.Lights {
		st, err := parseLightStatus(u.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: light unit %d: %w", ErrMalformed, u.Vertex, err)
		}
		wp.AddLight(plan.TrafficLightPlanUnit{Vertex: graph.VertexID(u.Vertex), Begin: u.Begin, End: u.End, Status: st, TrainID: u.TrainID})
	}
	return wp, nil
}

func resolveTrain(td TrainDoc, s *model.TrainSchedule, claimed map[string]bool) (string, error) {
	if td.ID != "" {
		if claimed[td.ID] {
			return "", fmt.Errorf("%w: train %s assigned twice", ErrMalformed, td.ID)
		}
		return td.ID, nil
	}
	tt, err := parseTrainType(td.TrainType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	for _, e := range s.Entries() {
		t := e.Train
		if claimed[t.ID] || t.Length != td.Length || t.Speed != td.Speed || t.Type != tt {
			continue
		}
		return t.ID, nil
	}
	return "", fmt.Errorf("%w: no scheduled train matches length=%d speed=%d type=%s", ErrMalformed, td.Length, td.Speed, tt)
}

// UnmarshalPlan accepts both the full PlanDoc object and a bare list of
// plan entries.
func UnmarshalPlan(data []byte, f Format) (PlanDoc, error) {
	var doc PlanDoc
	list, err := isList(data, f)
	if err != nil {
		return doc, err
	}
	if list {
		err = unmarshal(data, f, &doc.Assignments)
	} else {
		err = unmarshal(data, f, &doc)
	}
	return doc, err
}

func isList(data []byte, f Format) (bool, error) {
	switch f {
	case JSON:
		trimmed := bytes.TrimLeft(data, " \t\r\n")
		return len(trimmed) > 0 && trimmed[0] == '[', nil
	case YAML:
		var n yaml.Node
		if err := yaml.Unmarshal(data, &n); err != nil {
			return false, err
		}
		return len(n.Content) > 0 && n.Content[0].Kind == yaml.SequenceNode, nil
	}
	return false, fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}
