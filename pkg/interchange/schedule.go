package interchange

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
)

// newTrainID names trains whose document omits an id.
var newTrainID = uuid.NewString

// TrainDoc describes a train.
type TrainDoc struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Length    int    `json:"length" yaml:"length"`
	Speed     int    `json:"speed" yaml:"speed"`
	TrainType string `json:"trainType" yaml:"trainType"`
}

// ScheduleEntryDoc is the timetable of one train.
type ScheduleEntryDoc struct {
	Train         TrainDoc `json:"train" yaml:"train"`
	TimeArrival   int      `json:"timeArrival" yaml:"timeArrival"`
	TimeDeparture int      `json:"timeDeparture" yaml:"timeDeparture"`
	TimeStop      int      `json:"timeStop" yaml:"timeStop"`
	VertexIn      int      `json:"vertexIn" yaml:"vertexIn"`
	VertexOut     int      `json:"vertexOut" yaml:"vertexOut"`
}

// EncodeTrain converts a train to its document form.
func EncodeTrain(t model.Train) TrainDoc {
	return TrainDoc{ID: t.ID, Length: t.Length, Speed: t.Speed, TrainType: token(trainTypePrefix, t.Type)}
}

// DecodeTrain converts a document to a train, generating an id when absent.
func DecodeTrain(td TrainDoc) (model.Train, error) {
	tt, err := parseTrainType(td.TrainType)
	if err != nil {
		return model.Train{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	id := td.ID
	if id == "" {
		id = newTrainID()
	}
	return model.Train{ID: id, Length: td.Length, Speed: td.Speed, Type: tt}, nil
}

// EncodeSchedule lists the schedule entries in insertion order.
func EncodeSchedule(s *model.TrainSchedule) []ScheduleEntryDoc {
	out := make([]ScheduleEntryDoc, 0, s.Len())
	for _, e := range s.Entries() {
		out = append(out, ScheduleEntryDoc{
			Train:         EncodeTrain(e.Train),
			TimeArrival:   e.Schedule.Arrival,
			TimeDeparture: e.Schedule.Departure,
			TimeStop:      e.Schedule.Stop,
			VertexIn:      int(e.Schedule.Entry),
			VertexOut:     int(e.Schedule.Exit),
		})
	}
	return out
}

// DecodeSchedule builds a schedule bound to g. Every entry goes through
// TrainSchedule.Add so invalid or colliding entries are rejected.
func DecodeSchedule(docs []ScheduleEntryDoc, g *graph.Graph) (*model.TrainSchedule, error) {
	s := model.NewTrainSchedule(g)
	for i, d := range docs {
		t, err := DecodeTrain(d.Train)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d: %w", i, err)
		}
		sch := model.SingleTrainSchedule{
			Arrival:   d.TimeArrival,
			Departure: d.TimeDeparture,
			Stop:      d.TimeStop,
			Entry:     graph.VertexID(d.VertexIn),
			Exit:      graph.VertexID(d.VertexOut),
		}
		if err := s.Add(t, sch); err != nil {
			return nil, fmt.Errorf("schedule entry %d: %w", i, err)
		}
	}
	return s, nil
}
