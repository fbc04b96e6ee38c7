package interchange

import (
	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
)

// LiveStateDoc is the observed position of one train.
type LiveStateDoc struct {
	From           int  `json:"from" yaml:"from"`
	To             int  `json:"to" yaml:"to"`
	ObservedAt     int  `json:"observedAt" yaml:"observedAt"`
	PassedPlatform bool `json:"passedPlatform,omitempty" yaml:"passedPlatform,omitempty"`
}

// DecodeLive converts a train id keyed document to live states.
func DecodeLive(docs map[string]LiveStateDoc) map[string]model.LiveState {
	out := make(map[string]model.LiveState, len(docs))
	for id, d := range docs {
		out[id] = model.LiveState{
			From:           graph.VertexID(d.From),
			To:             graph.VertexID(d.To),
			ObservedAt:     d.ObservedAt,
			PassedPlatform: d.PassedPlatform,
		}
	}
	return out
}

// LoadLive reads the live positions document at path.
func LoadLive(path string) (map[string]model.LiveState, error) {
	var docs map[string]LiveStateDoc
	if err := readFile(path, &docs); err != nil {
		return nil, err
	}
	return DecodeLive(docs), nil
}
