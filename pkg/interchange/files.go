package interchange

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
)

// LoadGraph reads a graph document. Without a name in the document the
// station is named after the file.
func LoadGraph(path string) (*graph.Graph, error) {
	var doc GraphDoc
	if err := readFile(path, &doc); err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	return DecodeGraph(doc, strings.TrimSuffix(base, filepath.Ext(base)))
}

// SaveGraph writes g in the format picked by the file extension.
func SaveGraph(path string, g *graph.Graph) error {
	return writeFile(path, EncodeGraph(g))
}

// LoadSchedule reads a schedule document bound to g.
func LoadSchedule(path string, g *graph.Graph) (*model.TrainSchedule, error) {
	var docs []ScheduleEntryDoc
	if err := readFile(path, &docs); err != nil {
		return nil, err
	}
	return DecodeSchedule(docs, g)
}

// SaveSchedule writes s in the format picked by the file extension.
func SaveSchedule(path string, s *model.TrainSchedule) error {
	return writeFile(path, EncodeSchedule(s))
}

// LoadPlan reads a plan document, either a full plan or a bare assignment
// list, against schedule s.
func LoadPlan(path string, s *model.TrainSchedule) (*plan.StationWorkPlan, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := UnmarshalPlan(data, f)
	if err != nil {
		return nil, err
	}
	return DecodePlan(doc, s)
}

// SavePlan writes wp with its device units.
func SavePlan(path string, wp *plan.StationWorkPlan, s *model.TrainSchedule) error {
	doc, err := EncodePlan(wp, s)
	if err != nil {
		return err
	}
	return writeFile(path, doc)
}

// Marshal encodes any document type.
func Marshal(v any, f Format) ([]byte, error) { return marshal(v, f) }

// Unmarshal decodes any document type, rejecting unknown fields.
func Unmarshal(data []byte, f Format, v any) error { return unmarshal(data, f, v) }
