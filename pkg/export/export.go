// Package export writes work plans for operators: the full plan document as
// JSON, the device command timeline as CSV and the platform occupancy as an
// HTML chart.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/pkg/interchange"
)

// WriteJSON writes the plan document of wp to w.
func WriteJSON(w io.Writer, wp *plan.StationWorkPlan, s *model.TrainSchedule) error {
	doc, err := interchange.EncodePlan(wp, s)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes one row per switch and traffic light command. Open bounds
// of light timelines are left empty.
func WriteCSV(w io.Writer, wp *plan.StationWorkPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"device", "vertex", "begin", "end", "status", "train_id"}); err != nil {
		return err
	}
	for _, u := range wp.Switches {
		rec := []string{"switch", strconv.Itoa(int(u.Vertex)), bound(u.Begin), bound(u.End), u.Status.String(), u.TrainID}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	for _, u := range wp.Lights {
		rec := []string{"light", strconv.Itoa(int(u.Vertex)), bound(u.Begin), bound(u.End), u.Status.String(), u.TrainID}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func bound(t int) string {
	if t == plan.OpenBegin || t == plan.OpenEnd {
		return ""
	}
	return strconv.Itoa(t)
}
