// Package plans exposes the work plans of a station over HTTP:
//
//	GET /api/plans/current            plan in force (JSON, ?format=csv or ?format=html)
//	GET /api/plans/current/devices    device command timelines
//	GET /api/plans/history            stored plan records
package plans

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/railplan/core/history"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/infra/mqtt"
	"github.com/kilianp07/railplan/pkg/export"
)

// Source gives access to the plan in force and the schedule it serves.
type Source interface {
	Current() *plan.StationWorkPlan
	Schedule() *model.TrainSchedule
}

// NewCurrentHandler returns the plan in force, 404 while none is computed.
func NewCurrentHandler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wp := src.Current()
		if wp == nil {
			http.Error(w, "no plan computed yet", http.StatusNotFound)
			return
		}
		switch r.URL.Query().Get("format") {
		case "csv":
			w.Header().Set("Content-Type", "text/csv")
			if err := export.WriteCSV(w, wp); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		case "html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := export.WriteChartHTML(w, wp, src.Schedule()); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, wp, src.Schedule()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// NewDevicesHandler returns the per device commands of the plan in force.
func NewDevicesHandler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wp := src.Current()
		if wp == nil {
			http.Error(w, "no plan computed yet", http.StatusNotFound)
			return
		}
		out := make([]mqtt.DeviceCommand, 0)
		for _, a := range mqtt.DeviceCommands(wp) {
			out = append(out, a.Command)
		}
		writeJSON(w, out)
	})
}

// NewHistoryHandler returns stored plan records filtered by the start, end,
// station, mode and train_id query parameters.
func NewHistoryHandler(store history.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := r.URL.Query()
		q := history.Query{
			Station: v.Get("station"),
			Mode:    v.Get("mode"),
			TrainID: v.Get("train_id"),
		}
		for key, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
			s := v.Get(key)
			if s == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid "+key+": "+err.Error(), http.StatusBadRequest)
				return
			}
			*dst = t
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []history.PlanRecord{}
		}
		writeJSON(w, records)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
