package plans

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/history"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/infra/mqtt"
	"github.com/kilianp07/railplan/pkg/interchange"
	"github.com/kilianp07/railplan/test/stations"
)

type staticSource struct {
	wp *plan.StationWorkPlan
	s  *model.TrainSchedule
}

func (src staticSource) Current() *plan.StationWorkPlan { return src.wp }
func (src staticSource) Schedule() *model.TrainSchedule { return src.s }

func newSource(t *testing.T) staticSource {
	t.Helper()
	s := model.NewTrainSchedule(stations.TwoPlatforms(graph.TrainPassenger))
	err := s.Add(model.Train{ID: "ic1", Length: 30, Speed: 10, Type: graph.TrainPassenger},
		model.SingleTrainSchedule{Arrival: 0, Departure: 100, Stop: 20, Entry: stations.In, Exit: stations.Out})
	if err != nil {
		t.Fatal(err)
	}
	wp := plan.New("p1", "two-platforms", plan.ModeCold)
	wp.Assign("ic1", plan.Assignment{Edge: stations.EdgeA, From: stations.SwitchIn})
	wp.AddSwitch(plan.SwitchPlanUnit{Vertex: stations.SwitchIn, Begin: 0, End: 3, Status: graph.SwitchBranch1, TrainID: "ic1"})
	return staticSource{wp: wp, s: s}
}

func newStore(t *testing.T) history.Store {
	t.Helper()
	store, err := history.NewJSONLStore(filepath.Join(t.TempDir(), "plans.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func get(h http.Handler, target, token string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	h.ServeHTTP(rr, req)
	return rr
}

func TestCurrentHandler(t *testing.T) {
	src := newSource(t)
	mux := NewMux(src, newStore(t), "")

	rr := get(mux, "/api/plans/current", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var doc interchange.PlanDoc
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ID != "p1" || len(doc.Assignments) != 1 || doc.Assignments[0].Edge.ID != int(stations.EdgeA) {
		t.Fatalf("unexpected plan %#v", doc)
	}

	rr = get(mux, "/api/plans/current?format=csv", "")
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Body.String(), "device,vertex,begin,end,status,train_id\n") {
		t.Fatalf("unexpected csv %d %q", rr.Code, rr.Body.String())
	}

	rr = get(mux, "/api/plans/current?format=html", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Platform occupancy") {
		t.Fatalf("unexpected chart %d", rr.Code)
	}

	rr = get(mux, "/api/plans/current/devices", "")
	var cmds []mqtt.DeviceCommand
	if err := json.Unmarshal(rr.Body.Bytes(), &cmds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cmds) != 1 || cmds[0].Vertex != int(stations.SwitchIn) || cmds[0].PlanID != "p1" {
		t.Fatalf("unexpected commands %#v", cmds)
	}
}

func TestCurrentHandlerWithoutPlan(t *testing.T) {
	mux := NewMux(staticSource{}, newStore(t), "")
	if rr := get(mux, "/api/plans/current", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr := get(mux, "/api/plans/current/devices", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHistoryHandler(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	old := plan.New("old", "north", plan.ModeCold)
	old.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := plan.New("recent", "north", plan.ModeStable)
	recent.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	recent.Assign("ic1", plan.Assignment{Edge: 1, From: 1})
	for _, wp := range []*plan.StationWorkPlan{old, recent} {
		if err := store.Append(ctx, history.NewRecord(wp)); err != nil {
			t.Fatal(err)
		}
	}
	mux := NewMux(staticSource{}, store, "")

	rr := get(mux, "/api/plans/history?station=north&start=2024-03-01T00:00:00Z", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []history.PlanRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].PlanID != "recent" {
		t.Fatalf("unexpected records %#v", out)
	}

	rr = get(mux, "/api/plans/history?train_id=nobody", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %q", rr.Body.String())
	}

	if rr := get(mux, "/api/plans/history?end=yesterday", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestTokenRequired(t *testing.T) {
	mux := NewMux(newSource(t), newStore(t), "secret")
	if rr := get(mux, "/api/plans/current", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := get(mux, "/api/plans/current", "wrong"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := get(mux, "/api/plans/current", "secret"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
