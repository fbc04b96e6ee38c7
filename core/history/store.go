package history

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/plan"
)

// ErrNoRecord is returned by Latest when a station has no stored plan.
var ErrNoRecord = errors.New("no plan recorded")

// PlanRecord captures one solved plan.
type PlanRecord struct {
	Timestamp   time.Time          `json:"timestamp"`
	PlanID      string             `json:"plan_id"`
	Station     string             `json:"station"`
	Mode        string             `json:"mode"`
	Changes     int                `json:"changes"`
	Assignments []AssignmentRecord `json:"assignments"`
	Switches    int                `json:"switch_units"`
	Lights      int                `json:"light_units"`
}

// AssignmentRecord is the platform of one train.
type AssignmentRecord struct {
	TrainID string `json:"train_id"`
	Edge    int    `json:"edge"`
	From    int    `json:"from"`
}

// NewRecord summarises wp.
func NewRecord(wp *plan.StationWorkPlan) PlanRecord {
	rec := PlanRecord{
		Timestamp: wp.CreatedAt,
		PlanID:    wp.ID,
		Station:   wp.Station,
		Mode:      string(wp.Mode),
		Changes:   wp.Changes,
		Switches:  len(wp.Switches),
		Lights:    len(wp.Lights),
	}
	for _, id := range wp.Trains() {
		a, _ := wp.Platform(id)
		rec.Assignments = append(rec.Assignments, AssignmentRecord{TrainID: id, Edge: int(a.Edge), From: int(a.From)})
	}
	return rec
}

// Plan rebuilds the assignments of the record. Device units are not stored.
func (r PlanRecord) Plan() *plan.StationWorkPlan {
	wp := plan.New(r.PlanID, r.Station, plan.Mode(r.Mode))
	wp.CreatedAt = r.Timestamp
	wp.Changes = r.Changes
	for _, a := range r.Assignments {
		wp.Assign(a.TrainID, plan.Assignment{Edge: graph.EdgeID(a.Edge), From: graph.VertexID(a.From)})
	}
	return wp
}

// HasTrain reports whether the record assigns id.
func (r PlanRecord) HasTrain(id string) bool {
	return slices.ContainsFunc(r.Assignments, func(a AssignmentRecord) bool { return a.TrainID == id })
}

// Query defines filters for retrieving records.
type Query struct {
	Start   time.Time
	End     time.Time
	Station string
	Mode    string
	TrainID string
}

// Match reports whether r passes every filter of q.
func (q Query) Match(r PlanRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Station != "" && r.Station != q.Station {
		return false
	}
	if q.Mode != "" && r.Mode != q.Mode {
		return false
	}
	return q.TrainID == "" || r.HasTrain(q.TrainID)
}

// Store persists PlanRecords and supports querying. Records come back in
// timestamp order.
type Store interface {
	Append(ctx context.Context, rec PlanRecord) error
	Query(ctx context.Context, q Query) ([]PlanRecord, error)
	Close() error
}

// Latest returns the most recent record of station.
func Latest(ctx context.Context, s Store, station string) (PlanRecord, error) {
	recs, err := s.Query(ctx, Query{Station: station})
	if err != nil {
		return PlanRecord{}, err
	}
	if len(recs) == 0 {
		return PlanRecord{}, ErrNoRecord
	}
	return recs[len(recs)-1], nil
}

func sortByTime(recs []PlanRecord) {
	slices.SortStableFunc(recs, func(a, b PlanRecord) int { return a.Timestamp.Compare(b.Timestamp) })
}
