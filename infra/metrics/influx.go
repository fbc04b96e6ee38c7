package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/railplan/core/metrics"
	"github.com/kilianp07/railplan/infra/logger"
)

// InfluxSink writes planning events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.PlanSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordPlan writes one station_plan point per planning call.
func (s *InfluxSink) RecordPlan(ev coremetrics.PlanEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("station_plan").
		AddTag("station", ev.Station).
		AddTag("mode", ev.Mode).
		AddTag("status", ev.Status)
	if ev.PlanID != "" {
		p = p.AddTag("plan_id", ev.PlanID)
	}
	p = p.AddField("trains", ev.Trains).
		AddField("platforms", ev.Platforms).
		AddField("vars", ev.Vars).
		AddField("clauses", ev.Clauses).
		AddField("changes", ev.Changes).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAssignments writes the platform chosen for every train.
func (s *InfluxSink) RecordAssignments(evs []coremetrics.AssignmentEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ev := range evs {
		p := write.NewPointWithMeasurement("platform_assignment").
			AddTag("station", ev.Station).
			AddTag("train_id", ev.TrainID).
			AddTag("plan_id", ev.PlanID).
			AddTag("changed", strconv.FormatBool(ev.Changed)).
			AddField("edge", ev.EdgeID).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordPosition writes a live train observation.
func (s *InfluxSink) RecordPosition(ev coremetrics.PositionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("train_position").
		AddTag("station", ev.Station).
		AddTag("train_id", ev.TrainID).
		AddField("from", ev.From).
		AddField("to", ev.To).
		AddField("passed", ev.Passed).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}
