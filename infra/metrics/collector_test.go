package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railplan/core/events"
	"github.com/kilianp07/railplan/core/factory"
	coremetrics "github.com/kilianp07/railplan/core/metrics"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/internal/eventbus"
)

func TestEventCollectorRecordsPositions(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)
	// the subscription is registered synchronously, so publishing right away is safe
	bus.Publish(events.PlanComputed{})
	bus.Publish(events.PositionUpdate{Station: "north", TrainID: "t1", State: model.LiveState{From: 1, To: 2}, Time: time.Now()})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(sink.positions.WithLabelValues("north")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEventCollectorIgnoresPlainSinks(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	StartEventCollector(context.Background(), bus, planOnlySink{})
	StartEventCollector(context.Background(), nil, coremetrics.NopSink{})
}

type planOnlySink struct{}

func (planOnlySink) RecordPlan(coremetrics.PlanEvent) error { return nil }

func TestRegisteredSinks(t *testing.T) {
	s, err := coremetrics.NewSink(nil)
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, s)

	s, err = coremetrics.NewSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, s)
}
