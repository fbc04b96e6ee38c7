package metrics

import (
	"context"

	"github.com/kilianp07/railplan/core/events"
	coremetrics "github.com/kilianp07/railplan/core/metrics"
	"github.com/kilianp07/railplan/infra/logger"
	"github.com/kilianp07/railplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records live position
// updates on sinks that track them. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.PlanSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.PositionRecorder)
	if !ok {
		return
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, ok := ev.(events.PositionUpdate)
				if !ok {
					continue
				}
				err := rec.RecordPosition(coremetrics.PositionEvent{
					Station: e.Station,
					TrainID: e.TrainID,
					From:    int(e.State.From),
					To:      int(e.State.To),
					Passed:  e.State.PassedPlatform,
					Time:    e.Time,
				})
				if err != nil {
					log.Errorf("metrics error: %v", err)
				}
			}
		}
	}()
}
