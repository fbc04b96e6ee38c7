// Package events defines the planning related events emitted on the event bus.
//
// Available event types:
//   - PositionUpdate: live position of a train inside a station
//   - PlanComputed: a new work plan was produced
//   - ReplanFailed: a planning call returned an error
package events
