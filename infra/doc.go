// Package infra holds the adapters that carry station plans out of the
// planner: MQTT transport for plans, device commands and train positions,
// and the Prometheus and InfluxDB plan sinks. They implement interfaces
// declared in the core packages and never the other way around.
package infra
