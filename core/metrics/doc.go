// Package metrics defines the sinks receiving planning events. Sinks such as
// the Prometheus and InfluxDB implementations in infra/metrics are selected
// from configuration through the factory helpers, which wrap several sinks
// in a MultiSink.
package metrics
