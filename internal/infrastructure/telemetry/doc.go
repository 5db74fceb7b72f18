// Package telemetry provides the optional InfluxDB sink recording the
// values emitted by the Media Node's event sources, for dashboards and
// trend queries.
package telemetry
