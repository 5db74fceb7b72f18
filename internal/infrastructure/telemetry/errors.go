package telemetry

import "errors"

// Domain errors for the telemetry package.
var (
	// ErrDisabled is returned by Connect when telemetry is not enabled
	// in configuration.
	ErrDisabled = errors.New("telemetry: disabled in configuration")

	// ErrConnectionFailed is returned when the InfluxDB server cannot
	// be reached or is unhealthy.
	ErrConnectionFailed = errors.New("telemetry: connection failed")
)
