package mqtt

import "errors"

// Domain errors for the mqtt package.
var (
	// ErrConnectionFailed is returned when the initial broker
	// connection cannot be established.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrNotConnected is returned when publishing without an active
	// broker connection.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrPublishFailed is returned when a publish does not complete.
	ErrPublishFailed = errors.New("mqtt: publish failed")
)
