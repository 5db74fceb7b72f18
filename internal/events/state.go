package events

import (
	"time"

	"github.com/avfabric/medianode-core/internal/resource"
)

// TemperatureCelsius is the event type identifier for temperature
// measurements in degrees Celsius.
const TemperatureCelsius = "number/temperature/C"

// TemperatureWildcard matches temperature measurements in any unit.
const TemperatureWildcard = "number/temperature/*"

// rational renders a scaled number the way event payloads carry them:
// the measured value is value/scale.
func rational(value, scale int64) map[string]any {
	return map[string]any{"value": value, "scale": scale}
}

// MakeNumberType builds the type metadata document for a scaled-number
// measurement: inclusive range, step resolution and unit.
func MakeNumberType(minValue, maxValue, step [2]int64, unit string) resource.Data {
	return resource.Data{
		"type": "number",
		"min":  rational(minValue[0], minValue[1]),
		"max":  rational(maxValue[0], maxValue[1]),
		"step": rational(step[0], step[1]),
		"unit": unit,
	}
}

// MakeNumberState builds a state document holding the current
// scaled-number value of an event source.
func MakeNumberState(sourceID string, value, scale int64, eventType string) resource.Data {
	return resource.Data{
		"identity": map[string]any{
			"source_id": sourceID,
		},
		"event_type": eventType,
		"timing": map[string]any{
			"creation_timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		},
		"payload": rational(value, scale),
	}
}

// MakeEventsSource assembles an events-source resource from its
// current state and type metadata.
func MakeEventsSource(id string, state, typ resource.Data) *resource.Resource {
	return resource.New(id, resource.TypeEventsSource, resource.Data{
		"state": map[string]any(state),
		"type":  map[string]any(typ),
	})
}

// StatePayloadValue extracts the scaled value from a state document,
// returning the measured value as a float. The second return is false
// if the payload is missing or malformed.
func StatePayloadValue(state resource.Data) (float64, bool) {
	payload := state.Object("payload")
	if payload == nil {
		return 0, false
	}
	value, okV := numeric(payload["value"])
	scale, okS := numeric(payload["scale"])
	if !okV || !okS || scale == 0 {
		return 0, false
	}
	return value / scale, true
}

// numeric tolerates the int64 shape producers use and the float64
// shape JSON decoding produces.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
