package events

import (
	"testing"

	"github.com/avfabric/medianode-core/internal/resource"
)

func TestMakeNumberState(t *testing.T) {
	state := MakeNumberState("src-1", 201, 10, TemperatureCelsius)

	if state.Object("identity").String("source_id") != "src-1" {
		t.Errorf("identity.source_id = %v", state.Object("identity")["source_id"])
	}
	if state.String("event_type") != TemperatureCelsius {
		t.Errorf("event_type = %q", state.String("event_type"))
	}
	if state.Object("timing").String("creation_timestamp") == "" {
		t.Error("timing.creation_timestamp not set")
	}

	value, ok := StatePayloadValue(state)
	if !ok {
		t.Fatal("StatePayloadValue reported malformed payload")
	}
	if value != 20.1 {
		t.Errorf("payload value = %v, want 20.1", value)
	}
}

func TestMakeNumberType(t *testing.T) {
	typ := MakeNumberType([2]int64{-200, 10}, [2]int64{1000, 10}, [2]int64{1, 10}, "C")

	if typ.String("type") != "number" {
		t.Errorf("type = %q, want number", typ.String("type"))
	}
	if typ.String("unit") != "C" {
		t.Errorf("unit = %q, want C", typ.String("unit"))
	}
	min := typ.Object("min")
	if min["value"] != int64(-200) || min["scale"] != int64(10) {
		t.Errorf("min = %v, want -200/10", min)
	}
}

func TestStatePayloadValueMalformed(t *testing.T) {
	tests := []struct {
		name  string
		state resource.Data
	}{
		{"missing payload", resource.Data{}},
		{"non-numeric value", resource.Data{"payload": map[string]any{"value": "x", "scale": 10}}},
		{"zero scale", resource.Data{"payload": map[string]any{"value": int64(10), "scale": int64(0)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := StatePayloadValue(tt.state); ok {
				t.Error("StatePayloadValue accepted a malformed payload")
			}
		})
	}
}

func TestStatePayloadValueJSONShapes(t *testing.T) {
	// JSON decoding turns all numbers into float64
	state := resource.Data{
		"payload": map[string]any{"value": float64(215), "scale": float64(10)},
	}
	value, ok := StatePayloadValue(state)
	if !ok || value != 21.5 {
		t.Errorf("value = %v ok = %v, want 21.5 true", value, ok)
	}
}

func TestMakeEventsSource(t *testing.T) {
	state := MakeNumberState("src-1", 201, 10, TemperatureCelsius)
	typ := MakeNumberType([2]int64{-200, 10}, [2]int64{1000, 10}, [2]int64{1, 10}, "C")

	r := MakeEventsSource("src-1", state, typ)

	if r.Type != resource.TypeEventsSource {
		t.Errorf("Type = %v", r.Type)
	}
	if r.Data.Object("state").String("event_type") != TemperatureCelsius {
		t.Error("state document not embedded")
	}
	if r.Data.Object("type").String("unit") != "C" {
		t.Error("type document not embedded")
	}
}
