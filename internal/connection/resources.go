package connection

import "github.com/avfabric/medianode-core/internal/resource"

// endpointDefaults builds an initial staged or active sub-document
// with the given per-leg transport parameters.
func endpointDefaults(legs []resource.Data) resource.Data {
	endpoint := resource.Data{
		FieldMasterEnable: false,
		FieldActivation: map[string]any{
			FieldMode:           nil,
			FieldActivationTime: nil,
		},
		FieldTransportFile: map[string]any{
			"data": nil,
			"type": nil,
		},
	}
	setTransportParams(endpoint, legs)
	return endpoint
}

// makeConnectionResource assembles a connection resource whose staged
// and active documents both start from the same per-leg defaults.
func makeConnectionResource(id string, t resource.Type, legs []resource.Data) *resource.Resource {
	return resource.New(id, t, resource.Data{
		FieldStaged: map[string]any(endpointDefaults(copyLegs(legs))),
		FieldActive: map[string]any(endpointDefaults(copyLegs(legs))),
	})
}

// MakeRTPSender creates a connection sender for an RTP stream. When
// twoLegs is set the sender carries primary and secondary legs
// (ST 2022-7 style redundancy); otherwise a single leg.
func MakeRTPSender(id string, twoLegs bool) *resource.Resource {
	leg := resource.Data{
		"source_ip":        Auto,
		"destination_ip":   Auto,
		"source_port":      Auto,
		"destination_port": Auto,
		"rtp_enabled":      Auto,
	}
	legs := []resource.Data{leg}
	if twoLegs {
		legs = append(legs, resource.DeepCopyData(leg))
	}
	return makeConnectionResource(id, resource.TypeConnectionSender, legs)
}

// MakeRTPReceiver creates a connection receiver for an RTP stream.
func MakeRTPReceiver(id string, twoLegs bool) *resource.Resource {
	leg := resource.Data{
		"interface_ip":     Auto,
		"destination_port": Auto,
		"multicast_ip":     nil,
		"rtp_enabled":      Auto,
	}
	legs := []resource.Data{leg}
	if twoLegs {
		legs = append(legs, resource.DeepCopyData(leg))
	}
	return makeConnectionResource(id, resource.TypeConnectionReceiver, legs)
}

// MakeEventsWebSocketSender creates a connection sender for a
// WebSocket-carried event stream. The connection URI is resolved at
// activation time from the node's endpoint settings.
func MakeEventsWebSocketSender(id string) *resource.Resource {
	legs := []resource.Data{{
		"connection_uri":           Auto,
		"connection_authorization": Auto,
	}}
	return makeConnectionResource(id, resource.TypeConnectionSender, legs)
}

// MakeEventsWebSocketReceiver creates a connection receiver for a
// WebSocket-carried event stream. The connection URI is staged by the
// client when it is pointed at a sender.
func MakeEventsWebSocketReceiver(id string) *resource.Resource {
	legs := []resource.Data{{
		"connection_uri":           nil,
		"connection_authorization": Auto,
	}}
	return makeConnectionResource(id, resource.TypeConnectionReceiver, legs)
}
