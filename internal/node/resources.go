package node

import (
	"github.com/avfabric/medianode-core/internal/resource"
)

// Transport URNs for senders and receivers.
const (
	TransportRTPMulticast = "urn:x-nmos:transport:rtp.mcast"
	TransportWebSocket    = "urn:x-nmos:transport:websocket"
)

// Logical paths for deterministic id derivation. A node started twice
// with the same seed derives the same id for each path.
const (
	pathNode                = "/x-nmos/node/self"
	pathDevice              = "/x-nmos/node/device/0"
	pathSource              = "/x-nmos/node/source/0"
	pathFlow                = "/x-nmos/node/flow/0"
	pathSender              = "/x-nmos/node/sender/0"
	pathReceiver            = "/x-nmos/node/receiver/0"
	pathTemperatureSource   = "/x-nmos/node/source/1"
	pathTemperatureFlow     = "/x-nmos/node/flow/1"
	pathTemperatureSender   = "/x-nmos/node/sender/1"
	pathTemperatureReceiver = "/x-nmos/node/receiver/1"
)

// IDs holds the derived identities of every resource this node owns.
type IDs struct {
	Node                string
	Device              string
	Source              string
	Flow                string
	Sender              string
	Receiver            string
	TemperatureSource   string
	TemperatureFlow     string
	TemperatureSender   string
	TemperatureReceiver string
}

// DeriveIDs derives the node's resource identities from a seed.
func DeriveIDs(seed string) IDs {
	return IDs{
		Node:                resource.MakeRepeatableID(seed, pathNode),
		Device:              resource.MakeRepeatableID(seed, pathDevice),
		Source:              resource.MakeRepeatableID(seed, pathSource),
		Flow:                resource.MakeRepeatableID(seed, pathFlow),
		Sender:              resource.MakeRepeatableID(seed, pathSender),
		Receiver:            resource.MakeRepeatableID(seed, pathReceiver),
		TemperatureSource:   resource.MakeRepeatableID(seed, pathTemperatureSource),
		TemperatureFlow:     resource.MakeRepeatableID(seed, pathTemperatureFlow),
		TemperatureSender:   resource.MakeRepeatableID(seed, pathTemperatureSender),
		TemperatureReceiver: resource.MakeRepeatableID(seed, pathTemperatureReceiver),
	}
}

// groupHint builds the "natural grouping" tag controllers use to pair
// related senders and receivers.
func groupHint(role string) []any {
	return []any{"example:" + role}
}

// MakeNode creates the self resource, with one example network
// interface.
func MakeNode(id, label string) *resource.Resource {
	return resource.New(id, resource.TypeNode, resource.Data{
		"label":       label,
		"description": label,
		"interfaces": []any{
			map[string]any{
				"chassis_id": nil,
				"port_id":    "ff-ff-ff-ff-ff-ff",
				"name":       "example",
			},
		},
	})
}

// MakeDevice creates the device resource listing its senders and
// receivers.
func MakeDevice(id, nodeID string, senders, receivers []string, label string) *resource.Resource {
	return resource.New(id, resource.TypeDevice, resource.Data{
		"label":     label,
		"node_id":   nodeID,
		"senders":   toAny(senders),
		"receivers": toAny(receivers),
	})
}

// MakeVideoSource creates a video source with the given grain rate.
func MakeVideoSource(id, deviceID string, grainRate [2]int, label string) *resource.Resource {
	return resource.New(id, resource.TypeSource, resource.Data{
		"label":     label,
		"device_id": deviceID,
		"format":    "urn:x-nmos:format:video",
		"grain_rate": map[string]any{
			"numerator":   grainRate[0],
			"denominator": grainRate[1],
		},
	})
}

// MakeRawVideoFlow creates a raw video flow linked to its source.
func MakeRawVideoFlow(id, sourceID, deviceID string) *resource.Resource {
	return resource.New(id, resource.TypeFlow, resource.Data{
		"source_id":    sourceID,
		"device_id":    deviceID,
		"format":       "urn:x-nmos:format:video",
		"media_type":   "video/raw",
		"frame_width":  1920,
		"frame_height": 1080,
	})
}

// MakeDataSource creates an event data source (aperiodic, so no grain
// rate) carrying the given event type.
func MakeDataSource(id, deviceID, eventType, label string) *resource.Resource {
	return resource.New(id, resource.TypeSource, resource.Data{
		"label":      label,
		"device_id":  deviceID,
		"format":     "urn:x-nmos:format:data",
		"event_type": eventType,
	})
}

// MakeDataFlow creates a data flow for event state documents.
func MakeDataFlow(id, sourceID, deviceID, mediaType string) *resource.Resource {
	return resource.New(id, resource.TypeFlow, resource.Data{
		"source_id":  sourceID,
		"device_id":  deviceID,
		"format":     "urn:x-nmos:format:data",
		"media_type": mediaType,
	})
}

// MakeSender creates a sender bound to the given network interfaces,
// tagged with a grouping hint.
func MakeSender(id, flowID, deviceID, transport string, interfaces []string, label, group string) *resource.Resource {
	return resource.New(id, resource.TypeSender, resource.Data{
		"label":              label,
		"flow_id":            flowID,
		"device_id":          deviceID,
		"transport":          transport,
		"interface_bindings": toAny(interfaces),
		"tags": map[string]any{
			"urn:x-nmos:tag:grouphint/v1.0": groupHint(group),
		},
	})
}

// MakeReceiver creates a receiver bound to the given network
// interfaces, tagged with a grouping hint.
func MakeReceiver(id, deviceID, transport, format string, interfaces []string, label, group string) *resource.Resource {
	return resource.New(id, resource.TypeReceiver, resource.Data{
		"label":              label,
		"device_id":          deviceID,
		"transport":          transport,
		"format":             format,
		"interface_bindings": toAny(interfaces),
		"tags": map[string]any{
			"urn:x-nmos:tag:grouphint/v1.0": groupHint(group),
		},
	})
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
