package connection

import "github.com/avfabric/medianode-core/internal/resource"

// Auto is the placeholder value a client may stage in any transport
// parameter field that the resolution policy is permitted to fill.
const Auto = "auto"

// Well-known field names within a connection resource's document.
const (
	FieldStaged          = "staged"
	FieldActive          = "active"
	FieldTransportParams = "transport_params"
	FieldTransportFile   = "transport_file"
	FieldMasterEnable    = "master_enable"
	FieldActivation      = "activation"
	FieldMode            = "mode"
	FieldActivationTime  = "activation_time"
)

// ActivateImmediate is the activation mode that drives a staged
// document straight through the activation engine on receipt.
const ActivateImmediate = "activate_immediate"

// Staged returns the staged sub-document of a connection resource.
func Staged(r *resource.Resource) resource.Data {
	return r.Data.Object(FieldStaged)
}

// Active returns the active sub-document of a connection resource.
func Active(r *resource.Resource) resource.Data {
	return r.Data.Object(FieldActive)
}

// TransportParams extracts the per-leg transport parameter documents
// from a staged or active sub-document. Each element is one transport
// leg (primary, secondary, ...).
func TransportParams(endpoint resource.Data) []resource.Data {
	raw := endpoint.Array(FieldTransportParams)
	legs := make([]resource.Data, 0, len(raw))
	for _, v := range raw {
		switch leg := v.(type) {
		case resource.Data:
			legs = append(legs, leg)
		case map[string]any:
			legs = append(legs, resource.Data(leg))
		}
	}
	return legs
}

// setTransportParams stores the per-leg documents back into a staged
// or active sub-document.
func setTransportParams(endpoint resource.Data, legs []resource.Data) {
	raw := make([]any, len(legs))
	for i, leg := range legs {
		raw[i] = map[string]any(leg)
	}
	endpoint[FieldTransportParams] = raw
}

// copyLegs deep-copies a per-leg parameter sequence.
func copyLegs(legs []resource.Data) []resource.Data {
	out := make([]resource.Data, len(legs))
	for i, leg := range legs {
		out[i] = resource.DeepCopyData(leg)
	}
	return out
}
