package connection

import (
	"fmt"

	"github.com/avfabric/medianode-core/internal/resource"
)

// AutoResolver replaces "auto" placeholder values in the per-leg
// transport parameters of a connection resource with concrete values.
//
// Resolvers are pure with respect to the model: they may read the
// resource documents but mutate only the legs they are handed. A
// resolver must be idempotent (resolving an already-resolved sequence
// is a no-op) and total for the legs it is responsible for: any
// "auto" it leaves behind fails the activation.
//
// Distinct resources of the same protocol role may have entirely
// different resolution rules, so the engine never hardcodes policy; it
// only guarantees the resolver runs before activation commits.
type AutoResolver func(res, connRes *resource.Resource, params []resource.Data)

// ResolveAuto replaces the named field of a leg with the value
// produced by fn, if and only if the field currently holds the "auto"
// placeholder. Already-resolved fields are left untouched, which makes
// resolvers built from ResolveAuto idempotent by construction.
func ResolveAuto(leg resource.Data, field string, fn func() any) {
	if leg == nil {
		return
	}
	if s, ok := leg[field].(string); ok && s == Auto {
		leg[field] = fn()
	}
}

// ResolveRTPAuto applies the protocol-level defaults shared by all RTP
// senders and receivers: enabling the stream and the standard RTP
// port. Fields a leg does not carry are skipped, so the same rules
// serve both roles. Vendor resolvers layer address-specific rules on
// top.
func ResolveRTPAuto(params []resource.Data) {
	for _, leg := range params {
		ResolveAuto(leg, "rtp_enabled", func() any { return true })
		ResolveAuto(leg, "source_port", func() any { return 5004 })
		ResolveAuto(leg, "destination_port", func() any { return 5004 })
	}
}

// CheckResolved verifies that no "auto" placeholder survives in the
// given per-leg parameters. A surviving placeholder is a contract
// violation by the resolution policy, reported as ErrUnresolvedAuto.
func CheckResolved(params []resource.Data) error {
	for i, leg := range params {
		for field, v := range leg {
			if s, ok := v.(string); ok && s == Auto {
				return fmt.Errorf("%w: leg %d field %q", ErrUnresolvedAuto, i, field)
			}
		}
	}
	return nil
}
