// Package resource defines the typed records held in the Media Node's
// in-memory registries.
//
// A Resource is the unit of storage shared by the node, connection and
// events APIs. Each resource carries an opaque identifier, a type drawn
// from a closed set, a structured JSON-shaped document, and a version
// token that is bumped on every mutation so clients can detect
// staleness.
//
// # Key Types
//
//   - Resource: The stored record (ID, Type, Data, Version)
//   - Data: A nested key/value document (JSON object shape)
//   - Type: Resource classification (node, device, source, flow, ...)
//   - Version: Monotonically increasing seconds:nanoseconds token
//
// # Identity
//
// Resource identifiers are UUIDs. When a seed identifier is configured,
// MakeRepeatableID derives the same UUID for the same logical path on
// every start, giving the node stable identities across restarts for
// the same configuration.
//
// # Mutability
//
// The stores treat Data opaquely apart from a small set of well-known
// fields. Relationships between resources (device to node, sender to
// flow to source) are plain id references inside Data; they are not
// enforced at the store level, so consumers must look up references
// and fail if absent.
package resource
