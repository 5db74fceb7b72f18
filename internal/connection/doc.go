// Package connection implements the connection-management core of the
// Media Node: the staged/active document pair carried by connection
// resources, the "auto" placeholder resolution machinery, and the
// activation engine that promotes a staged transport request to active
// state.
//
// # Activation
//
// Each attempt moves through validating, resolving and committing
// before the resource becomes active. Validation or lookup failure
// rejects the attempt and leaves the prior active document untouched;
// there is no partial commit. Side effects (transport file synthesis,
// subscription management) are injected as callbacks so the engine
// carries no vendor policy of its own.
//
// # Auto Resolution
//
// Staged transport parameters may hold the literal placeholder "auto"
// in any field the resolver is permitted to fill. Resolution happens
// once per activation, is idempotent, and must eliminate "auto" from
// every leg it is responsible for before commit. An "auto" that
// survives resolution is a defect in the resolution policy and aborts
// the activation rather than being committed.
package connection
