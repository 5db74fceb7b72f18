package connection

import "errors"

// Domain errors for the connection package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, connection.ErrValidationRejected) {
//	    // surface a client error, active state is unchanged
//	}
var (
	// ErrValidationRejected is returned when the injected validator
	// rejects a merged staged document. Activation aborts before
	// resolution and the active document is unchanged.
	ErrValidationRejected = errors.New("connection: staged document rejected")

	// ErrMissingReference is returned when transport file synthesis
	// cannot locate a referenced source or flow. This indicates a
	// malformed resource graph rather than a transient client error;
	// the activation attempt aborts without committing.
	ErrMissingReference = errors.New("connection: referenced resource not found")

	// ErrUnresolvedAuto is returned when an "auto" placeholder survives
	// resolution. This is a defect in the resolution policy, surfaced
	// rather than silently committed.
	ErrUnresolvedAuto = errors.New("connection: unresolved auto value")
)
