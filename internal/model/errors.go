package model

import "errors"

// Domain errors for the model package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, model.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDuplicateID is returned when inserting a resource whose id is
	// already present in the store. The store is left unchanged.
	ErrDuplicateID = errors.New("model: duplicate id")

	// ErrNotFound is returned when a lookup or modify targets an id
	// that is not present, or present with a different type.
	ErrNotFound = errors.New("model: not found")
)
