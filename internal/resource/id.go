package resource

import "github.com/google/uuid"

// MakeRepeatableID derives a deterministic resource identifier from a
// seed and a logical path. The same (seed, path) pair always yields
// the same UUID, so a node started twice with the same configuration
// presents the same resource identities to controllers.
//
// The seed must itself be a UUID (typically generated once and stored
// in configuration). An unparseable seed falls back to the nil UUID
// namespace, which still yields stable ids for a given path.
func MakeRepeatableID(seed, path string) string {
	namespace, err := uuid.Parse(seed)
	if err != nil {
		namespace = uuid.Nil
	}
	return uuid.NewSHA1(namespace, []byte(path)).String()
}

// NewID returns a fresh random identifier, used where no repeatable
// derivation is required.
func NewID() string {
	return uuid.NewString()
}
