package model

import (
	"sort"

	"github.com/avfabric/medianode-core/internal/resource"
)

// Store is a mapping of resources keyed by id.
//
// A Store performs no locking of its own: every operation requires the
// owning Model's lock to be held. Operations are synchronous,
// non-blocking once the lock is held, and O(lookup) by identifier.
// Stores never allocate identifiers; identifier generation is the
// caller's responsibility.
type Store struct {
	resources map[string]*resource.Resource
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{resources: make(map[string]*resource.Resource)}
}

// Insert adds a resource to the store.
// Returns ErrDuplicateID if the id is already present; the existing
// resource is left untouched.
func (s *Store) Insert(r *resource.Resource) error {
	if _, exists := s.resources[r.ID]; exists {
		return ErrDuplicateID
	}
	s.resources[r.ID] = r
	return nil
}

// Find looks up a resource by id and expected type.
// Returns ErrNotFound if the id is missing or the type does not match.
// The returned resource is the live record; callers must hold the
// model lock while reading it and must not retain it past release.
func (s *Store) Find(id string, t resource.Type) (*resource.Resource, error) {
	r, ok := s.resources[id]
	if !ok || r.Type != t {
		return nil, ErrNotFound
	}
	return r, nil
}

// Get looks up a resource by id alone, regardless of type.
func (s *Store) Get(id string) (*resource.Resource, error) {
	r, ok := s.resources[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// Modify applies an in-place transformation to the resource's data and
// bumps its version. Returns ErrNotFound if the id is absent; no
// mutation occurs in that case.
func (s *Store) Modify(id string, mutate func(r *resource.Resource)) error {
	r, ok := s.resources[id]
	if !ok {
		return ErrNotFound
	}
	mutate(r)
	r.BumpVersion()
	return nil
}

// Erase removes the resource with the given id, if present.
// Returns ErrNotFound if the id is absent.
func (s *Store) Erase(id string) error {
	if _, ok := s.resources[id]; !ok {
		return ErrNotFound
	}
	delete(s.resources, id)
	return nil
}

// Len returns the number of resources in the store.
func (s *Store) Len() int {
	return len(s.resources)
}

// ListByType returns deep copies of all resources of the given type,
// sorted by id for deterministic ordering. The copies are safe to use
// after the model lock is released.
func (s *Store) ListByType(t resource.Type) []*resource.Resource {
	var out []*resource.Resource
	for _, r := range s.resources {
		if r.Type == t {
			out = append(out, r.DeepCopy())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
