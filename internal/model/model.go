package model

import "sync"

// Settings carries the initial settings handed to the model by the
// configuration collaborator. The model does not parse configuration
// itself.
type Settings struct {
	// SeedID is the UUID seed for deterministic resource id derivation.
	SeedID string

	// Label is the human-readable label applied to the node's resources.
	Label string

	// Host is the network endpoint hint advertised in connection URIs.
	Host string

	// Port is the API port advertised in connection URIs.
	Port int

	// EventsEnabled indicates whether the live events feature (events
	// source, WebSocket sender/receiver, behaviour task) is active.
	EventsEnabled bool
}

// Model owns the node's resource stores and the shared synchronisation
// primitives that protect them.
//
// All three stores are guarded by one lock; see the package
// documentation for the locking discipline.
type Model struct {
	mu       sync.Mutex
	cond     *sync.Cond
	shutdown bool

	// Registration holds the node, device, source, flow, sender and
	// receiver resources served by the registration API.
	Registration *Store

	// Connection holds the connection sender/receiver resources with
	// their staged and active documents.
	Connection *Store

	// Events holds the live event source state resources.
	Events *Store

	// Settings are the initial settings the model was created with.
	Settings Settings
}

// New creates a model with empty stores and the given settings.
func New(settings Settings) *Model {
	m := &Model{
		Registration: NewStore(),
		Connection:   NewStore(),
		Events:       NewStore(),
		Settings:     settings,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Lock acquires the model's write lock. Readers and writers share the
// same lock; there is no separate read mode.
func (m *Model) Lock() {
	m.mu.Lock()
}

// Unlock releases the model's write lock.
func (m *Model) Unlock() {
	m.mu.Unlock()
}

// Notify wakes every goroutine blocked in Wait. The caller must hold
// the lock. Every mutation of a store must be followed by Notify
// before the lock is released.
func (m *Model) Notify() {
	m.cond.Broadcast()
}

// Wait blocks until pred() reports true or shutdown is requested,
// whichever comes first. The caller must hold the lock; the lock is
// released while blocked and re-held when Wait returns.
//
// Wait re-checks the predicate after every wake-up, so a spurious or
// unrelated notification never terminates the wait early. It returns
// false if the model is shutting down.
func (m *Model) Wait(pred func() bool) bool {
	for !m.shutdown && !pred() {
		m.cond.Wait()
	}
	return !m.shutdown
}

// Shutdown sets the shutdown flag and broadcasts, unblocking all
// waiters. It is safe to call more than once.
func (m *Model) Shutdown() {
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
	m.cond.Broadcast()
}

// ShuttingDown reports whether shutdown has been requested. The caller
// must hold the lock.
func (m *Model) ShuttingDown() bool {
	return m.shutdown
}
