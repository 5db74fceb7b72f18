// Package model provides the shared in-memory state of the Media Node.
//
// A Model bundles one resource Store per API surface (registration:
// node, devices, sources, flows, senders, receivers; connection:
// staged/active transport documents; events: live event source state)
// behind a single write lock and a change-notification condition.
//
// # Locking Discipline
//
// One coarse lock protects all three stores. Activation touches both
// the connection and registration stores and must observe a consistent
// cross-store snapshot, so per-store locks would not be sufficient.
// Readers take the same lock for the duration of their traversal.
//
// Any party that mutates a resource must call Notify before releasing
// the lock. Failing to notify stalls every goroutine blocked in Wait.
//
// # Waiting
//
// Wait blocks until a predicate holds or shutdown is requested, and
// always re-checks the predicate after waking. Notification is
// level-triggered: a waiter that was not yet blocked when a change
// committed still observes it on its next check.
//
// # Shutdown
//
// Shutdown sets the shutdown flag and broadcasts, unblocking all
// waiters. Background tasks observe the flag (or their context) and
// terminate cooperatively; nothing is forcibly killed.
package model
