// Package events provides the live event-state side of the Media
// Node: builders for event source state documents, the background
// behaviour task that models a live data source, the pump that relays
// committed state changes to delivery sinks, and the subscription
// registry linking push-style receivers to their event sources.
//
// # Behaviour Task
//
// The behaviour task wakes on a bounded random interval, mutates its
// event source's state under the model lock, notifies, and releases.
// Cancellation is cooperative via context: an in-flight timer wait
// resolves promptly and the loop terminates without a final mutation.
// The owner must Wait for the task without holding the model lock;
// the task needs the lock for its own final bookkeeping.
//
// # Pump
//
// The pump blocks on the model's change condition and forwards each
// committed event state to its sinks (WebSocket hub, MQTT, telemetry)
// outside the critical section. Notification is level-triggered: the
// pump tracks per-source versions and re-checks on every wake, so a
// change committed while it was busy is still observed.
package events
