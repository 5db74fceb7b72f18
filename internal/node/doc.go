// Package node assembles this Media Node's resource graph and supplies
// the vendor-specific connection policy.
//
// BuildResources populates the model at startup: the node resource,
// its device, a video source/flow/sender pair with an RTP connection
// sender, a video receiver with an RTP connection receiver, and, when
// the events feature is enabled, a temperature event source with its
// WebSocket sender and receiver. All identities are derived
// deterministically from the configured seed, so controllers see the
// same ids across restarts.
//
// The Make* functions build the callbacks injected into the activation
// engine: the auto resolver (address and URI defaults for each
// resource), the transport file setter (SDP synthesis for the RTP
// sender), the activation handler (event subscription management for
// WebSocket receivers) and the message handler (inbound event state
// processing).
package node
