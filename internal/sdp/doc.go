// Package sdp synthesizes session descriptions for RTP senders.
//
// A sender's transport file is derived from three registration
// documents (the sender itself plus its linked source and flow) and
// the resolved active transport parameters. The linked source and flow
// must be looked up before synthesis; their absence indicates a broken
// resource graph and aborts the activation rather than emitting a
// malformed artifact.
package sdp
