package engine

import (
	"collaborative-whiteboard/internal/shape"
)

// Transport is the engine's view of the external room connection. Durable
// ops are delivered reliably and come back sequenced; presence and
// reaction traffic is best-effort and may be dropped. Every call is
// fire-and-forget: the engine never waits for an acknowledgment before
// continuing local work, and delivery failures surface as a
// connection-status signal rather than per-call errors.
type Transport interface {
	SendOp(op shape.Op)
	UpdatePresence(p Presence)
	Broadcast(r Reaction)
}

// ThreadTransport carries annotation-registry commands. Threads live in
// their own durable collection with transport-assigned ids, so creation
// and focus go straight to the registry rather than through the shape
// sequencer.
type ThreadTransport interface {
	CreateThread(anchor Point, body string)
	FocusThread(id string)
}
