// Package engine is the client-side synchronization core of the
// whiteboard. It turns raw drawing-surface gestures into durable shape
// mutations, ephemeral presence and reaction traffic, and purely local
// render state, and projects the replicated document back onto the
// surface.
//
// The engine is single-threaded in spirit: the rendering collaborator
// drives it from one goroutine and the transport feeds remote events in
// from another, with a single mutex keeping the two honest. Nothing in
// here blocks on network I/O.
package engine

import (
	"time"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Presence is this participant's ephemeral record as peers see it. It is
// replaced wholesale on every update; a nil cursor means the pointer is
// outside the canvas.
type Presence struct {
	Cursor  *Point `json:"cursor"`
	Message string `json:"message,omitempty"`
}

// Reaction is one fire-and-forget emoji ping. Timestamp is always the
// local clock of whichever client holds the value; peers never need to
// agree on reaction visibility.
type Reaction struct {
	Point     Point     `json:"point"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

type ConnectionStatus int

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusConnecting:
		return "connecting"
	default:
		return "disconnected"
	}
}
