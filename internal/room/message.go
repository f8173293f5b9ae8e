package room

import (
	"encoding/json"

	"collaborative-whiteboard/internal/shape"
)

// Wire protocol between the room hub and its websocket clients.
//
// Durable ops travel client -> hub unsequenced, get a sequence number
// assigned by the hub, and travel back out to every connection in that
// order. Presence and reaction messages are best-effort and carry no
// sequence number.
const (
	MsgOp           = "op"            // durable shape mutation
	MsgSync         = "sync"          // full room state, sent on join
	MsgPresence     = "presence"      // wholesale presence replace
	MsgPresenceGone = "presence.gone" // participant disconnected
	MsgReaction     = "reaction"      // fire-and-forget broadcast event
	MsgThread       = "thread"        // annotation registry change
)

type Envelope struct {
	Type string          `json:"type"`
	From string          `json:"from,omitempty"`
	Seq  uint64          `json:"seq,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PresencePayload is one participant's ephemeral record. It is replaced
// wholesale on every update; a nil cursor means the pointer has left the
// canvas.
type PresencePayload struct {
	Cursor  *Point `json:"cursor"`
	Message string `json:"message,omitempty"`
}

type ReactionPayload struct {
	Point Point  `json:"point"`
	Value string `json:"value"`
}

// SyncPayload carries everything a joining client needs: the current
// shape map, the sequencer position, and the presence of everyone else.
type SyncPayload struct {
	Seq       uint64                     `json:"seq"`
	Shapes    map[string]shape.Snapshot  `json:"shapes"`
	Presences map[string]PresencePayload `json:"presences"`
}

func encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

func payload(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
