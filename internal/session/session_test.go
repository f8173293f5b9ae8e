package session

import (
	"encoding/json"
	"testing"

	"collaborative-whiteboard/internal/engine"
	"collaborative-whiteboard/internal/room"
	"collaborative-whiteboard/internal/shape"
	"collaborative-whiteboard/internal/thread"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type nopSurface struct{}

func (nopSurface) Upsert(shape.Snapshot)  {}
func (nopSurface) Remove(string)          {}
func (nopSurface) SetActive(string)       {}
func (nopSurface) Preview(shape.Snapshot) {}
func (nopSurface) DropPreview(string)     {}

// newLocalSession wires a session to an engine without a live websocket
// so dispatch and the outbound path can be exercised directly.
func newLocalSession() (*Session, *engine.Engine) {
	s := &Session{
		log:      zerolog.Nop(),
		outbound: make(chan room.Envelope, 16),
		done:     make(chan struct{}),
	}
	e := engine.New(s, nopSurface{})
	s.engine = e
	return s, e
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	assert.NoError(t, err)
	return raw
}

func TestDispatchOpAppliesToEngine(t *testing.T) {
	s, e := newLocalSession()

	op := shape.PutOp(shape.Snapshot{ObjectID: "a", Kind: shape.KindRectangle, Left: 10})
	op.Seq = 1
	s.dispatch(room.Envelope{Type: room.MsgOp, From: "peer", Seq: 1, Data: mustMarshal(t, op)})

	assert.Equal(t, 10.0, e.Shapes()["a"].Left)
}

func TestDispatchSyncAdoptsRoomState(t *testing.T) {
	s, e := newLocalSession()

	sync := room.SyncPayload{
		Seq: 7,
		Shapes: map[string]shape.Snapshot{
			"a": {ObjectID: "a", Kind: shape.KindCircle},
		},
		Presences: map[string]room.PresencePayload{
			"peer": {Cursor: &room.Point{X: 1, Y: 2}, Message: "hey"},
		},
	}
	s.dispatch(room.Envelope{Type: room.MsgSync, Data: mustMarshal(t, sync)})

	assert.Len(t, e.Shapes(), 1)
	peers := e.Peers()
	assert.Equal(t, "hey", peers["peer"].Message)
	assert.Equal(t, 1.0, peers["peer"].Cursor.X)
}

func TestDispatchPresenceLifecycle(t *testing.T) {
	s, e := newLocalSession()

	p := room.PresencePayload{Cursor: &room.Point{X: 5, Y: 5}}
	s.dispatch(room.Envelope{Type: room.MsgPresence, From: "peer", Data: mustMarshal(t, p)})
	assert.Len(t, e.Peers(), 1)

	s.dispatch(room.Envelope{Type: room.MsgPresenceGone, From: "peer"})
	assert.Empty(t, e.Peers())
}

func TestDispatchReaction(t *testing.T) {
	s, e := newLocalSession()

	r := room.ReactionPayload{Point: room.Point{X: 3, Y: 4}, Value: "🎉"}
	s.dispatch(room.Envelope{Type: room.MsgReaction, From: "peer", Data: mustMarshal(t, r)})

	visible := e.VisibleReactions()
	assert.Len(t, visible, 1)
	assert.Equal(t, "🎉", visible[0].Value)
}

func TestDispatchThreadCallback(t *testing.T) {
	s, _ := newLocalSession()

	var seen []thread.Thread
	s.OnThread(func(th thread.Thread) { seen = append(seen, th) })

	s.dispatch(room.Envelope{Type: room.MsgThread, Data: json.RawMessage(`{"id":"t-1","z_index":3}`)})

	assert.Len(t, seen, 1)
	assert.Equal(t, "t-1", seen[0].ID)
	assert.Equal(t, int64(3), seen[0].ZIndex)
}

func TestDispatchIgnoresGarbage(t *testing.T) {
	s, e := newLocalSession()

	s.dispatch(room.Envelope{Type: room.MsgOp, Data: json.RawMessage(`not json`)})
	s.dispatch(room.Envelope{Type: room.MsgSync, Data: json.RawMessage(`[]`)})
	s.dispatch(room.Envelope{Type: "unknown"})

	assert.Empty(t, e.Shapes())
}

func TestSendOpEnqueuesEnvelope(t *testing.T) {
	s, _ := newLocalSession()

	s.SendOp(shape.DeleteOp("a"))

	env := <-s.outbound
	assert.Equal(t, room.MsgOp, env.Type)

	var op shape.Op
	assert.NoError(t, json.Unmarshal(env.Data, &op))
	assert.Equal(t, shape.OpDelete, op.Type)
	assert.Equal(t, "a", op.ID)
}

func TestUpdatePresenceConvertsPayload(t *testing.T) {
	s, _ := newLocalSession()

	cursor := engine.Point{X: 9, Y: 8}
	s.UpdatePresence(engine.Presence{Cursor: &cursor, Message: "typing"})

	env := <-s.outbound
	assert.Equal(t, room.MsgPresence, env.Type)

	var p room.PresencePayload
	assert.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, 9.0, p.Cursor.X)
	assert.Equal(t, "typing", p.Message)
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	s, _ := newLocalSession()

	for i := 0; i < cap(s.outbound)+10; i++ {
		s.Broadcast(engine.Reaction{Value: "🎉"})
	}

	// The extra messages were dropped, not blocked on.
	assert.Equal(t, cap(s.outbound), len(s.outbound))
}
