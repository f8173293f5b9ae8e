// Package session connects an engine to a room over websocket plus a
// small HTTP client for the annotation registry. It is the concrete
// transport behind the engine's fire-and-forget calls.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"collaborative-whiteboard/internal/engine"
	"collaborative-whiteboard/internal/room"
	"collaborative-whiteboard/internal/shape"
	"collaborative-whiteboard/internal/thread"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Session struct {
	conn *websocket.Conn
	log  zerolog.Logger

	engine   *engine.Engine
	onThread func(t thread.Thread)

	outbound  chan room.Envelope
	done      chan struct{}
	closeOnce sync.Once
}

// Dial opens the websocket into a room. The token is passed as a query
// parameter because browsers cannot set headers on websocket upgrades,
// and the server accepts both.
func Dial(ctx context.Context, baseURL, roomID, token string, log zerolog.Logger) (*Session, error) {
	wsBase := strings.Replace(baseURL, "http", "ws", 1)
	wsURL := fmt.Sprintf("%s/rooms/%s/ws?token=%s", wsBase, roomID, url.QueryEscape(token))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial room %s: %w", roomID, err)
	}

	return &Session{
		conn:     conn,
		log:      log.With().Str("room", roomID).Logger(),
		outbound: make(chan room.Envelope, 256),
		done:     make(chan struct{}),
	}, nil
}

// OnThread registers the overlay's callback for registry changes.
func (s *Session) OnThread(fn func(t thread.Thread)) {
	s.onThread = fn
}

// Bind attaches the engine and starts the pumps. The engine must be
// constructed with this session as its transport.
func (s *Session) Bind(e *engine.Engine) {
	s.engine = e
	go s.readLoop()
	go s.writeLoop()
	e.SetStatus(engine.StatusConnected)
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// SendOp implements engine.Transport. Durable ops ride the same
// connection as ephemeral traffic; the server sequences and echoes them.
func (s *Session) SendOp(op shape.Op) {
	s.enqueue(room.Envelope{Type: room.MsgOp, Data: marshal(op)})
}

// UpdatePresence implements engine.Transport.
func (s *Session) UpdatePresence(p engine.Presence) {
	payload := room.PresencePayload{Message: p.Message}
	if p.Cursor != nil {
		payload.Cursor = &room.Point{X: p.Cursor.X, Y: p.Cursor.Y}
	}
	s.enqueue(room.Envelope{Type: room.MsgPresence, Data: marshal(payload)})
}

// Broadcast implements engine.Transport.
func (s *Session) Broadcast(r engine.Reaction) {
	payload := room.ReactionPayload{
		Point: room.Point{X: r.Point.X, Y: r.Point.Y},
		Value: r.Value,
	}
	s.enqueue(room.Envelope{Type: room.MsgReaction, Data: marshal(payload)})
}

// enqueue never blocks the caller. When the buffer is full the message is
// dropped; for ephemeral traffic that is the contract, and for durable
// ops it means the connection is already dead and the status signal is on
// its way.
func (s *Session) enqueue(env room.Envelope) {
	select {
	case s.outbound <- env:
	default:
		s.log.Warn().Str("type", env.Type).Msg("outbound buffer full, dropping message")
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case env := <-s.outbound:
			raw, err := json.Marshal(env)
			if err != nil {
				continue
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				s.engine.SetStatus(engine.StatusDisconnected)
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) readLoop() {
	defer s.engine.SetStatus(engine.StatusDisconnected)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var env room.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		s.dispatch(env)
	}
}

func (s *Session) dispatch(env room.Envelope) {
	switch env.Type {
	case room.MsgOp:
		var op shape.Op
		if err := json.Unmarshal(env.Data, &op); err != nil {
			return
		}
		s.engine.ApplyRemoteOps(op)

	case room.MsgSync:
		var sync room.SyncPayload
		if err := json.Unmarshal(env.Data, &sync); err != nil {
			return
		}
		presences := make(map[string]engine.Presence, len(sync.Presences))
		for id, p := range sync.Presences {
			presences[id] = toEnginePresence(p)
		}
		s.engine.SyncDocument(sync.Shapes, presences)

	case room.MsgPresence:
		var p room.PresencePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		s.engine.SetPeerPresence(env.From, toEnginePresence(p))

	case room.MsgPresenceGone:
		s.engine.DropPeer(env.From)

	case room.MsgReaction:
		var r room.ReactionPayload
		if err := json.Unmarshal(env.Data, &r); err != nil {
			return
		}
		s.engine.ReceiveReaction(engine.Point{X: r.Point.X, Y: r.Point.Y}, r.Value)

	case room.MsgThread:
		if s.onThread == nil {
			return
		}
		var t thread.Thread
		if err := json.Unmarshal(env.Data, &t); err != nil {
			return
		}
		s.onThread(t)
	}
}

func toEnginePresence(p room.PresencePayload) engine.Presence {
	out := engine.Presence{Message: p.Message}
	if p.Cursor != nil {
		out.Cursor = &engine.Point{X: p.Cursor.X, Y: p.Cursor.Y}
	}
	return out
}

func marshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
