package room

import (
	"context"
	defError "errors"
	"net/http"
	"sync"

	"collaborative-whiteboard/auth"
	"collaborative-whiteboard/internal/config"
	"collaborative-whiteboard/internal/errors"
	"collaborative-whiteboard/internal/shape"
	"collaborative-whiteboard/internal/thread"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Manager owns the live hubs, one per room, creating them lazily and
// hydrating their stores from persistence on first use. It implements
// shape.Sequencer for the HTTP surface and thread.Notifier for the
// annotation registry.
type Manager struct {
	mu   sync.Mutex
	hubs map[string]*Hub

	repo shape.Repository
	rdb  *goredis.Client
	log  zerolog.Logger

	upgrader websocket.Upgrader
}

func NewManager(repo shape.Repository, rdb *goredis.Client, log zerolog.Logger) *Manager {
	return &Manager{
		hubs: make(map[string]*Hub),
		repo: repo,
		rdb:  rdb,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if config.AppConfig.AllowAllOrigins {
					return true
				}
				return r.Header.Get("Origin") == config.AppConfig.FrontendAddress
			},
		},
	}
}

func (m *Manager) getOrCreate(ctx context.Context, roomID string) (*Hub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		return hub, nil
	}

	shapes, maxSeq, err := m.repo.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	store := shape.NewStore()
	store.Replace(shapes)

	hub := newHub(roomID, store, maxSeq, m.repo, m.rdb, m.log)
	m.hubs[roomID] = hub
	go hub.run()

	m.log.Info().Str("room", roomID).Int("shapes", len(shapes)).Uint64("seq", maxSeq).Msg("room hydrated")
	return hub, nil
}

// EnqueueOp implements shape.Sequencer.
func (m *Manager) EnqueueOp(ctx context.Context, roomID string, op shape.Op) error {
	hub, err := m.getOrCreate(ctx, roomID)
	if err != nil {
		return err
	}

	select {
	case hub.inbound <- inboundMessage{env: Envelope{Type: MsgOp, Data: payload(op)}}:
		return nil
	case <-hub.done:
		return errors.Internal(defError.New("room hub stopped"))
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RoomSnapshot implements shape.Sequencer.
func (m *Manager) RoomSnapshot(ctx context.Context, roomID string) (map[string]shape.Snapshot, error) {
	hub, err := m.getOrCreate(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return hub.Snapshot(), nil
}

// NotifyThread implements thread.Notifier. Registry changes reach rooms
// with no live connections as a no-op.
func (m *Manager) NotifyThread(roomID string, t *thread.Thread) {
	m.mu.Lock()
	hub, ok := m.hubs[roomID]
	m.mu.Unlock()
	if !ok {
		return
	}

	env := Envelope{Type: MsgThread, Data: payload(t)}
	select {
	case hub.inbound <- inboundMessage{env: env}:
	default:
		m.log.Warn().Str("room", roomID).Msg("dropping thread notification, hub busy")
	}
}

// ServeWS upgrades an authenticated request into a room connection.
func (m *Manager) ServeWS(c *gin.Context) {
	roomID := c.Param("id")

	participant := auth.Participant{
		ID:   c.GetString("participant_id"),
		Name: c.GetString("participant_name"),
	}
	if participant.ID == "" {
		c.Error(errors.Unauthorized("Missing participant identity", nil))
		return
	}

	hub, err := m.getOrCreate(c.Request.Context(), roomID)
	if err != nil {
		c.Error(err)
		return
	}

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the response.
		m.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, config.AppConfig.SendBufferSize),
		participant: participant,
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// Shutdown stops every hub loop and waits for each room's persistence
// queue to drain, so in-flight writes land before the process exits.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		close(hub.stop)
		<-hub.done
		delete(m.hubs, id)
	}
}
