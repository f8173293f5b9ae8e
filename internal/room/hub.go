package room

import (
	"context"
	"encoding/json"
	"fmt"

	"collaborative-whiteboard/internal/shape"
	"collaborative-whiteboard/internal/worker"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Hub is the authoritative sequencer for one room. Every durable mutation
// from every connection funnels through its single run loop, which assigns
// the sequence number that defines the room's last-write-wins order.
// Ephemeral messages pass through the same loop but are never stored.
type Hub struct {
	roomID string
	store  *shape.Store
	seq    uint64

	clients   map[*Client]bool
	presences map[string]PresencePayload

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage
	stop       chan struct{}
	// done is closed when the run loop has exited, so pumps and callers
	// blocked on the channels above can bail out.
	done chan struct{}

	repo shape.Repository
	pool *worker.WorkerPool
	rdb  *goredis.Client
	log  zerolog.Logger
}

type inboundMessage struct {
	client *Client
	env    Envelope
}

func newHub(roomID string, store *shape.Store, seq uint64, repo shape.Repository, rdb *goredis.Client, log zerolog.Logger) *Hub {
	return &Hub{
		roomID:     roomID,
		store:      store,
		seq:        seq,
		clients:    make(map[*Client]bool),
		presences:  make(map[string]PresencePayload),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundMessage, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		repo:       repo,
		// One persistence worker per room: writes must land in the
		// order the sequencer assigned them, so the queue is drained
		// serially. Rooms still persist concurrently with each other.
		pool: worker.NewWorkerPool(1),
		rdb:  rdb,
		log:  log.With().Str("room", roomID).Logger(),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.sendSync(client)
			h.log.Info().Str("participant", client.participant.ID).Int("clients", len(h.clients)).Msg("client joined")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; !ok {
				continue
			}
			delete(h.clients, client)
			close(client.send)
			delete(h.presences, client.participant.ID)
			h.broadcast(Envelope{Type: MsgPresenceGone, From: client.participant.ID}, nil)
			h.log.Info().Str("participant", client.participant.ID).Int("clients", len(h.clients)).Msg("client left")

		case msg := <-h.inbound:
			h.dispatch(msg)

		case <-h.stop:
			for client := range h.clients {
				close(client.send)
			}
			h.clients = nil
			h.pool.Shutdown()
			close(h.done)
			return
		}
	}
}

func (h *Hub) dispatch(msg inboundMessage) {
	switch msg.env.Type {
	case MsgOp:
		var op shape.Op
		if err := json.Unmarshal(msg.env.Data, &op); err != nil {
			h.log.Warn().Err(err).Msg("dropping undecodable op")
			return
		}
		h.applyOp(op, msg.env.From)

	case MsgPresence:
		var p PresencePayload
		if err := json.Unmarshal(msg.env.Data, &p); err != nil {
			return
		}
		// Wholesale replace, never a field merge.
		h.presences[msg.env.From] = p
		h.broadcast(msg.env, msg.client)

	case MsgReaction:
		// Fire-and-forget: relayed to everyone else, never stored.
		h.broadcast(msg.env, msg.client)
		h.publish(msg.env)

	case MsgThread:
		h.broadcast(msg.env, nil)
		h.publish(msg.env)
	}
}

// applyOp sequences a durable op, applies it to the live store, schedules
// persistence off the hub loop, and fans the sequenced op out to every
// connection including the sender.
func (h *Hub) applyOp(op shape.Op, from string) {
	if op.Type == shape.OpPut && (op.Shape == nil || op.Shape.Validate() != nil) {
		h.log.Warn().Str("from", from).Msg("dropping malformed put")
		return
	}

	h.seq++
	op.Seq = h.seq
	h.store.Apply(op)
	h.persist(op)

	env := Envelope{Type: MsgOp, From: from, Seq: op.Seq, Data: payload(op)}
	h.broadcast(env, nil)
	h.publish(env)
}

// persist schedules a sequenced op on the room's single-worker queue.
// SubmitWait rather than Submit: a sequenced durable op must never be
// dropped, so a full queue stalls the hub loop until the database
// catches up instead of silently losing a write.
func (h *Hub) persist(op shape.Op) {
	roomID := h.roomID
	switch op.Type {
	case shape.OpPut:
		s := *op.Shape
		seq := op.Seq
		h.pool.SubmitWait(func(ctx context.Context) error {
			return h.repo.Upsert(ctx, roomID, seq, s)
		})
	case shape.OpDelete:
		id := op.ID
		h.pool.SubmitWait(func(ctx context.Context) error {
			return h.repo.Delete(ctx, roomID, id)
		})
	case shape.OpClear:
		h.pool.SubmitWait(func(ctx context.Context) error {
			return h.repo.Clear(ctx, roomID)
		})
	}
}

// broadcast sends an envelope to every connection except skip. Sends are
// non-blocking: a client that cannot keep up is dropped rather than
// allowed to stall the sequencer.
func (h *Hub) broadcast(env Envelope, skip *Client) {
	raw, err := encode(env)
	if err != nil {
		return
	}
	for client := range h.clients {
		if client == skip {
			continue
		}
		select {
		case client.send <- raw:
		default:
			// The dropped client's readPump will still report through
			// unregister; the membership check there keeps this the
			// only close of the channel.
			h.log.Warn().Str("participant", client.participant.ID).Msg("slow consumer, dropping client")
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// publish mirrors room traffic onto a redis channel so other services can
// observe a room without holding a websocket.
func (h *Hub) publish(env Envelope) {
	if h.rdb == nil {
		return
	}
	raw, err := encode(env)
	if err != nil {
		return
	}
	channel := fmt.Sprintf("room:%s:events", h.roomID)
	if err := h.rdb.Publish(context.Background(), channel, raw).Err(); err != nil {
		h.log.Warn().Err(err).Msg("redis publish failed")
	}
}

func (h *Hub) sendSync(client *Client) {
	sync := SyncPayload{
		Seq:       h.seq,
		Shapes:    h.store.All(),
		Presences: make(map[string]PresencePayload, len(h.presences)),
	}
	for id, p := range h.presences {
		if id == client.participant.ID {
			continue
		}
		sync.Presences[id] = p
	}

	raw, err := encode(Envelope{Type: MsgSync, Data: payload(sync)})
	if err != nil {
		return
	}
	select {
	case client.send <- raw:
	default:
	}
}

// Snapshot returns the room's current shape map. Safe from any goroutine,
// the store does its own locking.
func (h *Hub) Snapshot() map[string]shape.Snapshot {
	return h.store.All()
}
