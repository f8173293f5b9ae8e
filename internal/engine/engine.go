package engine

import (
	"context"
	"sync"
	"time"

	"collaborative-whiteboard/internal/shape"

	"github.com/google/uuid"
)

// Engine ties the interaction controller, the local document replica, the
// reconciler and the ephemeral layer together behind the transport.
type Engine struct {
	mu sync.Mutex

	transport Transport
	threads   ThreadTransport

	store      *shape.Store
	controller *Controller
	reconciler *Reconciler
	history    *History

	cursor   CursorState
	presence Presence
	others   map[string]Presence

	reactions *ReactionList
	placer    ThreadPlacer

	status   ConnectionStatus
	onStatus func(ConnectionStatus)

	now func() time.Time
}

func New(transport Transport, surface Surface) *Engine {
	store := shape.NewStore()
	e := &Engine{
		transport:  transport,
		store:      store,
		controller: NewController(),
		reconciler: NewReconciler(surface),
		history:    NewHistory(transport, store),
		others:     make(map[string]Presence),
		now:        time.Now,
	}
	e.reactions = NewReactionList(func() time.Time { return e.now() })
	return e
}

// SetThreadTransport wires the annotation registry connection.
func (e *Engine) SetThreadTransport(t ThreadTransport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.threads = t
}

// OnStatusChange registers the UI's connection-status callback.
func (e *Engine) OnStatusChange(fn func(ConnectionStatus)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStatus = fn
}

// SetStatus is called by the transport when connectivity changes. The
// signal goes to the UI collaborator; individual operations never fail.
func (e *Engine) SetStatus(status ConnectionStatus) {
	e.mu.Lock()
	prev := e.status
	e.status = status
	fn := e.onStatus
	e.mu.Unlock()

	if fn != nil && prev != status {
		fn(status)
	}
}

func (e *Engine) Status() ConnectionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// HandleGesture feeds one surface event through the interaction state
// machine and executes whatever actions it produces.
func (e *Engine) HandleGesture(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyActions(e.controller.Handle(ev))
}

// SetActiveTool is the toolbar's entry point.
func (e *Engine) SetActiveTool(tool Tool) {
	e.HandleGesture(Event{Type: EvToolSelected, Tool: tool})
}

// DeleteSelected removes the focused shape locally and from the store in
// one action.
func (e *Engine) DeleteSelected() {
	e.HandleGesture(Event{Type: EvDeletePressed})
}

func (e *Engine) Undo() {
	e.HandleGesture(Event{Type: EvUndoPressed})
}

func (e *Engine) Redo() {
	e.HandleGesture(Event{Type: EvRedoPressed})
}

// Reset clears the shared store and the local surface in the same local
// operation, so no stale geometry flashes while the clear is in flight.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyLocal(shape.ClearOp())
}

// UploadImage turns raw image bytes into a new image shape and promotes
// it with a single put. Returns the minted shape id.
func (e *Engine) UploadImage(data []byte, at Point) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := imageSnapshot(data, at, uuid.NewString())
	e.applyLocal(shape.PutOp(s))
	return s.ObjectID
}

// SelectedAttributes exposes the current selection's style for the
// property panel.
func (e *Engine) SelectedAttributes() (Attributes, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.controller.SelectedID()
	if id == "" {
		return Attributes{}, false
	}
	s, ok := e.store.Get(id)
	if !ok {
		return Attributes{}, false
	}
	return attributesOf(s), true
}

// UpdateSelectedShape applies a property-panel edit to the selection.
// There is no drag phase, so the put fires immediately.
func (e *Engine) UpdateSelectedShape(mutate func(*shape.Snapshot)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.controller.SelectedID()
	if id == "" {
		return false
	}
	s, ok := e.store.Get(id)
	if !ok {
		return false
	}

	mutate(&s)
	s.ObjectID = id
	e.applyLocal(shape.PutOp(s))
	return true
}

// ApplyRemoteOps applies a batch of sequenced ops from the transport.
// Exactly one reconciliation pass runs per batch, and only when something
// actually changed -- the echo of this client's own op is a no-op.
func (e *Engine) ApplyRemoteOps(ops ...shape.Op) {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false
	for _, op := range ops {
		if e.store.Apply(op) {
			changed = true
		}
	}
	if changed {
		e.reconcile()
	}
}

// SyncDocument adopts the full room state received on join.
func (e *Engine) SyncDocument(shapes map[string]shape.Snapshot, presences map[string]Presence) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Replace(shapes)
	e.others = make(map[string]Presence, len(presences))
	for id, p := range presences {
		e.others[id] = p
	}
	e.reconcile()
}

// Shapes returns the local replica's current snapshot map.
func (e *Engine) Shapes() map[string]shape.Snapshot {
	return e.store.All()
}

// SetPeerPresence replaces a peer's presence record wholesale.
func (e *Engine) SetPeerPresence(id string, p Presence) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.others[id] = p
}

// DropPeer forgets a disconnected participant.
func (e *Engine) DropPeer(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.others, id)
}

// Peers returns a copy of the known peer presences.
func (e *Engine) Peers() map[string]Presence {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]Presence, len(e.others))
	for id, p := range e.others {
		out[id] = p
	}
	return out
}

// ReceiveReaction appends a peer's reaction with this client's own clock;
// visibility windows are always local.
func (e *Engine) ReceiveReaction(p Point, value string) {
	e.reactions.Append(Reaction{Point: p, Value: value, Timestamp: e.now()})
}

// TickReactions runs on the emission interval: while the reaction tool is
// armed and pressed, one event goes out and onto the local display list
// immediately, without waiting for the broadcast round-trip.
func (e *Engine) TickReactions() {
	e.mu.Lock()
	mode := e.cursor.Mode
	pressed := e.cursor.Pressed
	symbol := e.cursor.Reaction
	cursor := e.presence.Cursor
	e.mu.Unlock()

	if mode != CursorReaction || !pressed || cursor == nil {
		return
	}

	r := Reaction{Point: *cursor, Value: symbol, Timestamp: e.now()}
	e.reactions.Append(r)
	e.transport.Broadcast(r)
}

// SweepReactions prunes expired reactions.
func (e *Engine) SweepReactions() {
	e.reactions.Sweep()
}

// VisibleReactions is the local display list.
func (e *Engine) VisibleReactions() []Reaction {
	return e.reactions.Visible()
}

// Run drives the reaction emit and sweep intervals until ctx ends.
func (e *Engine) Run(ctx context.Context) {
	emit := time.NewTicker(reactionEmitEvery)
	sweep := time.NewTicker(reactionSweepEvery)
	defer emit.Stop()
	defer sweep.Stop()

	for {
		select {
		case <-emit.C:
			e.TickReactions()
		case <-sweep.C:
			e.SweepReactions()
		case <-ctx.Done():
			return
		}
	}
}

// applyActions executes controller output. Caller holds the lock.
func (e *Engine) applyActions(actions []Action) {
	for _, a := range actions {
		switch a.Type {
		case ActionPut:
			e.reconciler.surface.DropPreview(a.Shape.ObjectID)
			e.applyLocal(shape.PutOp(*a.Shape))

		case ActionDelete:
			e.applyLocal(shape.DeleteOp(a.ID))

		case ActionLocalUpdate:
			if a.Shape != nil {
				e.reconciler.surface.Preview(*a.Shape)
			} else if a.ID != "" {
				e.reconciler.surface.DropPreview(a.ID)
			}

		case ActionUndo:
			e.applyOps(e.history.Undo())

		case ActionRedo:
			e.applyOps(e.history.Redo())
		}
	}
}

// applyLocal journals, sends and locally applies one durable mutation.
// Caller holds the lock.
func (e *Engine) applyLocal(op shape.Op) {
	e.history.Do(op)
	if e.store.Apply(op) {
		e.reconcile()
	}
}

// applyOps applies already-sent ops (undo/redo output) to the replica.
func (e *Engine) applyOps(ops []shape.Op) {
	changed := false
	for _, op := range ops {
		if e.store.Apply(op) {
			changed = true
		}
	}
	if changed {
		e.reconcile()
	}
}

func (e *Engine) reconcile() {
	e.reconciler.Reconcile(e.store.All(), e.controller.SelectedID())
}

// pushPresence sends the wholesale-replaced presence record. Caller holds
// the lock.
func (e *Engine) pushPresence() {
	e.transport.UpdatePresence(e.presence)
}
