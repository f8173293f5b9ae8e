package engine

import (
	"collaborative-whiteboard/internal/shape"
)

// historyLimit caps how many local mutations stay undoable.
const historyLimit = 100

// History journals locally-attributed durable mutations so they can be
// reverted. Every local put/delete/clear passes through Do, which
// captures the inverse ops from the local replica before the mutation is
// applied. Remote-authored changes never enter the journal, so undo can
// never revert another participant's work; if a peer has since
// overwritten the same key, the compensating op simply loses (or wins)
// by the usual last-write-wins order.
type History struct {
	transport Transport
	store     *shape.Store

	undo []mutation
	redo []mutation
}

type mutation struct {
	forward []shape.Op
	inverse []shape.Op
}

func NewHistory(transport Transport, store *shape.Store) *History {
	return &History{transport: transport, store: store}
}

// Do records and sends local ops. Must be called before the ops are
// applied to the local store, while the pre-mutation state is still
// readable. Any new local mutation invalidates the redo stack.
func (h *History) Do(ops ...shape.Op) {
	if len(ops) == 0 {
		return
	}

	m := mutation{forward: ops}
	for _, op := range ops {
		m.inverse = append(h.invert(op), m.inverse...)
	}

	h.undo = append(h.undo, m)
	if len(h.undo) > historyLimit {
		h.undo = h.undo[1:]
	}
	h.redo = nil

	for _, op := range ops {
		h.transport.SendOp(op)
	}
}

// Undo reverts the most recent local mutation and returns the ops it
// issued so the caller can apply them to the local replica. No-op when
// the journal is empty.
func (h *History) Undo() []shape.Op {
	if len(h.undo) == 0 {
		return nil
	}

	m := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, m)

	for _, op := range m.inverse {
		h.transport.SendOp(op)
	}
	return m.inverse
}

// Redo replays the most recently undone mutation. Valid only immediately
// after an undo; any new local mutation clears the redo stack.
func (h *History) Redo() []shape.Op {
	if len(h.redo) == 0 {
		return nil
	}

	m := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, m)

	for _, op := range m.forward {
		h.transport.SendOp(op)
	}
	return m.forward
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// invert derives the compensating ops for one op from the current local
// replica.
func (h *History) invert(op shape.Op) []shape.Op {
	switch op.Type {
	case shape.OpPut:
		if prev, ok := h.store.Get(op.ID); ok {
			return []shape.Op{shape.PutOp(prev)}
		}
		return []shape.Op{shape.DeleteOp(op.ID)}

	case shape.OpDelete:
		if prev, ok := h.store.Get(op.ID); ok {
			return []shape.Op{shape.PutOp(prev)}
		}
		return nil

	case shape.OpClear:
		all := h.store.All()
		inverse := make([]shape.Op, 0, len(all))
		for _, s := range all {
			inverse = append(inverse, shape.PutOp(s))
		}
		return inverse
	}
	return nil
}
