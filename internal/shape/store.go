package shape

import (
	"sync"
)

// Store is the replicated id -> snapshot map backing one room's document.
// It holds only the latest snapshot per id; conflict resolution is
// last-write-wins in the order ops are applied, so callers must feed it
// ops in sequencer order. Applying the same op twice is harmless.
type Store struct {
	mu     sync.RWMutex
	shapes map[string]Snapshot
}

func NewStore() *Store {
	return &Store{shapes: make(map[string]Snapshot)}
}

// Apply applies one sequenced op and reports whether the visible state
// changed. Malformed ops are dropped without touching the map.
func (st *Store) Apply(op Op) bool {
	switch op.Type {
	case OpPut:
		if op.Shape == nil || op.Shape.Validate() != nil {
			return false
		}
		return st.put(*op.Shape)
	case OpDelete:
		return st.delete(op.ID)
	case OpClear:
		return st.clear()
	}
	return false
}

func (st *Store) put(s Snapshot) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	prev, ok := st.shapes[s.ObjectID]
	if ok && prev.Equal(s) {
		return false
	}
	st.shapes[s.ObjectID] = s
	return true
}

func (st *Store) delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.shapes[id]; !ok {
		return false
	}
	delete(st.shapes, id)
	return true
}

func (st *Store) clear() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.shapes) == 0 {
		return false
	}
	st.shapes = make(map[string]Snapshot)
	return true
}

// Get returns the latest snapshot for an id.
func (st *Store) Get(id string) (Snapshot, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.shapes[id]
	return s, ok
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.shapes)
}

// All returns a copy of the current snapshot map.
func (st *Store) All() map[string]Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make(map[string]Snapshot, len(st.shapes))
	for id, s := range st.shapes {
		out[id] = s
	}
	return out
}

// Replace swaps in a full snapshot map, used when hydrating a room from
// storage or joining an existing room.
func (st *Store) Replace(shapes map[string]Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.shapes = make(map[string]Snapshot, len(shapes))
	for id, s := range shapes {
		st.shapes[id] = s
	}
}
