package engine

import (
	"collaborative-whiteboard/internal/shape"
)

// Surface is the rendering collaborator: whatever paints drawable objects
// and gesture previews. The engine never reaches into it beyond these
// calls.
type Surface interface {
	// Upsert constructs or rebuilds the rendered object for a snapshot.
	Upsert(s shape.Snapshot)
	// Remove drops the rendered object for an id.
	Remove(id string)
	// SetActive restores selection handles onto an object.
	SetActive(id string)
	// Preview paints the local draft of an in-progress gesture.
	Preview(s shape.Snapshot)
	// DropPreview removes a gesture draft.
	DropPreview(id string)
}

// Reconciler makes the surface show exactly the store's current shapes,
// diffing by id. Objects whose payload is unchanged are left alone so
// local selection and focus survive remote churn, and the locally active
// shape is explicitly re-marked after every pass.
type Reconciler struct {
	surface Surface
	applied map[string]shape.Snapshot
}

func NewReconciler(surface Surface) *Reconciler {
	return &Reconciler{
		surface: surface,
		applied: make(map[string]shape.Snapshot),
	}
}

// Reconcile runs one pass against the full current snapshot map. Callers
// batch storage changes so exactly one pass runs per batch.
func (r *Reconciler) Reconcile(current map[string]shape.Snapshot, activeID string) {
	for id, s := range current {
		prev, ok := r.applied[id]
		if ok && prev.Equal(s) {
			continue
		}
		r.surface.Upsert(s)
		r.applied[id] = s
	}

	for id := range r.applied {
		if _, ok := current[id]; !ok {
			r.surface.Remove(id)
			delete(r.applied, id)
		}
	}

	if activeID != "" {
		if _, ok := current[activeID]; ok {
			r.surface.SetActive(activeID)
		}
	}
}
