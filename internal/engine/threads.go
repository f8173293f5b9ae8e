package engine

import (
	"strings"
)

type PlacementState int

const (
	// PlacementComplete: no placement in progress.
	PlacementComplete PlacementState = iota
	// PlacementPlacing: armed, waiting for the anchor click.
	PlacementPlacing
	// PlacementPlaced: anchor fixed, composer open.
	PlacementPlaced
)

// ThreadPlacer is the two-click placement state machine for new
// discussion threads. Whether a click landed inside the open composer is
// an explicit signal from the rendering collaborator, never inferred
// here.
type ThreadPlacer struct {
	state  PlacementState
	anchor Point
}

func (tp *ThreadPlacer) State() PlacementState { return tp.state }
func (tp *ThreadPlacer) Anchor() Point         { return tp.anchor }

// Toggle arms placing mode, or cancels whatever placement is in flight.
func (tp *ThreadPlacer) Toggle() {
	if tp.state == PlacementComplete {
		tp.state = PlacementPlacing
	} else {
		tp.state = PlacementComplete
	}
}

// Click advances the state machine. The first canvas click fixes the
// anchor and opens the composer; with the composer open, a click outside
// it cancels placement without creating a thread.
func (tp *ThreadPlacer) Click(p Point, insideComposer bool) {
	switch tp.state {
	case PlacementPlacing:
		tp.anchor = p
		tp.state = PlacementPlaced
	case PlacementPlaced:
		if !insideComposer {
			tp.state = PlacementComplete
		}
	}
}

// RightClick cancels placement immediately.
func (tp *ThreadPlacer) RightClick() {
	if tp.state != PlacementComplete {
		tp.state = PlacementComplete
	}
}

// submit resolves a composer submission: a nonempty body at the placed
// stage yields the anchor to commit. Either way placement ends.
func (tp *ThreadPlacer) submit(body string) (Point, bool) {
	if tp.state != PlacementPlaced {
		return Point{}, false
	}
	tp.state = PlacementComplete
	if strings.TrimSpace(body) == "" {
		return Point{}, false
	}
	return tp.anchor, true
}

// ArmThreadComposer toggles thread-placement mode from the toolbar.
func (e *Engine) ArmThreadComposer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.placer.Toggle()
}

// ThreadClick reports a canvas click while placement is active.
func (e *Engine) ThreadClick(p Point, insideComposer bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.placer.Click(p, insideComposer)
}

// ThreadRightClick cancels placement.
func (e *Engine) ThreadRightClick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.placer.RightClick()
}

// SubmitThread commits the open composer. The thread is created in the
// registry only when the body is nonempty; the registry assigns the id
// and the next stacking index.
func (e *Engine) SubmitThread(body string) bool {
	e.mu.Lock()
	anchor, ok := e.placer.submit(body)
	threads := e.threads
	e.mu.Unlock()

	if !ok || threads == nil {
		return false
	}
	threads.CreateThread(anchor, body)
	return true
}

// FocusThread brings a thread to the foreground of the overlay. The
// registry decides whether an index bump is needed.
func (e *Engine) FocusThread(id string) {
	e.mu.Lock()
	threads := e.threads
	e.mu.Unlock()

	if threads != nil {
		threads.FocusThread(id)
	}
}

// Placement exposes the current placement state for the overlay cursor.
func (e *Engine) Placement() PlacementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.placer.State()
}
