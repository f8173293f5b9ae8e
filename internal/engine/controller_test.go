package engine

import (
	"testing"

	"collaborative-whiteboard/internal/shape"

	"github.com/stretchr/testify/assert"
)

func newTestController() *Controller {
	c := NewController()
	n := 0
	c.newID = func() string {
		n++
		return []string{"id-1", "id-2", "id-3"}[n-1]
	}
	return c
}

func TestControllerDragGesture(t *testing.T) {
	c := newTestController()
	c.Handle(Event{Type: EvToolSelected, Tool: ToolRectangle})

	down := c.Handle(Event{Type: EvPointerDown, Point: Point{X: 10, Y: 10}})
	assert.Len(t, down, 1)
	assert.Equal(t, ActionLocalUpdate, down[0].Type)
	assert.Equal(t, StateDrawing, c.State())

	move := c.Handle(Event{Type: EvPointerMove, Point: Point{X: 60, Y: 40}})
	assert.Len(t, move, 1)
	assert.Equal(t, ActionLocalUpdate, move[0].Type)
	assert.Equal(t, 50.0, move[0].Shape.Width)
	assert.Equal(t, 30.0, move[0].Shape.Height)

	up := c.Handle(Event{Type: EvPointerUp})
	assert.Len(t, up, 1)
	assert.Equal(t, ActionPut, up[0].Type)
	assert.Equal(t, "id-1", up[0].Shape.ObjectID)
	assert.Equal(t, StateIdle, c.State())

	// The finished shape becomes the selection.
	assert.Equal(t, "id-1", c.SelectedID())
}

func TestControllerDragBackwards(t *testing.T) {
	c := newTestController()
	c.Handle(Event{Type: EvToolSelected, Tool: ToolRectangle})

	c.Handle(Event{Type: EvPointerDown, Point: Point{X: 100, Y: 100}})
	move := c.Handle(Event{Type: EvPointerMove, Point: Point{X: 40, Y: 70}})

	// Dragging up-left still yields a positive-sized box anchored at the
	// pointer.
	assert.Equal(t, 40.0, move[0].Shape.Left)
	assert.Equal(t, 70.0, move[0].Shape.Top)
	assert.Equal(t, 60.0, move[0].Shape.Width)
	assert.Equal(t, 30.0, move[0].Shape.Height)
}

func TestControllerCircleKeepsSquareBounds(t *testing.T) {
	c := newTestController()
	c.Handle(Event{Type: EvToolSelected, Tool: ToolCircle})

	c.Handle(Event{Type: EvPointerDown, Point: Point{X: 0, Y: 0}})
	move := c.Handle(Event{Type: EvPointerMove, Point: Point{X: 30, Y: 80}})

	assert.Equal(t, 80.0, move[0].Shape.Width)
	assert.Equal(t, 80.0, move[0].Shape.Height)
}

func TestControllerToolSwitchCancelsDraft(t *testing.T) {
	c := newTestController()
	c.Handle(Event{Type: EvToolSelected, Tool: ToolRectangle})
	c.Handle(Event{Type: EvPointerDown, Point: Point{X: 0, Y: 0}})
	c.Handle(Event{Type: EvPointerMove, Point: Point{X: 50, Y: 50}})

	actions := c.Handle(Event{Type: EvToolSelected, Tool: ToolSelect})

	// The draft is dropped locally; nothing was ever promoted.
	assert.Len(t, actions, 1)
	assert.Equal(t, ActionLocalUpdate, actions[0].Type)
	assert.Nil(t, actions[0].Shape)
	assert.Equal(t, "id-1", actions[0].ID)
	assert.Equal(t, StateIdle, c.State())

	// A later pointer-up produces no phantom put.
	assert.Empty(t, c.Handle(Event{Type: EvPointerUp}))
}

func TestControllerFreeformWaitsForPathCreated(t *testing.T) {
	c := newTestController()
	c.Handle(Event{Type: EvToolSelected, Tool: ToolFreeform})

	assert.Empty(t, c.Handle(Event{Type: EvPointerDown, Point: Point{X: 0, Y: 0}}))
	assert.Empty(t, c.Handle(Event{Type: EvPointerMove, Point: Point{X: 5, Y: 5}}))
	assert.Empty(t, c.Handle(Event{Type: EvPointerUp}))

	path := &shape.Snapshot{
		Kind: shape.KindFreeform,
		Path: []shape.PathPoint{{X: 0, Y: 0}, {X: 5, Y: 5}},
	}
	actions := c.Handle(Event{Type: EvPathCreated, Shape: path})

	assert.Len(t, actions, 1)
	assert.Equal(t, ActionPut, actions[0].Type)
	// An id is minted when the surface did not carry one.
	assert.Equal(t, "id-1", actions[0].Shape.ObjectID)
}

func TestControllerObjectModifiedSinglePut(t *testing.T) {
	c := newTestController()

	c.Handle(Event{Type: EvObjectMoving})
	assert.Equal(t, StateMoving, c.State())
	c.Handle(Event{Type: EvObjectMoving})

	moved := &shape.Snapshot{ObjectID: "r1", Kind: shape.KindRectangle, Left: 99}
	actions := c.Handle(Event{Type: EvObjectModified, Shape: moved})

	assert.Len(t, actions, 1)
	assert.Equal(t, ActionPut, actions[0].Type)
	assert.Equal(t, 99.0, actions[0].Shape.Left)
	assert.Equal(t, StateIdle, c.State())
}

func TestControllerWheelPansWithoutActions(t *testing.T) {
	c := newTestController()

	assert.Empty(t, c.Handle(Event{Type: EvWheel}))
	assert.Equal(t, StatePanning, c.State())
	assert.Empty(t, c.Handle(Event{Type: EvWheel}))

	// Pointer activity ends the pan.
	c.Handle(Event{Type: EvPointerDown, Point: Point{X: 1, Y: 1}})
	assert.NotEqual(t, StatePanning, c.State())
}

func TestControllerSelection(t *testing.T) {
	c := newTestController()

	c.Handle(Event{Type: EvSelectionCreated, Target: "r1"})
	assert.Equal(t, "r1", c.SelectedID())

	c.Handle(Event{Type: EvSelectionCleared})
	assert.Equal(t, "", c.SelectedID())
}

func TestControllerDeletePressed(t *testing.T) {
	c := newTestController()

	// Nothing selected: no action.
	assert.Empty(t, c.Handle(Event{Type: EvDeletePressed}))

	c.Handle(Event{Type: EvSelectionCreated, Target: "r1"})
	actions := c.Handle(Event{Type: EvDeletePressed})

	assert.Len(t, actions, 1)
	assert.Equal(t, ActionDelete, actions[0].Type)
	assert.Equal(t, "r1", actions[0].ID)
	assert.Equal(t, "", c.SelectedID())
}

func TestControllerMalformedModifiedDropped(t *testing.T) {
	c := newTestController()

	assert.Empty(t, c.Handle(Event{Type: EvObjectModified}))
	assert.Empty(t, c.Handle(Event{Type: EvObjectModified, Shape: &shape.Snapshot{Kind: shape.KindCircle}}))
}

func TestControllerUndoRedoKeys(t *testing.T) {
	c := newTestController()

	undo := c.Handle(Event{Type: EvUndoPressed})
	assert.Equal(t, ActionUndo, undo[0].Type)

	redo := c.Handle(Event{Type: EvRedoPressed})
	assert.Equal(t, ActionRedo, redo[0].Type)
}
