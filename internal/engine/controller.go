package engine

import (
	"collaborative-whiteboard/internal/shape"

	"github.com/google/uuid"
)

type Tool string

const (
	ToolSelect    Tool = "select"
	ToolRectangle Tool = "rectangle"
	ToolTriangle  Tool = "triangle"
	ToolCircle    Tool = "circle"
	ToolLine      Tool = "line"
	ToolText      Tool = "text"
	ToolFreeform  Tool = "freeform"
	ToolImage     Tool = "image"
	ToolComments  Tool = "comments"
)

// drags reports whether the tool constructs a shape across a
// pointer-down/move/up gesture. Freeform is excluded: the surface's own
// drawing mode builds the stroke and reports it as a single path-created
// event.
func (t Tool) drags() bool {
	switch t {
	case ToolRectangle, ToolTriangle, ToolCircle, ToolLine:
		return true
	}
	return false
}

type GestureState int

const (
	StateIdle GestureState = iota
	StateDrawing
	StateMoving
	StateScaling
	StateEditingText
	StatePanning
)

type EventType int

const (
	EvPointerDown EventType = iota
	EvPointerMove
	EvPointerUp
	EvPathCreated
	EvObjectModified
	EvObjectMoving
	EvObjectScaling
	EvSelectionCreated
	EvSelectionCleared
	EvWheel
	EvResize
	EvToolSelected
	EvDeletePressed
	EvUndoPressed
	EvRedoPressed
)

// Event is the single tagged intake for everything the rendering surface
// and keyboard report. Target names the shape under the pointer, empty
// for bare canvas. Shape carries completed geometry on modified,
// path-created and selection events.
type Event struct {
	Type   EventType
	Point  Point
	Target string
	Shape  *shape.Snapshot
	Tool   Tool
}

type ActionType int

const (
	// ActionPut promotes a finished snapshot to the shared store.
	ActionPut ActionType = iota
	// ActionDelete removes one shape from the shared store.
	ActionDelete
	// ActionLocalUpdate changes only the local render state: a draft
	// preview while a gesture is in progress (Shape set), or dropping
	// that preview (Shape nil, ID set).
	ActionLocalUpdate
	ActionUndo
	ActionRedo
)

type Action struct {
	Type  ActionType
	Shape *shape.Snapshot
	ID    string
}

// Controller is the local interaction state machine. It owns which tool
// is active, which gesture is mid-flight and which shape is selected --
// state that never leaves this client -- and emits the small set of
// explicit actions other components consume. Completion transitions are
// the only ones that produce durable writes.
type Controller struct {
	tool     Tool
	state    GestureState
	draft    *shape.Snapshot
	origin   Point
	selected string

	newID func() string
}

func NewController() *Controller {
	return &Controller{
		tool:  ToolSelect,
		newID: uuid.NewString,
	}
}

func (c *Controller) Tool() Tool          { return c.tool }
func (c *Controller) State() GestureState { return c.state }
func (c *Controller) SelectedID() string  { return c.selected }

// Handle feeds one event through the state machine and returns the
// actions it produced, in order.
func (c *Controller) Handle(ev Event) []Action {
	// Any pointer activity ends a wheel-driven pan.
	if c.state == StatePanning && ev.Type != EvWheel {
		c.state = StateIdle
	}

	switch ev.Type {
	case EvToolSelected:
		return c.selectTool(ev.Tool)

	case EvPointerDown:
		return c.pointerDown(ev)

	case EvPointerMove:
		return c.pointerMove(ev)

	case EvPointerUp:
		return c.pointerUp()

	case EvPathCreated:
		return c.pathCreated(ev)

	case EvObjectModified:
		// Completion of a move/scale/text-edit gesture: exactly one put.
		c.state = StateIdle
		if ev.Shape == nil || ev.Shape.Validate() != nil {
			return nil
		}
		return []Action{{Type: ActionPut, Shape: ev.Shape}}

	case EvObjectMoving:
		c.state = StateMoving
		return nil

	case EvObjectScaling:
		c.state = StateScaling
		return nil

	case EvSelectionCreated:
		c.selected = ev.Target
		return nil

	case EvSelectionCleared:
		c.selected = ""
		return nil

	case EvWheel:
		// Zoom and pan never touch the shape store.
		if c.state == StateIdle || c.state == StatePanning {
			c.state = StatePanning
		}
		return nil

	case EvResize:
		return nil

	case EvDeletePressed:
		if c.selected == "" {
			return nil
		}
		id := c.selected
		c.selected = ""
		return []Action{{Type: ActionDelete, ID: id}}

	case EvUndoPressed:
		return []Action{{Type: ActionUndo}}

	case EvRedoPressed:
		return []Action{{Type: ActionRedo}}
	}

	return nil
}

// selectTool switches the active tool. A shape mid-draw is cancelled
// without a store write.
func (c *Controller) selectTool(tool Tool) []Action {
	var actions []Action
	if c.state == StateDrawing || c.state == StateEditingText {
		if c.draft != nil {
			actions = append(actions, Action{Type: ActionLocalUpdate, ID: c.draft.ObjectID})
			c.draft = nil
		}
		c.state = StateIdle
	}
	c.tool = tool
	return actions
}

func (c *Controller) pointerDown(ev Event) []Action {
	switch {
	case c.tool.drags() && ev.Target == "":
		c.origin = ev.Point
		c.draft = newShapeAt(c.tool, ev.Point, c.newID())
		c.state = StateDrawing
		return []Action{{Type: ActionLocalUpdate, Shape: c.draft, ID: c.draft.ObjectID}}

	case c.tool == ToolText && ev.Target == "":
		c.draft = newShapeAt(c.tool, ev.Point, c.newID())
		c.state = StateEditingText
		return []Action{{Type: ActionLocalUpdate, Shape: c.draft, ID: c.draft.ObjectID}}

	case c.tool == ToolFreeform:
		// The surface's free-drawing mode owns the stroke until it
		// reports path-created.
		c.state = StateDrawing
		return nil

	case c.tool == ToolSelect && ev.Target != "":
		c.selected = ev.Target
		return nil
	}
	return nil
}

// pointerMove resizes the in-progress draft. Only local render state is
// updated, nothing is shared until the gesture completes.
func (c *Controller) pointerMove(ev Event) []Action {
	if c.state != StateDrawing || c.draft == nil {
		return nil
	}
	stretchShape(c.draft, c.origin, ev.Point)
	return []Action{{Type: ActionLocalUpdate, Shape: c.draft, ID: c.draft.ObjectID}}
}

func (c *Controller) pointerUp() []Action {
	switch c.state {
	case StateDrawing:
		c.state = StateIdle
		if c.draft == nil {
			// Freeform: the follow-up path-created event carries the put.
			return nil
		}
		done := c.draft
		c.draft = nil
		c.selected = done.ObjectID
		return []Action{{Type: ActionPut, Shape: done}}

	case StateEditingText:
		// Text stays in edit mode until the surface reports the edit
		// complete via object-modified.
		return nil

	case StateMoving, StateScaling:
		// Completion puts arrive via object-modified.
		c.state = StateIdle
		return nil
	}
	return nil
}

func (c *Controller) pathCreated(ev Event) []Action {
	c.state = StateIdle
	if ev.Shape == nil {
		return nil
	}
	s := *ev.Shape
	if s.ObjectID == "" {
		s.ObjectID = c.newID()
	}
	if s.Kind == "" {
		s.Kind = KindOf(ToolFreeform)
	}
	if s.Validate() != nil {
		return nil
	}
	return []Action{{Type: ActionPut, Shape: &s}}
}
