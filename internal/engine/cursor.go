package engine

type CursorMode int

const (
	CursorHidden CursorMode = iota
	CursorChat
	CursorReactionSelector
	CursorReaction
)

// maxChatLength bounds the live-typed chat text.
const maxChatLength = 50

// CursorState tracks which ephemeral cursor overlay is active: nothing,
// the chat bubble, the reaction picker, or an armed reaction. It is
// purely local; only its presence side effects reach peers.
type CursorState struct {
	Mode            CursorMode
	Reaction        string
	Pressed         bool
	Message         string
	PreviousMessage string
}

// PointerMove updates the presence cursor unless the reaction picker is
// open, which suppresses cursor tracking.
func (e *Engine) PointerMove(p Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor.Mode == CursorReactionSelector && e.presence.Cursor != nil {
		return
	}
	e.presence.Cursor = &p
	e.pushPresence()
}

// PointerLeave clears the cursor and any in-progress chat text so peers
// never see a stale last-known position.
func (e *Engine) PointerLeave() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cursor.Mode = CursorHidden
	e.presence = Presence{}
	e.pushPresence()
}

func (e *Engine) PointerDown(p Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.presence.Cursor = &p
	e.pushPresence()

	if e.cursor.Mode == CursorReaction {
		e.cursor.Pressed = true
	}
}

func (e *Engine) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor.Mode == CursorReaction {
		e.cursor.Pressed = false
	}
}

// OpenChat enters cursor-chat mode ("/" shortcut).
func (e *Engine) OpenChat() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cursor = CursorState{Mode: CursorChat}
}

// OpenReactionSelector shows the reaction picker ("e" shortcut).
func (e *Engine) OpenReactionSelector() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cursor = CursorState{Mode: CursorReactionSelector}
}

// SelectReaction arms a reaction symbol; emission starts on pointer-down.
func (e *Engine) SelectReaction(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cursor = CursorState{Mode: CursorReaction, Reaction: symbol}
}

// HideCursor leaves whatever overlay mode is active (Escape) and clears
// the presence message.
func (e *Engine) HideCursor() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cursor = CursorState{Mode: CursorHidden}
	if e.presence.Message != "" {
		e.presence.Message = ""
		e.pushPresence()
	}
}

// ChatInput replaces the in-progress chat text on every keystroke so
// peers watch the typing live.
func (e *Engine) ChatInput(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor.Mode != CursorChat {
		return
	}
	runes := []rune(text)
	if len(runes) > maxChatLength {
		text = string(runes[:maxChatLength])
	}
	e.cursor.Message = text
	e.cursor.PreviousMessage = ""
	e.presence.Message = text
	e.pushPresence()
}

// ChatEnter archives the just-sent text as the previous message and
// resets the input.
func (e *Engine) ChatEnter() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor.Mode != CursorChat {
		return
	}
	e.cursor.PreviousMessage = e.cursor.Message
	e.cursor.Message = ""
}

// ChatEscape leaves chat mode and clears the presence message entirely.
func (e *Engine) ChatEscape() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor.Mode != CursorChat {
		return
	}
	e.cursor = CursorState{Mode: CursorHidden}
	e.presence.Message = ""
	e.pushPresence()
}

// Cursor returns the current local cursor state.
func (e *Engine) Cursor() CursorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// MyPresence returns the presence record as last pushed to peers.
func (e *Engine) MyPresence() Presence {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.presence
}
