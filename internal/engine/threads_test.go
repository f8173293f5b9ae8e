package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadPlacementHappyPath(t *testing.T) {
	e, _, _ := newTestEngine()
	threads := &fakeThreads{}
	e.SetThreadTransport(threads)

	e.ArmThreadComposer()
	assert.Equal(t, PlacementPlacing, e.Placement())

	// First click fixes the anchor and opens the composer.
	e.ThreadClick(Point{X: 120, Y: 80}, false)
	assert.Equal(t, PlacementPlaced, e.Placement())

	// Clicks inside the composer keep it open.
	e.ThreadClick(Point{X: 125, Y: 90}, true)
	assert.Equal(t, PlacementPlaced, e.Placement())

	ok := e.SubmitThread("check alignment")
	assert.True(t, ok)
	assert.Equal(t, PlacementComplete, e.Placement())

	assert.Len(t, threads.created, 1)
	assert.Equal(t, 120.0, threads.created[0].Anchor.X)
	assert.Equal(t, 80.0, threads.created[0].Anchor.Y)
	assert.Equal(t, "check alignment", threads.created[0].Body)
}

func TestThreadPlacementClickOutsideComposerCancels(t *testing.T) {
	e, _, _ := newTestEngine()
	threads := &fakeThreads{}
	e.SetThreadTransport(threads)

	e.ArmThreadComposer()
	e.ThreadClick(Point{X: 10, Y: 10}, false)
	e.ThreadClick(Point{X: 400, Y: 400}, false)

	assert.Equal(t, PlacementComplete, e.Placement())
	assert.False(t, e.SubmitThread("too late"))
	assert.Empty(t, threads.created)
}

func TestThreadPlacementRightClickCancels(t *testing.T) {
	e, _, _ := newTestEngine()

	e.ArmThreadComposer()
	e.ThreadRightClick()
	assert.Equal(t, PlacementComplete, e.Placement())

	e.ArmThreadComposer()
	e.ThreadClick(Point{X: 1, Y: 1}, false)
	e.ThreadRightClick()
	assert.Equal(t, PlacementComplete, e.Placement())
}

func TestThreadToggleDisarms(t *testing.T) {
	e, _, _ := newTestEngine()

	e.ArmThreadComposer()
	e.ArmThreadComposer()
	assert.Equal(t, PlacementComplete, e.Placement())
}

func TestSubmitThreadEmptyBodyDiscarded(t *testing.T) {
	e, _, _ := newTestEngine()
	threads := &fakeThreads{}
	e.SetThreadTransport(threads)

	e.ArmThreadComposer()
	e.ThreadClick(Point{X: 5, Y: 5}, false)

	assert.False(t, e.SubmitThread("   "))
	assert.Empty(t, threads.created)
	// Placement still ends.
	assert.Equal(t, PlacementComplete, e.Placement())
}

func TestSubmitThreadWithoutTransport(t *testing.T) {
	e, _, _ := newTestEngine()

	e.ArmThreadComposer()
	e.ThreadClick(Point{X: 5, Y: 5}, false)

	assert.False(t, e.SubmitThread("body"))
}

func TestFocusThreadForwardsToRegistry(t *testing.T) {
	e, _, _ := newTestEngine()
	threads := &fakeThreads{}
	e.SetThreadTransport(threads)

	e.FocusThread("t-1")
	assert.Equal(t, []string{"t-1"}, threads.focused)
}
