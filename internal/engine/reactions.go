package engine

import (
	"sync"
	"time"
)

const (
	// reactionHorizon is how long a reaction stays visible.
	reactionHorizon = 4000 * time.Millisecond
	// reactionSweepEvery is the prune interval.
	reactionSweepEvery = 1000 * time.Millisecond
	// reactionEmitEvery is the emission rate while the reaction tool is
	// held down.
	reactionEmitEvery = 100 * time.Millisecond
)

// ReactionList is the local, time-windowed display list of reaction
// events. Appends come from self-emission and from the network; the
// periodic sweep discards anything older than the horizon. The lock is
// held only for the copy or filter itself, so an append is never stuck
// behind a sweep.
type ReactionList struct {
	mu      sync.Mutex
	now     func() time.Time
	horizon time.Duration
	items   []Reaction
}

func NewReactionList(now func() time.Time) *ReactionList {
	if now == nil {
		now = time.Now
	}
	return &ReactionList{
		now:     now,
		horizon: reactionHorizon,
	}
}

func (l *ReactionList) Append(r Reaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, r)
}

// Visible returns a copy of the currently held reactions.
func (l *ReactionList) Visible() []Reaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Reaction, len(l.items))
	copy(out, l.items)
	return out
}

// Sweep drops every reaction older than the horizon.
func (l *ReactionList) Sweep() {
	cutoff := l.now().Add(-l.horizon)

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0]
	for _, r := range l.items {
		if r.Timestamp.After(cutoff) {
			kept = append(kept, r)
		}
	}
	l.items = kept
}
