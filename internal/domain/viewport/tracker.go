// Package viewport decides whether a feed viewer follows the live tail of the
// event list. A viewer close enough to the bottom stays pinned and new events
// auto-scroll into view; a viewer who scrolled up is offered a jump-to-live
// affordance instead.
package viewport

// PinThreshold is the maximum distance from the bottom edge, in pixels, at
// which a viewer still counts as pinned.
const PinThreshold = 80.0

// Observation is a single scroll measurement reported by a client.
type Observation struct {
	Offset         float64 `json:"offset" validate:"min=0"`
	ContentHeight  float64 `json:"contentHeight" validate:"gt=0"`
	ViewportHeight float64 `json:"viewportHeight" validate:"gt=0"`
}

// DistanceFromBottom returns how far the visible window's lower edge sits
// above the end of the content. Content shorter than the viewport yields a
// negative distance, which still counts as pinned.
func DistanceFromBottom(obs Observation) float64 {
	return obs.ContentHeight - (obs.Offset + obs.ViewportHeight)
}

// ComputePinned reports whether an observation keeps the viewer on the live
// tail.
func ComputePinned(obs Observation) bool {
	return DistanceFromBottom(obs) < PinThreshold
}

// State is the tracker's answer for one viewer. Exactly one of AutoScroll and
// ShowJumpToLive is set while events are pending; both resolve from Pinned.
type State struct {
	Pinned         bool    `json:"pinned"`
	AutoScroll     bool    `json:"autoScroll"`
	ShowJumpToLive bool    `json:"showJumpToLive"`
	PendingEvents  int     `json:"pendingEvents"`
	Distance       float64 `json:"distanceFromBottom"`
}

// Tracker holds the follow state for a single viewer. Zero value starts
// pinned, matching a freshly opened list scrolled to the end. Tracker is not
// safe for concurrent use; callers serialize access per session.
type Tracker struct {
	pinned   bool
	distance float64
	pending  int
}

// NewTracker returns a tracker in the initial pinned state.
func NewTracker() *Tracker {
	return &Tracker{pinned: true}
}

// Observe records a scroll measurement. Returning to the bottom clears the
// pending-event counter, same as an explicit jump.
func (t *Tracker) Observe(obs Observation) State {
	t.distance = DistanceFromBottom(obs)
	t.pinned = t.distance < PinThreshold
	if t.pinned {
		t.pending = 0
	}
	return t.state()
}

// EventsArrived accounts for newly appended timeline events. Pinned viewers
// consume them immediately; unpinned viewers accumulate them for the
// jump-to-live badge.
func (t *Tracker) EventsArrived(count int) State {
	if count > 0 && !t.pinned {
		t.pending += count
	}
	return t.state()
}

// JumpToLive forces a scroll-to-end and re-pins the viewer.
func (t *Tracker) JumpToLive() State {
	t.pinned = true
	t.distance = 0
	t.pending = 0
	return t.state()
}

// Pinned reports whether the viewer currently follows the live tail.
func (t *Tracker) Pinned() bool {
	return t.pinned
}

func (t *Tracker) state() State {
	return State{
		Pinned:         t.pinned,
		AutoScroll:     t.pinned,
		ShowJumpToLive: !t.pinned && t.pending > 0,
		PendingEvents:  t.pending,
		Distance:       t.distance,
	}
}
