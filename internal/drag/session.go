// Package drag tracks one in-progress link gesture.
//
// A Session is Idle until Begin anchors it on an item, stays Dragging while
// the pointer moves, and returns to Idle on End or Cancel. Only a committed
// End touches the link store.
package drag

import (
	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/geometry"
)

// State of a Session.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Reason explains how a gesture ended.
type Reason string

const (
	ReasonCommitted   Reason = "committed"
	ReasonNoTarget    Reason = "no_target"
	ReasonSameItem    Reason = "same_item"
	ReasonSameSide    Reason = "same_side"
	ReasonNotDragging Reason = "not_dragging"
	ReasonReplaced    Reason = "replaced"
	ReasonCancelled   Reason = "cancelled"
)

// Outcome is what End reports back to the caller.
type Outcome struct {
	Committed bool        `json:"committed"`
	Link      domain.Link `json:"link"`
	Reason    Reason      `json:"reason"`
}

// Committer receives the link of a committed gesture.
type Committer interface {
	Set(leftID, rightID string)
}

// Tracker mirrors the transient drag line. Coordinates are surface-local.
type Tracker interface {
	DragStarted(from geometry.Point)
	DragMoved(to geometry.Point)
	DragEnded()
}

// Session is the gesture state machine. Not safe for concurrent use.
type Session struct {
	layout   geometry.Layout
	links    Committer
	tracker  Tracker
	state    State
	anchor   domain.Item
	endpoint geometry.Point
}

// NewSession binds a session to the surface it measures against and the store
// it commits to. tracker may be nil.
func NewSession(layout geometry.Layout, links Committer, tracker Tracker) *Session {
	return &Session{layout: layout, links: links, tracker: tracker}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Anchor returns the item the gesture started on.
func (s *Session) Anchor() (domain.Item, bool) {
	return s.anchor, s.state == Dragging
}

// Endpoint returns the loose end of the drag line in surface coordinates.
func (s *Session) Endpoint() geometry.Point {
	return s.endpoint
}

// Begin starts a gesture on anchor. A gesture already in progress is cancelled
// first; the returned bool reports whether that happened.
func (s *Session) Begin(anchor domain.Item) bool {
	replaced := false
	if s.state == Dragging {
		s.reset()
		replaced = true
	}

	s.state = Dragging
	s.anchor = anchor
	s.endpoint = geometry.ConnectorPosition(s.layout, anchor.Ref())
	if s.tracker != nil {
		s.tracker.DragStarted(s.endpoint)
	}
	return replaced
}

// Move follows the pointer. client is in screen coordinates. It reports
// whether a gesture was in progress.
func (s *Session) Move(client geometry.Point) bool {
	if s.state != Dragging {
		return false
	}
	s.endpoint = geometry.ToLocal(s.layout.SurfaceRect(), client)
	if s.tracker != nil {
		s.tracker.DragMoved(s.endpoint)
	}
	return true
}

// End finishes the gesture over target (nil when released over empty space).
// The link is committed only when target is an item on the other side from
// the anchor; every other release is a cancel. The session is Idle afterwards.
func (s *Session) End(target *domain.Item) Outcome {
	if s.state != Dragging {
		return Outcome{Reason: ReasonNotDragging}
	}
	anchor := s.anchor
	s.reset()

	switch {
	case target == nil:
		return Outcome{Reason: ReasonNoTarget}
	case target.Ref() == anchor.Ref():
		return Outcome{Reason: ReasonSameItem}
	case target.Side == anchor.Side:
		return Outcome{Reason: ReasonSameSide}
	}

	link := domain.Link{LeftID: anchor.ID, RightID: target.ID}
	if anchor.Side == domain.Right {
		link = domain.Link{LeftID: target.ID, RightID: anchor.ID}
	}
	s.links.Set(link.LeftID, link.RightID)
	return Outcome{Committed: true, Link: link, Reason: ReasonCommitted}
}

// Cancel abandons the gesture without touching the store.
func (s *Session) Cancel() bool {
	if s.state != Dragging {
		return false
	}
	s.reset()
	return true
}

func (s *Session) reset() {
	s.state = Idle
	s.anchor = domain.Item{}
	s.endpoint = geometry.Point{}
	if s.tracker != nil {
		s.tracker.DragEnded()
	}
}
