// Package render mirrors link store contents as drawable line segments.
package render

import (
	"sort"

	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/geometry"
)

// Line is a committed link as drawn on the surface.
type Line struct {
	LeftID  string         `json:"leftId"`
	RightID string         `json:"rightId"`
	From    geometry.Point `json:"from"`
	To      geometry.Point `json:"to"`
}

// DragLine is the transient line that follows the pointer.
type DragLine struct {
	From geometry.Point `json:"from"`
	To   geometry.Point `json:"to"`
}

// Scene is everything a presentation layer needs to draw the links.
type Scene struct {
	Lines     []Line           `json:"lines"`
	Connected []domain.ItemRef `json:"connected"`
	Drag      *DragLine        `json:"drag,omitempty"`
}

// Links returns the link identities of the drawn lines.
func (s Scene) Links() []domain.Link {
	out := make([]domain.Link, 0, len(s.Lines))
	for _, l := range s.Lines {
		out = append(out, domain.Link{LeftID: l.LeftID, RightID: l.RightID})
	}
	return out
}

// IsConnected reports whether ref is drawn in the connected state.
func (s Scene) IsConnected(ref domain.ItemRef) bool {
	for _, c := range s.Connected {
		if c == ref {
			return true
		}
	}
	return false
}

// Sync keeps a Scene consistent with a link store. It implements
// linkstore.Observer and drag.Tracker. Endpoints are measured once, when the
// link is set.
type Sync struct {
	layout    geometry.Layout
	lines     map[string]Line
	connected map[domain.ItemRef]struct{}
	drag      *DragLine
}

// Source is the read side of a link store used to seed a new Sync.
type Source interface {
	Entries() []domain.Link
}

// NewSync builds a mirror of src measured against layout.
func NewSync(layout geometry.Layout, src Source) *Sync {
	s := &Sync{
		layout:    layout,
		lines:     make(map[string]Line),
		connected: make(map[domain.ItemRef]struct{}),
	}
	if src != nil {
		for _, link := range src.Entries() {
			s.LinkSet(link)
		}
	}
	return s
}

// LinkSet draws a line for link and marks both ends connected.
func (s *Sync) LinkSet(link domain.Link) {
	leftRef := domain.ItemRef{ID: link.LeftID, Side: domain.Left}
	rightRef := domain.ItemRef{ID: link.RightID, Side: domain.Right}
	s.lines[link.LeftID] = Line{
		LeftID:  link.LeftID,
		RightID: link.RightID,
		From:    geometry.ConnectorPosition(s.layout, leftRef),
		To:      geometry.ConnectorPosition(s.layout, rightRef),
	}
	s.connected[leftRef] = struct{}{}
	s.connected[rightRef] = struct{}{}
}

// LinkRemoved erases the line and clears the connected state of both ends,
// including a right item whose link was stolen.
func (s *Sync) LinkRemoved(link domain.Link) {
	delete(s.lines, link.LeftID)
	delete(s.connected, domain.ItemRef{ID: link.LeftID, Side: domain.Left})
	delete(s.connected, domain.ItemRef{ID: link.RightID, Side: domain.Right})
}

// DragStarted shows the drag line collapsed on its anchor.
func (s *Sync) DragStarted(from geometry.Point) {
	s.drag = &DragLine{From: from, To: from}
}

// DragMoved moves the loose end of the drag line.
func (s *Sync) DragMoved(to geometry.Point) {
	if s.drag != nil {
		s.drag.To = to
	}
}

// DragEnded hides the drag line.
func (s *Sync) DragEnded() {
	s.drag = nil
}

// Scene returns a snapshot ordered by left id, connected items left side first.
func (s *Sync) Scene() Scene {
	scene := Scene{
		Lines:     make([]Line, 0, len(s.lines)),
		Connected: make([]domain.ItemRef, 0, len(s.connected)),
	}
	for _, l := range s.lines {
		scene.Lines = append(scene.Lines, l)
	}
	sort.Slice(scene.Lines, func(i, j int) bool {
		return scene.Lines[i].LeftID < scene.Lines[j].LeftID
	})
	for ref := range s.connected {
		scene.Connected = append(scene.Connected, ref)
	}
	sort.Slice(scene.Connected, func(i, j int) bool {
		a, b := scene.Connected[i], scene.Connected[j]
		if a.Side != b.Side {
			return a.Side == domain.Left
		}
		return a.ID < b.ID
	})
	if s.drag != nil {
		d := *s.drag
		scene.Drag = &d
	}
	return scene
}
