package drag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/drag"
	"wordmatch-service/internal/geometry"
	"wordmatch-service/internal/linkstore"
)

func newBoard() *geometry.Board {
	board := geometry.NewBoard()
	board.SetSurface(geometry.Rect{Left: 10, Top: 10, Width: 500, Height: 300})
	for i, id := range []string{"1", "2"} {
		top := float64(20 + i*50)
		board.SetItem(domain.ItemRef{ID: id, Side: domain.Left},
			geometry.Rect{Left: 20, Top: top, Width: 100, Height: 30},
			geometry.Rect{Left: 114, Top: top + 12, Width: 6, Height: 6})
		board.SetItem(domain.ItemRef{ID: id, Side: domain.Right},
			geometry.Rect{Left: 300, Top: top, Width: 100, Height: 30},
			geometry.Rect{Left: 300, Top: top + 12, Width: 6, Height: 6})
	}
	return board
}

func left(id string) domain.Item  { return domain.Item{ID: id, Side: domain.Left, Text: "w" + id} }
func right(id string) domain.Item { return domain.Item{ID: id, Side: domain.Right, Text: "m" + id} }

func TestBeginAnchorsAtConnector(t *testing.T) {
	tracker := &lineTracker{}
	session := drag.NewSession(newBoard(), linkstore.New(), tracker)

	replaced := session.Begin(left("1"))

	assert.False(t, replaced)
	assert.Equal(t, drag.Dragging, session.State())
	assert.Equal(t, geometry.Point{X: 107, Y: 25}, session.Endpoint())
	assert.True(t, tracker.visible)
	assert.Equal(t, session.Endpoint(), tracker.from)
}

func TestMoveUpdatesOnlyEndpoint(t *testing.T) {
	store := linkstore.New()
	tracker := &lineTracker{}
	session := drag.NewSession(newBoard(), store, tracker)

	assert.False(t, session.Move(geometry.Point{X: 50, Y: 50}), "move while idle is ignored")

	session.Begin(left("1"))
	require.True(t, session.Move(geometry.Point{X: 210, Y: 110}))

	assert.Equal(t, geometry.Point{X: 200, Y: 100}, session.Endpoint())
	assert.Equal(t, geometry.Point{X: 200, Y: 100}, tracker.to)
	assert.Zero(t, store.Len())
}

func TestEndCommitsOppositeSides(t *testing.T) {
	tests := []struct {
		name   string
		anchor domain.Item
		target domain.Item
		want   domain.Link
	}{
		{name: "left to right", anchor: left("1"), target: right("2"), want: domain.Link{LeftID: "1", RightID: "2"}},
		{name: "right to left", anchor: right("1"), target: left("2"), want: domain.Link{LeftID: "2", RightID: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := linkstore.New()
			tracker := &lineTracker{}
			session := drag.NewSession(newBoard(), store, tracker)

			session.Begin(tt.anchor)
			target := tt.target
			out := session.End(&target)

			assert.True(t, out.Committed)
			assert.Equal(t, drag.ReasonCommitted, out.Reason)
			assert.Equal(t, tt.want, out.Link)
			assert.Equal(t, []domain.Link{tt.want}, store.Entries())
			assert.Equal(t, drag.Idle, session.State())
			assert.False(t, tracker.visible)
		})
	}
}

func TestInvalidReleasesCancelWithoutMutation(t *testing.T) {
	l1, l2, r1 := left("1"), left("2"), right("1")
	tests := []struct {
		name   string
		anchor domain.Item
		target *domain.Item
		reason drag.Reason
	}{
		{name: "no target", anchor: left("1"), target: nil, reason: drag.ReasonNoTarget},
		{name: "same item", anchor: left("1"), target: &l1, reason: drag.ReasonSameItem},
		{name: "same side", anchor: left("1"), target: &l2, reason: drag.ReasonSameSide},
		{name: "same item right", anchor: right("1"), target: &r1, reason: drag.ReasonSameItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := linkstore.New()
			store.Set("2", "2")
			before := store.Entries()
			session := drag.NewSession(newBoard(), store, nil)

			session.Begin(tt.anchor)
			out := session.End(tt.target)

			assert.False(t, out.Committed)
			assert.Equal(t, tt.reason, out.Reason)
			assert.Equal(t, before, store.Entries())
			assert.Equal(t, drag.Idle, session.State())
		})
	}
}

func TestEndWhileIdle(t *testing.T) {
	session := drag.NewSession(newBoard(), linkstore.New(), nil)
	target := right("1")
	out := session.End(&target)
	assert.Equal(t, drag.ReasonNotDragging, out.Reason)
}

func TestBeginWhileDraggingCancelsPrevious(t *testing.T) {
	store := linkstore.New()
	tracker := &lineTracker{}
	session := drag.NewSession(newBoard(), store, tracker)

	session.Begin(left("1"))
	session.Move(geometry.Point{X: 400, Y: 200})
	replaced := session.Begin(left("2"))

	require.True(t, replaced)
	anchor, ok := session.Anchor()
	require.True(t, ok)
	assert.Equal(t, left("2"), anchor)
	assert.Equal(t, geometry.Point{X: 107, Y: 75}, session.Endpoint())
	assert.Equal(t, 1, tracker.ended)

	target := right("1")
	out := session.End(&target)
	assert.Equal(t, domain.Link{LeftID: "2", RightID: "1"}, out.Link)
}

func TestCancel(t *testing.T) {
	store := linkstore.New()
	session := drag.NewSession(newBoard(), store, nil)
	assert.False(t, session.Cancel())

	session.Begin(right("2"))
	assert.True(t, session.Cancel())
	assert.Equal(t, drag.Idle, session.State())
	_, ok := session.Anchor()
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

type lineTracker struct {
	visible  bool
	from, to geometry.Point
	ended    int
}

func (l *lineTracker) DragStarted(from geometry.Point) {
	l.visible = true
	l.from, l.to = from, from
}

func (l *lineTracker) DragMoved(to geometry.Point) { l.to = to }

func (l *lineTracker) DragEnded() {
	l.visible = false
	l.ended++
}
