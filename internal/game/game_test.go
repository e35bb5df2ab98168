package game_test

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/drag"
	"wordmatch-service/internal/game"
	"wordmatch-service/internal/geometry"
	"wordmatch-service/internal/lookup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleItems() []domain.SetItem {
	return []domain.SetItem{
		{ID: "1", LeftText: "학교", RightText: "a place where students learn"},
		{ID: "2", LeftText: "병원", RightText: "a place where doctors treat patients"},
		{ID: "3", LeftText: "도서관", RightText: "a place to borrow books"},
	}
}

// layOut places the cards the way a two-column page would.
func layOut(board *geometry.Board, g *game.Game) {
	board.SetSurface(geometry.Rect{Left: 8, Top: 8, Width: 640, Height: 480})
	left, right := g.Columns()
	for i, it := range left {
		y := float64(20 + 60*i)
		board.SetItem(it.Ref(),
			geometry.Rect{Left: 20, Top: y, Width: 200, Height: 44},
			geometry.Rect{Left: 210, Top: y + 18, Width: 8, Height: 8})
	}
	for i, it := range right {
		y := float64(20 + 60*i)
		board.SetItem(it.Ref(),
			geometry.Rect{Left: 420, Top: y, Width: 200, Height: 44},
			geometry.Rect{Left: 422, Top: y + 18, Width: 8, Height: 8})
	}
}

// newGame builds a game whose mount is filled in after the columns are known,
// like a page laying out cards once they exist.
func newGame(t *testing.T, opts ...game.Option) (*game.Game, *geometry.Board) {
	t.Helper()
	board := geometry.NewBoard()
	g, err := game.New(board, sampleItems(), append([]game.Option{game.WithRand(rand.New(rand.NewSource(1)))}, opts...)...)
	require.NoError(t, err)
	layOut(board, g)
	return g, board
}

func ref(id string, side domain.Side) domain.ItemRef {
	return domain.ItemRef{ID: id, Side: side}
}

func link(g *game.Game, leftID, rightID string) drag.Outcome {
	g.PointerDown(ref(leftID, domain.Left))
	target := ref(rightID, domain.Right)
	return g.PointerUp(&target)
}

func TestScoringAfterStealThroughGestures(t *testing.T) {
	g, _ := newGame(t)

	require.True(t, link(g, "1", "1").Committed)
	require.True(t, link(g, "2", "3").Committed)
	require.True(t, link(g, "3", "3").Committed)

	assert.Equal(t, []domain.Link{{LeftID: "1", RightID: "1"}, {LeftID: "3", RightID: "3"}}, g.Links())
	report := g.Check()
	assert.Equal(t, domain.ScoreResult{CorrectCount: 2, Total: 3}, report.Result)
	assert.False(t, report.Passed)
}

func TestFullMatch(t *testing.T) {
	g, _ := newGame(t)
	for _, id := range []string{"1", "2", "3"} {
		link(g, id, id)
	}
	report := g.Check()
	assert.Equal(t, domain.ScoreResult{CorrectCount: 3, Total: 3}, report.Result)
	assert.True(t, report.Passed)
}

func TestDragFromRightColumn(t *testing.T) {
	g, _ := newGame(t)
	require.True(t, g.PointerDown(ref("2", domain.Right)))
	target := ref("1", domain.Left)
	out := g.PointerUp(&target)

	assert.True(t, out.Committed)
	assert.Equal(t, []domain.Link{{LeftID: "1", RightID: "2"}}, g.Links())
}

func TestCancelledGesturesLeaveLinksUnchanged(t *testing.T) {
	g, _ := newGame(t)
	link(g, "1", "2")
	before := g.Links()

	g.PointerDown(ref("3", domain.Left))
	g.PointerMove(geometry.Point{X: 300, Y: 300})
	assert.Equal(t, drag.ReasonNoTarget, g.PointerUp(nil).Reason)

	g.PointerDown(ref("3", domain.Left))
	same := ref("1", domain.Left)
	assert.Equal(t, drag.ReasonSameSide, g.PointerUp(&same).Reason)

	g.PointerDown(ref("3", domain.Left))
	self := ref("3", domain.Left)
	assert.Equal(t, drag.ReasonSameItem, g.PointerUp(&self).Reason)

	g.PointerDown(ref("3", domain.Left))
	unknown := ref("9", domain.Right)
	assert.Equal(t, drag.ReasonNoTarget, g.PointerUp(&unknown).Reason)

	assert.Equal(t, before, g.Links())
	assert.False(t, g.Dragging())
	assert.Nil(t, g.Scene().Drag)
}

func TestPointerDownOnUnknownItemIsIgnored(t *testing.T) {
	g, _ := newGame(t)
	assert.False(t, g.PointerDown(ref("nope", domain.Left)))
	assert.False(t, g.Dragging())
}

func TestDragLineIsVisibleWhileDragging(t *testing.T) {
	g, board := newGame(t)
	g.PointerDown(ref("1", domain.Left))
	g.PointerMove(geometry.Point{X: 308, Y: 108})

	scene := g.Scene()
	require.NotNil(t, scene.Drag)
	assert.Equal(t, geometry.ConnectorPosition(board, ref("1", domain.Left)), scene.Drag.From)
	assert.Equal(t, geometry.Point{X: 300, Y: 100}, scene.Drag.To)

	assert.True(t, g.CancelGesture())
	assert.Nil(t, g.Scene().Drag)
}

func TestSceneTracksLinksThroughGestures(t *testing.T) {
	g, board := newGame(t)
	rnd := rand.New(rand.NewSource(3))
	ids := []string{"1", "2", "3"}
	sides := []domain.Side{domain.Left, domain.Right}

	for step := 0; step < 300; step++ {
		g.PointerDown(ref(ids[rnd.Intn(3)], sides[rnd.Intn(2)]))
		if rnd.Intn(6) == 0 {
			g.PointerUp(nil)
		} else {
			target := ref(ids[rnd.Intn(3)], sides[rnd.Intn(2)])
			g.PointerUp(&target)
		}

		scene := g.Scene()
		if diff := cmp.Diff(g.Links(), scene.Links()); diff != "" {
			t.Fatalf("step %d: scene diverged (-links +scene):\n%s", step, diff)
		}
		var connected []domain.ItemRef
		for _, l := range g.Links() {
			connected = append(connected, ref(l.LeftID, domain.Left), ref(l.RightID, domain.Right))
		}
		sort.Slice(connected, func(i, j int) bool {
			if connected[i].Side != connected[j].Side {
				return connected[i].Side == domain.Left
			}
			return connected[i].ID < connected[j].ID
		})
		if len(connected) == 0 {
			connected = []domain.ItemRef{}
		}
		if diff := cmp.Diff(connected, scene.Connected); diff != "" {
			t.Fatalf("step %d: connected state diverged:\n%s", step, diff)
		}
		for _, line := range scene.Lines {
			require.Equal(t, geometry.ConnectorPosition(board, ref(line.LeftID, domain.Left)), line.From)
			require.Equal(t, geometry.ConnectorPosition(board, ref(line.RightID, domain.Right)), line.To)
		}
	}
}

func TestShuffleIsCosmetic(t *testing.T) {
	g, _ := newGame(t)
	left, right := g.Columns()

	var leftIDs, rightIDs []string
	for _, it := range left {
		leftIDs = append(leftIDs, it.ID)
		assert.Equal(t, domain.Left, it.Side)
	}
	for _, it := range right {
		rightIDs = append(rightIDs, it.ID)
		assert.Equal(t, domain.Right, it.Side)
	}
	assert.Equal(t, []string{"1", "2", "3"}, leftIDs)
	assert.ElementsMatch(t, leftIDs, rightIDs)
	assert.Equal(t, domain.AnswerKey{
		{ID: "1", CorrectRightID: "1"},
		{ID: "2", CorrectRightID: "2"},
		{ID: "3", CorrectRightID: "3"},
	}, g.AnswerKey())

	meaning, ok := g.Item(ref("3", domain.Right))
	require.True(t, ok)
	assert.Equal(t, "a place to borrow books", meaning.Text)
}

func TestNewFailsFast(t *testing.T) {
	_, err := game.New(nil, sampleItems())
	assert.ErrorIs(t, err, domain.ErrMissingMount)

	tests := []struct {
		name  string
		items []domain.SetItem
		want  domain.ItemErrors
	}{
		{
			name:  "empty",
			items: nil,
			want:  domain.ItemErrors{{Index: -1, Field: "items", Message: "must contain at least one item"}},
		},
		{
			name:  "missing meaning",
			items: []domain.SetItem{{ID: "1", LeftText: "학교"}},
			want:  domain.ItemErrors{{Index: 0, Field: "meaning", Message: "is required"}},
		},
		{
			name: "duplicate id",
			items: []domain.SetItem{
				{ID: "1", LeftText: "학교", RightText: "school"},
				{ID: "1", LeftText: "병원", RightText: "hospital"},
			},
			want: domain.ItemErrors{{Index: 1, Field: "id", Message: "duplicates items[0]"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := game.New(geometry.NewBoard(), tt.items)
			assert.Nil(t, g)
			require.ErrorIs(t, err, domain.ErrMalformedItems)
			var got domain.ItemErrors
			require.True(t, errors.As(err, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActivateRecordCallsHost(t *testing.T) {
	var picked []lookup.Record
	g, _ := newGame(t, game.WithItemActivated(func(rec lookup.Record) {
		picked = append(picked, rec)
	}))

	g.ActivateRecord(lookup.Record{ID: "w1", Text: "학교", Grade: "1급"})

	require.Len(t, picked, 1)
	assert.Equal(t, "학교", picked[0].Text)
}

func TestGamesDoNotShareState(t *testing.T) {
	a, _ := newGame(t)
	b, _ := newGame(t)

	link(a, "1", "1")

	assert.Len(t, a.Links(), 1)
	assert.Empty(t, b.Links())
}
