// Package tui plays a matching game in a terminal. Cards are laid out in two
// columns of cells; dragging with the left mouse button links them.
package tui

import (
	"context"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/game"
	"wordmatch-service/internal/geometry"
	"wordmatch-service/internal/score"
)

const (
	marginX  = 2
	firstRow = 2
	rowGap   = 2
	minGap   = 8
)

var (
	styleCard      = tcell.StyleDefault
	styleConnected = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleAnchor    = tcell.StyleDefault.Reverse(true)
	styleLine      = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleDrag      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus    = tcell.StyleDefault.Dim(true)
	stylePassed    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFailed    = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Player drives one game from terminal events. It is used from a single
// goroutine: Run, or a test calling HandleEvent and Draw in turn.
type Player struct {
	screen tcell.Screen
	board  *geometry.Board
	game   *game.Game
	title  string
	logger *zap.Logger

	pressed bool
	report  *score.Report
}

// NewPlayer builds the game for set and lays it out on screen.
func NewPlayer(screen tcell.Screen, set domain.MatchingSet, logger *zap.Logger, opts ...game.Option) (*Player, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	board := geometry.NewBoard()
	g, err := game.New(board, set.Items, append([]game.Option{game.WithID(set.ID), game.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, err
	}
	p := &Player{screen: screen, board: board, game: g, title: set.Title, logger: logger}
	p.layout()
	return p, nil
}

// Game exposes the underlying game.
func (p *Player) Game() *game.Game {
	return p.game
}

// Run polls events until the player quits or ctx is done.
func (p *Player) Run(ctx context.Context) error {
	p.screen.EnableMouse()
	defer p.screen.DisableMouse()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	p.Draw()
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok && ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := p.HandleEvent(ev); quit {
			return nil
		}
		p.Draw()
	}
}

// HandleEvent applies one terminal event and reports whether the player asked
// to quit.
func (p *Player) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		p.layout()
		p.screen.Sync()
	case *tcell.EventMouse:
		p.handleMouse(ev)
	case *tcell.EventKey:
		return p.handleKey(ev)
	}
	return false
}

func (p *Player) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	client := cellCenter(x, y)
	down := ev.Buttons()&tcell.Button1 != 0

	switch {
	case down && !p.pressed:
		p.pressed = true
		if ref, ok := p.board.HitTest(client); ok {
			p.report = nil
			p.game.PointerDown(ref)
		}
	case down:
		p.game.PointerMove(client)
	case p.pressed:
		p.pressed = false
		var target *domain.ItemRef
		if ref, ok := p.board.HitTest(client); ok {
			target = &ref
		}
		p.game.PointerUp(target)
	}
}

func (p *Player) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		if p.game.Dragging() {
			p.pressed = false
			p.game.CancelGesture()
			return false
		}
		return true
	case tcell.KeyEnter:
		p.check()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'c':
			p.check()
		}
	}
	return false
}

func (p *Player) check() {
	report := p.game.Check()
	p.report = &report
}

// layout assigns every card a one-row box: words on the left, meanings on the
// right, connectors on the facing edges.
func (p *Player) layout() {
	w, h := p.screen.Size()
	p.board.SetSurface(geometry.Rect{Width: float64(w), Height: float64(h)})

	left, right := p.game.Columns()
	colW := max((w-2*marginX-minGap)/2, 4)
	rightX := w - marginX - colW

	for i, it := range left {
		y := float64(firstRow + rowGap*i)
		p.board.SetItem(it.Ref(),
			geometry.Rect{Left: marginX, Top: y, Width: float64(colW), Height: 1},
			geometry.Rect{Left: float64(marginX + colW), Top: y, Width: 1, Height: 1})
	}
	for i, it := range right {
		y := float64(firstRow + rowGap*i)
		p.board.SetItem(it.Ref(),
			geometry.Rect{Left: float64(rightX), Top: y, Width: float64(colW), Height: 1},
			geometry.Rect{Left: float64(rightX - 1), Top: y, Width: 1, Height: 1})
	}
}

// Draw renders the current scene.
func (p *Player) Draw() {
	p.screen.Clear()
	scene := p.game.Scene()

	if p.title != "" {
		p.text(marginX, 0, p.title, styleCard.Bold(true), -1)
	}

	// Committed lines are re-measured so they follow a resize.
	for _, l := range scene.Lines {
		from := geometry.ConnectorPosition(p.board, domain.ItemRef{ID: l.LeftID, Side: domain.Left})
		to := geometry.ConnectorPosition(p.board, domain.ItemRef{ID: l.RightID, Side: domain.Right})
		p.line(from, to, '·', styleLine)
	}
	if scene.Drag != nil {
		p.line(scene.Drag.From, scene.Drag.To, '*', styleDrag)
	}

	left, right := p.game.Columns()
	for _, it := range append(left, right...) {
		p.card(it, scene.IsConnected(it.Ref()))
	}

	_, h := p.screen.Size()
	switch {
	case p.report == nil:
		p.text(marginX, h-1, "drag a word onto its meaning · c: check · esc: cancel · q: quit", styleStatus, -1)
	case p.report.Passed:
		p.text(marginX, h-1, p.report.Summary, stylePassed, -1)
	default:
		p.text(marginX, h-1, p.report.Summary, styleFailed, -1)
	}
	p.screen.Show()
}

func (p *Player) card(it domain.Item, connected bool) {
	ref := it.Ref()
	card := p.board.CardRect(ref)
	box := p.board.ConnectorRect(ref)

	style := styleCard
	if connected {
		style = styleConnected
	}
	if anchor, ok := p.game.Anchor(); ok && anchor.Ref() == ref {
		style = styleAnchor
	}
	p.text(int(card.Left), int(card.Top), it.Text, style, int(card.Width))

	marker := '○'
	if connected {
		marker = '●'
	}
	p.screen.SetContent(int(box.Left), int(box.Top), marker, nil, style)
}

// text writes s at (x, y), truncated to limit cells when limit >= 0.
func (p *Player) text(x, y int, s string, style tcell.Style, limit int) {
	col := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if limit >= 0 && col+rw > limit {
			break
		}
		p.screen.SetContent(x+col, y, r, nil, style)
		col += rw
	}
}

// line plots a segment between two surface points with Bresenham's algorithm.
func (p *Player) line(from, to geometry.Point, r rune, style tcell.Style) {
	x0, y0 := int(math.Floor(from.X)), int(math.Floor(from.Y))
	x1, y1 := int(math.Floor(to.X)), int(math.Floor(to.Y))
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		p.screen.SetContent(x0, y0, r, nil, style)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func cellCenter(x, y int) geometry.Point {
	return geometry.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
