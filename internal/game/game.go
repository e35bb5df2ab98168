// Package game is one matching-game widget: two columns of cards, a link
// store, a drag session, the render mirror and the scorer. Every Game owns its
// own state so any number of games can run side by side.
//
// A Game is not safe for concurrent use. Hosts deliver events one at a time
// (the terminal player) or serialize through an owner (app.Table).
package game

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/drag"
	"wordmatch-service/internal/geometry"
	"wordmatch-service/internal/linkstore"
	"wordmatch-service/internal/lookup"
	"wordmatch-service/internal/render"
	"wordmatch-service/internal/score"
)

// Game is a single matching board.
type Game struct {
	id       string
	left     []domain.Item
	right    []domain.Item
	items    map[domain.ItemRef]domain.Item
	key      domain.AnswerKey
	links    *linkstore.Store
	view     *render.Sync
	session  *drag.Session
	logger   *zap.Logger
	activate lookup.ActivateFunc
}

// Option configures a Game.
type Option func(*options)

type options struct {
	id       string
	rnd      *rand.Rand
	logger   *zap.Logger
	activate lookup.ActivateFunc
}

// WithID names the game in logs.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithRand sets the source used to shuffle the right column.
func WithRand(rnd *rand.Rand) Option {
	return func(o *options) { o.rnd = rnd }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithItemActivated registers the callback for picked search results.
func WithItemActivated(fn lookup.ActivateFunc) Option {
	return func(o *options) { o.activate = fn }
}

// New builds a game on mount from items. The left column keeps the item order,
// the right column is shuffled, and the answer key pairs each word with the
// meaning sharing its id. It fails without building anything when mount is nil
// or items are malformed.
func New(mount geometry.Layout, items []domain.SetItem, opts ...Option) (*Game, error) {
	if mount == nil {
		return nil, domain.ErrMissingMount
	}
	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g := &Game{
		id:       o.id,
		left:     make([]domain.Item, 0, len(items)),
		right:    make([]domain.Item, 0, len(items)),
		items:    make(map[domain.ItemRef]domain.Item, 2*len(items)),
		key:      make(domain.AnswerKey, 0, len(items)),
		links:    linkstore.New(),
		logger:   o.logger.With(zap.String("game", o.id)),
		activate: o.activate,
	}
	for _, it := range items {
		l := domain.Item{ID: it.ID, Side: domain.Left, Text: it.LeftText}
		r := domain.Item{ID: it.ID, Side: domain.Right, Text: it.RightText}
		g.left = append(g.left, l)
		g.right = append(g.right, r)
		g.items[l.Ref()] = l
		g.items[r.Ref()] = r
		g.key = append(g.key, domain.AnswerEntry{ID: it.ID, CorrectRightID: it.ID})
	}
	o.rnd.Shuffle(len(g.right), func(i, j int) {
		g.right[i], g.right[j] = g.right[j], g.right[i]
	})

	g.view = render.NewSync(mount, g.links)
	g.links.Subscribe(g.view)
	g.session = drag.NewSession(mount, g.links, g.view)
	return g, nil
}

// ID returns the game id given with WithID.
func (g *Game) ID() string {
	return g.id
}

// Columns returns the cards in display order.
func (g *Game) Columns() (left, right []domain.Item) {
	return append([]domain.Item(nil), g.left...), append([]domain.Item(nil), g.right...)
}

// Item resolves a board reference.
func (g *Game) Item(ref domain.ItemRef) (domain.Item, bool) {
	it, ok := g.items[ref]
	return it, ok
}

// AnswerKey returns a copy of the key the game is scored against.
func (g *Game) AnswerKey() domain.AnswerKey {
	return append(domain.AnswerKey(nil), g.key...)
}

// Dragging reports whether a gesture is in progress.
func (g *Game) Dragging() bool {
	return g.session.State() == drag.Dragging
}

// Anchor returns the item the current gesture started on.
func (g *Game) Anchor() (domain.Item, bool) {
	return g.session.Anchor()
}

// PointerDown starts a gesture on ref. Unknown refs are ignored.
func (g *Game) PointerDown(ref domain.ItemRef) bool {
	anchor, ok := g.items[ref]
	if !ok {
		g.logger.Debug("pointer down on unknown item", zap.String("id", ref.ID), zap.String("side", string(ref.Side)))
		return false
	}
	if g.session.Begin(anchor) {
		g.logger.Debug("gesture cancelled", zap.String("reason", string(drag.ReasonReplaced)))
	}
	return true
}

// PointerMove moves the drag line to a client-space position.
func (g *Game) PointerMove(client geometry.Point) bool {
	return g.session.Move(client)
}

// PointerUp ends the gesture over target, or over empty space when target is
// nil or not an item of this board.
func (g *Game) PointerUp(target *domain.ItemRef) drag.Outcome {
	var over *domain.Item
	if target != nil {
		if it, ok := g.items[*target]; ok {
			over = &it
		}
	}
	out := g.session.End(over)
	if out.Committed {
		g.logger.Debug("link committed", zap.String("left", out.Link.LeftID), zap.String("right", out.Link.RightID))
	} else if out.Reason != drag.ReasonNotDragging {
		g.logger.Debug("gesture cancelled", zap.String("reason", string(out.Reason)))
	}
	return out
}

// CancelGesture drops an in-progress gesture, e.g. when the pointer leaves the
// window.
func (g *Game) CancelGesture() bool {
	return g.session.Cancel()
}

// Links returns the current mapping ordered by left id.
func (g *Game) Links() []domain.Link {
	return g.links.Entries()
}

// Scene returns what should currently be drawn.
func (g *Game) Scene() render.Scene {
	return g.view.Scene()
}

// Check scores the current links against the answer key.
func (g *Game) Check() score.Report {
	report := score.Check(g.links, g.key)
	g.logger.Info("answers checked",
		zap.Int("correct", report.Result.CorrectCount),
		zap.Int("total", report.Result.Total))
	return report
}

// ActivateRecord hands a picked search result to the host callback.
func (g *Game) ActivateRecord(rec lookup.Record) {
	if g.activate == nil {
		return
	}
	g.activate(rec)
}
