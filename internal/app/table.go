package app

import (
	"sync"
	"time"

	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/drag"
	"wordmatch-service/internal/game"
	"wordmatch-service/internal/geometry"
	"wordmatch-service/internal/lookup"
	"wordmatch-service/internal/render"
	"wordmatch-service/internal/score"
)

// Snapshot is the view of a table sent to clients.
type Snapshot struct {
	GameID    string        `json:"gameId"`
	SetID     string        `json:"setId"`
	PlayerID  string        `json:"playerId"`
	Left      []domain.Item `json:"left"`
	Right     []domain.Item `json:"right"`
	Links     []domain.Link `json:"links"`
	Scene     render.Scene  `json:"scene"`
	Picks     []string      `json:"picks,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ItemBox is the on-screen box of one card and its connector.
type ItemBox struct {
	domain.ItemRef
	Card      geometry.Rect `json:"card"`
	Connector geometry.Rect `json:"connector"`
}

// LayoutReport is what a client sends after (re)rendering the board.
type LayoutReport struct {
	Surface geometry.Rect `json:"surface"`
	Items   []ItemBox     `json:"items"`
}

// Table owns one game and serializes every event delivered to it, so the
// link store and its render mirror are never observed mid-update.
type Table struct {
	id        string
	setID     string
	playerID  string
	createdAt time.Time
	now       func() time.Time

	mu          sync.Mutex
	board       *geometry.Board
	game        *game.Game
	picks       []string
	subscribers map[chan Snapshot]struct{}
}

// NewTable builds a table and its game for set.
func NewTable(id string, set domain.MatchingSet, playerID string, opts ...game.Option) (*Table, error) {
	return newTableWithClock(id, set, playerID, time.Now, opts...)
}

func newTableWithClock(id string, set domain.MatchingSet, playerID string, now func() time.Time, opts ...game.Option) (*Table, error) {
	t := &Table{
		id:          id,
		setID:       set.ID,
		playerID:    playerID,
		createdAt:   now(),
		now:         now,
		board:       geometry.NewBoard(),
		subscribers: make(map[chan Snapshot]struct{}),
	}
	opts = append([]game.Option{game.WithID(id)}, opts...)
	opts = append(opts, game.WithItemActivated(t.pickLocked))
	g, err := game.New(t.board, set.Items, opts...)
	if err != nil {
		return nil, err
	}
	t.game = g
	return t, nil
}

// ID returns the game id.
func (t *Table) ID() string {
	return t.id
}

// SetID returns the id of the set the game was built from.
func (t *Table) SetID() string {
	return t.setID
}

func (t *Table) applyLayout(report LayoutReport) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.board.SetSurface(report.Surface)
	for _, box := range report.Items {
		if _, ok := t.game.Item(box.ItemRef); !ok {
			continue
		}
		t.board.SetItem(box.ItemRef, box.Card, box.Connector)
	}
	return t.broadcastLocked()
}

func (t *Table) pointerDown(ref domain.ItemRef) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.game.PointerDown(ref) {
		return t.snapshotLocked(), false
	}
	return t.broadcastLocked(), true
}

func (t *Table) pointerMove(client geometry.Point) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.game.PointerMove(client) {
		return t.snapshotLocked()
	}
	return t.broadcastLocked()
}

// pointerUp resolves the release target either from an explicit ref or by
// hit-testing the client position against the reported layout.
func (t *Table) pointerUp(target *domain.ItemRef, client *geometry.Point) (drag.Outcome, Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if target == nil && client != nil {
		if ref, ok := t.board.HitTest(*client); ok {
			target = &ref
		}
	}
	out := t.game.PointerUp(target)
	if out.Reason == drag.ReasonNotDragging {
		return out, t.snapshotLocked()
	}
	return out, t.broadcastLocked()
}

func (t *Table) cancelGesture() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.game.CancelGesture() {
		return t.snapshotLocked()
	}
	return t.broadcastLocked()
}

func (t *Table) check() score.Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Check()
}

func (t *Table) activate(rec lookup.Record) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.game.ActivateRecord(rec)
	return t.broadcastLocked()
}

// pickLocked runs inside activate, with mu held.
func (t *Table) pickLocked(rec lookup.Record) {
	if rec.Text == "" {
		return
	}
	for _, p := range t.picks {
		if p == rec.Text {
			return
		}
	}
	t.picks = append(t.picks, rec.Text)
}

// Picks returns the words picked from search results so far.
func (t *Table) Picks() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.picks...)
}

// Snapshot returns the current view.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Table) subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	t.mu.Lock()
	t.subscribers[ch] = struct{}{}
	initial := t.snapshotLocked()
	t.mu.Unlock()

	ch <- initial

	cancel := func() {
		t.mu.Lock()
		if _, ok := t.subscribers[ch]; ok {
			delete(t.subscribers, ch)
			close(ch)
		}
		t.mu.Unlock()
	}
	return ch, cancel
}

// closeSubscribers ends every subscription; used when the table is dropped.
func (t *Table) closeSubscribers() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ch := range t.subscribers {
		delete(t.subscribers, ch)
		close(ch)
	}
}

func (t *Table) broadcastLocked() Snapshot {
	snap := t.snapshotLocked()
	for ch := range t.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow readers only need the newest scene.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (t *Table) snapshotLocked() Snapshot {
	left, right := t.game.Columns()
	return Snapshot{
		GameID:    t.id,
		SetID:     t.setID,
		PlayerID:  t.playerID,
		Left:      left,
		Right:     right,
		Links:     t.game.Links(),
		Scene:     t.game.Scene(),
		Picks:     append([]string(nil), t.picks...),
		UpdatedAt: t.now(),
	}
}
