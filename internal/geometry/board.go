package geometry

import "wordmatch-service/internal/domain"

// Board is a Layout whose boxes are reported by the host that renders the
// items (a browser posting element rects, or the terminal player computing
// cell boxes). It is not safe for concurrent use; owners serialize access.
type Board struct {
	surface    Rect
	connectors map[domain.ItemRef]Rect
	cards      map[domain.ItemRef]Rect
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{
		connectors: make(map[domain.ItemRef]Rect),
		cards:      make(map[domain.ItemRef]Rect),
	}
}

// SetSurface records the drag surface box.
func (b *Board) SetSurface(r Rect) {
	b.surface = r
}

// SetItem records the card box and connector box of one item.
func (b *Board) SetItem(ref domain.ItemRef, card, connector Rect) {
	b.cards[ref] = card
	b.connectors[ref] = connector
}

// SurfaceRect implements Layout.
func (b *Board) SurfaceRect() Rect {
	return b.surface
}

// ConnectorRect implements Layout. Unknown items report a zero box.
func (b *Board) ConnectorRect(ref domain.ItemRef) Rect {
	return b.connectors[ref]
}

// CardRect returns the card box of an item. Unknown items report a zero box.
func (b *Board) CardRect(ref domain.ItemRef) Rect {
	return b.cards[ref]
}

// Has reports whether the item has been laid out.
func (b *Board) Has(ref domain.ItemRef) bool {
	_, ok := b.connectors[ref]
	return ok
}

// HitTest returns the item whose card contains the client-space point.
func (b *Board) HitTest(client Point) (domain.ItemRef, bool) {
	for ref, card := range b.cards {
		if card.Contains(client) {
			return ref, true
		}
	}
	return domain.ItemRef{}, false
}
