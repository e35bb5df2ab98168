package domain

import "time"

// Side is the column an item is rendered in.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Opposite returns the other column.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// Valid reports whether s names a column.
func (s Side) Valid() bool {
	return s == Left || s == Right
}

// ItemRef addresses one card on the board. The same ID exists once per side.
type ItemRef struct {
	ID   string `json:"id"`
	Side Side   `json:"side"`
}

// Item is a card shown in one of the two columns. Immutable once created.
type Item struct {
	ID   string `json:"id"`
	Side Side   `json:"side"`
	Text string `json:"text"`
}

// Ref returns the board address of the item.
func (i Item) Ref() ItemRef {
	return ItemRef{ID: i.ID, Side: i.Side}
}

// Link connects a left item to a right item.
type Link struct {
	LeftID  string `json:"leftId"`
	RightID string `json:"rightId"`
}

// AnswerEntry is one row of the answer key.
type AnswerEntry struct {
	ID             string `json:"id"`
	CorrectRightID string `json:"correctRightId"`
}

// AnswerKey is read-only once a game has been initialized.
type AnswerKey []AnswerEntry

// ScoreResult is recomputed on every check.
type ScoreResult struct {
	CorrectCount int `json:"correctCount"`
	Total        int `json:"total"`
}

// Passed reports whether every answer was matched correctly.
func (r ScoreResult) Passed() bool {
	return r.Total > 0 && r.CorrectCount == r.Total
}

// SetItem is one word/meaning pair as loaded from a set source.
type SetItem struct {
	ID        string `json:"id" validate:"required"`
	LeftText  string `json:"word" validate:"required"`
	RightText string `json:"meaning" validate:"required"`
}

// MatchingSet is a named collection of pairs a game can be started from.
type MatchingSet struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Items     []SetItem `json:"items"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
