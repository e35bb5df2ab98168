// Package lookup defines the word/grammar search collaborator used by the
// search box next to the game, and the callback the game accepts when a
// result is activated.
package lookup

import (
	"context"
	"iter"
)

// Type filters understood by Search.
const (
	TypeWord    = "word"
	TypeGrammar = "grammar"
)

// DefaultLimit caps how many records a search box shows.
const DefaultLimit = 10

// Record is one search result.
type Record struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Pos     string `json:"pos,omitempty"`
	Desc    string `json:"desc,omitempty"`
	Meaning string `json:"meaning,omitempty"`
	Related string `json:"related,omitempty"`
	Grade   string `json:"grade"`
}

// Service searches the lexicon. The returned sequence is lazy and finite; the
// caller may stop early. An error is yielded at most once, as the last item.
type Service interface {
	Search(ctx context.Context, query, typeFilter string) iter.Seq2[Record, error]
}

// ActivateFunc is called when the player picks a search result.
type ActivateFunc func(Record)

// Collect drains seq into a slice of at most limit records (no cap when
// limit <= 0).
func Collect(seq iter.Seq2[Record, error], limit int) ([]Record, error) {
	out := make([]Record, 0)
	for rec, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Filter lazily matches entries against m.
func Filter(ctx context.Context, entries iter.Seq[Entry], m Matcher) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if m.Empty() {
			return
		}
		for e := range entries {
			if err := ctx.Err(); err != nil {
				yield(Record{}, err)
				return
			}
			if !m.Match(e) {
				continue
			}
			if !yield(e.Record(), nil) {
				return
			}
		}
	}
}
