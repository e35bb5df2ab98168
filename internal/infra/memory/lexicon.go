package memory

import (
	"context"
	"iter"
	"slices"
	"sync"

	"wordmatch-service/internal/lookup"
)

// Lexicon is an in-memory lookup.Service over a fixed list of entries.
type Lexicon struct {
	mu      sync.RWMutex
	entries []lookup.Entry
}

func NewLexicon(entries []lookup.Entry) *Lexicon {
	return &Lexicon{entries: slices.Clone(entries)}
}

// Add appends entries, e.g. after an import.
func (l *Lexicon) Add(entries ...lookup.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entries...)
}

func (l *Lexicon) Search(ctx context.Context, query, typeFilter string) iter.Seq2[lookup.Record, error] {
	l.mu.RLock()
	entries := slices.Clone(l.entries)
	l.mu.RUnlock()
	return lookup.Filter(ctx, slices.Values(entries), lookup.NewMatcher(query, typeFilter))
}
