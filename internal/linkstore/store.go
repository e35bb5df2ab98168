// Package linkstore holds the authoritative left→right link mapping of a game.
//
// The mapping is a partial bijection: a left id maps to at most one right id
// and a right id is the target of at most one left id. Every structural change
// is announced synchronously to subscribed observers before the mutating call
// returns, so a mirror kept by an observer can never lag behind the store.
//
// A Store is not safe for concurrent use. Hosts that handle events on several
// goroutines must serialize access through a single owner.
package linkstore

import (
	"sort"

	"wordmatch-service/internal/domain"
)

// Observer receives store mutations in the order they happen.
type Observer interface {
	LinkSet(link domain.Link)
	LinkRemoved(link domain.Link)
}

// Store maps left ids to right ids.
type Store struct {
	byLeft    map[string]string
	byRight   map[string]string
	observers []*subscription
}

type subscription struct {
	observer Observer
}

// New returns an empty store.
func New() *Store {
	return &Store{
		byLeft:  make(map[string]string),
		byRight: make(map[string]string),
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(o Observer) func() {
	sub := &subscription{observer: o}
	s.observers = append(s.observers, sub)
	return func() {
		for i, existing := range s.observers {
			if existing == sub {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Set links leftID to rightID. Any link already held by leftID is removed
// first, then any link from another left id onto rightID (a steal).
func (s *Store) Set(leftID, rightID string) {
	if _, ok := s.byLeft[leftID]; ok {
		s.Remove(leftID)
	}
	if owner, ok := s.byRight[rightID]; ok {
		s.Remove(owner)
	}

	s.byLeft[leftID] = rightID
	s.byRight[rightID] = leftID

	link := domain.Link{LeftID: leftID, RightID: rightID}
	for _, sub := range s.observers {
		sub.observer.LinkSet(link)
	}
}

// Remove deletes the link held by leftID. Removing an absent link is a no-op
// and notifies nobody.
func (s *Store) Remove(leftID string) {
	rightID, ok := s.byLeft[leftID]
	if !ok {
		return
	}
	delete(s.byLeft, leftID)
	delete(s.byRight, rightID)

	link := domain.Link{LeftID: leftID, RightID: rightID}
	for _, sub := range s.observers {
		sub.observer.LinkRemoved(link)
	}
}

// Get returns the right id linked from leftID.
func (s *Store) Get(leftID string) (string, bool) {
	rightID, ok := s.byLeft[leftID]
	return rightID, ok
}

// LeftFor returns the left id currently targeting rightID.
func (s *Store) LeftFor(rightID string) (string, bool) {
	leftID, ok := s.byRight[rightID]
	return leftID, ok
}

// Len returns the number of links.
func (s *Store) Len() int {
	return len(s.byLeft)
}

// Entries returns a snapshot of all links ordered by left id.
func (s *Store) Entries() []domain.Link {
	links := make([]domain.Link, 0, len(s.byLeft))
	for leftID, rightID := range s.byLeft {
		links = append(links, domain.Link{LeftID: leftID, RightID: rightID})
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].LeftID < links[j].LeftID
	})
	return links
}
