package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGameNotFound is returned when a game id has no live table.
	ErrGameNotFound = errors.New("game not found")
	// ErrSetNotFound indicates the matching set could not be loaded.
	ErrSetNotFound = errors.New("matching set not found")
	// ErrMissingMount is returned when a game is initialized without a surface to render on.
	ErrMissingMount = errors.New("missing mount point")
	// ErrMalformedItems is returned when an item list cannot produce a playable board.
	ErrMalformedItems = errors.New("malformed item list")
	// ErrNoWords indicates set generation was requested without seed words.
	ErrNoWords = errors.New("no words to generate from")
	// ErrLookupUnavailable is returned when no lookup backend is configured.
	ErrLookupUnavailable = errors.New("lookup service unavailable")
)

// ItemError describes one problem found in an item list.
type ItemError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ItemErrors collects every problem found while validating an item list.
// It unwraps to ErrMalformedItems.
type ItemErrors []ItemError

func (e ItemErrors) Error() string {
	if len(e) == 0 {
		return ErrMalformedItems.Error()
	}
	parts := make([]string, 0, len(e))
	for _, ie := range e {
		if ie.Index < 0 {
			parts = append(parts, fmt.Sprintf("%s %s", ie.Field, ie.Message))
			continue
		}
		parts = append(parts, fmt.Sprintf("items[%d].%s %s", ie.Index, ie.Field, ie.Message))
	}
	return ErrMalformedItems.Error() + ": " + strings.Join(parts, "; ")
}

func (e ItemErrors) Unwrap() error {
	return ErrMalformedItems
}
