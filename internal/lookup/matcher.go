package lookup

import (
	"strings"
	"unicode"
)

// Entry is one lexicon row.
type Entry struct {
	ID      string
	Kind    string
	Text    string
	Pos     string
	Desc    string
	Meaning string
	Related []string
	Grade   string
}

// Record converts the row into a search result.
func (e Entry) Record() Record {
	return Record{
		ID:      e.ID,
		Text:    e.Text,
		Pos:     e.Pos,
		Desc:    e.Desc,
		Meaning: e.Meaning,
		Related: strings.Join(e.Related, ", "),
		Grade:   e.Grade,
	}
}

// grammarEndings are stripped once from grammar queries so "먹는다" also finds "-는".
var grammarEndings = []string{"다", "는", "은", "ㄴ", "을", "ㄹ", "요", "죠", "니", "면"}

// Matcher decides whether an entry answers a query.
type Matcher struct {
	kind       string
	candidates []string
}

// NewMatcher prepares query for typeFilter. Unknown filters search words.
func NewMatcher(query, typeFilter string) Matcher {
	kind := TypeWord
	if typeFilter == TypeGrammar {
		kind = TypeGrammar
	}
	norm := Normalize(query)
	if norm == "" {
		return Matcher{kind: kind}
	}
	m := Matcher{kind: kind, candidates: []string{norm}}
	if kind == TypeGrammar && len([]rune(norm)) >= 2 {
		for _, end := range grammarEndings {
			if strings.HasSuffix(norm, end) {
				if stem := strings.TrimSuffix(norm, end); stem != "" {
					m.candidates = append(m.candidates, stem)
				}
				break
			}
		}
	}
	return m
}

// Kind returns the entry kind this matcher searches.
func (m Matcher) Kind() string {
	return m.kind
}

// Empty reports whether the query had nothing searchable in it.
func (m Matcher) Empty() bool {
	return len(m.candidates) == 0
}

// Match reports whether e answers the query.
func (m Matcher) Match(e Entry) bool {
	if m.Empty() || (e.Kind != "" && e.Kind != m.kind) {
		return false
	}
	if m.kind == TypeWord {
		return strings.Contains(Normalize(e.Text), m.candidates[0])
	}
	if m.matchForm(e.Text) {
		return true
	}
	for _, form := range e.Related {
		if m.matchForm(form) {
			return true
		}
	}
	return false
}

func (m Matcher) matchForm(form string) bool {
	target := Normalize(form)
	if target == "" {
		return false
	}
	for _, c := range m.candidates {
		if strings.Contains(target, c) {
			return true
		}
	}
	stem := strings.TrimSuffix(target, "다")
	if len([]rune(stem)) < 2 {
		return false
	}
	for _, c := range m.candidates {
		if strings.Contains(c, stem) {
			return true
		}
	}
	return false
}

// Normalize strips whitespace and the punctuation dictionaries use inside headwords.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '-', '~', '(', ')', '[', ']', '.', '?', '/', 'ㆍ':
			return -1
		}
		return r
	}, s)
}

// SplitRelated parses a related-forms column ("-는데, -은데/-ㄴ데") into forms.
func SplitRelated(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '.' || r == '/'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
