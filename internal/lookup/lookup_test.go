package lookup_test

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmatch-service/internal/lookup"
)

var lexicon = []lookup.Entry{
	{ID: "w1", Kind: lookup.TypeWord, Text: "학교", Pos: "명사", Desc: "school", Grade: "1급"},
	{ID: "w2", Kind: lookup.TypeWord, Text: "학교생활", Pos: "명사", Grade: "2급"},
	{ID: "w3", Kind: lookup.TypeWord, Text: "가다", Pos: "동사", Grade: "1급"},
	{ID: "g1", Kind: lookup.TypeGrammar, Text: "-는데", Meaning: "background", Related: []string{"-은데", "-ㄴ데"}, Grade: "2급"},
	{ID: "g2", Kind: lookup.TypeGrammar, Text: "-고 싶다", Meaning: "want to", Grade: "1급"},
}

func search(query, typ string) iter.Seq2[lookup.Record, error] {
	return lookup.Filter(context.Background(), slices.Values(lexicon), lookup.NewMatcher(query, typ))
}

func ids(recs []lookup.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "고싶다", lookup.Normalize(" -고 싶다 "))
	assert.Equal(t, "아어서", lookup.Normalize("-아/어(서)"))
	assert.Equal(t, "", lookup.Normalize(" ~.? "))
}

func TestWordSearchIsSubstring(t *testing.T) {
	recs, err := lookup.Collect(search("학 교", lookup.TypeWord), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2"}, ids(recs))
	assert.Equal(t, "school", recs[0].Desc)
}

func TestUnknownTypeFallsBackToWords(t *testing.T) {
	recs, err := lookup.Collect(search("가다", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"w3"}, ids(recs))
}

func TestGrammarSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{query: "는데", want: []string{"g1"}},
		{query: "는데요", want: []string{"g1"}},
		{query: "은데", want: []string{"g1"}},
		{query: "먹고 싶어요", want: []string{"g2"}},
		{query: "학교", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			recs, err := lookup.Collect(search(tt.query, lookup.TypeGrammar), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(recs))
		})
	}
}

func TestRelatedFormsAreJoined(t *testing.T) {
	recs, err := lookup.Collect(search("는데", lookup.TypeGrammar), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "-은데, -ㄴ데", recs[0].Related)
}

func TestEmptyQueryYieldsNothing(t *testing.T) {
	recs, err := lookup.Collect(search("  ", lookup.TypeWord), 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCollectStopsPullingAtLimit(t *testing.T) {
	pulled := 0
	entries := func(yield func(lookup.Entry) bool) {
		for _, e := range lexicon {
			pulled++
			if !yield(e) {
				return
			}
		}
	}
	recs, err := lookup.Collect(lookup.Filter(context.Background(), entries, lookup.NewMatcher("학교", lookup.TypeWord)), 1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, 1, pulled)
}

func TestCancelledContextEndsSequence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lookup.Collect(lookup.Filter(ctx, slices.Values(lexicon), lookup.NewMatcher("학교", lookup.TypeWord)), 0)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSplitRelated(t *testing.T) {
	assert.Equal(t, []string{"-는데", "-은데", "-ㄴ데"}, lookup.SplitRelated("-는데, -은데/-ㄴ데"))
	assert.Empty(t, lookup.SplitRelated(""))
}
