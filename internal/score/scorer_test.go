package score_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/linkstore"
	"wordmatch-service/internal/score"
)

func identityKey(ids ...string) domain.AnswerKey {
	key := make(domain.AnswerKey, 0, len(ids))
	for _, id := range ids {
		key = append(key, domain.AnswerEntry{ID: id, CorrectRightID: id})
	}
	return key
}

func TestScoreAfterSteal(t *testing.T) {
	store := linkstore.New()
	store.Set("1", "1")
	store.Set("2", "3")
	store.Set("3", "3")

	assert.Equal(t, []domain.Link{{LeftID: "1", RightID: "1"}, {LeftID: "3", RightID: "3"}}, store.Entries())
	assert.Equal(t, domain.ScoreResult{CorrectCount: 2, Total: 3}, score.Score(store, identityKey("1", "2", "3")))
}

func TestScoreFullMatch(t *testing.T) {
	store := linkstore.New()
	store.Set("1", "1")
	store.Set("2", "2")
	store.Set("3", "3")

	report := score.Check(store, identityKey("1", "2", "3"))

	assert.Equal(t, domain.ScoreResult{CorrectCount: 3, Total: 3}, report.Result)
	assert.True(t, report.Passed)
	assert.Equal(t, "Perfect! (3/3) Every word is matched with its meaning.", report.Summary)
}

func TestKeyIsIndependentOfIdentity(t *testing.T) {
	store := linkstore.New()
	store.Set("cat", "animal")
	store.Set("rose", "rose")

	key := domain.AnswerKey{
		{ID: "cat", CorrectRightID: "animal"},
		{ID: "rose", CorrectRightID: "flower"},
	}
	report := score.Check(store, key)

	assert.Equal(t, domain.ScoreResult{CorrectCount: 1, Total: 2}, report.Result)
	assert.Equal(t, []score.Verdict{
		{ID: "cat", ChosenID: "animal", Linked: true, Correct: true},
		{ID: "rose", ChosenID: "rose", Linked: true, Correct: false},
	}, report.Verdicts)
	assert.Equal(t, "Not quite. (1/2) Give it another try!", report.Summary)
}

func TestUnlinkedCountsAsIncorrect(t *testing.T) {
	report := score.Check(linkstore.New(), identityKey("1", "2"))

	assert.Equal(t, domain.ScoreResult{CorrectCount: 0, Total: 2}, report.Result)
	assert.False(t, report.Passed)
	for _, v := range report.Verdicts {
		assert.False(t, v.Linked)
		assert.False(t, v.Correct)
	}
}

func TestCheckHasNoSideEffects(t *testing.T) {
	store := linkstore.New()
	store.Set("1", "2")
	before := store.Entries()

	first := score.Check(store, identityKey("1", "2"))
	second := score.Check(store, identityKey("1", "2"))

	assert.Equal(t, first, second)
	assert.Equal(t, before, store.Entries())
}

func TestEmptyKeyNeverPasses(t *testing.T) {
	report := score.Check(linkstore.New(), nil)
	assert.Equal(t, 0, report.Result.Total)
	assert.False(t, report.Passed)
}
