// Package score grades a link mapping against an answer key.
package score

import (
	"fmt"

	"wordmatch-service/internal/domain"
)

// Links is the read side of a link store.
type Links interface {
	Get(leftID string) (string, bool)
}

// Verdict is the grading of one answer key row.
type Verdict struct {
	ID       string `json:"id"`
	ChosenID string `json:"chosenId,omitempty"`
	Linked   bool   `json:"linked"`
	Correct  bool   `json:"correct"`
}

// Report is the full outcome of a check.
type Report struct {
	Result   domain.ScoreResult `json:"result"`
	Passed   bool               `json:"passed"`
	Verdicts []Verdict          `json:"verdicts"`
	Summary  string             `json:"summary"`
}

// Score counts the key rows whose left id links to the expected right id.
// Unlinked rows count as incorrect.
func Score(links Links, key domain.AnswerKey) domain.ScoreResult {
	return Check(links, key).Result
}

// Check grades every key row and builds a human readable summary.
func Check(links Links, key domain.AnswerKey) Report {
	report := Report{
		Result:   domain.ScoreResult{Total: len(key)},
		Verdicts: make([]Verdict, 0, len(key)),
	}
	for _, entry := range key {
		chosen, linked := links.Get(entry.ID)
		v := Verdict{
			ID:       entry.ID,
			ChosenID: chosen,
			Linked:   linked,
			Correct:  linked && chosen == entry.CorrectRightID,
		}
		if v.Correct {
			report.Result.CorrectCount++
		}
		report.Verdicts = append(report.Verdicts, v)
	}
	report.Passed = report.Result.Passed()
	report.Summary = Summary(report.Result)
	return report
}

// Summary renders a pass/fail line for the player.
func Summary(r domain.ScoreResult) string {
	if r.Passed() {
		return fmt.Sprintf("Perfect! (%d/%d) Every word is matched with its meaning.", r.CorrectCount, r.Total)
	}
	return fmt.Sprintf("Not quite. (%d/%d) Give it another try!", r.CorrectCount, r.Total)
}
