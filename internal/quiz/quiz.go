// Package quiz scores participant submissions against a challenge's
// question set and decides whether the flag is released.
package quiz

import (
	"strconv"
	"strings"

	"github.com/garnizeh/quizflag/pkg/models"
)

// Evaluate checks the submitted answers against the stored questions in
// challenge order. Answers are keyed by question id rendered as a string;
// a missing entry counts as an empty submission. Submissions are trimmed
// before comparison.
//
// A passing score of zero means every question must be correct. A challenge
// with no questions therefore passes trivially and releases the flag; that
// is the inherited behavior and callers rely on it staying observable.
// The flag is set on the verdict only when the submission passes.
func Evaluate(challenge *models.Challenge, questions []models.Question, answers map[string]string) models.Verdict {
	results := make(map[string]bool, len(questions))
	correct := 0

	for _, q := range questions {
		key := strconv.FormatInt(q.ID, 10)
		submitted := strings.TrimSpace(answers[key])
		ok := q.MatchType.Matches(q.Answer, submitted)
		results[key] = ok
		if ok {
			correct++
		}
	}

	total := len(questions)
	required := challenge.PassingScore
	if required == 0 {
		required = total
	}
	passed := correct >= required

	v := models.Verdict{
		Results:  results,
		Passed:   passed,
		Score:    correct,
		Total:    total,
		Required: required,
	}
	if passed {
		flag := challenge.Flag
		v.Flag = &flag
	}
	return v
}
