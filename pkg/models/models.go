package models

import "strings"

// MatchType selects how a submitted answer is compared to the stored one.
// Values are persisted as-is; anything unrecognized resolves to exact at
// evaluation time.
type MatchType string

const (
	MatchExact           MatchType = "exact"
	MatchCaseInsensitive MatchType = "case_insensitive"
	MatchContains        MatchType = "contains"
)

// Matches reports whether the submitted answer satisfies the stored one
// under this policy. The submission is expected to be trimmed already.
func (m MatchType) Matches(stored, submitted string) bool {
	switch m {
	case MatchCaseInsensitive:
		return strings.EqualFold(submitted, stored)
	case MatchContains:
		return strings.Contains(strings.ToLower(submitted), strings.ToLower(stored))
	default:
		return submitted == stored
	}
}

type Challenge struct {
	ID           int64  `json:"id" db:"id"`
	Slug         string `json:"slug" db:"slug" validate:"required"`
	Name         string `json:"name" db:"name" validate:"required"`
	Description  string `json:"description" db:"description"`
	Flag         string `json:"flag,omitempty" db:"flag"`
	PassingScore int    `json:"passing_score" db:"passing_score"`
	IsActive     bool   `json:"is_active" db:"is_active"`
	Created      int64  `json:"created_at" db:"created_at"`
}

type Question struct {
	ID          int64     `json:"id" db:"id"`
	ChallengeID int64     `json:"challenge_id" db:"challenge_id"`
	OrderNum    int       `json:"order_num" db:"order_num"`
	Question    string    `json:"question" db:"question"`
	Answer      string    `json:"answer,omitempty" db:"answer"`
	MatchType   MatchType `json:"match_type" db:"match_type"`
}

// QuestionInput is one entry of a bulk save. A nil ID means "create";
// a non-nil ID means "overwrite that stored question".
type QuestionInput struct {
	ID        *int64    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	MatchType MatchType `json:"match_type"`
	OrderNum  int       `json:"order_num"`
}

// Verdict is the outcome of checking a participant's answers against a
// challenge. Flag is set only when Passed is true.
type Verdict struct {
	Results  map[string]bool `json:"results"`
	Passed   bool            `json:"passed"`
	Score    int             `json:"score"`
	Total    int             `json:"total"`
	Required int             `json:"required"`
	Flag     *string         `json:"flag,omitempty"`
}
