package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/quizflag/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

var (
	// ErrNotFound is returned when a challenge or question does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlug is returned when a create or update would violate
	// the unique slug constraint. The store is the sole uniqueness authority.
	ErrDuplicateSlug = errors.New("duplicate slug")
	// ErrQuestionNotFound is returned by bulk save when a submitted id does
	// not belong to the target challenge.
	ErrQuestionNotFound = errors.New("question not found for challenge")
)

type ChallengeRepo interface {
	CreateChallenge(ctx context.Context, c *models.Challenge) (int64, error)
	GetChallengeByID(ctx context.Context, id int64) (*models.Challenge, error)
	GetChallengeBySlug(ctx context.Context, slug string) (*models.Challenge, error)
	// ListChallenges returns challenges newest-created first, optionally
	// filtered to active ones.
	ListChallenges(ctx context.Context, activeOnly bool) ([]models.Challenge, error)
	UpdateChallenge(ctx context.Context, c *models.Challenge) error
	// DeleteChallenge removes the challenge and all of its questions in one
	// transaction. No orphan questions may survive.
	DeleteChallenge(ctx context.Context, id int64) error
}

type QuestionRepo interface {
	CreateQuestion(ctx context.Context, q *models.Question) (int64, error)
	GetQuestionByID(ctx context.Context, id int64) (*models.Question, error)
	// ListQuestionsByChallenge returns questions ordered by order_num
	// ascending, ties broken by insertion order.
	ListQuestionsByChallenge(ctx context.Context, challengeID int64) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, q *models.Question) error
	DeleteQuestion(ctx context.Context, id int64) error
	// BulkSaveQuestions reconciles the submitted set against the stored set
	// for a challenge: entries without an id are created, entries with an id
	// are overwritten, stored questions absent from the submission are
	// deleted. The whole reconciliation is atomic. Returns the ids assigned
	// to created entries, in submission order.
	BulkSaveQuestions(ctx context.Context, challengeID int64, items []models.QuestionInput) ([]int64, error)
}
