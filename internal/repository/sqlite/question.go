package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/quizflag/pkg/models"
	"github.com/garnizeh/quizflag/pkg/repository"
)

// Question writes never validate match_type against the known policies.
// Unknown values are persisted as-is and resolve to exact at evaluation time.

func (r *SQLiteRepo) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	if q == nil {
		return 0, fmt.Errorf("question is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO questions (challenge_id, order_num, question, answer, match_type) VALUES (?, ?, ?, ?, ?)`,
		q.ChallengeID, q.OrderNum, q.Question, q.Answer, string(q.MatchType))
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, challenge_id, order_num, question, answer, match_type FROM questions WHERE id = ?`, id)
	var q models.Question
	var mt string
	if err := row.Scan(&q.ID, &q.ChallengeID, &q.OrderNum, &q.Question, &q.Answer, &mt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	q.MatchType = models.MatchType(mt)
	return &q, nil
}

func (r *SQLiteRepo) ListQuestionsByChallenge(ctx context.Context, challengeID int64) ([]models.Question, error) {
	// id as tiebreaker keeps equal order_num rows in insertion order
	rows, err := r.conn.QueryRows(ctx, `SELECT id, challenge_id, order_num, question, answer, match_type FROM questions WHERE challenge_id = ? ORDER BY order_num, id`, challengeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		var q models.Question
		var mt string
		if err := rows.Scan(&q.ID, &q.ChallengeID, &q.OrderNum, &q.Question, &q.Answer, &mt); err != nil {
			return nil, err
		}
		q.MatchType = models.MatchType(mt)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateQuestion(ctx context.Context, q *models.Question) error {
	if q == nil {
		return fmt.Errorf("question is nil")
	}

	res, err := r.conn.Exec(ctx,
		`UPDATE questions SET question = ?, answer = ?, match_type = ?, order_num = ? WHERE id = ?`,
		q.Question, q.Answer, string(q.MatchType), q.OrderNum, q.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// BulkSaveQuestions replaces the challenge's question set with the submitted
// one in a single transaction: stored ids absent from the submission are
// deleted, nil-id entries are inserted, and the rest are overwritten.
// Updates are guarded by challenge_id so an id belonging to another
// challenge rolls the whole reconciliation back.
func (r *SQLiteRepo) BulkSaveQuestions(ctx context.Context, challengeID int64, items []models.QuestionInput) ([]int64, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM questions WHERE challenge_id = ?`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("list existing questions: %w", err)
	}
	existing := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	submitted := make(map[int64]bool, len(items))
	for _, it := range items {
		if it.ID != nil {
			submitted[*it.ID] = true
		}
	}

	for id := range existing {
		if submitted[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("delete question %d: %w", id, err)
		}
	}

	var createdIDs []int64
	for _, it := range items {
		if it.ID == nil {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO questions (challenge_id, order_num, question, answer, match_type) VALUES (?, ?, ?, ?, ?)`,
				challengeID, it.OrderNum, it.Question, it.Answer, string(it.MatchType))
			if err != nil {
				return nil, fmt.Errorf("create question: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return nil, err
			}
			createdIDs = append(createdIDs, id)
			continue
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE questions SET question = ?, answer = ?, match_type = ?, order_num = ? WHERE id = ? AND challenge_id = ?`,
			it.Question, it.Answer, string(it.MatchType), it.OrderNum, *it.ID, challengeID)
		if err != nil {
			return nil, fmt.Errorf("update question %d: %w", *it.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, repository.ErrQuestionNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return createdIDs, nil
}
