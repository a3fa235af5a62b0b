package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/quizflag/pkg/models"
	"github.com/garnizeh/quizflag/pkg/repository"
)

func (r *SQLiteRepo) CreateChallenge(ctx context.Context, c *models.Challenge) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("challenge is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO challenges (slug, name, description, flag, passing_score, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Slug, c.Name, c.Description, c.Flag, c.PassingScore, boolToInt(c.IsActive), now())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicateSlug
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetChallengeByID(ctx context.Context, id int64) (*models.Challenge, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, slug, name, description, flag, passing_score, is_active, created_at FROM challenges WHERE id = ?`, id)
	return scanChallenge(row)
}

func (r *SQLiteRepo) GetChallengeBySlug(ctx context.Context, slug string) (*models.Challenge, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, slug, name, description, flag, passing_score, is_active, created_at FROM challenges WHERE slug = ?`, slug)
	return scanChallenge(row)
}

func (r *SQLiteRepo) ListChallenges(ctx context.Context, activeOnly bool) ([]models.Challenge, error) {
	q := `SELECT id, slug, name, description, flag, passing_score, is_active, created_at FROM challenges ORDER BY created_at DESC, id DESC`
	if activeOnly {
		q = `SELECT id, slug, name, description, flag, passing_score, is_active, created_at FROM challenges WHERE is_active = 1 ORDER BY created_at DESC, id DESC`
	}

	rows, err := r.conn.QueryRows(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Challenge
	for rows.Next() {
		var c models.Challenge
		var active int
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.Flag, &c.PassingScore, &active, &c.Created); err != nil {
			return nil, err
		}
		c.IsActive = active != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateChallenge(ctx context.Context, c *models.Challenge) error {
	if c == nil {
		return fmt.Errorf("challenge is nil")
	}

	res, err := r.conn.Exec(ctx,
		`UPDATE challenges SET slug = ?, name = ?, description = ?, flag = ?, passing_score = ?, is_active = ? WHERE id = ?`,
		c.Slug, c.Name, c.Description, c.Flag, c.PassingScore, boolToInt(c.IsActive), c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateSlug
		}
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

// DeleteChallenge removes the challenge and its questions in one transaction.
// The schema cascades on delete as well; deleting explicitly keeps the
// invariant even against a connection that lost the pragma.
func (r *SQLiteRepo) DeleteChallenge(ctx context.Context, id int64) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE challenge_id = ?`, id); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func scanChallenge(row *sql.Row) (*models.Challenge, error) {
	var c models.Challenge
	var active int
	if err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.Flag, &c.PassingScore, &active, &c.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.IsActive = active != 0
	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
