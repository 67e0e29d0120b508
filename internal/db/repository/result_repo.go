package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuizResultRow is one append-only record of a completed quiz attempt.
type QuizResultRow struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Module         string
	Score          int
	TotalQuestions int
	Mode           string
	CreatedAt      time.Time
}

// QuizResultParams carries the fields for a new result record.
type QuizResultParams struct {
	UserID         uuid.UUID
	Module         string
	Score          int
	TotalQuestions int
	Mode           string
}

// ResultRepository appends and queries quiz_results. Rows are never
// updated or deleted.
type ResultRepository struct {
	db Querier
}

func NewResultRepository(db Querier) *ResultRepository {
	return &ResultRepository{db: db}
}

// Insert appends one completed attempt.
func (r *ResultRepository) Insert(ctx context.Context, params QuizResultParams) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO quiz_results (user_id, module, score, total_questions, mode)
		 VALUES ($1, $2, $3, $4, $5)`,
		params.UserID, params.Module, params.Score, params.TotalQuestions, params.Mode)
	if err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

// CountRankedSince counts a user's ranked attempts created at or after the
// given instant. Backs the daily ranked-attempt limit.
func (r *ResultRepository) CountRankedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_results WHERE user_id = $1 AND mode = 'ranked' AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ranked results: %w", err)
	}
	return count, nil
}

// ListByUser returns a user's attempt history, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]QuizResultRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, module, score, total_questions, mode, created_at
		 FROM quiz_results WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}
	defer rows.Close()

	var out []QuizResultRow
	for rows.Next() {
		var row QuizResultRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Module, &row.Score, &row.TotalQuestions, &row.Mode, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
