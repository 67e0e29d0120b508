package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionRow mirrors one row of the questions table, joined with the
// creator's display name.
type QuestionRow struct {
	ID            uuid.UUID
	Prompt        string
	Choices       [4]string
	CorrectAnswer int
	Explanation   string
	Category      string
	Module        string
	CreatorID     uuid.UUID
	CreatorName   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuestionFilter narrows question queries. Zero values mean "no filter".
type QuestionFilter struct {
	Module    string
	Category  string
	CreatorID *uuid.UUID
}

// QuestionParams carries the mutable fields for insert/update.
type QuestionParams struct {
	Prompt        string
	Choices       [4]string
	CorrectAnswer int
	Explanation   string
	Category      string
	Module        string
	CreatorID     uuid.UUID
}

// QuestionRepository provides access to the curated question bank.
type QuestionRepository struct {
	db Querier
}

func NewQuestionRepository(db Querier) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `q.id, q.question, q.choice_a, q.choice_b, q.choice_c, q.choice_d,
	q.correct_answer, q.explanation, q.category, q.module, q.user_id,
	COALESCE(p.full_name, ''), q.created_at, q.updated_at`

// List returns questions matching the filter, newest first.
func (r *QuestionRepository) List(ctx context.Context, filter QuestionFilter) ([]QuestionRow, error) {
	sql := `SELECT ` + questionColumns + `
		FROM questions q
		LEFT JOIN profiles p ON p.id = q.user_id
		WHERE 1=1`
	args := []any{}
	sql, args = applyFilter(sql, args, filter)
	sql += ` ORDER BY q.created_at DESC`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []QuestionRow
	for rows.Next() {
		var q QuestionRow
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Choices[0], &q.Choices[1], &q.Choices[2], &q.Choices[3],
			&q.CorrectAnswer, &q.Explanation, &q.Category, &q.Module, &q.CreatorID,
			&q.CreatorName, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Count returns how many questions match the filter.
func (r *QuestionRepository) Count(ctx context.Context, filter QuestionFilter) (int, error) {
	sql := `SELECT COUNT(*) FROM questions q WHERE 1=1`
	args := []any{}
	sql, args = applyFilter(sql, args, filter)

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// Categories returns the distinct non-empty categories for a module, sorted.
func (r *QuestionRepository) Categories(ctx context.Context, module string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT category FROM questions WHERE module = $1 AND category <> '' ORDER BY category`,
		module)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByCreator aggregates question counts per creator, optionally scoped
// to one module. Used by the leaderboard merge.
func (r *QuestionRepository) CountByCreator(ctx context.Context, module string) (map[uuid.UUID]int, error) {
	sql := `SELECT user_id, COUNT(*) FROM questions`
	args := []any{}
	if module != "" {
		sql += ` WHERE module = $1`
		args = append(args, module)
	}
	sql += ` GROUP BY user_id`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("count by creator: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan creator count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// Get fetches a single question by ID.
func (r *QuestionRepository) Get(ctx context.Context, id uuid.UUID) (QuestionRow, error) {
	sql := `SELECT ` + questionColumns + `
		FROM questions q
		LEFT JOIN profiles p ON p.id = q.user_id
		WHERE q.id = $1`

	var q QuestionRow
	err := r.db.QueryRow(ctx, sql, id).Scan(&q.ID, &q.Prompt, &q.Choices[0], &q.Choices[1], &q.Choices[2], &q.Choices[3],
		&q.CorrectAnswer, &q.Explanation, &q.Category, &q.Module, &q.CreatorID,
		&q.CreatorName, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return QuestionRow{}, wrapNoRows(err)
	}
	return q, nil
}

// Insert stores a new question and returns the created row.
func (r *QuestionRepository) Insert(ctx context.Context, params QuestionParams) (QuestionRow, error) {
	sql := `INSERT INTO questions
		(question, choice_a, choice_b, choice_c, choice_d, correct_answer, explanation, category, module, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	q := QuestionRow{
		Prompt:        params.Prompt,
		Choices:       params.Choices,
		CorrectAnswer: params.CorrectAnswer,
		Explanation:   params.Explanation,
		Category:      params.Category,
		Module:        params.Module,
		CreatorID:     params.CreatorID,
	}
	err := r.db.QueryRow(ctx, sql,
		params.Prompt, params.Choices[0], params.Choices[1], params.Choices[2], params.Choices[3],
		params.CorrectAnswer, params.Explanation, params.Category, params.Module, params.CreatorID,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return QuestionRow{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

// Update rewrites the mutable fields of an existing question.
func (r *QuestionRepository) Update(ctx context.Context, id uuid.UUID, params QuestionParams) error {
	sql := `UPDATE questions SET
		question = $1, choice_a = $2, choice_b = $3, choice_c = $4, choice_d = $5,
		correct_answer = $6, explanation = $7, category = $8, module = $9, updated_at = now()
		WHERE id = $10`

	tag, err := r.db.Exec(ctx, sql,
		params.Prompt, params.Choices[0], params.Choices[1], params.Choices[2], params.Choices[3],
		params.CorrectAnswer, params.Explanation, params.Category, params.Module, id)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func applyFilter(sql string, args []any, filter QuestionFilter) (string, []any) {
	if filter.Module != "" {
		args = append(args, filter.Module)
		sql += fmt.Sprintf(" AND q.module = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		sql += fmt.Sprintf(" AND q.category = $%d", len(args))
	}
	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		sql += fmt.Sprintf(" AND q.user_id = $%d", len(args))
	}
	return sql, args
}
