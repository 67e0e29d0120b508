package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role and sub-role values stored on profiles.
const (
	RoleExaminee = "examinee"
	RoleAdmin    = "admin"
)

// ProfileRow mirrors one row of the profiles table.
type ProfileRow struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	SubRole      string
	RankPoints   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RankState is the slice of a profile the ranked-completion flow mutates:
// the cumulative points plus the per-module sets of question IDs already
// served in ranked sessions.
type RankState struct {
	RankPoints    int
	SeenQuestions map[string][]string
}

// CreateProfileParams carries registration fields.
type CreateProfileParams struct {
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	SubRole      string
}

// ProfileRepository exposes typed DB operations for user profiles.
type ProfileRepository struct {
	db Querier
}

func NewProfileRepository(db Querier) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, password_hash, full_name, role, COALESCE(sub_role, ''), rank_points, created_at, updated_at`

// Create inserts a new profile at registration time.
func (r *ProfileRepository) Create(ctx context.Context, params CreateProfileParams) (ProfileRow, error) {
	role := params.Role
	if role == "" {
		role = RoleExaminee
	}

	p := ProfileRow{
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FullName:     params.FullName,
		Role:         role,
		SubRole:      params.SubRole,
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO profiles (email, password_hash, full_name, role, sub_role)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 RETURNING id, created_at, updated_at`,
		params.Email, params.PasswordHash, params.FullName, role, params.SubRole,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return ProfileRow{}, fmt.Errorf("insert profile: %w", err)
	}
	return p, nil
}

// GetByEmail fetches a profile by email for login.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (ProfileRow, error) {
	var p ProfileRow
	err := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email,
	).Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Role, &p.SubRole, &p.RankPoints, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return ProfileRow{}, wrapNoRows(err)
	}
	return p, nil
}

// GetByID fetches a profile by user ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (ProfileRow, error) {
	var p ProfileRow
	err := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Role, &p.SubRole, &p.RankPoints, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return ProfileRow{}, wrapNoRows(err)
	}
	return p, nil
}

// UpdateDetails edits the profile fields a user may change themselves.
func (r *ProfileRepository) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, subRole string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET full_name = $1, sub_role = NULLIF($2, ''), updated_at = now() WHERE id = $3`,
		fullName, subRole, id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRankState reads the current points and seen-question tracking.
func (r *ProfileRepository) GetRankState(ctx context.Context, id uuid.UUID) (RankState, error) {
	var state RankState
	err := r.db.QueryRow(ctx,
		`SELECT rank_points, seen_questions FROM profiles WHERE id = $1`, id,
	).Scan(&state.RankPoints, &state.SeenQuestions)
	if err != nil {
		return RankState{}, wrapNoRows(err)
	}
	if state.SeenQuestions == nil {
		state.SeenQuestions = map[string][]string{}
	}
	return state, nil
}

// UpdateRankState writes back the new absolute points value and the merged
// seen-question sets. Read-modify-write: concurrent completions by the same
// user can lose an update; see DESIGN.md.
func (r *ProfileRepository) UpdateRankState(ctx context.Context, id uuid.UUID, state RankState) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET rank_points = $1, seen_questions = $2, updated_at = now() WHERE id = $3`,
		state.RankPoints, state.SeenQuestions, id)
	if err != nil {
		return fmt.Errorf("update rank state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForLeaderboard returns every profile, optionally narrowed to one
// sub-role (exam track).
func (r *ProfileRepository) ListForLeaderboard(ctx context.Context, subRole string) ([]ProfileRow, error) {
	sql := `SELECT id, full_name, COALESCE(sub_role, ''), rank_points FROM profiles`
	args := []any{}
	if subRole != "" {
		sql += ` WHERE sub_role = $1`
		args = append(args, subRole)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileRow
	for rows.Next() {
		var p ProfileRow
		if err := rows.Scan(&p.ID, &p.FullName, &p.SubRole, &p.RankPoints); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
