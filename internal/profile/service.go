// Package profile exposes the examinee's own profile, edit operations,
// and attempt-history statistics.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/db/repository"
	"github.com/boardprep/review-platform/internal/question"
	"github.com/boardprep/review-platform/internal/session/scoring"
)

var (
	ErrNotFound       = errors.New("profile not found")
	ErrInvalidSubRole = errors.New("sub role must be psychology or nursing")
)

type profileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.ProfileRow, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, fullName, subRole string) error
}

type resultStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]repository.QuizResultRow, error)
}

// Profile is the user-facing view of a profiles row.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	SubRole    string    `json:"sub_role,omitempty"`
	RankPoints int       `json:"rank_points"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpdateRequest carries the fields a user may edit themselves.
type UpdateRequest struct {
	FullName string `json:"full_name"`
	SubRole  string `json:"sub_role"`
}

// Stats aggregates a user's attempt history. Accuracy is the rounded
// percentage of correct answers across every completed attempt.
type Stats struct {
	RankPoints    int `json:"rank_points"`
	QuizCount     int `json:"quiz_count"`
	RankedCount   int `json:"ranked_count"`
	TotalAnswered int `json:"total_answered"`
	TotalCorrect  int `json:"total_correct"`
	Accuracy      int `json:"accuracy"`
}

// Attempt is one history row of a completed quiz.
type Attempt struct {
	ID         uuid.UUID `json:"id"`
	Module     string    `json:"module"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
	Mode       string    `json:"mode"`
	CreatedAt  time.Time `json:"created_at"`
}

// Service reads and edits profiles and derives history stats.
type Service struct {
	profiles profileStore
	results  resultStore
	logger   zerolog.Logger
}

func NewService(profiles profileStore, results resultStore, logger zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		results:  results,
		logger:   logger.With().Str("component", "profile").Logger(),
	}
}

// Get returns the user's profile.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (Profile, error) {
	row, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return fromRow(row), nil
}

// Update edits the display name and exam track, then returns the fresh
// profile.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req UpdateRequest) (Profile, error) {
	if req.SubRole != "" && !question.ValidModule(req.SubRole) {
		return Profile{}, ErrInvalidSubRole
	}

	if err := s.profiles.UpdateDetails(ctx, userID, req.FullName, req.SubRole); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return s.Get(ctx, userID)
}

// Stats folds the user's full attempt history into aggregate numbers.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (Stats, error) {
	row, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Stats{}, ErrNotFound
		}
		return Stats{}, err
	}

	attempts, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("fetch results: %w", err)
	}

	stats := Stats{RankPoints: row.RankPoints, QuizCount: len(attempts)}
	for _, a := range attempts {
		stats.TotalAnswered += a.TotalQuestions
		stats.TotalCorrect += a.Score
		if a.Mode == "ranked" {
			stats.RankedCount++
		}
	}
	stats.Accuracy = scoring.Percentage(stats.TotalCorrect, stats.TotalAnswered)
	return stats, nil
}

// Results returns the user's attempt history, newest first.
func (s *Service) Results(ctx context.Context, userID uuid.UUID) ([]Attempt, error) {
	rows, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}

	attempts := make([]Attempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, Attempt{
			ID:         row.ID,
			Module:     row.Module,
			Score:      row.Score,
			Total:      row.TotalQuestions,
			Percentage: scoring.Percentage(row.Score, row.TotalQuestions),
			Mode:       row.Mode,
			CreatedAt:  row.CreatedAt,
		})
	}
	return attempts, nil
}

func fromRow(row repository.ProfileRow) Profile {
	return Profile{
		ID:         row.ID,
		Email:      row.Email,
		FullName:   row.FullName,
		Role:       row.Role,
		SubRole:    row.SubRole,
		RankPoints: row.RankPoints,
		CreatedAt:  row.CreatedAt,
	}
}
