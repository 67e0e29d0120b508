package deck

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/db/repository"
	"github.com/boardprep/review-platform/internal/question"
)

var ErrDeckNotFound = errors.New("deck not found")

type questionStore interface {
	List(ctx context.Context, filter repository.QuestionFilter) ([]repository.QuestionRow, error)
}

// Service backs the deck browser: list decks for a filter, or fetch the
// questions of one creator's deck.
type Service struct {
	store  questionStore
	logger zerolog.Logger
}

func NewService(store questionStore, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "deck").Logger(),
	}
}

// List returns the decks matching the filter, in first-appearance
// order of their creators.
func (s *Service) List(ctx context.Context, f Filter) ([]Deck, error) {
	rows, err := s.store.List(ctx, repository.QuestionFilter{Module: f.Module, Category: f.Category})
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	questions := make([]question.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, question.FromRow(row))
	}
	return GroupByCreator(Apply(questions, f)), nil
}

// Get returns one creator's deck and its questions, narrowed by the
// same optional filters as List.
func (s *Service) Get(ctx context.Context, creatorID uuid.UUID, f Filter) (Deck, []question.Question, error) {
	rows, err := s.store.List(ctx, repository.QuestionFilter{Module: f.Module, Category: f.Category, CreatorID: &creatorID})
	if err != nil {
		return Deck{}, nil, fmt.Errorf("fetch questions: %w", err)
	}

	questions := make([]question.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, question.FromRow(row))
	}
	questions = Apply(questions, Filter{Search: f.Search})
	if len(questions) == 0 {
		return Deck{}, nil, ErrDeckNotFound
	}

	decks := GroupByCreator(questions)
	return decks[0], questions, nil
}
