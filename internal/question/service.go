package question

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/auth"
	"github.com/boardprep/review-platform/internal/db/repository"
)

var (
	ErrNotFound      = errors.New("question not found")
	ErrNotOwner      = errors.New("only the creator or an admin may modify this question")
	ErrModuleLocked  = errors.New("creators may only post to their own exam track")
	ErrInvalidModule = errors.New("unknown module")
	ErrInvalidAnswer = errors.New("correct answer index must be between 0 and 3")
	ErrEmptyPrompt   = errors.New("question text required")
	ErrEmptyChoice   = errors.New("all four choices are required")
)

type questionStore interface {
	List(ctx context.Context, filter repository.QuestionFilter) ([]repository.QuestionRow, error)
	Count(ctx context.Context, filter repository.QuestionFilter) (int, error)
	Categories(ctx context.Context, module string) ([]string, error)
	Get(ctx context.Context, id uuid.UUID) (repository.QuestionRow, error)
	Insert(ctx context.Context, params repository.QuestionParams) (repository.QuestionRow, error)
	Update(ctx context.Context, id uuid.UUID, params repository.QuestionParams) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryCache interface {
	GetCategories(ctx context.Context, module string) ([]string, error)
	SetCategories(ctx context.Context, module string, categories []string) error
	Invalidate(ctx context.Context, module string) error
}

// Service owns question CRUD and the availability checks backing the quiz
// select screen. Ownership rules: a question is edited or deleted only by
// its creator or an admin; non-admin creators post only to their own track.
type Service struct {
	store  questionStore
	cache  categoryCache
	logger zerolog.Logger
}

func NewService(store questionStore, cache categoryCache, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "question").Logger(),
	}
}

// List returns questions matching the filter, newest first.
func (s *Service) List(ctx context.Context, module, category string, creatorID *uuid.UUID) ([]Question, error) {
	if module != "" && !ValidModule(module) {
		return nil, ErrInvalidModule
	}
	rows, err := s.store.List(ctx, repository.QuestionFilter{Module: module, Category: category, CreatorID: creatorID})
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	out := make([]Question, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}

// Get fetches a single question.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Question, error) {
	row, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Question{}, ErrNotFound
		}
		return Question{}, err
	}
	return FromRow(row), nil
}

// Categories lists the distinct topics for a module, cache-first.
func (s *Service) Categories(ctx context.Context, module string) ([]string, error) {
	if !ValidModule(module) {
		return nil, ErrInvalidModule
	}

	if s.cache != nil {
		if cached, err := s.cache.GetCategories(ctx, module); err == nil && cached != nil {
			return cached, nil
		}
	}

	categories, err := s.store.Categories(ctx, module)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, module, categories); err != nil {
			s.logger.Warn().Err(err).Str("module", module).Msg("category cache write failed")
		}
	}
	return categories, nil
}

// Availability reports the filtered bank size and which quiz sizes it can
// serve. Sizes larger than the bank are flagged unavailable so the select
// screen never starts an unservable session.
func (s *Service) Availability(ctx context.Context, module, category string) (Availability, error) {
	if !ValidModule(module) {
		return Availability{}, ErrInvalidModule
	}

	total, err := s.store.Count(ctx, repository.QuestionFilter{Module: module, Category: category})
	if err != nil {
		return Availability{}, fmt.Errorf("count questions: %w", err)
	}

	sizes := make([]SizeOption, 0, len(QuizSizes))
	for _, size := range QuizSizes {
		sizes = append(sizes, SizeOption{Size: size, Available: size <= total})
	}

	return Availability{Module: module, Category: category, Total: total, Sizes: sizes}, nil
}

// Create stores a new question for the acting user.
func (s *Service) Create(ctx context.Context, actor auth.User, req CreateRequest) (Question, error) {
	if err := validate(req); err != nil {
		return Question{}, err
	}
	if !actor.IsAdmin() && actor.SubRole != req.Module {
		return Question{}, ErrModuleLocked
	}

	row, err := s.store.Insert(ctx, toParams(req, actor.ID))
	if err != nil {
		return Question{}, fmt.Errorf("create question: %w", err)
	}

	s.invalidateCategories(ctx, req.Module)
	s.logger.Info().Str("question_id", row.ID.String()).Str("module", req.Module).Msg("question created")
	return FromRow(row), nil
}

// Update rewrites a question the actor owns (or any, for admins).
func (s *Service) Update(ctx context.Context, actor auth.User, id uuid.UUID, req CreateRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if existing.CreatorID != actor.ID && !actor.IsAdmin() {
		return ErrNotOwner
	}

	if err := s.store.Update(ctx, id, toParams(req, existing.CreatorID)); err != nil {
		return fmt.Errorf("update question: %w", err)
	}

	s.invalidateCategories(ctx, existing.Module)
	if req.Module != existing.Module {
		s.invalidateCategories(ctx, req.Module)
	}
	return nil
}

// Delete removes a question the actor owns (or any, for admins).
func (s *Service) Delete(ctx context.Context, actor auth.User, id uuid.UUID) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if existing.CreatorID != actor.ID && !actor.IsAdmin() {
		return ErrNotOwner
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	s.invalidateCategories(ctx, existing.Module)
	s.logger.Info().Str("question_id", id.String()).Msg("question deleted")
	return nil
}

func (s *Service) invalidateCategories(ctx context.Context, module string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, module); err != nil {
		s.logger.Warn().Err(err).Str("module", module).Msg("category cache invalidation failed")
	}
}

func validate(req CreateRequest) error {
	if req.Prompt == "" {
		return ErrEmptyPrompt
	}
	for _, c := range req.Choices {
		if c == "" {
			return ErrEmptyChoice
		}
	}
	if req.CorrectAnswer < 0 || req.CorrectAnswer > 3 {
		return ErrInvalidAnswer
	}
	if !ValidModule(req.Module) {
		return ErrInvalidModule
	}
	return nil
}

func toParams(req CreateRequest, creatorID uuid.UUID) repository.QuestionParams {
	return repository.QuestionParams{
		Prompt:        req.Prompt,
		Choices:       req.Choices,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Category:      req.Category,
		Module:        req.Module,
		CreatorID:     creatorID,
	}
}

// FromRow converts a repository row into the domain type.
func FromRow(row repository.QuestionRow) Question {
	return Question{
		ID:            row.ID,
		Prompt:        row.Prompt,
		Choices:       row.Choices,
		CorrectAnswer: row.CorrectAnswer,
		Explanation:   row.Explanation,
		Category:      row.Category,
		Module:        row.Module,
		CreatorID:     row.CreatorID,
		CreatorName:   row.CreatorName,
		CreatedAt:     row.CreatedAt,
	}
}
