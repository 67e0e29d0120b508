package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/db/repository"
	"github.com/boardprep/review-platform/internal/question"
	"github.com/boardprep/review-platform/internal/session/scoring"
)

// Service-level errors surfaced to handlers.
var (
	ErrInvalidModule      = errors.New("unknown module")
	ErrInvalidSize        = errors.New("unsupported quiz size")
	ErrNotEnoughQuestions = errors.New("not enough questions for the requested size")
	ErrNoQuestionsMatched = errors.New("no questions match the filter")
	ErrRankedLimitReached = errors.New("daily ranked attempt limit reached")
	ErrNotSessionOwner    = errors.New("session belongs to another user")
)

type questionSource interface {
	List(ctx context.Context, filter repository.QuestionFilter) ([]repository.QuestionRow, error)
	Count(ctx context.Context, filter repository.QuestionFilter) (int, error)
}

type resultStore interface {
	Insert(ctx context.Context, params repository.QuizResultParams) error
	CountRankedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

type rankStore interface {
	GetRankState(ctx context.Context, id uuid.UUID) (repository.RankState, error)
	UpdateRankState(ctx context.Context, id uuid.UUID, state repository.RankState) error
}

type sessionStore interface {
	Save(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	LockCompletion(ctx context.Context, id uuid.UUID) (func() error, bool, error)
}

type boardRefresher interface {
	Refresh(ctx context.Context, module string) error
}

// StartRequest carries the quiz select screen's choices.
type StartRequest struct {
	Module   string `json:"module"`
	Category string `json:"category"`
	Size     int    `json:"size"`
	Mode     Mode   `json:"mode"`
}

// Service drives quiz sessions end to end: drawing the question set,
// recording answers, and applying ranked completion side effects.
type Service struct {
	questions questionSource
	results   resultStore
	profiles  rankStore
	store     sessionStore
	boards    boardRefresher
	formula   scoring.Config
	rankedCap int
	logger    zerolog.Logger
}

func NewService(questions questionSource, results resultStore, profiles rankStore, store sessionStore, rankedDailyLimit int, logger zerolog.Logger) *Service {
	return &Service{
		questions: questions,
		results:   results,
		profiles:  profiles,
		store:     store,
		formula:   scoring.Default(),
		rankedCap: rankedDailyLimit,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// AttachLeaderboard registers the refresher invoked after a ranked
// completion awards points, so live boards update without waiting for
// the periodic refresh tick.
func (s *Service) AttachLeaderboard(boards boardRefresher) {
	s.boards = boards
}

// Start draws a question set and opens a new in-progress session.
// Ranked mode re-checks the daily attempt limit before starting.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, req StartRequest) (*View, error) {
	if !question.ValidModule(req.Module) {
		return nil, ErrInvalidModule
	}
	if !validSize(req.Size) {
		return nil, ErrInvalidSize
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeNormal
	}
	if mode != ModeNormal && mode != ModeRanked {
		return nil, fmt.Errorf("unknown mode %q", req.Mode)
	}

	if mode == ModeRanked {
		remaining, err := s.RankedRemaining(ctx, userID)
		if err != nil {
			return nil, err
		}
		if remaining <= 0 {
			return nil, ErrRankedLimitReached
		}
	}

	filter := repository.QuestionFilter{Module: req.Module, Category: req.Category}
	available, err := s.questions.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if available == 0 {
		return nil, ErrNoQuestionsMatched
	}
	if available < req.Size {
		return nil, ErrNotEnoughQuestions
	}

	items, err := s.drawQuestions(ctx, filter, req.Size)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoQuestionsMatched
	}

	sess := New(userID, req.Module, req.Category, mode, items)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	sessionsStarted.WithLabelValues(string(mode), req.Module).Inc()
	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Str("module", req.Module).
		Str("mode", string(mode)).
		Int("size", len(items)).
		Msg("session started")
	return s.buildView(sess), nil
}

// StartScrolling opens a read-only session over every question matching
// the filter, for browsing a creator's deck without scoring.
func (s *Service) StartScrolling(ctx context.Context, userID uuid.UUID, module, category string, creatorID *uuid.UUID) (*View, error) {
	if !question.ValidModule(module) {
		return nil, ErrInvalidModule
	}

	rows, err := s.questions.List(ctx, repository.QuestionFilter{Module: module, Category: category, CreatorID: creatorID})
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoQuestionsMatched
	}

	sess := NewScrolling(userID, module, category, toItems(rows))
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	sessionsStarted.WithLabelValues(string(PhaseScrolling), module).Inc()
	return s.buildView(sess), nil
}

// Get returns the caller's view of an existing session.
func (s *Service) Get(ctx context.Context, userID, sessionID uuid.UUID) (*View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildView(sess), nil
}

// Answer records a choice for the session's current question.
func (s *Service) Answer(ctx context.Context, userID, sessionID uuid.UUID, choice int) (*View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Record(choice); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	answersRecorded.WithLabelValues(string(sess.Mode)).Inc()
	return s.buildView(sess), nil
}

// Advance moves to the next question; advancing past the last question
// completes the session and triggers the completion side effects.
func (s *Service) Advance(ctx context.Context, userID, sessionID uuid.UUID) (*View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Advance(); err != nil {
		return nil, err
	}

	if sess.Phase == PhaseCompleted && !sess.ResultsSaved {
		if err := s.finalize(ctx, sess); err != nil {
			return nil, err
		}
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.buildView(sess), nil
}

// Retreat moves back one question.
func (s *Service) Retreat(ctx context.Context, userID, sessionID uuid.UUID) (*View, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Retreat(); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.buildView(sess), nil
}

// Abandon discards a session without writing any result or rank points.
func (s *Service) Abandon(ctx context.Context, userID, sessionID uuid.UUID) error {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	sessionsAbandoned.WithLabelValues(string(sess.Mode)).Inc()
	return s.store.Delete(ctx, sessionID)
}

// RankedRemaining returns how many ranked attempts the user has left
// today. The day boundary is server-local midnight.
func (s *Service) RankedRemaining(ctx context.Context, userID uuid.UUID) (int, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	used, err := s.results.CountRankedSince(ctx, userID, midnight)
	if err != nil {
		return 0, err
	}
	remaining := s.rankedCap - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *Service) load(ctx context.Context, userID, sessionID uuid.UUID) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return sess, nil
}

// finalize applies the completion side effects. The distributed lock
// plus the ResultsSaved flag keep the ranked save idempotent per
// session even across re-renders of the results view.
func (s *Service) finalize(ctx context.Context, sess *Session) error {
	unlock, acquired, err := s.store.LockCompletion(ctx, sess.ID)
	if err != nil {
		return err
	}
	if !acquired {
		return nil
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("completion unlock failed")
		}
	}()

	// Re-read under the lock: a concurrent request may have saved already.
	stored, err := s.store.Get(ctx, sess.ID)
	if err == nil && stored.ResultsSaved {
		sess.ResultsSaved = true
		sess.PointsEarned = stored.PointsEarned
		return nil
	}

	score := sess.Score()
	total := len(sess.Questions)

	if sess.Mode == ModeRanked {
		if score > 0 {
			if err := s.saveRanked(ctx, sess, score, total); err != nil {
				return err
			}
		}
	} else {
		if err := s.results.Insert(ctx, repository.QuizResultParams{
			UserID:         sess.UserID,
			Module:         sess.Module,
			Score:          score,
			TotalQuestions: total,
			Mode:           string(ModeNormal),
		}); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
	}

	sess.ResultsSaved = true
	// Persist while still holding the lock: a retried advance must see
	// ResultsSaved before the lock is released.
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("persist completed session: %w", err)
	}

	sessionsCompleted.WithLabelValues(string(sess.Mode), sess.Module).Inc()
	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Int("score", score).
		Int("total", total).
		Int("points", sess.PointsEarned).
		Msg("session completed")

	if sess.Mode == ModeRanked && sess.PointsEarned > 0 {
		s.refreshBoards(ctx, sess.Module)
	}
	return nil
}

// refreshBoards pushes a leaderboard recompute for the session's module
// and the unfiltered board. Best-effort: the periodic worker catches up
// if a refresh fails here.
func (s *Service) refreshBoards(ctx context.Context, module string) {
	if s.boards == nil {
		return
	}
	for _, m := range []string{module, ""} {
		if err := s.boards.Refresh(ctx, m); err != nil {
			s.logger.Warn().Err(err).Str("module", m).Msg("leaderboard refresh failed")
		}
	}
}

// saveRanked appends the result row and applies the point award. The
// two writes are not transactional; a failure between them leaves a
// documented inconsistency window rather than a rollback.
func (s *Service) saveRanked(ctx context.Context, sess *Session, score, total int) error {
	points := s.formula.PointsEarned(score, total)

	state, err := s.profiles.GetRankState(ctx, sess.UserID)
	if err != nil {
		return fmt.Errorf("read rank state: %w", err)
	}
	state.RankPoints += points
	state.SeenQuestions[sess.Module] = mergeSeen(state.SeenQuestions[sess.Module], sess.QuestionIDs())
	if err := s.profiles.UpdateRankState(ctx, sess.UserID, state); err != nil {
		return fmt.Errorf("write rank state: %w", err)
	}

	if err := s.results.Insert(ctx, repository.QuizResultParams{
		UserID:         sess.UserID,
		Module:         sess.Module,
		Score:          score,
		TotalQuestions: total,
		Mode:           string(ModeRanked),
	}); err != nil {
		return fmt.Errorf("save ranked result: %w", err)
	}

	sess.PointsEarned = points
	rankedPointsAwarded.WithLabelValues(sess.Module).Add(float64(points))
	return nil
}

// drawQuestions shuffles the filtered bank and takes the first size
// items. Takes min(size, available) if the bank shrank between the
// count check and the fetch.
func (s *Service) drawQuestions(ctx context.Context, filter repository.QuestionFilter, size int) ([]Item, error) {
	rows, err := s.questions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	rand.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})
	if size > len(rows) {
		size = len(rows)
	}
	return toItems(rows[:size]), nil
}

func toItems(rows []repository.QuestionRow) []Item {
	items := make([]Item, len(rows))
	for i, row := range rows {
		items[i] = Item{
			ID:            row.ID,
			Prompt:        row.Prompt,
			Choices:       row.Choices,
			CorrectAnswer: row.CorrectAnswer,
			Explanation:   row.Explanation,
			Category:      row.Category,
		}
	}
	return items
}

func mergeSeen(existing, ids []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(ids))
	merged := make([]string, 0, len(existing)+len(ids))
	for _, id := range existing {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	return merged
}

func validSize(size int) bool {
	for _, s := range question.QuizSizes {
		if s == size {
			return true
		}
	}
	return false
}
