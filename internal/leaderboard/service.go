package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/db/repository"
	ws "github.com/boardprep/review-platform/pkg/http/ws"
)

// ModuleAll is the module value of an unfiltered leaderboard.
const ModuleAll = "all"

type profileLister interface {
	ListForLeaderboard(ctx context.Context, subRole string) ([]repository.ProfileRow, error)
}

type questionCounter interface {
	CountByCreator(ctx context.Context, module string) (map[uuid.UUID]int, error)
}

// Board is one fully computed leaderboard.
type Board struct {
	Module      string    `json:"module"`
	SortBy      string    `json:"sort_by"`
	Entries     []Entry   `json:"entries"`
	Podium      [3]*Entry `json:"podium"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ServiceOptions configures caching and broadcast behavior.
type ServiceOptions struct {
	CacheTTL      time.Duration
	PubSubChannel string
	TopN          int
}

// Service computes leaderboards from Postgres, caches them in Redis,
// and publishes refreshed rankings for WebSocket fan-out.
type Service struct {
	profiles  profileLister
	questions questionCounter
	redis     *redis.Client
	logger    zerolog.Logger

	cacheTTL      time.Duration
	pubsubChannel string
	topN          int
}

func NewService(profiles profileLister, questions questionCounter, redisClient *redis.Client, opts ServiceOptions, logger zerolog.Logger) *Service {
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	channel := opts.PubSubChannel
	if channel == "" {
		channel = "lb:updates"
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}

	return &Service{
		profiles:      profiles,
		questions:     questions,
		redis:         redisClient,
		logger:        logger.With().Str("component", "leaderboard").Logger(),
		cacheTTL:      cacheTTL,
		pubsubChannel: channel,
		topN:          topN,
	}
}

// Get returns the leaderboard for a module and sort key, cache-first.
func (s *Service) Get(ctx context.Context, module, sortBy string, limit int) (Board, error) {
	if module == "" {
		module = ModuleAll
	}
	if sortBy == "" {
		sortBy = SortByPoints
	}
	if !ValidSortBy(sortBy) {
		return Board{}, fmt.Errorf("unknown sort key %q", sortBy)
	}
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	if board, ok := s.cached(ctx, module, sortBy); ok {
		return trim(board, limit), nil
	}

	board, err := s.compute(ctx, module, sortBy)
	if err != nil {
		return Board{}, err
	}
	s.cache(ctx, board)
	return trim(board, limit), nil
}

// Refresh recomputes every board variant for a module, rewrites the
// cache, and publishes the points ranking for live subscribers.
func (s *Service) Refresh(ctx context.Context, module string) error {
	if module == "" {
		module = ModuleAll
	}

	for _, sortBy := range []string{SortByPoints, SortByQuestions} {
		board, err := s.compute(ctx, module, sortBy)
		if err != nil {
			return err
		}
		s.cache(ctx, board)
		if sortBy == SortByPoints {
			s.publish(ctx, board)
		}
	}
	return nil
}

func (s *Service) compute(ctx context.Context, module, sortBy string) (Board, error) {
	// module doubles as the profile sub-role filter; "all" clears both.
	subRole := module
	questionModule := module
	if module == ModuleAll {
		subRole = ""
		questionModule = ""
	}

	profiles, err := s.profiles.ListForLeaderboard(ctx, subRole)
	if err != nil {
		return Board{}, fmt.Errorf("fetch profiles: %w", err)
	}
	counts, err := s.questions.CountByCreator(ctx, questionModule)
	if err != nil {
		return Board{}, fmt.Errorf("count questions: %w", err)
	}

	entries := Merge(profiles, counts)
	Sort(entries, sortBy)

	return Board{
		Module:      module,
		SortBy:      sortBy,
		Entries:     entries,
		Podium:      Podium(entries),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) cached(ctx context.Context, module, sortBy string) (Board, bool) {
	if s.redis == nil {
		return Board{}, false
	}
	data, err := s.redis.Get(ctx, s.cacheKey(module, sortBy)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("leaderboard cache read failed")
		}
		return Board{}, false
	}

	var board Board
	if err := json.Unmarshal(data, &board); err != nil {
		s.logger.Warn().Err(err).Msg("leaderboard cache decode failed")
		return Board{}, false
	}
	return board, true
}

func (s *Service) cache(ctx context.Context, board Board) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(board)
	if err != nil {
		s.logger.Warn().Err(err).Msg("leaderboard cache encode failed")
		return
	}
	if err := s.redis.Set(ctx, s.cacheKey(board.Module, board.SortBy), data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("leaderboard cache write failed")
	}
}

func (s *Service) publish(ctx context.Context, board Board) {
	if s.redis == nil {
		return
	}

	top := board.Entries
	if len(top) > 10 {
		top = top[:10]
	}
	payload := ws.LeaderboardUpdatePayload{
		Module: board.Module,
		SortBy: board.SortBy,
		Top:    toWSEntries(top),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal leaderboard update")
		return
	}
	if err := s.redis.Publish(ctx, s.pubsubChannel, data).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish leaderboard update")
	}
}

func (s *Service) cacheKey(module, sortBy string) string {
	return fmt.Sprintf("lb:%s:%s", module, sortBy)
}

func trim(board Board, limit int) Board {
	if len(board.Entries) > limit {
		board.Entries = board.Entries[:limit]
	}
	return board
}
