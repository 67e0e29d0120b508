package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/auth"
	"github.com/boardprep/review-platform/internal/config"
	"github.com/boardprep/review-platform/internal/deck"
	"github.com/boardprep/review-platform/internal/leaderboard"
	"github.com/boardprep/review-platform/internal/logging"
	"github.com/boardprep/review-platform/internal/profile"
	"github.com/boardprep/review-platform/internal/question"
	"github.com/boardprep/review-platform/internal/session"
)

// Handlers bundles every HTTP-facing component the server mounts.
type Handlers struct {
	Auth          *auth.HTTPHandlers
	AuthSvc       *auth.Service
	Questions     *question.HTTPHandler
	Sessions      *session.HTTPHandler
	Decks         *deck.HTTPHandler
	Leaderboard   *leaderboard.HTTPHandler
	LeaderboardWS *leaderboard.WSHandler
	Profiles      *profile.HTTPHandler
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		w.Header().Set("Content-Type", "application/json")
		if err := pingDependencies(ctx, pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	// Auth endpoints
	if h.Auth != nil {
		mux.HandleFunc("/v1/auth/register", h.Auth.Register)
		mux.HandleFunc("/v1/auth/login", h.Auth.Login)
		mux.HandleFunc("/v1/auth/refresh", h.Auth.RefreshToken)
		mux.HandleFunc("/v1/users/me", h.Auth.GetMe)
	}

	// Question bank
	if h.Questions != nil {
		mux.HandleFunc("/v1/questions", h.Questions.HandleCollection)
		mux.HandleFunc("/v1/questions/categories", h.Questions.HandleCategories)
		mux.HandleFunc("/v1/questions/availability", h.Questions.HandleAvailability)
		mux.HandleFunc("/v1/questions/", h.Questions.HandleItem)
	}

	// Quiz sessions
	if h.Sessions != nil {
		mux.HandleFunc("/v1/sessions", h.Sessions.HandleStart)
		mux.HandleFunc("/v1/sessions/scrolling", h.Sessions.HandleScrollingStart)
		mux.HandleFunc("/v1/sessions/ranked/remaining", h.Sessions.HandleRankedRemaining)
		mux.HandleFunc("/v1/sessions/", h.Sessions.HandleSession)
	}

	// Deck browser
	if h.Decks != nil {
		mux.HandleFunc("/v1/decks", h.Decks.HandleList)
		mux.HandleFunc("/v1/decks/", h.Decks.HandleGet)
	}

	// Leaderboard
	if h.Leaderboard != nil {
		mux.HandleFunc("/v1/leaderboards", h.Leaderboard.HandleGet)
	}
	if h.LeaderboardWS != nil {
		mux.Handle("/ws/leaderboards", h.LeaderboardWS)
	}

	// Own profile
	if h.Profiles != nil {
		mux.HandleFunc("/v1/profiles/me", h.Profiles.HandleMe)
		mux.HandleFunc("/v1/profiles/me/stats", h.Profiles.HandleStats)
		mux.HandleFunc("/v1/profiles/me/results", h.Profiles.HandleResults)
	}

	var handler http.Handler = mux
	if h.AuthSvc != nil {
		handler = auth.Middleware(h.AuthSvc, logger)(handler)
	}
	handler = corsMiddleware(cfg.CORS)(handler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
