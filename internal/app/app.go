package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/auth"
	"github.com/boardprep/review-platform/internal/auth/jwt"
	"github.com/boardprep/review-platform/internal/config"
	"github.com/boardprep/review-platform/internal/db/repository"
	"github.com/boardprep/review-platform/internal/deck"
	"github.com/boardprep/review-platform/internal/leaderboard"
	"github.com/boardprep/review-platform/internal/logging"
	"github.com/boardprep/review-platform/internal/profile"
	"github.com/boardprep/review-platform/internal/question"
	"github.com/boardprep/review-platform/internal/server"
	"github.com/boardprep/review-platform/internal/session"
	ws "github.com/boardprep/review-platform/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	lbBroadcaster *leaderboard.Broadcaster
	refreshWorker *leaderboard.RefreshWorker
	bgCancels     []context.CancelFunc
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	profileRepo := repository.NewProfileRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	tokenCfg := jwt.TokenConfig{
		AccessSecret:  []byte(cfg.Security.JWTSecret),
		RefreshSecret: []byte(cfg.Security.JWTSecret + "_refresh"),
		Issuer:        cfg.Name,
	}
	authSvc := auth.NewService(profileRepo, auth.ServiceOptions{TokenConfig: tokenCfg}, logger)
	authHandlers := auth.NewHTTPHandlers(authSvc, logger)

	questionCache := question.NewCache(redisClient, cfg.Quiz.CategoryCacheTTL)
	questionSvc := question.NewService(questionRepo, questionCache, logger)

	sessionStore := session.NewStore(redisClient, cfg.Quiz.SessionTTL, logger)
	sessionSvc := session.NewService(questionRepo, resultRepo, profileRepo, sessionStore, cfg.Quiz.RankedDailyLimit, logger)

	deckSvc := deck.NewService(questionRepo, logger)
	profileSvc := profile.NewService(profileRepo, resultRepo, logger)

	wsHub := ws.NewHub(logger)
	lbSvc := leaderboard.NewService(profileRepo, questionRepo, redisClient, leaderboard.ServiceOptions{
		CacheTTL:      cfg.Leaderboard.CacheTTL,
		PubSubChannel: cfg.Leaderboard.PubSubChannel,
		TopN:          cfg.Leaderboard.TopN,
	}, logger)
	lbBroadcaster := leaderboard.NewBroadcaster(redisClient, wsHub, cfg.Leaderboard.PubSubChannel, logger)
	refreshWorker := leaderboard.NewRefreshWorker(lbSvc, cfg.Leaderboard.RefreshInterval, logger)
	sessionSvc.AttachLeaderboard(lbSvc)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, server.Handlers{
		Auth:          authHandlers,
		AuthSvc:       authSvc,
		Questions:     question.NewHTTPHandler(questionSvc, logger),
		Sessions:      session.NewHTTPHandler(sessionSvc, logger),
		Decks:         deck.NewHTTPHandler(deckSvc, logger),
		Leaderboard:   leaderboard.NewHTTPHandler(lbSvc, logger),
		LeaderboardWS: leaderboard.NewWSHandler(lbSvc, wsHub, logger),
		Profiles:      profile.NewHTTPHandler(profileSvc, logger),
	})

	return &Application{
		cfg:           cfg,
		logger:        logger,
		pool:          pool,
		redis:         redisClient,
		http:          apiServer,
		lbBroadcaster: lbBroadcaster,
		refreshWorker: refreshWorker,
		bgCancels:     make([]context.CancelFunc, 0, 2),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.lbBroadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.lbBroadcaster.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("leaderboard broadcaster stopped")
			}
		}()
	}

	if a.refreshWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.refreshWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("leaderboard refresh worker stopped")
			}
		}()
	}
}
