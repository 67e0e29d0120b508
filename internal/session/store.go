package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned when a session ID is unknown or its
// TTL has expired.
var ErrSessionNotFound = errors.New("session not found")

const completionLockTTL = 30 * time.Second

// Store keeps live session state in Redis. Sessions are ephemeral: they
// expire after the configured TTL and the only durable trace of an
// attempt is the quiz_results row written at completion.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewStore(redisClient *redis.Client, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("session:%s", id.String())
}

// Save writes the full session state, refreshing its TTL.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get loads a session by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete discards a session. Used on abandonment and reset.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.redis.Del(ctx, sessionKey(id)).Err()
}

// LockCompletion acquires a short distributed lock guarding the
// completion side effects of one session, so a re-rendered results view
// or a concurrent request cannot save twice. Returns acquired=false
// when another holder owns the lock.
func (s *Store) LockCompletion(ctx context.Context, id uuid.UUID) (func() error, bool, error) {
	key := fmt.Sprintf("session:complete:%s", id.String())
	lockValue := uuid.New().String()

	acquired, err := s.redis.SetNX(ctx, key, lockValue, completionLockTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire completion lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	unlock := func() error {
		// Lua script ensures we only delete our own lock
		script := `
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			else
				return 0
			end
		`
		return s.redis.Eval(ctx, script, []string{key}, lockValue).Err()
	}
	return unlock, true, nil
}
