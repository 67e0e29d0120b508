package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/auth/jwt"
	"github.com/boardprep/review-platform/internal/db/repository"
)

// Sub-role values a registrant may pick. Non-admin creators are locked to
// posting questions in their own track.
const (
	SubRolePsychology = "psychology"
	SubRoleNursing    = "nursing"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSubRole     = errors.New("sub_role must be psychology or nursing")
)

type profileStore interface {
	Create(ctx context.Context, params repository.CreateProfileParams) (repository.ProfileRow, error)
	GetByEmail(ctx context.Context, email string) (repository.ProfileRow, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.ProfileRow, error)
}

// Service handles registration, login and token validation.
type Service struct {
	profiles profileStore
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
}

// NewService creates an authentication service.
func NewService(profiles profileStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		logger:   logger,
	}
}

// Register creates a new examinee profile.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *TokenPair, error) {
	if req.Email == "" {
		return nil, nil, fmt.Errorf("email required")
	}
	if req.FullName == "" {
		return nil, nil, fmt.Errorf("full name required")
	}
	if req.SubRole != SubRolePsychology && req.SubRole != SubRoleNursing {
		return nil, nil, ErrInvalidSubRole
	}

	if _, err := s.profiles.GetByEmail(ctx, req.Email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	row, err := s.profiles.Create(ctx, repository.CreateProfileParams{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Role:         repository.RoleExaminee,
		SubRole:      req.SubRole,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create profile: %w", err)
	}

	user := toUser(row)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("sub_role", user.SubRole).Msg("user registered")
	return &user, tokens, nil
}

// Login authenticates with email and password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, *TokenPair, error) {
	row, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(row.PasswordHash, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user := toUser(row)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new pair. The profile is
// re-read so role changes take effect on the next refresh.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*User, *TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	row, err := s.profiles.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user := toUser(row)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &user, tokens, nil
}

// ValidateToken checks an access token and returns its claims.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(token)
}

func (s *Service) generateTokenPair(user User) (*TokenPair, error) {
	tokenUser := jwt.User{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		SubRole:  user.SubRole,
	}

	access, err := s.tokenMgr.GenerateAccessToken(tokenUser)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokenMgr.GenerateRefreshToken(tokenUser)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Hour.Seconds()),
	}, nil
}

func toUser(row repository.ProfileRow) User {
	return User{
		ID:       row.ID,
		Email:    row.Email,
		FullName: row.FullName,
		Role:     row.Role,
		SubRole:  row.SubRole,
	}
}
