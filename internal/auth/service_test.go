package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/boardprep/review-platform/internal/auth/jwt"
	"github.com/boardprep/review-platform/internal/db/repository"
)

type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) Create(ctx context.Context, params repository.CreateProfileParams) (repository.ProfileRow, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(repository.ProfileRow), args.Error(1)
}

func (m *mockProfileStore) GetByEmail(ctx context.Context, email string) (repository.ProfileRow, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(repository.ProfileRow), args.Error(1)
}

func (m *mockProfileStore) GetByID(ctx context.Context, id uuid.UUID) (repository.ProfileRow, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.ProfileRow), args.Error(1)
}

func newTestService(profiles *mockProfileStore) *Service {
	return NewService(profiles, ServiceOptions{TokenConfig: jwt.TokenConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}}, zerolog.Nop())
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestVerifyPassword(t *testing.T) {
	hash, _ := HashPassword("testpassword123")

	assert.NoError(t, VerifyPassword(hash, "testpassword123"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrongpassword"), ErrInvalidPassword)
}

func TestPasswordPolicyBounds(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = HashPassword(strings.Repeat("a", 72))
	assert.NoError(t, err)
}

func TestRegister_RejectsUnknownSubRole(t *testing.T) {
	svc := newTestService(new(mockProfileStore))

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "user@example.com",
		Password: "securepassword",
		FullName: "Test User",
		SubRole:  "law",
	})
	assert.ErrorIs(t, err, ErrInvalidSubRole)
}

func TestRegister_EmailTaken(t *testing.T) {
	profiles := new(mockProfileStore)
	profiles.On("GetByEmail", mock.Anything, "taken@example.com").Return(repository.ProfileRow{
		ID:    uuid.New(),
		Email: "taken@example.com",
	}, nil)

	svc := newTestService(profiles)

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "taken@example.com",
		Password: "securepassword",
		FullName: "Test User",
		SubRole:  SubRolePsychology,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_Success(t *testing.T) {
	profiles := new(mockProfileStore)
	profiles.On("GetByEmail", mock.Anything, "new@example.com").Return(repository.ProfileRow{}, repository.ErrNotFound)
	profiles.On("Create", mock.Anything, mock.MatchedBy(func(p repository.CreateProfileParams) bool {
		return p.Email == "new@example.com" && p.Role == repository.RoleExaminee && p.SubRole == SubRoleNursing
	})).Return(repository.ProfileRow{
		ID:       uuid.New(),
		Email:    "new@example.com",
		FullName: "New User",
		Role:     repository.RoleExaminee,
		SubRole:  SubRoleNursing,
	}, nil)

	svc := newTestService(profiles)

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "new@example.com",
		Password: "securepassword",
		FullName: "New User",
		SubRole:  SubRoleNursing,
	})
	assert.NoError(t, err)
	assert.Equal(t, SubRoleNursing, user.SubRole)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	hash, _ := HashPassword("rightpassword")
	profiles := new(mockProfileStore)
	profiles.On("GetByEmail", mock.Anything, "user@example.com").Return(repository.ProfileRow{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: hash,
	}, nil)

	svc := newTestService(profiles)

	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrongpassword"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	hash, _ := HashPassword("rightpassword")
	userID := uuid.New()
	profiles := new(mockProfileStore)
	profiles.On("GetByEmail", mock.Anything, "user@example.com").Return(repository.ProfileRow{
		ID:           userID,
		Email:        "user@example.com",
		PasswordHash: hash,
		Role:         repository.RoleExaminee,
		SubRole:      SubRolePsychology,
	}, nil)

	svc := newTestService(profiles)

	user, tokens, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "rightpassword"})
	assert.NoError(t, err)
	assert.Equal(t, userID, user.ID)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, SubRolePsychology, claims.SubRole)
}
