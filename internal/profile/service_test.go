package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/boardprep/review-platform/internal/db/repository"
)

type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) GetByID(ctx context.Context, id uuid.UUID) (repository.ProfileRow, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.ProfileRow), args.Error(1)
}

func (m *mockProfileStore) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, subRole string) error {
	return m.Called(ctx, id, fullName, subRole).Error(0)
}

type mockResultStore struct {
	mock.Mock
}

func (m *mockResultStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]repository.QuizResultRow, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]repository.QuizResultRow), args.Error(1)
}

func TestStatsAggregation(t *testing.T) {
	userID := uuid.New()

	profiles := new(mockProfileStore)
	profiles.On("GetByID", mock.Anything, userID).Return(repository.ProfileRow{
		ID:         userID,
		RankPoints: 250,
	}, nil)

	results := new(mockResultStore)
	results.On("ListByUser", mock.Anything, userID).Return([]repository.QuizResultRow{
		{Score: 18, TotalQuestions: 20, Mode: "ranked"},
		{Score: 7, TotalQuestions: 10, Mode: "normal"},
		{Score: 5, TotalQuestions: 10, Mode: "ranked"},
	}, nil)

	svc := NewService(profiles, results, zerolog.Nop())

	stats, err := svc.Stats(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 250, stats.RankPoints)
	assert.Equal(t, 3, stats.QuizCount)
	assert.Equal(t, 2, stats.RankedCount)
	assert.Equal(t, 40, stats.TotalAnswered)
	assert.Equal(t, 30, stats.TotalCorrect)
	// 30/40 = 75%
	assert.Equal(t, 75, stats.Accuracy)
}

func TestStatsNoHistory(t *testing.T) {
	userID := uuid.New()

	profiles := new(mockProfileStore)
	profiles.On("GetByID", mock.Anything, userID).Return(repository.ProfileRow{ID: userID}, nil)

	results := new(mockResultStore)
	results.On("ListByUser", mock.Anything, userID).Return([]repository.QuizResultRow{}, nil)

	svc := NewService(profiles, results, zerolog.Nop())

	stats, err := svc.Stats(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.QuizCount)
	assert.Equal(t, 0, stats.Accuracy)
}

func TestUpdateRejectsUnknownSubRole(t *testing.T) {
	svc := NewService(new(mockProfileStore), new(mockResultStore), zerolog.Nop())

	_, err := svc.Update(context.Background(), uuid.New(), UpdateRequest{FullName: "X", SubRole: "law"})
	assert.ErrorIs(t, err, ErrInvalidSubRole)
}

func TestUpdateNotFound(t *testing.T) {
	userID := uuid.New()
	profiles := new(mockProfileStore)
	profiles.On("UpdateDetails", mock.Anything, userID, "X", "psychology").Return(repository.ErrNotFound)

	svc := NewService(profiles, new(mockResultStore), zerolog.Nop())

	_, err := svc.Update(context.Background(), userID, UpdateRequest{FullName: "X", SubRole: "psychology"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResultsIncludePercentage(t *testing.T) {
	userID := uuid.New()
	results := new(mockResultStore)
	results.On("ListByUser", mock.Anything, userID).Return([]repository.QuizResultRow{
		{ID: uuid.New(), Module: "psychology", Score: 19, TotalQuestions: 20, Mode: "ranked"},
	}, nil)

	svc := NewService(new(mockProfileStore), results, zerolog.Nop())

	attempts, err := svc.Results(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, attempts, 1)
	assert.Equal(t, 95, attempts[0].Percentage)
}
