package question

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/boardprep/review-platform/internal/auth"
	"github.com/boardprep/review-platform/internal/db/repository"
)

type mockQuestionStore struct {
	mock.Mock
}

func (m *mockQuestionStore) List(ctx context.Context, filter repository.QuestionFilter) ([]repository.QuestionRow, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]repository.QuestionRow), args.Error(1)
}

func (m *mockQuestionStore) Count(ctx context.Context, filter repository.QuestionFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *mockQuestionStore) Categories(ctx context.Context, module string) ([]string, error) {
	args := m.Called(ctx, module)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockQuestionStore) Get(ctx context.Context, id uuid.UUID) (repository.QuestionRow, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.QuestionRow), args.Error(1)
}

func (m *mockQuestionStore) Insert(ctx context.Context, params repository.QuestionParams) (repository.QuestionRow, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(repository.QuestionRow), args.Error(1)
}

func (m *mockQuestionStore) Update(ctx context.Context, id uuid.UUID, params repository.QuestionParams) error {
	return m.Called(ctx, id, params).Error(0)
}

func (m *mockQuestionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockCategoryCache struct {
	mock.Mock
}

func (m *mockCategoryCache) GetCategories(ctx context.Context, module string) ([]string, error) {
	args := m.Called(ctx, module)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryCache) SetCategories(ctx context.Context, module string, categories []string) error {
	return m.Called(ctx, module, categories).Error(0)
}

func (m *mockCategoryCache) Invalidate(ctx context.Context, module string) error {
	return m.Called(ctx, module).Error(0)
}

func validRequest(module string) CreateRequest {
	return CreateRequest{
		Prompt:        "What is the normal adult respiratory rate?",
		Choices:       [4]string{"8-10", "12-20", "22-28", "30-40"},
		CorrectAnswer: 1,
		Category:      "vitals",
		Module:        module,
	}
}

func examinee(subRole string) auth.User {
	return auth.User{ID: uuid.New(), Role: "examinee", SubRole: subRole}
}

func admin() auth.User {
	return auth.User{ID: uuid.New(), Role: "admin"}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(new(mockQuestionStore), nil, zerolog.Nop())
	actor := examinee(ModuleNursing)

	req := validRequest(ModuleNursing)
	req.Prompt = ""
	_, err := svc.Create(context.Background(), actor, req)
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	req = validRequest(ModuleNursing)
	req.Choices[2] = ""
	_, err = svc.Create(context.Background(), actor, req)
	assert.ErrorIs(t, err, ErrEmptyChoice)

	req = validRequest(ModuleNursing)
	req.CorrectAnswer = 4
	_, err = svc.Create(context.Background(), actor, req)
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	req = validRequest("law")
	_, err = svc.Create(context.Background(), actor, req)
	assert.ErrorIs(t, err, ErrInvalidModule)
}

func TestCreate_ModuleLockedForOtherTrack(t *testing.T) {
	svc := NewService(new(mockQuestionStore), nil, zerolog.Nop())

	_, err := svc.Create(context.Background(), examinee(ModulePsychology), validRequest(ModuleNursing))
	assert.ErrorIs(t, err, ErrModuleLocked)
}

func TestCreate_AdminPostsToAnyTrack(t *testing.T) {
	store := new(mockQuestionStore)
	store.On("Insert", mock.Anything, mock.Anything).Return(repository.QuestionRow{ID: uuid.New(), Module: ModuleNursing}, nil)

	svc := NewService(store, nil, zerolog.Nop())

	_, err := svc.Create(context.Background(), admin(), validRequest(ModuleNursing))
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestUpdate_OnlyOwnerOrAdmin(t *testing.T) {
	owner := examinee(ModulePsychology)
	stranger := examinee(ModulePsychology)
	questionID := uuid.New()

	store := new(mockQuestionStore)
	store.On("Get", mock.Anything, questionID).Return(repository.QuestionRow{
		ID:        questionID,
		Module:    ModulePsychology,
		CreatorID: owner.ID,
	}, nil)

	svc := NewService(store, nil, zerolog.Nop())

	err := svc.Update(context.Background(), stranger, questionID, validRequest(ModulePsychology))
	assert.ErrorIs(t, err, ErrNotOwner)

	store.On("Update", mock.Anything, questionID, mock.Anything).Return(nil)
	assert.NoError(t, svc.Update(context.Background(), owner, questionID, validRequest(ModulePsychology)))
	assert.NoError(t, svc.Update(context.Background(), admin(), questionID, validRequest(ModulePsychology)))
}

func TestDelete_NotFound(t *testing.T) {
	store := new(mockQuestionStore)
	store.On("Get", mock.Anything, mock.Anything).Return(repository.QuestionRow{}, repository.ErrNotFound)

	svc := NewService(store, nil, zerolog.Nop())

	err := svc.Delete(context.Background(), admin(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategories_CacheFirst(t *testing.T) {
	store := new(mockQuestionStore)
	cache := new(mockCategoryCache)
	cache.On("GetCategories", mock.Anything, ModulePsychology).Return([]string{"learning", "memory"}, nil)

	svc := NewService(store, cache, zerolog.Nop())

	categories, err := svc.Categories(context.Background(), ModulePsychology)
	assert.NoError(t, err)
	assert.Equal(t, []string{"learning", "memory"}, categories)
	store.AssertNotCalled(t, "Categories", mock.Anything, mock.Anything)
}

func TestCategories_CacheMissFallsThrough(t *testing.T) {
	store := new(mockQuestionStore)
	store.On("Categories", mock.Anything, ModulePsychology).Return([]string{"learning"}, nil)

	cache := new(mockCategoryCache)
	cache.On("GetCategories", mock.Anything, ModulePsychology).Return(nil, nil)
	cache.On("SetCategories", mock.Anything, ModulePsychology, []string{"learning"}).Return(nil)

	svc := NewService(store, cache, zerolog.Nop())

	categories, err := svc.Categories(context.Background(), ModulePsychology)
	assert.NoError(t, err)
	assert.Equal(t, []string{"learning"}, categories)
	cache.AssertExpectations(t)
}

func TestAvailability_FlagsOversizedOptions(t *testing.T) {
	store := new(mockQuestionStore)
	store.On("Count", mock.Anything, mock.Anything).Return(45, nil)

	svc := NewService(store, nil, zerolog.Nop())

	availability, err := svc.Availability(context.Background(), ModuleNursing, "")
	assert.NoError(t, err)
	assert.Equal(t, 45, availability.Total)

	bySize := make(map[int]bool)
	for _, opt := range availability.Sizes {
		bySize[opt.Size] = opt.Available
	}
	assert.True(t, bySize[10])
	assert.True(t, bySize[20])
	assert.False(t, bySize[50])
	assert.False(t, bySize[120])
}
