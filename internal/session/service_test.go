package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/boardprep/review-platform/internal/db/repository"
)

type mockQuestionSource struct {
	mock.Mock
}

func (m *mockQuestionSource) List(ctx context.Context, filter repository.QuestionFilter) ([]repository.QuestionRow, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]repository.QuestionRow), args.Error(1)
}

func (m *mockQuestionSource) Count(ctx context.Context, filter repository.QuestionFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

type mockResultStore struct {
	mock.Mock
}

func (m *mockResultStore) Insert(ctx context.Context, params repository.QuizResultParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *mockResultStore) CountRankedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

type mockRankStore struct {
	mock.Mock
}

func (m *mockRankStore) GetRankState(ctx context.Context, id uuid.UUID) (repository.RankState, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.RankState), args.Error(1)
}

func (m *mockRankStore) UpdateRankState(ctx context.Context, id uuid.UUID, state repository.RankState) error {
	return m.Called(ctx, id, state).Error(0)
}

type mockBoardRefresher struct {
	mock.Mock
}

func (m *mockBoardRefresher) Refresh(ctx context.Context, module string) error {
	return m.Called(ctx, module).Error(0)
}

// fakeSessionStore keeps sessions in memory with copy-on-write semantics
// matching the Redis store's serialization behavior. saveHook, when set,
// runs before each write and can inject failures.
type fakeSessionStore struct {
	sessions map[uuid.UUID][]byte
	locked   map[uuid.UUID]bool
	saveHook func(*Session) error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[uuid.UUID][]byte),
		locked:   make(map[uuid.UUID]bool),
	}
}

func (f *fakeSessionStore) Save(_ context.Context, sess *Session) error {
	if f.saveHook != nil {
		if err := f.saveHook(sess); err != nil {
			return err
		}
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	f.sessions[sess.ID] = data
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	data, ok := f.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) LockCompletion(_ context.Context, id uuid.UUID) (func() error, bool, error) {
	if f.locked[id] {
		return nil, false, nil
	}
	f.locked[id] = true
	return func() error {
		f.locked[id] = false
		return nil
	}, true, nil
}

func questionRows(n int) []repository.QuestionRow {
	rows := make([]repository.QuestionRow, n)
	for i := range rows {
		rows[i] = repository.QuestionRow{
			ID:            uuid.New(),
			Prompt:        "prompt",
			Choices:       [4]string{"a", "b", "c", "d"},
			CorrectAnswer: 0,
			Module:        "psychology",
		}
	}
	return rows
}

func newTestService(questions *mockQuestionSource, results *mockResultStore, profiles *mockRankStore, store *fakeSessionStore) *Service {
	return NewService(questions, results, profiles, store, 5, zerolog.Nop())
}

func TestStart_InvalidSize(t *testing.T) {
	svc := newTestService(new(mockQuestionSource), new(mockResultStore), new(mockRankStore), newFakeSessionStore())

	_, err := svc.Start(context.Background(), uuid.New(), StartRequest{Module: "psychology", Size: 7})
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestStart_InvalidModule(t *testing.T) {
	svc := newTestService(new(mockQuestionSource), new(mockResultStore), new(mockRankStore), newFakeSessionStore())

	_, err := svc.Start(context.Background(), uuid.New(), StartRequest{Module: "law", Size: 10})
	assert.ErrorIs(t, err, ErrInvalidModule)
}

func TestStart_NotEnoughQuestions(t *testing.T) {
	questions := new(mockQuestionSource)
	questions.On("Count", mock.Anything, mock.Anything).Return(5, nil)

	svc := newTestService(questions, new(mockResultStore), new(mockRankStore), newFakeSessionStore())

	_, err := svc.Start(context.Background(), uuid.New(), StartRequest{Module: "psychology", Size: 10})
	assert.ErrorIs(t, err, ErrNotEnoughQuestions)
}

func TestStart_NoQuestionsMatched(t *testing.T) {
	questions := new(mockQuestionSource)
	questions.On("Count", mock.Anything, mock.Anything).Return(0, nil)

	svc := newTestService(questions, new(mockResultStore), new(mockRankStore), newFakeSessionStore())

	_, err := svc.Start(context.Background(), uuid.New(), StartRequest{Module: "psychology", Size: 10})
	assert.ErrorIs(t, err, ErrNoQuestionsMatched)
}

func TestStart_RankedLimitReached(t *testing.T) {
	results := new(mockResultStore)
	results.On("CountRankedSince", mock.Anything, mock.Anything, mock.Anything).Return(5, nil)

	svc := newTestService(new(mockQuestionSource), results, new(mockRankStore), newFakeSessionStore())

	_, err := svc.Start(context.Background(), uuid.New(), StartRequest{Module: "psychology", Size: 10, Mode: ModeRanked})
	assert.ErrorIs(t, err, ErrRankedLimitReached)
}

func TestStart_DrawsRequestedSize(t *testing.T) {
	questions := new(mockQuestionSource)
	questions.On("Count", mock.Anything, mock.Anything).Return(20, nil)
	questions.On("List", mock.Anything, mock.Anything).Return(questionRows(20), nil)

	svc := newTestService(questions, new(mockResultStore), new(mockRankStore), newFakeSessionStore())

	view, err := svc.Start(context.Background(), uuid.New(), StartRequest{Module: "psychology", Size: 10})
	assert.NoError(t, err)
	assert.Equal(t, 10, view.Total)
	assert.Equal(t, PhaseInProgress, view.Phase)
	assert.Equal(t, 0, view.CurrentIndex)
}

func TestCompletion_RankedSavesExactlyOnce(t *testing.T) {
	userID := uuid.New()
	items := toItems(questionRows(2)) // correct answer is 0 for every row

	sess := New(userID, "psychology", "", ModeRanked, items)
	store := newFakeSessionStore()
	assert.NoError(t, store.Save(context.Background(), sess))

	results := new(mockResultStore)
	results.On("Insert", mock.Anything, mock.MatchedBy(func(p repository.QuizResultParams) bool {
		return p.Mode == "ranked" && p.Score == 2 && p.TotalQuestions == 2
	})).Return(nil).Once()

	profiles := new(mockRankStore)
	profiles.On("GetRankState", mock.Anything, userID).Return(repository.RankState{
		RankPoints:    100,
		SeenQuestions: map[string][]string{},
	}, nil).Once()
	profiles.On("UpdateRankState", mock.Anything, userID, mock.MatchedBy(func(s repository.RankState) bool {
		// perfect 2/2: 2*5 points, no bonus below the 10-question chunk
		return s.RankPoints == 110 && len(s.SeenQuestions["psychology"]) == 2
	})).Return(nil).Once()

	svc := newTestService(new(mockQuestionSource), results, profiles, store)
	ctx := context.Background()

	_, err := svc.Answer(ctx, userID, sess.ID, 0)
	assert.NoError(t, err)
	_, err = svc.Advance(ctx, userID, sess.ID)
	assert.NoError(t, err)
	_, err = svc.Answer(ctx, userID, sess.ID, 0)
	assert.NoError(t, err)

	view, err := svc.Advance(ctx, userID, sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, PhaseCompleted, view.Phase)
	assert.Equal(t, 10, view.Result.PointsEarned)

	// re-entering the completed state must not save again
	_, err = svc.Advance(ctx, userID, sess.ID)
	assert.ErrorIs(t, err, ErrSessionCompleted)

	results.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestCompletion_RankedZeroScoreSavesNothing(t *testing.T) {
	userID := uuid.New()
	sess := New(userID, "psychology", "", ModeRanked, toItems(questionRows(1)))
	store := newFakeSessionStore()
	assert.NoError(t, store.Save(context.Background(), sess))

	results := new(mockResultStore)
	profiles := new(mockRankStore)
	svc := newTestService(new(mockQuestionSource), results, profiles, store)
	ctx := context.Background()

	_, err := svc.Answer(ctx, userID, sess.ID, 1) // wrong answer
	assert.NoError(t, err)
	view, err := svc.Advance(ctx, userID, sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, PhaseCompleted, view.Phase)

	results.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	profiles.AssertNotCalled(t, "UpdateRankState", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompletion_NormalModeAppendsResult(t *testing.T) {
	userID := uuid.New()
	sess := New(userID, "nursing", "", ModeNormal, toItems(questionRows(1)))
	store := newFakeSessionStore()
	assert.NoError(t, store.Save(context.Background(), sess))

	results := new(mockResultStore)
	results.On("Insert", mock.Anything, mock.MatchedBy(func(p repository.QuizResultParams) bool {
		return p.Mode == "normal" && p.Module == "nursing"
	})).Return(nil).Once()

	profiles := new(mockRankStore)
	svc := newTestService(new(mockQuestionSource), results, profiles, store)
	ctx := context.Background()

	_, err := svc.Answer(ctx, userID, sess.ID, 0)
	assert.NoError(t, err)
	_, err = svc.Advance(ctx, userID, sess.ID)
	assert.NoError(t, err)

	results.AssertExpectations(t)
	profiles.AssertNotCalled(t, "UpdateRankState", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompletion_RankedRefreshesLeaderboard(t *testing.T) {
	userID := uuid.New()
	sess := New(userID, "psychology", "", ModeRanked, toItems(questionRows(1)))
	store := newFakeSessionStore()
	assert.NoError(t, store.Save(context.Background(), sess))

	results := new(mockResultStore)
	results.On("Insert", mock.Anything, mock.Anything).Return(nil)

	profiles := new(mockRankStore)
	profiles.On("GetRankState", mock.Anything, userID).Return(repository.RankState{
		SeenQuestions: map[string][]string{},
	}, nil)
	profiles.On("UpdateRankState", mock.Anything, userID, mock.Anything).Return(nil)

	boards := new(mockBoardRefresher)
	boards.On("Refresh", mock.Anything, "psychology").Return(nil).Once()
	boards.On("Refresh", mock.Anything, "").Return(nil).Once()

	svc := newTestService(new(mockQuestionSource), results, profiles, store)
	svc.AttachLeaderboard(boards)
	ctx := context.Background()

	_, err := svc.Answer(ctx, userID, sess.ID, 0)
	assert.NoError(t, err)
	_, err = svc.Advance(ctx, userID, sess.ID)
	assert.NoError(t, err)

	boards.AssertExpectations(t)
}

func TestCompletion_ZeroScoreSkipsLeaderboardRefresh(t *testing.T) {
	userID := uuid.New()
	sess := New(userID, "psychology", "", ModeRanked, toItems(questionRows(1)))
	store := newFakeSessionStore()
	assert.NoError(t, store.Save(context.Background(), sess))

	boards := new(mockBoardRefresher)
	svc := newTestService(new(mockQuestionSource), new(mockResultStore), new(mockRankStore), store)
	svc.AttachLeaderboard(boards)
	ctx := context.Background()

	_, err := svc.Answer(ctx, userID, sess.ID, 1) // wrong answer
	assert.NoError(t, err)
	_, err = svc.Advance(ctx, userID, sess.ID)
	assert.NoError(t, err)

	boards.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestCompletion_SaveFailureDoesNotReplayAward(t *testing.T) {
	userID := uuid.New()
	sess := New(userID, "psychology", "", ModeRanked, toItems(questionRows(1)))
	store := newFakeSessionStore()
	assert.NoError(t, store.Save(context.Background(), sess))

	// The completed session is written twice: once under the completion
	// lock, once by the advance path. Fail the second write so the award
	// already sits behind a persisted ResultsSaved flag.
	completedSaves := 0
	store.saveHook = func(s *Session) error {
		if !s.ResultsSaved {
			return nil
		}
		completedSaves++
		if completedSaves == 2 {
			return errors.New("redis write failed")
		}
		return nil
	}

	results := new(mockResultStore)
	results.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()

	profiles := new(mockRankStore)
	profiles.On("GetRankState", mock.Anything, userID).Return(repository.RankState{
		SeenQuestions: map[string][]string{},
	}, nil).Once()
	profiles.On("UpdateRankState", mock.Anything, userID, mock.Anything).Return(nil).Once()

	svc := newTestService(new(mockQuestionSource), results, profiles, store)
	ctx := context.Background()

	_, err := svc.Answer(ctx, userID, sess.ID, 0)
	assert.NoError(t, err)
	_, err = svc.Advance(ctx, userID, sess.ID)
	assert.Error(t, err)

	// Retrying must find the persisted completed session, not re-award.
	_, err = svc.Advance(ctx, userID, sess.ID)
	assert.ErrorIs(t, err, ErrSessionCompleted)

	results.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestAbandonDiscardsWithoutSaving(t *testing.T) {
	userID := uuid.New()
	sess := New(userID, "psychology", "", ModeRanked, toItems(questionRows(1)))
	store := newFakeSessionStore()
	assert.NoError(t, store.Save(context.Background(), sess))

	results := new(mockResultStore)
	svc := newTestService(new(mockQuestionSource), results, new(mockRankStore), store)

	assert.NoError(t, svc.Abandon(context.Background(), userID, sess.ID))

	_, err := svc.Get(context.Background(), userID, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	results.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSessionOwnership(t *testing.T) {
	sess := New(uuid.New(), "psychology", "", ModeNormal, toItems(questionRows(1)))
	store := newFakeSessionStore()
	assert.NoError(t, store.Save(context.Background(), sess))

	svc := newTestService(new(mockQuestionSource), new(mockResultStore), new(mockRankStore), store)

	_, err := svc.Get(context.Background(), uuid.New(), sess.ID)
	assert.ErrorIs(t, err, ErrNotSessionOwner)
}

func TestRankedRemaining(t *testing.T) {
	userID := uuid.New()
	results := new(mockResultStore)
	results.On("CountRankedSince", mock.Anything, userID, mock.Anything).Return(3, nil)

	svc := newTestService(new(mockQuestionSource), results, new(mockRankStore), newFakeSessionStore())

	remaining, err := svc.RankedRemaining(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 2, remaining)
}
