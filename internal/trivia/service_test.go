package trivia_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ms-fyyur/internal/logger"
	"ms-fyyur/internal/models"
	"ms-fyyur/internal/trivia"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockDBLayer) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockDBLayer) CountQuestions(ctx context.Context, filter trivia.QuestionFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockDBLayer) ListQuestions(ctx context.Context, filter trivia.QuestionFilter, offset, limit int) ([]models.Question, error) {
	args := m.Called(ctx, filter, offset, limit)
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockDBLayer) CreateQuestion(ctx context.Context, q *models.Question) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteQuestion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) NextQuizQuestion(ctx context.Context, categoryID int64, exclude []int64) (*models.Question, error) {
	args := m.Called(ctx, categoryID, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Load(ctx context.Context) (map[string]string, bool, error) {
	args := m.Called(ctx)
	cached, _ := args.Get(0).(map[string]string)
	return cached, args.Bool(1), args.Error(2)
}

func (m *MockCache) Store(ctx context.Context, categories map[string]string) error {
	return m.Called(ctx, categories).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	return m.Called(ctx, topic, key, value).Error(0)
}

var categories = []models.Category{{ID: 1, Type: "Science"}, {ID: 2, Type: "Art"}}

func questions(from, to int64) []models.Question {
	var out []models.Question
	for id := from; id <= to; id++ {
		out = append(out, models.Question{ID: id, Question: "q", Answer: "a", Category: 1, Difficulty: 1})
	}
	return out
}

func newService(db trivia.DBLayer, cache trivia.CategoryCache, events trivia.EventPublisher) *trivia.TriviaService {
	return trivia.NewTriviaService(db, cache, events, logger.Discard())
}

func TestQuestionsPage(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	db.On("CountQuestions", ctx, trivia.QuestionFilter{}).Return(12, nil)
	db.On("ListQuestions", ctx, trivia.QuestionFilter{}, 10, trivia.QuestionsPerPage).Return(questions(11, 12), nil)
	db.On("ListCategories", ctx).Return(categories, nil)

	page, err := svc.Questions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, page.Questions, 2)
	assert.Equal(t, 12, page.TotalQuestions)
	assert.Nil(t, page.CurrentCategory)
	assert.Equal(t, map[string]string{"1": "Science", "2": "Art"}, page.Categories)
	db.AssertExpectations(t)
}

func TestQuestionsEmptyPageIsOutOfRange(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	db.On("CountQuestions", ctx, trivia.QuestionFilter{}).Return(12, nil)
	db.On("ListQuestions", ctx, trivia.QuestionFilter{}, 9990, trivia.QuestionsPerPage).Return([]models.Question{}, nil)

	_, err := svc.Questions(ctx, 1000)
	assert.ErrorIs(t, err, trivia.ErrPageOutOfRange)

	_, err = svc.Questions(ctx, 0)
	assert.ErrorIs(t, err, trivia.ErrPageOutOfRange)
	db.AssertNotCalled(t, "ListCategories", mock.Anything)
}

func TestSearchWithoutMatchesIsEmpty(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	filter := trivia.QuestionFilter{Search: "WhatWhatWhat"}
	db.On("CountQuestions", ctx, filter).Return(0, nil)
	db.On("ListQuestions", ctx, filter, 0, trivia.QuestionsPerPage).Return([]models.Question(nil), nil)

	page, err := svc.SearchQuestions(ctx, "WhatWhatWhat", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalQuestions)
	assert.NotNil(t, page.Questions)
	assert.Empty(t, page.Questions)
}

func TestCategoryQuestions(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	filter := trivia.QuestionFilter{CategoryID: 1}
	db.On("GetCategory", ctx, int64(1)).Return(&categories[0], nil)
	db.On("CountQuestions", ctx, filter).Return(3, nil)
	db.On("ListQuestions", ctx, filter, 0, trivia.QuestionsPerPage).Return(questions(15, 17), nil)
	db.On("GetCategory", ctx, int64(99)).Return(nil, trivia.ErrCategoryNotFound)

	page, err := svc.CategoryQuestions(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, page.CurrentCategory)
	assert.Equal(t, "Science", *page.CurrentCategory)
	assert.Equal(t, 3, page.TotalQuestions)

	_, err = svc.CategoryQuestions(ctx, 99, 1)
	assert.ErrorIs(t, err, trivia.ErrCategoryNotFound)
}

func TestCategoriesUsesCache(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	cache := new(MockCache)
	svc := newService(db, cache, nil)

	cached := map[string]string{"1": "Science"}
	cache.On("Load", ctx).Return(cached, true, nil).Once()

	got, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	db.AssertNotCalled(t, "ListCategories", mock.Anything)

	cache.On("Load", ctx).Return(nil, false, nil).Once()
	db.On("ListCategories", ctx).Return(categories, nil)
	cache.On("Store", ctx, map[string]string{"1": "Science", "2": "Art"}).Return(nil)

	got, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	cache.AssertExpectations(t)
}

func TestCategoriesSurvivesCacheFailure(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	cache := new(MockCache)
	svc := newService(db, cache, nil)

	cache.On("Load", ctx).Return(nil, false, errors.New("connection refused"))
	cache.On("Store", ctx, mock.Anything).Return(errors.New("connection refused"))
	db.On("ListCategories", ctx).Return(categories, nil)

	got, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCreateQuestion(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	events := new(MockPublisher)
	svc := newService(db, nil, events)

	in := trivia.QuestionInput{Question: " What is H2O? ", Answer: "Water", Category: 1, Difficulty: 1}
	db.On("GetCategory", ctx, int64(1)).Return(&categories[0], nil)
	db.On("CreateQuestion", ctx, mock.MatchedBy(func(q *models.Question) bool {
		return q.Question == "What is H2O?" && q.Answer == "Water"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Question).ID = 19
	}).Return(nil)
	events.On("Publish", mock.Anything, trivia.TopicQuestionCreated, "19", mock.Anything).Return(errors.New("broker down"))

	q, err := svc.CreateQuestion(ctx, in)
	require.NoError(t, err, "publish failures do not fail the request")
	assert.Equal(t, int64(19), q.ID)
	events.AssertExpectations(t)
}

func TestCreateQuestionRejections(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	_, err := svc.CreateQuestion(ctx, trivia.QuestionInput{Question: "  ", Answer: "x", Category: 1, Difficulty: 1})
	assert.ErrorIs(t, err, trivia.ErrInvalidInput)

	db.On("GetCategory", ctx, int64(42)).Return(nil, trivia.ErrCategoryNotFound)
	_, err = svc.CreateQuestion(ctx, trivia.QuestionInput{Question: "q", Answer: "a", Category: 42, Difficulty: 1})
	assert.ErrorIs(t, err, trivia.ErrCategoryNotFound)

	db.AssertNotCalled(t, "CreateQuestion", mock.Anything, mock.Anything)
}

func TestDeleteQuestion(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	events := new(MockPublisher)
	svc := newService(db, nil, events)

	db.On("DeleteQuestion", ctx, int64(5)).Return(nil)
	db.On("DeleteQuestion", ctx, int64(1000)).Return(trivia.ErrQuestionNotFound)
	events.On("Publish", mock.Anything, trivia.TopicQuestionDeleted, "5", []byte(`{"question_id":5}`)).Return(nil)

	require.NoError(t, svc.DeleteQuestion(ctx, 5))
	assert.ErrorIs(t, svc.DeleteQuestion(ctx, 1000), trivia.ErrQuestionNotFound)
	events.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPublishOutlivesRequestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	db := new(MockDBLayer)
	events := new(MockPublisher)
	svc := newService(db, nil, events)

	var published context.Context
	db.On("DeleteQuestion", mock.Anything, int64(5)).Run(func(mock.Arguments) { cancel() }).Return(nil)
	events.On("Publish", mock.Anything, trivia.TopicQuestionDeleted, "5", mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(0).(context.Context) }).
		Return(nil)

	require.NoError(t, svc.DeleteQuestion(ctx, 5))
	require.NotNil(t, published)
	assert.NoError(t, published.Err())
	deadline, ok := published.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(trivia.PublishTimeout), deadline, trivia.PublishTimeout)
}

func TestNextQuizQuestion(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	first := &models.Question{ID: 16, Category: 1}
	db.On("NextQuizQuestion", ctx, int64(1), []int64{15}).Return(first, nil)
	db.On("NextQuizQuestion", ctx, int64(1), []int64{15, 16, 17}).Return(nil, nil)

	q, err := svc.NextQuizQuestion(ctx, 1, []int64{15})
	require.NoError(t, err)
	assert.Equal(t, first, q)

	q, err = svc.NextQuizQuestion(ctx, 1, []int64{15, 16, 17})
	require.NoError(t, err)
	assert.Nil(t, q)
}
