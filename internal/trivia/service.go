package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ms-fyyur/internal/logger"
	"ms-fyyur/internal/models"
)

const (
	QuestionsPerPage = 10

	// PublishTimeout bounds how long a committed write waits on the broker.
	PublishTimeout = 5 * time.Second

	TopicQuestionCreated = "trivia.question.created"
	TopicQuestionDeleted = "trivia.question.deleted"
)

// Topics lists every topic the trivia service publishes to.
var Topics = []string{TopicQuestionCreated, TopicQuestionDeleted}

// QuestionFilter narrows a question listing. Zero fields match everything.
type QuestionFilter struct {
	CategoryID int64
	Search     string
}

type DBLayer interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CountQuestions(ctx context.Context, filter QuestionFilter) (int, error)
	ListQuestions(ctx context.Context, filter QuestionFilter, offset, limit int) ([]models.Question, error)
	CreateQuestion(ctx context.Context, q *models.Question) error
	DeleteQuestion(ctx context.Context, id int64) error
	// NextQuizQuestion returns the lowest-id question not excluded, or nil when none is left.
	NextQuizQuestion(ctx context.Context, categoryID int64, exclude []int64) (*models.Question, error)
}

// CategoryCache keeps the id -> type map between requests.
type CategoryCache interface {
	Load(ctx context.Context) (map[string]string, bool, error)
	Store(ctx context.Context, categories map[string]string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

type TriviaService struct {
	DB     DBLayer
	Cache  CategoryCache
	Events EventPublisher
	Logger *logger.Logger
}

func NewTriviaService(db DBLayer, cache CategoryCache, events EventPublisher, log *logger.Logger) *TriviaService {
	return &TriviaService{
		DB:     db,
		Cache:  cache,
		Events: events,
		Logger: log,
	}
}

type QuestionPage struct {
	Questions       []models.Question `json:"questions"`
	TotalQuestions  int               `json:"total_questions"`
	CurrentCategory *string           `json:"current_category"`
	Categories      map[string]string `json:"categories,omitempty"`
}

type QuestionInput struct {
	Question   string `json:"question" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
	Category   int64  `json:"category" binding:"required,gt=0"`
	Difficulty int    `json:"difficulty" binding:"required,min=1,max=5"`
}

// Categories serves from the cache when one is configured. Cache failures only cost a query.
func (s *TriviaService) Categories(ctx context.Context) (map[string]string, error) {
	if s.Cache != nil {
		cached, ok, err := s.Cache.Load(ctx)
		if err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Category cache read failed: %v", err))
		} else if ok {
			return cached, nil
		}
	}

	list, err := s.DB.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories := models.CategoryMap(list)

	if s.Cache != nil {
		if err := s.Cache.Store(ctx, categories); err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Category cache write failed: %v", err))
		}
	}
	return categories, nil
}

func (s *TriviaService) page(ctx context.Context, filter QuestionFilter, page int) (*QuestionPage, error) {
	if page < 1 {
		return nil, ErrPageOutOfRange
	}
	total, err := s.DB.CountQuestions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	questions, err := s.DB.ListQuestions(ctx, filter, (page-1)*QuestionsPerPage, QuestionsPerPage)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []models.Question{}
	}
	return &QuestionPage{Questions: questions, TotalQuestions: total}, nil
}

// Questions returns one page of all questions with the category map. An empty page is out of range.
func (s *TriviaService) Questions(ctx context.Context, page int) (*QuestionPage, error) {
	res, err := s.page(ctx, QuestionFilter{}, page)
	if err != nil {
		return nil, err
	}
	if len(res.Questions) == 0 {
		return nil, fmt.Errorf("page %d of %d questions: %w", page, res.TotalQuestions, ErrPageOutOfRange)
	}
	if res.Categories, err = s.Categories(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// SearchQuestions matches the term case-insensitively anywhere in the question text.
// No match is a valid, empty result.
func (s *TriviaService) SearchQuestions(ctx context.Context, term string, page int) (*QuestionPage, error) {
	return s.page(ctx, QuestionFilter{Search: term}, page)
}

func (s *TriviaService) CategoryQuestions(ctx context.Context, categoryID int64, page int) (*QuestionPage, error) {
	category, err := s.DB.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, err)
	}
	res, err := s.page(ctx, QuestionFilter{CategoryID: categoryID}, page)
	if err != nil {
		return nil, err
	}
	res.CurrentCategory = &category.Type
	return res, nil
}

func (s *TriviaService) CreateQuestion(ctx context.Context, in QuestionInput) (*models.Question, error) {
	q := &models.Question{
		Question:   strings.TrimSpace(in.Question),
		Answer:     strings.TrimSpace(in.Answer),
		Category:   in.Category,
		Difficulty: in.Difficulty,
	}
	if q.Question == "" || q.Answer == "" {
		return nil, fmt.Errorf("question and answer must not be blank: %w", ErrInvalidInput)
	}

	if _, err := s.DB.GetCategory(ctx, q.Category); err != nil {
		return nil, fmt.Errorf("category %d: %w", q.Category, err)
	}
	if err := s.DB.CreateQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.Logger.Info("TRIVIA", fmt.Sprintf("Question %d created in category %d", q.ID, q.Category))
	s.publish(ctx, TopicQuestionCreated, q.ID, q)
	return q, nil
}

func (s *TriviaService) DeleteQuestion(ctx context.Context, id int64) error {
	if err := s.DB.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("delete question %d: %w", id, err)
	}
	s.Logger.Info("TRIVIA", fmt.Sprintf("Question %d deleted", id))
	s.publish(ctx, TopicQuestionDeleted, id, map[string]int64{"question_id": id})
	return nil
}

// NextQuizQuestion picks the first question by id that has not been asked yet,
// within the category unless categoryID is zero. A nil question means the quiz is over.
func (s *TriviaService) NextQuizQuestion(ctx context.Context, categoryID int64, previous []int64) (*models.Question, error) {
	q, err := s.DB.NextQuizQuestion(ctx, categoryID, previous)
	if err != nil {
		return nil, fmt.Errorf("next quiz question: %w", err)
	}
	return q, nil
}

func (s *TriviaService) publish(ctx context.Context, topic string, id int64, payload any) {
	if s.Events == nil {
		return
	}
	value, err := json.Marshal(payload)
	if err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to marshal %s payload: %v", topic, err))
		return
	}
	// The event outlives the request: a client hanging up after commit must not drop it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()
	if err := s.Events.Publish(ctx, topic, strconv.FormatInt(id, 10), value); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s: %v", topic, err))
	}
}
