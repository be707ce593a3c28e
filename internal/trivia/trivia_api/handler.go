package trivia_api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ms-fyyur/internal/auth"
	"ms-fyyur/internal/logger"
	"ms-fyyur/internal/trivia"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type Handler struct {
	Service *trivia.TriviaService
	Guard   *auth.Guard
	Logger  *logger.Logger
}

func NewHandler(service *trivia.TriviaService, guard *auth.Guard, log *logger.Logger) *Handler {
	return &Handler{Service: service, Guard: guard, Logger: log}
}

// NewRouter builds the API engine: access log, JSON recovery, CORS for every origin
// and JSON bodies for unknown routes and methods.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(h.Logger.Gin())
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		h.Logger.Error("API", fmt.Sprintf("%s %s: panic: %v", c.Request.Method, c.Request.URL.Path, rec))
		abortWithError(c, http.StatusInternalServerError)
	}))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
	}))

	r.NoRoute(func(c *gin.Context) { abortWithError(c, http.StatusNotFound) })
	r.NoMethod(func(c *gin.Context) { abortWithError(c, http.StatusMethodNotAllowed) })

	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/categories", h.GetCategories)
	r.GET("/categories/:id/questions", h.GetCategoryQuestions)
	r.GET("/questions", h.GetQuestions)
	r.POST("/questions", h.PostQuestions)
	r.DELETE("/questions/:id", h.DeleteQuestion)
	r.POST("/quizzes", h.PlayQuiz)
}

type questionsResponse struct {
	Success bool `json:"success"`
	*trivia.QuestionPage
}

// pageParam reads ?page=N. Anything that is not a number means the first page.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return page
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

// authorize runs the bearer-token check when authentication is configured.
func (h *Handler) authorize(c *gin.Context) bool {
	if h.Guard == nil || !h.Guard.Enabled() {
		return true
	}
	sub, err := h.Guard.Authenticate(c.Request)
	if err != nil {
		h.Logger.LogSecurity("AUTH_REJECTED", fmt.Sprintf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err))
		abortWithError(c, http.StatusUnauthorized)
		return false
	}
	c.Request = c.Request.WithContext(auth.WithSubject(c.Request.Context(), sub))
	return true
}

// readFailed maps errors of read endpoints: missing things are 404, store failures are 422.
func (h *Handler) readFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trivia.ErrPageOutOfRange),
		errors.Is(err, trivia.ErrCategoryNotFound),
		errors.Is(err, trivia.ErrQuestionNotFound):
		h.Logger.Warn("API", fmt.Sprintf("%s %s: %v", c.Request.Method, c.Request.URL.String(), err))
		abortWithError(c, http.StatusNotFound)
	default:
		h.Logger.Error("API", fmt.Sprintf("%s %s: %v", c.Request.Method, c.Request.URL.String(), err))
		abortWithError(c, http.StatusUnprocessableEntity)
	}
}

func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.Service.Categories(c.Request.Context())
	if err != nil {
		h.readFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "success": true})
}

func (h *Handler) GetQuestions(c *gin.Context) {
	page, err := h.Service.Questions(c.Request.Context(), pageParam(c))
	if err != nil {
		h.readFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, questionsResponse{Success: true, QuestionPage: page})
}

func (h *Handler) GetCategoryQuestions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortWithError(c, http.StatusNotFound)
		return
	}
	page, err := h.Service.CategoryQuestions(c.Request.Context(), id, pageParam(c))
	if err != nil {
		h.readFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, questionsResponse{Success: true, QuestionPage: page})
}

// PostQuestions searches when the body carries searchTerm and creates a question otherwise.
func (h *Handler) PostQuestions(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest)
		return
	}

	var search struct {
		SearchTerm *string `json:"searchTerm"`
	}
	if err := json.Unmarshal(body, &search); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("PostQuestions: undecodable body: %v", err))
		abortWithError(c, http.StatusBadRequest)
		return
	}
	if search.SearchTerm != nil {
		h.searchQuestions(c, strings.TrimSpace(*search.SearchTerm))
		return
	}

	if !h.authorize(c) {
		return
	}
	h.createQuestion(c, body)
}

func (h *Handler) searchQuestions(c *gin.Context, term string) {
	page, err := h.Service.SearchQuestions(c.Request.Context(), term, pageParam(c))
	if err != nil {
		h.readFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, questionsResponse{Success: true, QuestionPage: page})
}

func (h *Handler) createQuestion(c *gin.Context, body []byte) {
	var in trivia.QuestionInput
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreateQuestion: %v", err))
		abortWithError(c, http.StatusBadRequest)
		return
	}
	if err := binding.Validator.ValidateStruct(&in); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreateQuestion: %v", err))
		abortWithError(c, http.StatusBadRequest)
		return
	}

	q, err := h.Service.CreateQuestion(c.Request.Context(), in)
	switch {
	case errors.Is(err, trivia.ErrInvalidInput):
		h.Logger.Warn("API", fmt.Sprintf("CreateQuestion: %v", err))
		abortWithError(c, http.StatusBadRequest)
		return
	case err != nil:
		h.Logger.Error("API", fmt.Sprintf("CreateQuestion: %v", err))
		abortWithError(c, http.StatusUnprocessableEntity)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateQuestion: question %d created by %s", q.ID, auth.RequestSubject(c.Request)))
	c.JSON(http.StatusCreated, gin.H{"success": true, "created": q.ID})
}

func (h *Handler) DeleteQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abortWithError(c, http.StatusNotFound)
		return
	}
	if !h.authorize(c) {
		return
	}

	err := h.Service.DeleteQuestion(c.Request.Context(), id)
	switch {
	case errors.Is(err, trivia.ErrQuestionNotFound):
		abortWithError(c, http.StatusNotFound)
		return
	case err != nil:
		h.Logger.Error("API", fmt.Sprintf("DeleteQuestion: %v", err))
		abortWithError(c, http.StatusUnprocessableEntity)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteQuestion: question %d deleted by %s", id, auth.RequestSubject(c.Request)))
	c.Status(http.StatusNoContent)
}

// CategoryRef accepts a category id sent either as a number or as a numeric string.
type CategoryRef int64

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("category id %s: %w", data, err)
	}
	*r = CategoryRef(id)
	return nil
}

type QuizRequest struct {
	PreviousQuestions []int64 `json:"previous_questions"`
	QuizCategory      *struct {
		ID   CategoryRef `json:"id"`
		Type string      `json:"type"`
	} `json:"quiz_category" binding:"required"`
}

// PlayQuiz answers with the next unasked question, or question=false when the quiz is over.
func (h *Handler) PlayQuiz(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("PlayQuiz: %v", err))
		abortWithError(c, http.StatusBadRequest)
		return
	}

	q, err := h.Service.NextQuizQuestion(c.Request.Context(), int64(req.QuizCategory.ID), req.PreviousQuestions)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PlayQuiz: %v", err))
		abortWithError(c, http.StatusUnprocessableEntity)
		return
	}

	var question any = false
	if q != nil {
		question = q
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "question": question})
}
