package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-result-service/internal/app"
	"quiz-result-service/internal/domain"
)

type QuizHandler struct {
	service *app.QuizService
	log     *zap.Logger
}

func NewQuizHandler(service *app.QuizService, log *zap.Logger) *QuizHandler {
	return &QuizHandler{service: service, log: log}
}

func (h *QuizHandler) List(c *gin.Context) {
	filter := domain.QuizFilter{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
	}
	quizzes, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

// Get returns a quiz for taking, without the answer key.
func (h *QuizHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	quiz, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quiz.WithoutAnswerKey())
}

func (h *QuizHandler) Create(c *gin.Context) {
	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	quiz, err := h.service.Create(c.Request.Context(), req.toQuiz())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	h.log.Info("quiz created", zap.Int64("quiz_id", quiz.ID), zap.Int("questions", len(quiz.Questions)))
	c.JSON(http.StatusCreated, quiz)
}

// Update edits quiz metadata and returns the quiz with its answer key.
func (h *QuizHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	quiz, err := h.service.Update(c.Request.Context(), id, req.toQuiz())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	h.log.Info("quiz updated", zap.Int64("quiz_id", id))
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	h.log.Info("quiz deleted", zap.Int64("quiz_id", id))
	c.Status(http.StatusNoContent)
}
