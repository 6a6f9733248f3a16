package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-result-service/internal/app"
)

type ResultHandler struct {
	service         *app.ResultService
	log             *zap.Logger
	leaderboardSize int
	maxLeaderboard  int
}

func NewResultHandler(service *app.ResultService, log *zap.Logger, leaderboardSize, maxLeaderboard int) *ResultHandler {
	if leaderboardSize <= 0 {
		leaderboardSize = app.DefaultLeaderboardSize
	}
	if maxLeaderboard < leaderboardSize {
		maxLeaderboard = leaderboardSize
	}
	return &ResultHandler{
		service:         service,
		log:             log,
		leaderboardSize: leaderboardSize,
		maxLeaderboard:  maxLeaderboard,
	}
}

// Submit grades the caller's attempt and returns the full result.
func (h *ResultHandler) Submit(c *gin.Context) {
	claims, _ := claimsFrom(c)

	var req submitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Submit(c.Request.Context(), claims.UserID, req.toSubmission())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newResultResponse(result))
}

// Get returns one result with answers to its owner or an admin.
func (h *ResultHandler) Get(c *gin.Context) {
	claims, _ := claimsFrom(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if !found {
		jsonError(c, http.StatusNotFound, "result not found")
		return
	}
	if result.UserID != claims.UserID && !claims.IsAdmin() {
		jsonError(c, http.StatusForbidden, "result belongs to another user")
		return
	}
	c.JSON(http.StatusOK, newResultResponse(result))
}

func (h *ResultHandler) UserResults(c *gin.Context) {
	claims, _ := claimsFrom(c)

	results, err := h.service.UserResults(c.Request.Context(), claims.UserID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponses(results))
}

func (h *ResultHandler) QuizResults(c *gin.Context) {
	quizID, ok := pathID(c, "quizId")
	if !ok {
		return
	}

	results, err := h.service.QuizResults(c.Request.Context(), quizID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponses(results))
}

// Leaderboard returns the top results for a quiz. count defaults to the
// configured size and is capped at the configured maximum.
func (h *ResultHandler) Leaderboard(c *gin.Context) {
	quizID, ok := pathID(c, "quizId")
	if !ok {
		return
	}

	count := h.leaderboardSize
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			jsonError(c, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = min(n, h.maxLeaderboard)
	}

	results, err := h.service.TopResults(c.Request.Context(), quizID, count)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponses(results))
}

func (h *ResultHandler) All(c *gin.Context) {
	results, err := h.service.AllResults(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponses(results))
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		jsonError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
