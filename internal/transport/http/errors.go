package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-result-service/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func jsonError(c *gin.Context, status int, message ...string) {
	msg := ""
	if len(message) > 0 {
		msg = message[0]
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg,
	})
}

// writeServiceError maps use case errors to HTTP statuses. Unexpected errors
// are logged and hidden from the client.
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		jsonError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidSubmission),
		errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, domain.ErrInvalidQuiz):
		jsonError(c, http.StatusBadRequest, err.Error())
	default:
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		jsonError(c, http.StatusInternalServerError, "internal error")
	}
}
