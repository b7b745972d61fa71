package middleware

import (
	"errors"
	"net/http"

	"live-poll/internal/transport/httpdto"
	poll_errors "live-poll/pkg/errors"
	"live-poll/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse maps a service error onto its status code and envelope.
func ErrorResponse(err error) (int, httpdto.Response[any]) {
	if v, ok := poll_errors.AsValidation(err); ok {
		if errors.Is(err, poll_errors.ErrTooLarge) {
			return http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse(v.Message, "TOO_LARGE")
		}
		return http.StatusBadRequest, httpdto.NewValidationErrorResponse(v.Message, v.Field, v.MissingIndices)
	}

	switch {
	case errors.Is(err, poll_errors.ErrInvalidInput):
		return http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST")
	case errors.Is(err, poll_errors.ErrNotFound):
		return http.StatusNotFound, httpdto.NewErrorResponse("not found", "NOT_FOUND")
	case errors.Is(err, poll_errors.ErrUnauthorized):
		return http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED")
	case errors.Is(err, poll_errors.ErrAlreadyExists):
		return http.StatusConflict, httpdto.NewErrorResponse("already exists", "ALREADY_EXISTS")
	case errors.Is(err, poll_errors.ErrAlreadySubmitted):
		return http.StatusConflict, httpdto.NewErrorResponse("You have already submitted a response.", "ALREADY_SUBMITTED")
	case errors.Is(err, poll_errors.ErrNoActiveQuestion):
		return http.StatusConflict, httpdto.NewErrorResponse("There is no active question.", "NO_ACTIVE_QUESTION")
	case errors.Is(err, poll_errors.ErrQuestionChanged):
		return http.StatusConflict, httpdto.NewErrorResponse("The question has changed.", "QUESTION_CHANGED")
	case errors.Is(err, poll_errors.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse("request too large", "TOO_LARGE")
	case errors.Is(err, poll_errors.ErrRateLimited):
		return http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limit exceeded", "RATE_LIMITED")
	case errors.Is(err, poll_errors.ErrUploadFailed):
		return http.StatusBadGateway, httpdto.NewErrorResponse("Media upload failed.", "UPLOAD_FAILED")
	case errors.Is(err, poll_errors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, httpdto.NewErrorResponse("service unavailable", "UNAVAILABLE")
	}
	return http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR")
}

// ErrorHandler renders errors attached with c.Error when the handler wrote
// nothing itself.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, body := ErrorResponse(err)
		if l != nil && status >= http.StatusInternalServerError {
			l.WithContext(c.Request.Context()).Error("request error", zap.Error(err))
		}
		if !c.Writer.Written() {
			c.JSON(status, body)
		}
	}
}
