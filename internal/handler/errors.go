package handler

import (
	"net/http"

	"live-poll/internal/middleware"
	"live-poll/internal/transport/httpdto"
	"live-poll/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, l *logger.Logger, err error) {
	status, body := middleware.ErrorResponse(err)
	if status >= http.StatusInternalServerError && l != nil {
		l.WithContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, body)
}

func invalidRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
}
