package handler

import (
	"net/http"

	"live-poll/internal/services"
	"live-poll/internal/transport/httpdto"
	"live-poll/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ResultsHandler struct {
	service *services.ResultsService
	logger  *logger.Logger
}

func NewResultsHandler(service *services.ResultsService, l *logger.Logger) *ResultsHandler {
	return &ResultsHandler{service: service, logger: l}
}

func (h *ResultsHandler) Current(c *gin.Context) {
	res, err := h.service.Current(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}
