package handler

import (
	"net/http"

	"live-poll/internal/services"
	"live-poll/internal/transport/httpdto"
	"live-poll/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ParticipantHandler struct {
	service  *services.ParticipantService
	identity *services.ClientIdentityService
	logger   *logger.Logger
}

func NewParticipantHandler(service *services.ParticipantService, identity *services.ClientIdentityService, l *logger.Logger) *ParticipantHandler {
	return &ParticipantHandler{service: service, identity: identity, logger: l}
}

// RegisterClient issues a fresh participant identity. The browser keeps the
// token and sends it on every later call.
func (h *ParticipantHandler) RegisterClient(c *gin.Context) {
	id, err := h.identity.Issue()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.ClientIdentityResponse{
		ClientID: id.ClientID,
		Token:    id.Token,
	}))
}

func (h *ParticipantHandler) View(c *gin.Context) {
	clientID, _ := services.ClientIDFromContext(c.Request.Context())
	view, err := h.service.View(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewParticipantView(view)))
}

func (h *ParticipantHandler) Submit(c *gin.Context) {
	var req httpdto.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	clientID, _ := services.ClientIDFromContext(c.Request.Context())
	view, err := h.service.Submit(c.Request.Context(), clientID, req.ToInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.NewParticipantView(view)))
}
