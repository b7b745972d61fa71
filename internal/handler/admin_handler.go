package handler

import (
	"net/http"

	"live-poll/internal/services"
	"live-poll/internal/transport/httpdto"
	"live-poll/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service *services.AdminService
	logger  *logger.Logger
}

func NewAdminHandler(service *services.AdminService, l *logger.Logger) *AdminHandler {
	return &AdminHandler{service: service, logger: l}
}

func (h *AdminHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	qs, err := h.service.ListQuestions(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	activeID, err := h.service.ActiveQuestionID(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewAdminView(qs, activeID)))
}

// Create accepts JSON, or a multipart form carrying the Meme file as "media".
func (h *AdminHandler) Create(c *gin.Context) {
	var req httpdto.CreateQuestionRequest
	if err := c.ShouldBind(&req); err != nil {
		invalidRequest(c)
		return
	}

	in := services.CreateQuestionInput{
		Domain:      req.Domain,
		Caption:     req.Caption,
		Statements:  req.Statements,
		Title:       req.Title,
		Description: req.Description,
		Text:        req.Text,
		Options:     req.Options,
	}

	if fh, err := c.FormFile("media"); err == nil {
		f, err := fh.Open()
		if err != nil {
			invalidRequest(c)
			return
		}
		defer f.Close()
		in.Media = f
		in.MediaName = fh.Filename
	}

	q, err := h.service.CreateAndActivate(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.NewQuestionDTO(q)))
}

func (h *AdminHandler) Update(c *gin.Context) {
	var req httpdto.EditQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	q, err := h.service.SaveEdit(c.Request.Context(), c.Param("id"), services.EditQuestionInput{
		Domain:  req.Domain,
		Text:    req.Text,
		Options: req.Options,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewQuestionDTO(q)))
}

func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *AdminHandler) Activate(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.ActivateExisting(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"active_question_id": id}))
}

func (h *AdminHandler) Active(c *gin.Context) {
	id, err := h.service.ActiveQuestionID(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"active_question_id": id}))
}

func (h *AdminHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"active_question_id": ""}))
}
