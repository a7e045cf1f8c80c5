package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FSE-2025/helpdesk-service/internal/services"
	"github.com/FSE-2025/helpdesk-service/internal/utils"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

type ThreadHandler struct {
	BaseHandler
	threadService services.ThreadService
	validator     *validator.Validator
}

func NewThreadHandler(threadService services.ThreadService, v *validator.Validator, logger utils.Logger) *ThreadHandler {
	return &ThreadHandler{
		BaseHandler:   NewBaseHandler(logger),
		threadService: threadService,
		validator:     v,
	}
}

// ===== QUESTIONS =====

func (h *ThreadHandler) CreateQuestion(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Creating question", "author_id", actor.ID)

	question, err := h.threadService.CreateQuestion(c.Request.Context(), actor.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: question})
}

func (h *ThreadHandler) GetQuestion(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	question, err := h.threadService.GetQuestion(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if question == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Question not found"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: question})
}

func (h *ThreadHandler) ListQuestions(c *gin.Context) {
	filters := services.QuestionListFilters{
		Page: parseQueryInt(c, "page", 1),
		Size: parseQueryInt(c, "size", 20),
	}
	if raw := c.Query("resolved"); raw != "" {
		resolved, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid resolved filter"})
			return
		}
		filters.Resolved = &resolved
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid user_id filter"})
			return
		}
		userID := uint(id)
		filters.UserID = &userID
	}

	resp, err := h.threadService.ListQuestions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ThreadHandler) ResolveQuestion(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Resolving question", "question_id", id, "actor_id", actor.ID)

	if err := h.threadService.ResolveQuestion(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question resolved"})
}

func (h *ThreadHandler) DeleteQuestion(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id, "actor_id", actor.ID)

	if err := h.threadService.DeleteQuestion(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// ===== ANSWERS =====

func (h *ThreadHandler) CreateAnswer(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	answer, err := h.threadService.CreateAnswer(c.Request.Context(), actor.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: answer})
}

func (h *ThreadHandler) DeleteAnswer(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.threadService.DeleteAnswer(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer deleted"})
}

func (h *ThreadHandler) TogglePin(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Toggling answer pin", "answer_id", id, "actor_id", actor.ID)

	if err := h.threadService.TogglePin(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Pin toggled"})
}

// ===== PRIVATE MESSAGES =====

func (h *ThreadHandler) CreatePrivateMessage(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreatePrivateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	pm, err := h.threadService.CreatePrivateMessage(c.Request.Context(), actor.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: pm})
}

func (h *ThreadHandler) GetPrivateMessages(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	questionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	messages, err := h.threadService.GetPrivateMessages(c.Request.Context(), actor, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: messages})
}

// ===== ANNOUNCEMENTS =====

type createAnnouncementRequest struct {
	Title   string `json:"title" validate:"required,min=5,max=100"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

func (h *ThreadHandler) CreateAnnouncement(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req createAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	announcement, err := h.threadService.CreateAnnouncement(c.Request.Context(), actor, req.Title, req.Content)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: announcement})
}

func (h *ThreadHandler) ListAnnouncements(c *gin.Context) {
	announcements, err := h.threadService.ListAnnouncements(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: announcements})
}

// ===== STAFF MESSAGES =====

type createStaffMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

func (h *ThreadHandler) CreateStaffMessage(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req createStaffMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	sm, err := h.threadService.CreateStaffMessage(c.Request.Context(), actor, req.Content)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: sm})
}

func (h *ThreadHandler) ListStaffMessages(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	messages, err := h.threadService.ListStaffMessages(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: messages})
}

// ===== READ MARKERS =====

func (h *ThreadHandler) MarkRead(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	messageID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.threadService.MarkRead(c.Request.Context(), actor.ID, messageID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Marked read"})
}

func (h *ThreadHandler) UnmarkRead(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	messageID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.threadService.UnmarkRead(c.Request.Context(), actor.ID, messageID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Marked unread"})
}

func (h *ThreadHandler) GetReadMessages(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	marks, err := h.threadService.GetReadMessages(c.Request.Context(), actor.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: marks})
}
