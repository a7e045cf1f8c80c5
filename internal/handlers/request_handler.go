package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/services"
	"github.com/FSE-2025/helpdesk-service/internal/utils"
)

// RequestHandler serves both the admin request and the reviewer request
// workflows.
type RequestHandler struct {
	BaseHandler
	adminRequests    services.AdminRequestService
	reviewerRequests services.ReviewerRequestService
}

func NewRequestHandler(adminRequests services.AdminRequestService, reviewerRequests services.ReviewerRequestService, logger utils.Logger) *RequestHandler {
	return &RequestHandler{
		BaseHandler:      NewBaseHandler(logger),
		adminRequests:    adminRequests,
		reviewerRequests: reviewerRequests,
	}
}

// ===== ADMIN REQUESTS =====

func (h *RequestHandler) CreateAdminRequest(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateAdminRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Creating admin request",
		"requester_id", actor.ID,
		"target_id", req.TargetID,
		"type", req.Type)

	request, err := h.adminRequests.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: request})
}

func (h *RequestHandler) GetAdminRequest(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.adminRequests.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if request == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Request not found"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: request})
}

func (h *RequestHandler) ListAdminRequests(c *gin.Context) {
	filters := services.AdminRequestListFilters{
		Page: parseQueryInt(c, "page", 1),
		Size: parseQueryInt(c, "size", 20),
	}
	if raw := c.Query("state"); raw != "" {
		state := models.AdminRequestState(raw)
		filters.State = &state
	}
	if raw := c.Query("type"); raw != "" {
		reqType := models.AdminRequestType(raw)
		filters.Type = &reqType
	}

	resp, err := h.adminRequests.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type decisionRequest struct {
	Accept bool `json:"accept"`
}

func (h *RequestHandler) DecideAdminRequest(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Deciding admin request",
		"request_id", id,
		"decider_id", actor.ID,
		"accept", req.Accept)

	if err := h.adminRequests.Decide(c.Request.Context(), actor, id, req.Accept); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Request decided"})
}

// ===== REVIEWER REQUESTS =====

func (h *RequestHandler) CreateReviewerRequest(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateReviewerRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	request, err := h.reviewerRequests.Create(c.Request.Context(), actor.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: request})
}

func (h *RequestHandler) GetReviewerRequest(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.reviewerRequests.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if request == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Request not found"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: request})
}

func (h *RequestHandler) ListReviewerRequests(c *gin.Context) {
	filters := services.ReviewerRequestListFilters{
		Page: parseQueryInt(c, "page", 1),
		Size: parseQueryInt(c, "size", 20),
	}
	if raw := c.Query("pending"); raw != "" {
		pending, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid pending filter"})
			return
		}
		filters.Pending = &pending
	}

	resp, err := h.reviewerRequests.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) DecideReviewerRequest(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Deciding reviewer request", "request_id", id, "accept", req.Accept)

	if err := h.reviewerRequests.Decide(c.Request.Context(), id, req.Accept); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Request processed"})
}
