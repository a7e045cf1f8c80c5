package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/services"
	"github.com/FSE-2025/helpdesk-service/internal/utils"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the shared logging and error translation used by every
// handler.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c.Request.Context(), h.logger).Error(msg, args...)
}

// handleServiceError maps service errors to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
		})
		return
	}

	var permErr *services.PermissionError
	if errors.As(err, &permErr) {
		c.JSON(http.StatusForbidden, ErrorResponse{Message: permErr.Error()})
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, ErrorResponse{Message: conflictErr.Error()})
		return
	}

	switch {
	case repositories.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found"})
	case errors.Is(err, services.ErrLastAdmin):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInviteInvalid), errors.Is(err, services.ErrUserExists):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}

// currentUser returns the authenticated user attached by the auth middleware.
func (h *BaseHandler) currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return nil, false
	}
	return user, true
}

func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
