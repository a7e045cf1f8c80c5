package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/services"
	"github.com/FSE-2025/helpdesk-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// ListUsers returns a paginated user listing with optional name/email query
// and role filter.
func (h *UserHandler) ListUsers(c *gin.Context) {
	filters := services.UserListFilters{
		Query: c.Query("q"),
		Page:  parseQueryInt(c, "page", 1),
		Size:  parseQueryInt(c, "size", 20),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.Role(parseQueryInt(c, "role", 0))
		if !models.RoleSet(role).IsValid() || role == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid role filter"})
			return
		}
		filters.Role = &role
	}

	resp, err := h.userService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: user})
}

type roleChangeRequest struct {
	Role int `json:"role" validate:"required,role_bit"`
}

func (h *UserHandler) GrantRole(c *gin.Context) {
	h.changeRole(c, true)
}

func (h *UserHandler) RevokeRole(c *gin.Context) {
	h.changeRole(c, false)
}

func (h *UserHandler) changeRole(c *gin.Context, grant bool) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	targetID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req roleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	role := models.Role(req.Role)
	h.LogRequest(c, "Changing user role",
		"actor_id", actor.ID,
		"target_id", targetID,
		"role", role.String(),
		"grant", grant)

	var err error
	if grant {
		err = h.userService.GrantRole(c.Request.Context(), actor, targetID, role)
	} else {
		err = h.userService.RevokeRole(c.Request.Context(), actor, targetID, role)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Roles updated"})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	targetID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting user", "actor_id", actor.ID, "target_id", targetID)

	if err := h.userService.Delete(c.Request.Context(), actor, targetID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User deleted"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), actor.ID, req.OldPassword, req.NewPassword); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Password changed"})
}
