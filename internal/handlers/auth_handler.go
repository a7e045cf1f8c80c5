package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FSE-2025/helpdesk-service/internal/services"
	"github.com/FSE-2025/helpdesk-service/internal/utils"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	validator   *validator.Validator
}

func NewAuthHandler(authService services.AuthService, v *validator.Validator, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		validator:   v,
	}
}

// Register redeems an invite code into a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Registering user", "user_name", req.UserName)

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: resp})
}

// LoginWithOneTimePassword signs in with an admin-issued credential.
func (h *AuthHandler) LoginWithOneTimePassword(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	resp, err := h.authService.LoginWithOneTimePassword(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: resp})
}

func (h *AuthHandler) CreateInvite(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Creating invite", "actor_id", actor.ID)

	invite, err := h.authService.CreateInvite(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: invite})
}

func (h *AuthHandler) ListInvites(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	invites, err := h.authService.ListInvites(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: invites})
}
