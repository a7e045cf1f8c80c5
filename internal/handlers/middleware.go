package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FSE-2025/helpdesk-service/internal/auth"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/utils"
)

// SetupMiddleware sets up common middleware for the Gin router
func SetupMiddleware(router *gin.Engine, logger utils.Logger) {
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())
	router.Use(gin.Recovery())
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(SecurityMiddleware())
}

// TokenAuthMiddleware validates requests against issued tokens and loads the
// current account.
type TokenAuthMiddleware struct {
	tokens   *auth.TokenManager
	userRepo repositories.UserRepository
}

func NewTokenAuthMiddleware(tokens *auth.TokenManager, userRepo repositories.UserRepository) *TokenAuthMiddleware {
	return &TokenAuthMiddleware{tokens: tokens, userRepo: userRepo}
}

// AuthMiddleware extracts and verifies the bearer token, then loads the user
// so downstream handlers see current roles rather than the roles at token
// issue time.
func (m *TokenAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing bearer token"})
			return
		}

		claims, err := m.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid or expired token"})
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), nil, claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Account no longer exists"})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

// RequireRoleMiddleware rejects requests from users holding none of the
// given roles.
func (m *TokenAuthMiddleware) RequireRoleMiddleware(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
			return
		}
		user := value.(*models.User)
		if !user.Roles.HasAny(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware provides CORS support
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
