package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FSE-2025/helpdesk-service/internal/auth"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/services"
	"github.com/FSE-2025/helpdesk-service/internal/utils"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	userHandler    *UserHandler
	threadHandler  *ThreadHandler
	requestHandler *RequestHandler
	ratingHandler  *RatingHandler
	authMiddleware *TokenAuthMiddleware
	repo           repositories.Repository
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	v *validator.Validator,
	logger utils.Logger,
	tokens *auth.TokenManager,
	repo repositories.Repository,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), v, logger),
		userHandler:    NewUserHandler(serviceManager.User(), logger),
		threadHandler:  NewThreadHandler(serviceManager.Thread(), v, logger),
		requestHandler: NewRequestHandler(serviceManager.AdminRequest(), serviceManager.ReviewerRequest(), logger),
		ratingHandler:  NewRatingHandler(serviceManager.Rating(), serviceManager.Report(), logger),
		authMiddleware: NewTokenAuthMiddleware(tokens, repo.User()),
		repo:           repo,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	// Public authentication endpoints
	authRoutes := router.Group("/api/v1/auth")
	{
		authRoutes.POST("/register", hm.authHandler.Register)
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/login/otp", hm.authHandler.LoginWithOneTimePassword)
	}

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Invite management - Admins and Instructors
		invites := v1.Group("/invites")
		invites.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleInstructor))
		{
			invites.POST("", hm.authHandler.CreateInvite)
			invites.GET("", hm.authHandler.ListInvites)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/me/password", hm.userHandler.ChangePassword)

			// Direct role and account mutations - Admins only
			users.POST("/:id/roles", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.GrantRole)
			users.DELETE("/:id/roles", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.RevokeRole)
			users.DELETE("/:id", hm.userHandler.DeleteUser)
		}

		// Question board
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.threadHandler.CreateQuestion)
			questions.GET("", hm.threadHandler.ListQuestions)
			questions.GET("/:id", hm.threadHandler.GetQuestion)
			questions.POST("/:id/resolve", hm.threadHandler.ResolveQuestion)
			questions.DELETE("/:id", hm.threadHandler.DeleteQuestion)
			questions.GET("/:id/private-messages", hm.threadHandler.GetPrivateMessages)
		}

		// Answers
		answers := v1.Group("/answers")
		{
			answers.POST("", hm.threadHandler.CreateAnswer)
			answers.DELETE("/:id", hm.threadHandler.DeleteAnswer)
			answers.POST("/:id/pin", hm.threadHandler.TogglePin)
		}

		// Private messages
		v1.POST("/private-messages", hm.threadHandler.CreatePrivateMessage)

		// Announcements - read for everyone, write for Admins and Staff
		announcements := v1.Group("/announcements")
		{
			announcements.GET("", hm.threadHandler.ListAnnouncements)
			announcements.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleStaff), hm.threadHandler.CreateAnnouncement)
		}

		// Staff messages - Staff, Instructors and Admins
		staffMessages := v1.Group("/staff-messages")
		staffMessages.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleStaff, models.RoleInstructor))
		{
			staffMessages.GET("", hm.threadHandler.ListStaffMessages)
			staffMessages.POST("", hm.threadHandler.CreateStaffMessage)
		}

		// Read markers
		messages := v1.Group("/messages")
		{
			messages.POST("/:id/read", hm.threadHandler.MarkRead)
			messages.DELETE("/:id/read", hm.threadHandler.UnmarkRead)
			messages.GET("/read", hm.threadHandler.GetReadMessages)
		}

		// Admin requests - filed by Admins and Instructors, decided by Admins
		adminRequests := v1.Group("/admin-requests")
		{
			adminRequests.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleInstructor), hm.requestHandler.CreateAdminRequest)
			adminRequests.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleInstructor), hm.requestHandler.ListAdminRequests)
			adminRequests.GET("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleInstructor), hm.requestHandler.GetAdminRequest)
			adminRequests.POST("/:id/decide", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.requestHandler.DecideAdminRequest)
		}

		// Reviewer requests - filed by anyone, decided by Instructors
		reviewerRequests := v1.Group("/reviewer-requests")
		{
			reviewerRequests.POST("", hm.requestHandler.CreateReviewerRequest)
			reviewerRequests.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleInstructor), hm.requestHandler.ListReviewerRequests)
			reviewerRequests.GET("/:id", hm.requestHandler.GetReviewerRequest)
			reviewerRequests.POST("/:id/decide", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.requestHandler.DecideReviewerRequest)
		}

		// Trusted lists and ratings
		reviewers := v1.Group("/reviewers")
		{
			reviewers.POST("/rank", hm.ratingHandler.RankReviewer)
			reviewers.GET("/trusted", hm.ratingHandler.GetTrustedList)
			reviewers.DELETE("/trusted/:id", hm.ratingHandler.RemoveFromTrustedList)
			reviewers.GET("/:id/rating", hm.ratingHandler.GetRating)
			reviewers.POST("/:id/rating/recompute", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.ratingHandler.RecomputeRating)
		}

		// Reports - Admins and Instructors
		reports := v1.Group("/reports")
		reports.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleInstructor))
		{
			reports.GET("/ratings.xlsx", hm.ratingHandler.ExportRatings)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
