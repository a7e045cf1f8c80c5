package services

import (
	"context"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type CreateInviteRequest = validator.CreateInviteRequest
type CreateQuestionRequest = validator.CreateQuestionRequest
type CreateAnswerRequest = validator.CreateAnswerRequest
type CreatePrivateMessageRequest = validator.CreatePrivateMessageRequest
type CreateAdminRequestRequest = validator.CreateAdminRequestRequest
type CreateReviewerRequestRequest = validator.CreateReviewerRequestRequest
type RankReviewerRequest = validator.RankReviewerRequest

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type UserListFilters struct {
	Query string
	Role  *models.Role
	Page  int
	Size  int
}

type QuestionResponse struct {
	*models.Question
	CanResolve bool `json:"can_resolve"`
	CanDelete  bool `json:"can_delete"`
}

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

type QuestionListFilters struct {
	UserID   *uint
	Resolved *bool
	Page     int
	Size     int
}

type AdminRequestListResponse struct {
	Requests []*models.AdminRequest `json:"requests"`
	Total    int64                  `json:"total"`
}

type ReviewerRequestListResponse struct {
	Requests []*models.ReviewerRequest `json:"requests"`
	Total    int64                     `json:"total"`
}

// AggregatedRating is the smoothed 0..5 score for one reviewer.
type AggregatedRating struct {
	ReviewerID uint `json:"reviewer_id"`
	// Rating is rounded to the nearest integer in [0, 5].
	Rating int `json:"rating"`
	// ListCount is the number of trusted lists with a valid placement of
	// the reviewer.
	ListCount int `json:"list_count"`
}

type NotificationRequest struct {
	Type     models.NotificationType     `json:"type"`
	Title    string                      `json:"title"`
	Message  string                      `json:"message"`
	Priority models.NotificationPriority `json:"priority"`
}

// ===== SERVICE INTERFACES =====

// AuthService covers registration, login and credential issuance.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)

	// LoginWithOneTimePassword signs in with an admin-issued single-use
	// credential. The credential is consumed exactly once.
	LoginWithOneTimePassword(ctx context.Context, userName, password string) (*LoginResponse, error)

	CreateInvite(ctx context.Context, actor *models.User, req *CreateInviteRequest) (*models.Invite, error)
	ListInvites(ctx context.Context, actor *models.User) ([]*models.Invite, error)
}

type UserService interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	List(ctx context.Context, filters UserListFilters) (*UserListResponse, error)

	GrantRole(ctx context.Context, actor *models.User, targetID uint, role models.Role) error
	RevokeRole(ctx context.Context, actor *models.User, targetID uint, role models.Role) error

	// Delete removes an account. Deleting the last remaining admin is
	// rejected with ErrLastAdmin regardless of who asks.
	Delete(ctx context.Context, actor *models.User, targetID uint) error

	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
}

// ThreadService covers the public Q&A board, private threads, announcements,
// staff messages and per-user read markers.
type ThreadService interface {
	CreateQuestion(ctx context.Context, authorID uint, req *CreateQuestionRequest) (*models.Question, error)
	GetQuestion(ctx context.Context, id uint, viewer *models.User) (*QuestionResponse, error)
	ListQuestions(ctx context.Context, filters QuestionListFilters) (*QuestionListResponse, error)
	ResolveQuestion(ctx context.Context, actor *models.User, questionID uint) error
	DeleteQuestion(ctx context.Context, actor *models.User, questionID uint) error

	CreateAnswer(ctx context.Context, authorID uint, req *CreateAnswerRequest) (*models.Answer, error)
	DeleteAnswer(ctx context.Context, actor *models.User, answerID uint) error

	// TogglePin pins the answer, unpinning any other pinned answer of the
	// same question in the same transaction; pinning an already pinned
	// answer unpins it.
	TogglePin(ctx context.Context, actor *models.User, answerID uint) error

	CreatePrivateMessage(ctx context.Context, authorID uint, req *CreatePrivateMessageRequest) (*models.PrivateMessage, error)
	GetPrivateMessages(ctx context.Context, actor *models.User, questionID uint) ([]*models.PrivateMessage, error)

	CreateAnnouncement(ctx context.Context, actor *models.User, title, content string) (*models.Announcement, error)
	ListAnnouncements(ctx context.Context) ([]*models.Announcement, error)

	CreateStaffMessage(ctx context.Context, actor *models.User, content string) (*models.StaffMessage, error)
	ListStaffMessages(ctx context.Context, actor *models.User) ([]*models.StaffMessage, error)

	MarkRead(ctx context.Context, userID, messageID uint) error
	UnmarkRead(ctx context.Context, userID, messageID uint) error
	GetReadMessages(ctx context.Context, userID uint) ([]*models.ReadMessage, error)
}

type AdminRequestListFilters struct {
	Type        *models.AdminRequestType
	State       *models.AdminRequestState
	RequesterID *uint
	Page        int
	Size        int
}

type AdminRequestService interface {
	Create(ctx context.Context, requester *models.User, req *CreateAdminRequestRequest) (*models.AdminRequest, error)
	GetByID(ctx context.Context, id uint) (*models.AdminRequest, error)
	List(ctx context.Context, filters AdminRequestListFilters) (*AdminRequestListResponse, error)

	// Decide moves a pending request to Accepted or Denied and, on
	// acceptance, applies the requested side effect in the same
	// transaction. A request that is no longer pending yields a
	// ConflictError.
	Decide(ctx context.Context, decider *models.User, requestID uint, accept bool) error
}

type ReviewerRequestListFilters struct {
	RequesterID  *uint
	InstructorID *uint
	Pending      *bool
	Page         int
	Size         int
}

type ReviewerRequestService interface {
	Create(ctx context.Context, requesterID uint, req *CreateReviewerRequestRequest) (*models.ReviewerRequest, error)
	GetByID(ctx context.Context, id uint) (*models.ReviewerRequest, error)
	List(ctx context.Context, filters ReviewerRequestListFilters) (*ReviewerRequestListResponse, error)

	// Decide closes a pending request. When the assigned instructor is
	// missing or no longer holds the instructor role the call returns nil
	// without touching the request; callers cannot distinguish this from
	// success and simply retry later.
	Decide(ctx context.Context, requestID uint, accept bool) error
}

// RatingService maintains per-user trusted lists of reviewers and the
// aggregated reviewer ratings derived from them.
type RatingService interface {
	RankReviewer(ctx context.Context, ownerID uint, req *RankReviewerRequest) error
	RemoveFromTrustedList(ctx context.Context, ownerID, reviewerID uint) error
	GetTrustedList(ctx context.Context, ownerID uint) ([]*models.Review, error)

	GetRating(ctx context.Context, reviewerID uint) (*AggregatedRating, error)
	RecomputeRating(ctx context.Context, reviewerID uint) (*AggregatedRating, error)
}

// ReportService renders operational exports.
type ReportService interface {
	// ExportRatings builds an xlsx workbook of reviewer ratings.
	ExportRatings(ctx context.Context, actor *models.User) ([]byte, error)
}

type NotificationEventService interface {
	SendBulkNotification(ctx context.Context, userIDs []uint, notification *NotificationRequest) error
	NotifyAnnouncement(ctx context.Context, announcement *models.Announcement) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Thread() ThreadService
	AdminRequest() AdminRequestService
	ReviewerRequest() ReviewerRequestService
	Rating() RatingService
	Report() ReportService
	NotificationEvent() NotificationEventService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
