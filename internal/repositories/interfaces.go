package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
)

// ===== FILTERS =====

type UserFilters struct {
	Query  string
	Role   *models.Role
	Limit  int
	Offset int
}

type QuestionFilters struct {
	UserID    *uint
	Resolved  *bool
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// AdminRequestFilters are exact-match conjunctions; no partial matching.
type AdminRequestFilters struct {
	Type        *models.AdminRequestType
	State       *models.AdminRequestState
	RequesterID *uint
	Limit       int
	Offset      int
}

type ReviewerRequestFilters struct {
	RequesterID  *uint
	InstructorID *uint
	// Pending selects rows with a nil status when true.
	Pending *bool
	Limit   int
	Offset  int
}

// ===== REPOSITORY INTERFACES =====

// Mutating methods accept an optional transaction handle, as the schema
// cascades span tables and callers compose multi-row writes.

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUserName(ctx context.Context, tx *gorm.DB, userName string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*models.User, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	CountWithRole(ctx context.Context, tx *gorm.DB, role models.Role) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, msg *models.Message) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Message, error)
	Update(ctx context.Context, tx *gorm.DB, msg *models.Message) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, q *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	Update(ctx context.Context, tx *gorm.DB, q *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type AnswerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, a *models.Answer) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error)
	GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Answer, error)
	Update(ctx context.Context, tx *gorm.DB, a *models.Answer) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// UnpinAllForQuestion clears the pinned flag on every answer of the
	// question; part of the one-pinned-answer toggle.
	UnpinAllForQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error
	SetPinned(ctx context.Context, tx *gorm.DB, answerID uint, pinned bool) error
}

type PrivateMessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, pm *models.PrivateMessage) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PrivateMessage, error)
	GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.PrivateMessage, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type AnnouncementRepository interface {
	Create(ctx context.Context, tx *gorm.DB, a *models.Announcement) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Announcement, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Announcement, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type StaffMessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, sm *models.StaffMessage) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StaffMessage, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*models.StaffMessage, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

// ReadMessageRepository keys rows by (user_id, message_id). GetByID and
// Delete by single id are not part of this contract and return
// ErrUnsupported; use the composite accessors. The contract split is
// deliberate; do not unify it with the single-key repositories.
type ReadMessageRepository interface {
	Mark(ctx context.Context, tx *gorm.DB, userID, messageID uint) error
	GetByKey(ctx context.Context, tx *gorm.DB, userID, messageID uint) (*models.ReadMessage, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ReadMessage, error)

	// DeleteByKey is idempotent; deleting a missing pair is a no-op.
	DeleteByKey(ctx context.Context, tx *gorm.DB, userID, messageID uint) error

	// Unsupported single-id operations, kept to make the contract split
	// explicit at the type level.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ReadMessage, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type AdminRequestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, req *models.AdminRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AdminRequest, error)
	List(ctx context.Context, tx *gorm.DB, filters AdminRequestFilters) ([]*models.AdminRequest, int64, error)
	Update(ctx context.Context, tx *gorm.DB, req *models.AdminRequest) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// SetStateIfPending transitions Pending -> newState and reports whether
	// a row actually moved. Zero rows means the request was already decided
	// or missing; callers surface that as a conflict.
	SetStateIfPending(ctx context.Context, tx *gorm.DB, id uint, newState models.AdminRequestState) (bool, error)
}

type ReviewerRequestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, req *models.ReviewerRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ReviewerRequest, error)
	List(ctx context.Context, tx *gorm.DB, filters ReviewerRequestFilters) ([]*models.ReviewerRequest, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// SetStatusIfPending transitions a nil status to the decision and
	// reports whether a row actually moved.
	SetStatusIfPending(ctx context.Context, tx *gorm.DB, id uint, approved bool) (bool, error)
}

// ReviewRepository keys rows by (reviewer_id, user_id). Like ReadMessage,
// single-id GetByID/Delete return ErrUnsupported by contract.
type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *models.Review) error
	GetByKey(ctx context.Context, tx *gorm.DB, reviewerID, userID uint) (*models.Review, error)
	GetByReviewer(ctx context.Context, tx *gorm.DB, reviewerID uint) ([]*models.Review, error)
	GetByOwner(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Review, error)
	Update(ctx context.Context, tx *gorm.DB, r *models.Review) error

	// DeleteByKey is idempotent; deleting a missing pair is a no-op.
	DeleteByKey(ctx context.Context, tx *gorm.DB, reviewerID, userID uint) error
	CountByOwner(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)

	// Unsupported single-id operations; see ReadMessageRepository.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type InviteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, inv *models.Invite) error
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Invite, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Invite, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// ConsumeIfUnused flips is_used exactly once; false means the code was
	// already redeemed.
	ConsumeIfUnused(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type OneTimePasswordRepository interface {
	Create(ctx context.Context, tx *gorm.DB, otp *models.OneTimePassword) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.OneTimePassword, error)
	GetActiveByTarget(ctx context.Context, tx *gorm.DB, targetID uint) ([]*models.OneTimePassword, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// ConsumeIfUnused marks the credential used exactly once. The affected
	// row count, not a read-then-write, is the redemption signal.
	ConsumeIfUnused(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type AuditLogRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
	GetByActor(ctx context.Context, tx *gorm.DB, actorID uint, limit int) ([]*models.AuditLog, error)
}

// ===== AGGREGATE =====

// Repository bundles all sub-repositories behind one handle.
type Repository interface {
	User() UserRepository
	Message() MessageRepository
	Question() QuestionRepository
	Answer() AnswerRepository
	PrivateMessage() PrivateMessageRepository
	Announcement() AnnouncementRepository
	StaffMessage() StaffMessageRepository
	ReadMessage() ReadMessageRepository
	AdminRequest() AdminRequestRepository
	ReviewerRequest() ReviewerRequestRepository
	Review() ReviewRepository
	Invite() InviteRepository
	OneTimePassword() OneTimePasswordRepository
	AuditLog() AuditLogRepository

	// WithTransaction runs fn against a transaction-scoped repository.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
