package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/cache"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

// PostgreSQLRepository implements the aggregate Repository interface.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	user            repositories.UserRepository
	message         repositories.MessageRepository
	question        repositories.QuestionRepository
	answer          repositories.AnswerRepository
	privateMessage  repositories.PrivateMessageRepository
	announcement    repositories.AnnouncementRepository
	staffMessage    repositories.StaffMessageRepository
	readMessage     repositories.ReadMessageRepository
	adminRequest    repositories.AdminRequestRepository
	reviewerRequest repositories.ReviewerRequestRepository
	review          repositories.ReviewRepository
	invite          repositories.InviteRepository
	oneTimePassword repositories.OneTimePasswordRepository
	auditLog        repositories.AuditLogRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates the repository manager with all
// sub-repositories wired against the same connection.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cache.NewCacheManager(config.RedisClient),
	}
	repo.initSubRepositories(config.DB)
	return repo
}

func (r *PostgreSQLRepository) initSubRepositories(db *gorm.DB) {
	r.user = NewUserPostgreSQL(db)
	r.message = NewMessagePostgreSQL(db)
	r.question = NewQuestionPostgreSQL(db)
	r.answer = NewAnswerPostgreSQL(db)
	r.privateMessage = NewPrivateMessagePostgreSQL(db)
	r.announcement = NewAnnouncementPostgreSQL(db)
	r.staffMessage = NewStaffMessagePostgreSQL(db)
	r.readMessage = NewReadMessagePostgreSQL(db)
	r.adminRequest = NewAdminRequestPostgreSQL(db)
	r.reviewerRequest = NewReviewerRequestPostgreSQL(db)
	r.review = NewReviewPostgreSQL(db)
	r.invite = NewInvitePostgreSQL(db)
	r.oneTimePassword = NewOneTimePasswordPostgreSQL(db)
	r.auditLog = NewAuditLogPostgreSQL(db)
}

func (r *PostgreSQLRepository) User() repositories.UserRepository       { return r.user }
func (r *PostgreSQLRepository) Message() repositories.MessageRepository { return r.message }
func (r *PostgreSQLRepository) Question() repositories.QuestionRepository {
	return r.question
}
func (r *PostgreSQLRepository) Answer() repositories.AnswerRepository { return r.answer }
func (r *PostgreSQLRepository) PrivateMessage() repositories.PrivateMessageRepository {
	return r.privateMessage
}
func (r *PostgreSQLRepository) Announcement() repositories.AnnouncementRepository {
	return r.announcement
}
func (r *PostgreSQLRepository) StaffMessage() repositories.StaffMessageRepository {
	return r.staffMessage
}
func (r *PostgreSQLRepository) ReadMessage() repositories.ReadMessageRepository {
	return r.readMessage
}
func (r *PostgreSQLRepository) AdminRequest() repositories.AdminRequestRepository {
	return r.adminRequest
}
func (r *PostgreSQLRepository) ReviewerRequest() repositories.ReviewerRequestRepository {
	return r.reviewerRequest
}
func (r *PostgreSQLRepository) Review() repositories.ReviewRepository { return r.review }
func (r *PostgreSQLRepository) Invite() repositories.InviteRepository { return r.invite }
func (r *PostgreSQLRepository) OneTimePassword() repositories.OneTimePasswordRepository {
	return r.oneTimePassword
}
func (r *PostgreSQLRepository) AuditLog() repositories.AuditLogRepository { return r.auditLog }

// WithTransaction executes fn against a transaction-scoped repository.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}
		txRepo.initSubRepositories(tx)
		return fn(txRepo)
	})
}

// Ping checks database and cache health.
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections.
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the repository lifecycle.
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{config: config}
}

func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
