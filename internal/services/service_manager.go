package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/auth"
	"github.com/FSE-2025/helpdesk-service/internal/cache"
	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager.
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level

	Rating RatingPolicy

	DefaultTimeout time.Duration
}

// serviceManager implements ServiceManager.
type serviceManager struct {
	// Dependencies
	db             *gorm.DB
	repo           repositories.Repository
	caches         *cache.CacheManager
	tokens         *auth.TokenManager
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
	config         ServiceManagerConfig

	// Service instances
	authService            AuthService
	userService            UserService
	threadService          ThreadService
	adminRequestService    AdminRequestService
	reviewerRequestService ReviewerRequestService
	ratingService          RatingService
	reportService          ReportService
	notificationService    NotificationEventService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(db *gorm.DB, repo repositories.Repository, caches *cache.CacheManager, tokens *auth.TokenManager, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:             db,
		repo:           repo,
		caches:         caches,
		tokens:         tokens,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
		config:         config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration.
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, caches *cache.CacheManager, tokens *auth.TokenManager, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		Rating:             DefaultRatingPolicy,
		DefaultTimeout:     30 * time.Second,
	}
	return NewServiceManager(db, repo, caches, tokens, publisher, logger, v, config)
}

func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.shutdown {
		return fmt.Errorf("service manager already shut down")
	}
	if sm.repo == nil {
		return fmt.Errorf("repository is required")
	}
	if sm.tokens == nil {
		return fmt.Errorf("token manager is required")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.ratingService = NewRatingServiceWithPolicy(sm.repo, sm.db, sm.caches, sm.eventPublisher, sm.logger, sm.validator, sm.config.Rating)
	sm.authService = NewAuthService(sm.repo, sm.db, sm.tokens, sm.eventPublisher, sm.logger, sm.validator)
	sm.notificationService = NewNotificationEventService(sm.repo, sm.eventPublisher, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.db, sm.caches, sm.eventPublisher, sm.logger, sm.validator)
	sm.threadService = NewThreadService(sm.repo, sm.db, sm.caches, sm.eventPublisher, sm.notificationService, sm.logger, sm.validator)
	sm.adminRequestService = NewAdminRequestService(sm.repo, sm.db, sm.eventPublisher, sm.logger, sm.validator)
	sm.reviewerRequestService = NewReviewerRequestService(sm.repo, sm.db, sm.eventPublisher, sm.logger, sm.validator)
	sm.reportService = NewReportService(sm.repo, sm.db, sm.ratingService, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized")
	return nil
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.userService
}

func (sm *serviceManager) Thread() ThreadService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.threadService
}

func (sm *serviceManager) AdminRequest() AdminRequestService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.adminRequestService
}

func (sm *serviceManager) ReviewerRequest() ReviewerRequestService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.reviewerRequestService
}

func (sm *serviceManager) Rating() RatingService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.ratingService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.reportService
}

func (sm *serviceManager) NotificationEvent() NotificationEventService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.notificationService
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager shut down")
	}
	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.shutdown = true

	if sm.eventPublisher != nil {
		if err := sm.eventPublisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.logger.Info("Service manager shut down")
	return nil
}
