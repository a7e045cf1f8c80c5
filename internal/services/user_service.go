package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/auth"
	"github.com/FSE-2025/helpdesk-service/internal/cache"
	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

type userService struct {
	repo           repositories.Repository
	db             *gorm.DB
	caches         *cache.CacheManager
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewUserService(repo repositories.Repository, db *gorm.DB, caches *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) UserService {
	if caches == nil {
		caches = cache.NewCacheManager(nil)
	}
	return &userService{
		repo:           repo,
		db:             db,
		caches:         caches,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

// GetByID serves profile reads through the user cache. The cached copy goes
// through JSON, so it never carries the password hash; credential paths read
// the repository directly.
func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.caches.User.CacheOrExecute(ctx, fmt.Sprintf("id:%d", id), &user, cache.FastCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.User().GetByID(ctx, nil, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *userService) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	user, err := s.repo.User().GetByUserName(ctx, nil, userName)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filters UserListFilters) (*UserListResponse, error) {
	page, size := normalizePage(filters.Page, filters.Size)

	role := "any"
	if filters.Role != nil {
		role = strconv.Itoa(int(*filters.Role))
	}
	key := fmt.Sprintf("users:%s:%s:%d:%d", filters.Query, role, page, size)
	var cached UserListResponse
	if err := s.caches.User.GetWithConfig(ctx, key, &cached, cache.ListCacheConfig); err == nil {
		return &cached, nil
	}

	users, total, err := s.repo.User().List(ctx, nil, repositories.UserFilters{
		Query:  filters.Query,
		Role:   filters.Role,
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	resp := &UserListResponse{Users: users, Total: total, Page: page, Size: size}
	if err := s.caches.User.SetWithConfig(ctx, key, resp, cache.ListCacheConfig); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache user listing", "error", err, "key", key)
	}
	return resp, nil
}

// GrantRole adds a role bit directly. Only admins may do this; ordinary role
// changes go through the admin request workflow.
func (s *userService) GrantRole(ctx context.Context, actor *models.User, targetID uint, role models.Role) error {
	if !actor.Roles.Has(models.RoleAdmin) {
		return NewPermissionError(actor.ID, targetID, "user", "grant_role", "admin role required")
	}
	return s.changeRoles(ctx, actor, targetID, "grant", func(roles models.RoleSet) models.RoleSet {
		return roles.Add(role)
	})
}

func (s *userService) RevokeRole(ctx context.Context, actor *models.User, targetID uint, role models.Role) error {
	if !actor.Roles.Has(models.RoleAdmin) {
		return NewPermissionError(actor.ID, targetID, "user", "revoke_role", "admin role required")
	}

	if role == models.RoleAdmin {
		if err := s.guardLastAdmin(ctx, nil, targetID); err != nil {
			return err
		}
	}

	return s.changeRoles(ctx, actor, targetID, "revoke", func(roles models.RoleSet) models.RoleSet {
		return roles.Remove(role)
	})
}

func (s *userService) changeRoles(ctx context.Context, actor *models.User, targetID uint, action string, apply func(models.RoleSet) models.RoleSet) error {
	var oldRoles, newRoles models.RoleSet
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		target, err := txRepo.User().GetByID(ctx, nil, targetID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return repositories.ErrNotFound
			}
			return fmt.Errorf("failed to load target user: %w", err)
		}

		oldRoles = target.Roles
		newRoles = apply(target.Roles)
		if newRoles == oldRoles {
			return nil // idempotent
		}

		target.Roles = newRoles
		if err := txRepo.User().Update(ctx, nil, target); err != nil {
			return fmt.Errorf("failed to update roles: %w", err)
		}
		return txRepo.AuditLog().Append(ctx, nil, models.NewAuditLog(actor.ID, "user.roles."+action, targetID, map[string]interface{}{
			"old_roles": int(oldRoles),
			"new_roles": int(newRoles),
		}))
	})
	if err != nil {
		return err
	}

	if newRoles != oldRoles {
		cache.InvalidateUserCache(ctx, s.caches, targetID)
		s.publishEvent(ctx, events.NewEvent(events.EventUserRolesChanged, &events.UserRolesChangedEvent{
			UserID:   targetID,
			OldRoles: int(oldRoles),
			NewRoles: int(newRoles),
			ActorID:  actor.ID,
		}))
		s.logger.Info("User roles changed",
			"target_id", targetID,
			"actor_id", actor.ID,
			"old_roles", int(oldRoles),
			"new_roles", int(newRoles))
	}
	return nil
}

// Delete removes an account. Self-deletion is allowed; deleting someone else
// requires the admin role. The last admin can never be deleted.
func (s *userService) Delete(ctx context.Context, actor *models.User, targetID uint) error {
	if actor.ID != targetID && !actor.Roles.Has(models.RoleAdmin) {
		return NewPermissionError(actor.ID, targetID, "user", "delete", "admin role required")
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		target, err := txRepo.User().GetByID(ctx, nil, targetID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return repositories.ErrNotFound
			}
			return fmt.Errorf("failed to load target user: %w", err)
		}

		if target.Roles.Has(models.RoleAdmin) {
			if err := s.guardLastAdminTx(ctx, txRepo, target); err != nil {
				return err
			}
		}

		if err := txRepo.User().Delete(ctx, nil, targetID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return txRepo.AuditLog().Append(ctx, nil, models.NewAuditLog(actor.ID, "user.delete", targetID, nil))
	})
	if err != nil {
		return err
	}

	cache.InvalidateUserCache(ctx, s.caches, targetID)
	s.publishEvent(ctx, events.NewEvent(events.EventUserDeleted, map[string]interface{}{
		"user_id":  targetID,
		"actor_id": actor.ID,
	}))
	s.logger.Info("User deleted", "target_id", targetID, "actor_id", actor.ID)
	return nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 8 {
		return validator.ValidationErrors{{Field: "password", Message: "password must be at least 8 characters", Rule: "min"}}
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	cache.InvalidateUserCache(ctx, s.caches, userID)
	s.logger.Info("Password changed", "user_id", userID)
	return nil
}

// guardLastAdmin rejects removing admin capability when the target is the
// only admin left.
func (s *userService) guardLastAdmin(ctx context.Context, tx *gorm.DB, targetID uint) error {
	target, err := s.repo.User().GetByID(ctx, tx, targetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to load target user: %w", err)
	}
	if !target.Roles.Has(models.RoleAdmin) {
		return nil
	}
	count, err := s.repo.User().CountWithRole(ctx, tx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (s *userService) guardLastAdminTx(ctx context.Context, txRepo repositories.Repository, target *models.User) error {
	count, err := txRepo.User().CountWithRole(ctx, nil, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (s *userService) publishEvent(ctx context.Context, event *events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", event.Type)
	}
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
