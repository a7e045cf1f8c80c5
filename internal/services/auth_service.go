package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/auth"
	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

type authService struct {
	repo           repositories.Repository
	db             *gorm.DB
	tokens         *auth.TokenManager
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, tokens *auth.TokenManager, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) AuthService {
	return &authService{
		repo:           repo,
		db:             db,
		tokens:         tokens,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

// Register redeems an invite code into a new account. The invite decides the
// initial role bitmask; consumption and account creation share a transaction
// so a code can never mint two accounts.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	s.logger.Info("Registering user", "user_name", req.UserName)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		invite, err := txRepo.Invite().GetByCode(ctx, nil, req.InviteCode)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrInviteInvalid
			}
			return fmt.Errorf("failed to load invite: %w", err)
		}
		if invite.IsUsed || invite.Expired(time.Now()) {
			return ErrInviteInvalid
		}

		if existing, err := txRepo.User().GetByUserName(ctx, nil, req.UserName); err == nil && existing != nil {
			return ErrUserExists
		} else if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check user name: %w", err)
		}
		if existing, err := txRepo.User().GetByEmail(ctx, nil, req.Email); err == nil && existing != nil {
			return ErrUserExists
		} else if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check email: %w", err)
		}

		consumed, err := txRepo.Invite().ConsumeIfUnused(ctx, nil, invite.ID)
		if err != nil {
			return fmt.Errorf("failed to consume invite: %w", err)
		}
		if !consumed {
			return ErrInviteInvalid
		}

		user = &models.User{
			UserName:     req.UserName,
			Email:        req.Email,
			FullName:     req.FullName,
			PasswordHash: hash,
			Roles:        invite.Roles.Add(models.RoleUser),
		}
		if errs := s.validator.ValidateUser(user); len(errs) > 0 {
			return errs
		}
		if err := txRepo.User().Create(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventUserRegistered, map[string]interface{}{
		"user_id":   user.ID,
		"user_name": user.UserName,
		"roles":     int(user.Roles),
	}))

	s.logger.Info("User registered", "user_id", user.ID, "user_name", user.UserName)
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByUserName(ctx, nil, req.UserName)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		s.logger.Warn("Login rejected", "user_name", req.UserName)
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// LoginWithOneTimePassword consumes an active single-use credential for the
// account. All active credentials for the target are checked; the consumed
// row is decided by an atomic conditional update, so a credential can win at
// most one race.
func (s *authService) LoginWithOneTimePassword(ctx context.Context, userName, password string) (*LoginResponse, error) {
	user, err := s.repo.User().GetByUserName(ctx, nil, userName)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	candidates, err := s.repo.OneTimePassword().GetActiveByTarget(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load one-time passwords: %w", err)
	}

	for _, otp := range candidates {
		ok, err := auth.VerifyPassword(password, otp.ValueHash)
		if err != nil || !ok {
			continue
		}
		consumed, err := s.repo.OneTimePassword().ConsumeIfUnused(ctx, nil, otp.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to consume one-time password: %w", err)
		}
		if !consumed {
			continue
		}
		s.logger.Info("One-time password redeemed", "user_id", user.ID, "otp_id", otp.ID)
		return s.issueSession(user)
	}

	return nil, ErrInvalidCredentials
}

// CreateInvite issues a registration code carrying a role bitmask. Admins may
// embed any roles; instructors may only invite students.
func (s *authService) CreateInvite(ctx context.Context, actor *models.User, req *CreateInviteRequest) (*models.Invite, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	roles := models.RoleSet(req.Roles)
	if !actor.Roles.Has(models.RoleAdmin) {
		if !actor.Roles.Has(models.RoleInstructor) {
			return nil, NewPermissionError(actor.ID, 0, "invite", "create", "admin or instructor role required")
		}
		if !roles.Remove(models.RoleStudent).IsEmpty() {
			return nil, NewPermissionError(actor.ID, 0, "invite", "create", "instructors may only invite students")
		}
	}

	creatorID := actor.ID
	invite := &models.Invite{
		Code:      uuid.NewString(),
		CreatedBy: &creatorID,
		Roles:     roles,
		CreatedAt: time.Now().Unix(),
	}
	if errs := s.validator.ValidateInvite(invite); len(errs) > 0 {
		return nil, errs
	}
	if err := s.repo.Invite().Create(ctx, nil, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	s.logger.Info("Invite created", "invite_id", invite.ID, "created_by", actor.ID, "roles", int(roles))
	return invite, nil
}

func (s *authService) ListInvites(ctx context.Context, actor *models.User) ([]*models.Invite, error) {
	if !actor.Roles.HasAny(models.RoleAdmin, models.RoleInstructor) {
		return nil, NewPermissionError(actor.ID, 0, "invite", "list", "admin or instructor role required")
	}
	invites, err := s.repo.Invite().GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

func (s *authService) issueSession(user *models.User) (*LoginResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.UserName, int(user.Roles))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &LoginResponse{Token: token, User: user}, nil
}

func (s *authService) publishEvent(ctx context.Context, event *events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", event.Type)
	}
}
