package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/auth"
	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

type adminRequestService struct {
	repo           repositories.Repository
	db             *gorm.DB
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewAdminRequestService(repo repositories.Repository, db *gorm.DB, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) AdminRequestService {
	return &adminRequestService{
		repo:           repo,
		db:             db,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

func (s *adminRequestService) Create(ctx context.Context, requester *models.User, req *CreateAdminRequestRequest) (*models.AdminRequest, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	request := &models.AdminRequest{
		RequesterID: requester.ID,
		TargetID:    req.TargetID,
		Type:        models.AdminRequestType(req.Type),
		State:       models.RequestPending,
		Reason:      req.Reason,
		RoleContext: req.RoleContext,
	}
	if errs := s.validator.ValidateAdminRequest(request, requester); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.User().GetByID(ctx, nil, req.TargetID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load target user: %w", err)
	}

	if err := s.repo.AdminRequest().Create(ctx, nil, request); err != nil {
		return nil, fmt.Errorf("failed to create admin request: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventAdminRequestCreated, map[string]interface{}{
		"request_id":   request.ID,
		"requester_id": requester.ID,
		"target_id":    req.TargetID,
		"type":         req.Type,
	}))
	s.logger.Info("Admin request created",
		"request_id", request.ID,
		"requester_id", requester.ID,
		"target_id", req.TargetID,
		"type", req.Type)
	return request, nil
}

func (s *adminRequestService) GetByID(ctx context.Context, id uint) (*models.AdminRequest, error) {
	request, err := s.repo.AdminRequest().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin request: %w", err)
	}
	return request, nil
}

func (s *adminRequestService) List(ctx context.Context, filters AdminRequestListFilters) (*AdminRequestListResponse, error) {
	page, size := normalizePage(filters.Page, filters.Size)
	requests, total, err := s.repo.AdminRequest().List(ctx, nil, repositories.AdminRequestFilters{
		Type:        filters.Type,
		State:       filters.State,
		RequesterID: filters.RequesterID,
		Limit:       size,
		Offset:      (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list admin requests: %w", err)
	}
	return &AdminRequestListResponse{Requests: requests, Total: total}, nil
}

// Decide moves a pending request to its terminal state. The conditional
// state transition and the accepted side effect commit together; losing the
// transition race yields a ConflictError and no side effect.
func (s *adminRequestService) Decide(ctx context.Context, decider *models.User, requestID uint, accept bool) error {
	if !decider.Roles.Has(models.RoleAdmin) {
		return NewPermissionError(decider.ID, requestID, "admin_request", "decide", "admin role required")
	}

	request, err := s.repo.AdminRequest().GetByID(ctx, nil, requestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get admin request: %w", err)
	}
	if request.State != models.RequestPending {
		return NewConflictError("admin_request", requestID, "request already decided")
	}

	newState := models.RequestDenied
	if accept {
		newState = models.RequestAccepted
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		moved, err := txRepo.AdminRequest().SetStateIfPending(ctx, nil, requestID, newState)
		if err != nil {
			return fmt.Errorf("failed to update request state: %w", err)
		}
		if !moved {
			return NewConflictError("admin_request", requestID, "request already decided")
		}

		if accept {
			if err := s.applySideEffect(ctx, txRepo, request); err != nil {
				return err
			}
		}

		return txRepo.AuditLog().Append(ctx, nil, models.NewAuditLog(decider.ID, "admin_request.decide", requestID, map[string]interface{}{
			"state":     string(newState),
			"type":      string(request.Type),
			"target_id": request.TargetID,
		}))
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventAdminRequestDecided, &events.AdminRequestDecidedEvent{
		RequestID:   requestID,
		RequesterID: request.RequesterID,
		TargetID:    request.TargetID,
		Type:        string(request.Type),
		State:       string(newState),
		DeciderID:   decider.ID,
	}))
	s.logger.Info("Admin request decided",
		"request_id", requestID,
		"state", string(newState),
		"decider_id", decider.ID)
	return nil
}

func (s *adminRequestService) applySideEffect(ctx context.Context, txRepo repositories.Repository, request *models.AdminRequest) error {
	switch request.Type {
	case models.AdminRequestUpdateRole:
		return s.applyRoleUpdate(ctx, txRepo, request)
	case models.AdminRequestDeleteUser:
		return s.applyUserDelete(ctx, txRepo, request)
	case models.AdminRequestRequestPassword:
		return s.applyPasswordIssue(ctx, txRepo, request)
	default:
		return fmt.Errorf("unknown admin request type %q", request.Type)
	}
}

func (s *adminRequestService) applyRoleUpdate(ctx context.Context, txRepo repositories.Repository, request *models.AdminRequest) error {
	if request.RoleContext == nil {
		return validator.ValidationErrors{{Field: "role_context", Message: "role context is required for role update requests", Rule: "required"}}
	}

	target, err := txRepo.User().GetByID(ctx, nil, request.TargetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to load target user: %w", err)
	}

	target.Roles = target.Roles.Add(models.Role(*request.RoleContext))
	if err := txRepo.User().Update(ctx, nil, target); err != nil {
		return fmt.Errorf("failed to update target roles: %w", err)
	}
	return nil
}

func (s *adminRequestService) applyUserDelete(ctx context.Context, txRepo repositories.Repository, request *models.AdminRequest) error {
	target, err := txRepo.User().GetByID(ctx, nil, request.TargetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to load target user: %w", err)
	}

	if target.Roles.Has(models.RoleAdmin) {
		count, err := txRepo.User().CountWithRole(ctx, nil, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if count <= 1 {
			return ErrLastAdmin
		}
	}

	if err := txRepo.User().Delete(ctx, nil, request.TargetID); err != nil {
		return fmt.Errorf("failed to delete target user: %w", err)
	}
	return nil
}

// applyPasswordIssue stores a salted hash of a fresh one-time password. The
// plaintext leaves the service only through the notification pipeline, which
// delivers it to the target out of band.
func (s *adminRequestService) applyPasswordIssue(ctx context.Context, txRepo repositories.Repository, request *models.AdminRequest) error {
	plaintext, err := generateOneTimePassword()
	if err != nil {
		return fmt.Errorf("failed to generate one-time password: %w", err)
	}
	hash, err := auth.HashPassword(plaintext)
	if err != nil {
		return fmt.Errorf("failed to hash one-time password: %w", err)
	}

	otp := &models.OneTimePassword{
		CreatedBy: request.RequesterID,
		TargetID:  request.TargetID,
		ValueHash: hash,
	}
	if err := txRepo.OneTimePassword().Create(ctx, nil, otp); err != nil {
		return fmt.Errorf("failed to store one-time password: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventOneTimePasswordIssued, map[string]interface{}{
		"otp_id":    otp.ID,
		"target_id": request.TargetID,
		"value":     plaintext,
	}))
	return nil
}

func generateOneTimePassword() (string, error) {
	raw := make([]byte, 18)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func (s *adminRequestService) publishEvent(ctx context.Context, event *events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", event.Type)
	}
}
