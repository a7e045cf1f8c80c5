package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

type reviewerRequestService struct {
	repo           repositories.Repository
	db             *gorm.DB
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewReviewerRequestService(repo repositories.Repository, db *gorm.DB, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ReviewerRequestService {
	return &reviewerRequestService{
		repo:           repo,
		db:             db,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

func (s *reviewerRequestService) Create(ctx context.Context, requesterID uint, req *CreateReviewerRequestRequest) (*models.ReviewerRequest, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	request := &models.ReviewerRequest{
		RequesterID:  requesterID,
		InstructorID: req.InstructorID,
	}

	var instructor *models.User
	if req.InstructorID != nil {
		var err error
		instructor, err = s.repo.User().GetByID(ctx, nil, *req.InstructorID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to load instructor: %w", err)
		}
	}
	if errs := s.validator.ValidateReviewerRequest(request, instructor); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.ReviewerRequest().Create(ctx, nil, request); err != nil {
		return nil, fmt.Errorf("failed to create reviewer request: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventReviewerRequestFiled, map[string]interface{}{
		"request_id":   request.ID,
		"requester_id": requesterID,
	}))
	s.logger.Info("Reviewer request created", "request_id", request.ID, "requester_id", requesterID)
	return request, nil
}

func (s *reviewerRequestService) GetByID(ctx context.Context, id uint) (*models.ReviewerRequest, error) {
	request, err := s.repo.ReviewerRequest().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reviewer request: %w", err)
	}
	return request, nil
}

func (s *reviewerRequestService) List(ctx context.Context, filters ReviewerRequestListFilters) (*ReviewerRequestListResponse, error) {
	page, size := normalizePage(filters.Page, filters.Size)
	requests, total, err := s.repo.ReviewerRequest().List(ctx, nil, repositories.ReviewerRequestFilters{
		RequesterID:  filters.RequesterID,
		InstructorID: filters.InstructorID,
		Pending:      filters.Pending,
		Limit:        size,
		Offset:       (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewer requests: %w", err)
	}
	return &ReviewerRequestListResponse{Requests: requests, Total: total}, nil
}

// Decide closes a pending request. When the assigned instructor is gone or
// has lost the instructor role, the call is a silent no-op: the request
// stays pending and nil is returned, so it can be reassigned and decided
// later. Acceptance grants the reviewer role in the same transaction as the
// status flip.
func (s *reviewerRequestService) Decide(ctx context.Context, requestID uint, accept bool) error {
	request, err := s.repo.ReviewerRequest().GetByID(ctx, nil, requestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get reviewer request: %w", err)
	}
	if request.Status != nil {
		return NewConflictError("reviewer_request", requestID, "request already decided")
	}

	if request.InstructorID == nil {
		s.logger.Info("Reviewer request has no instructor, skipping", "request_id", requestID)
		return nil
	}
	instructor, err := s.repo.User().GetByID(ctx, nil, *request.InstructorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Info("Reviewer request instructor missing, skipping", "request_id", requestID)
			return nil
		}
		return fmt.Errorf("failed to load instructor: %w", err)
	}
	if !instructor.Roles.Has(models.RoleInstructor) {
		s.logger.Info("Reviewer request instructor lost role, skipping",
			"request_id", requestID,
			"instructor_id", instructor.ID)
		return nil
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		moved, err := txRepo.ReviewerRequest().SetStatusIfPending(ctx, nil, requestID, accept)
		if err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}
		if !moved {
			return NewConflictError("reviewer_request", requestID, "request already decided")
		}

		if accept {
			requester, err := txRepo.User().GetByID(ctx, nil, request.RequesterID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return repositories.ErrNotFound
				}
				return fmt.Errorf("failed to load requester: %w", err)
			}
			requester.Roles = requester.Roles.Add(models.RoleReviewer)
			if err := txRepo.User().Update(ctx, nil, requester); err != nil {
				return fmt.Errorf("failed to grant reviewer role: %w", err)
			}
		}

		return txRepo.AuditLog().Append(ctx, nil, models.NewAuditLog(instructor.ID, "reviewer_request.decide", requestID, map[string]interface{}{
			"accepted":     accept,
			"requester_id": request.RequesterID,
		}))
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventReviewerRequestClosed, &events.ReviewerRequestClosedEvent{
		RequestID:    requestID,
		RequesterID:  request.RequesterID,
		InstructorID: instructor.ID,
		Accepted:     accept,
	}))
	s.logger.Info("Reviewer request decided",
		"request_id", requestID,
		"accepted", accept,
		"instructor_id", instructor.ID)
	return nil
}

func (s *reviewerRequestService) publishEvent(ctx context.Context, event *events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", event.Type)
	}
}
