package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

// BulkNotificationEvent fans one notification out to many users. Delivery is
// handled by a downstream consumer; this service only publishes.
type BulkNotificationEvent struct {
	UserIDs  []uint                      `json:"user_ids"`
	Type     models.NotificationType     `json:"type"`
	Title    string                      `json:"title"`
	Message  string                      `json:"message"`
	Priority models.NotificationPriority `json:"priority"`
}

type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewNotificationEventService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) NotificationEventService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

func (s *notificationEventService) SendBulkNotification(ctx context.Context, userIDs []uint, notification *NotificationRequest) error {
	if len(userIDs) == 0 {
		return nil
	}

	event := events.NewEvent("system.bulk_notification", &BulkNotificationEvent{
		UserIDs:  userIDs,
		Type:     notification.Type,
		Title:    notification.Title,
		Message:  notification.Message,
		Priority: notification.Priority,
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish bulk notification: %w", err)
	}

	s.logger.Info("Bulk notification published",
		"recipient_count", len(userIDs),
		"type", string(notification.Type))
	return nil
}

// NotifyAnnouncement fans a new announcement out to every user.
func (s *notificationEventService) NotifyAnnouncement(ctx context.Context, announcement *models.Announcement) error {
	users, err := s.repo.User().GetAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	userIDs := make([]uint, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}

	return s.SendBulkNotification(ctx, userIDs, &NotificationRequest{
		Type:     models.NotificationAnnouncementPosted,
		Title:    announcement.Title,
		Message:  announcement.Message.Content,
		Priority: models.PriorityNormal,
	})
}
