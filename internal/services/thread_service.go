package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/cache"
	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

type threadService struct {
	repo           repositories.Repository
	db             *gorm.DB
	caches         *cache.CacheManager
	eventPublisher events.EventPublisher
	notifications  NotificationEventService
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewThreadService(repo repositories.Repository, db *gorm.DB, caches *cache.CacheManager, publisher events.EventPublisher, notifications NotificationEventService, logger *slog.Logger, v *validator.Validator) ThreadService {
	if caches == nil {
		caches = cache.NewCacheManager(nil)
	}
	return &threadService{
		repo:           repo,
		db:             db,
		caches:         caches,
		eventPublisher: publisher,
		notifications:  notifications,
		logger:         logger,
		validator:      v,
	}
}

// ===== QUESTIONS =====

func (s *threadService) CreateQuestion(ctx context.Context, authorID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	var question *models.Question
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		msg := &models.Message{UserID: authorID, Content: req.Content}
		if errs := s.validator.ValidateMessage(msg); len(errs) > 0 {
			return errs
		}
		if err := txRepo.Message().Create(ctx, nil, msg); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		question = &models.Question{MessageID: msg.ID, Title: req.Title, Message: *msg}
		if errs := s.validator.ValidateQuestion(question); len(errs) > 0 {
			return errs
		}
		if err := txRepo.Question().Create(ctx, nil, question); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateThreadCache(ctx, s.caches, question.ID)
	s.publishEvent(ctx, events.NewEvent(events.EventQuestionCreated, &events.ThreadActivityEvent{
		QuestionID: question.ID,
		AuthorID:   authorID,
	}))

	s.logger.Info("Question created", "question_id", question.ID, "author_id", authorID)
	return question, nil
}

func (s *threadService) GetQuestion(ctx context.Context, id uint, viewer *models.User) (*QuestionResponse, error) {
	var question models.Question
	err := s.caches.Thread.CacheOrExecute(ctx, fmt.Sprintf("question:%d", id), &question, cache.ThreadCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Question().GetByIDWithAnswers(ctx, nil, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	resp := &QuestionResponse{Question: &question}
	if viewer != nil {
		owner := question.Message.UserID == viewer.ID
		moderator := viewer.Roles.HasAny(models.RoleAdmin, models.RoleStaff)
		resp.CanResolve = owner || moderator
		resp.CanDelete = owner || moderator
	}
	return resp, nil
}

func (s *threadService) ListQuestions(ctx context.Context, filters QuestionListFilters) (*QuestionListResponse, error) {
	page, size := normalizePage(filters.Page, filters.Size)

	key := questionListKey(filters, page, size)
	var cached QuestionListResponse
	if err := s.caches.Thread.GetWithConfig(ctx, key, &cached, cache.ListCacheConfig); err == nil {
		return &cached, nil
	}

	questions, total, err := s.repo.Question().List(ctx, nil, repositories.QuestionFilters{
		UserID:   filters.UserID,
		Resolved: filters.Resolved,
		Limit:    size,
		Offset:   (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	resp := &QuestionListResponse{Questions: questions, Total: total, Page: page, Size: size}
	if err := s.caches.Thread.SetWithConfig(ctx, key, resp, cache.ListCacheConfig); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache question listing", "error", err, "key", key)
	}
	return resp, nil
}

func questionListKey(filters QuestionListFilters, page, size int) string {
	user := "any"
	if filters.UserID != nil {
		user = strconv.FormatUint(uint64(*filters.UserID), 10)
	}
	resolved := "any"
	if filters.Resolved != nil {
		resolved = strconv.FormatBool(*filters.Resolved)
	}
	return fmt.Sprintf("questions:%s:%s:%d:%d", user, resolved, page, size)
}

func (s *threadService) ResolveQuestion(ctx context.Context, actor *models.User, questionID uint) error {
	question, err := s.loadQuestionForActor(ctx, actor, questionID, "resolve")
	if err != nil {
		return err
	}
	if question.IsResolved {
		return nil // idempotent
	}

	question.IsResolved = true
	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return fmt.Errorf("failed to resolve question: %w", err)
	}

	cache.InvalidateThreadCache(ctx, s.caches, questionID)
	s.publishEvent(ctx, events.NewEvent(events.EventQuestionResolved, &events.ThreadActivityEvent{
		QuestionID: questionID,
		AuthorID:   actor.ID,
	}))
	s.logger.Info("Question resolved", "question_id", questionID, "actor_id", actor.ID)
	return nil
}

// DeleteQuestion removes the owning message row; the schema cascades the
// delete to the question and its answers.
func (s *threadService) DeleteQuestion(ctx context.Context, actor *models.User, questionID uint) error {
	question, err := s.loadQuestionForActor(ctx, actor, questionID, "delete")
	if err != nil {
		return err
	}

	if err := s.repo.Message().Delete(ctx, nil, question.MessageID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	cache.InvalidateThreadCache(ctx, s.caches, questionID)
	s.logger.Info("Question deleted", "question_id", questionID, "actor_id", actor.ID)
	return nil
}

func (s *threadService) loadQuestionForActor(ctx context.Context, actor *models.User, questionID uint, action string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	owner := question.Message.UserID == actor.ID
	if !owner && !actor.Roles.HasAny(models.RoleAdmin, models.RoleStaff) {
		return nil, NewPermissionError(actor.ID, questionID, "question", action, "not owner or insufficient permissions")
	}
	return question, nil
}

// ===== ANSWERS =====

func (s *threadService) CreateAnswer(ctx context.Context, authorID uint, req *CreateAnswerRequest) (*models.Answer, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	var answer *models.Answer
	var questionID uint
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if req.QuestionID != nil {
			q, err := txRepo.Question().GetByID(ctx, nil, *req.QuestionID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return repositories.ErrNotFound
				}
				return fmt.Errorf("failed to get question: %w", err)
			}
			questionID = q.ID
		} else if req.ParentAnswerID != nil {
			parent, err := txRepo.Answer().GetByID(ctx, nil, *req.ParentAnswerID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return repositories.ErrNotFound
				}
				return fmt.Errorf("failed to get parent answer: %w", err)
			}
			if parent.QuestionID != nil {
				questionID = *parent.QuestionID
			}
		}

		msg := &models.Message{UserID: authorID, Content: req.Content}
		if err := txRepo.Message().Create(ctx, nil, msg); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		answer = &models.Answer{
			MessageID:      msg.ID,
			QuestionID:     req.QuestionID,
			ParentAnswerID: req.ParentAnswerID,
			Message:        *msg,
		}
		if errs := s.validator.ValidateAnswer(answer); len(errs) > 0 {
			return errs
		}
		if err := txRepo.Answer().Create(ctx, nil, answer); err != nil {
			return fmt.Errorf("failed to create answer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateThreadCache(ctx, s.caches, questionID)
	answerID := answer.ID
	s.publishEvent(ctx, events.NewEvent(events.EventAnswerCreated, &events.ThreadActivityEvent{
		QuestionID: questionID,
		AnswerID:   &answerID,
		AuthorID:   authorID,
	}))
	s.logger.Info("Answer created", "answer_id", answer.ID, "author_id", authorID)
	return answer, nil
}

func (s *threadService) DeleteAnswer(ctx context.Context, actor *models.User, answerID uint) error {
	answer, err := s.repo.Answer().GetByID(ctx, nil, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get answer: %w", err)
	}

	owner := answer.Message.UserID == actor.ID
	if !owner && !actor.Roles.HasAny(models.RoleAdmin, models.RoleStaff) {
		return NewPermissionError(actor.ID, answerID, "answer", "delete", "not owner or insufficient permissions")
	}

	if err := s.repo.Message().Delete(ctx, nil, answer.MessageID); err != nil {
		return fmt.Errorf("failed to delete answer: %w", err)
	}
	var qid uint
	if answer.QuestionID != nil {
		qid = *answer.QuestionID
	}
	cache.InvalidateThreadCache(ctx, s.caches, qid)
	s.logger.Info("Answer deleted", "answer_id", answerID, "actor_id", actor.ID)
	return nil
}

// TogglePin flips the pinned flag of a top-level answer. Pinning first
// unpins every other answer of the question in the same transaction, so at
// most one answer per question is ever pinned.
func (s *threadService) TogglePin(ctx context.Context, actor *models.User, answerID uint) error {
	answer, err := s.repo.Answer().GetByID(ctx, nil, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get answer: %w", err)
	}
	if answer.QuestionID == nil {
		return validator.ValidationErrors{{Field: "answer_id", Message: "only direct answers to a question can be pinned", Rule: "pinnable"}}
	}

	question, err := s.repo.Question().GetByID(ctx, nil, *answer.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	owner := question.Message.UserID == actor.ID
	if !owner && !actor.Roles.HasAny(models.RoleAdmin, models.RoleInstructor) {
		return NewPermissionError(actor.ID, answerID, "answer", "pin", "not question owner or insufficient permissions")
	}

	pinning := !answer.IsPinned
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if pinning {
			if err := txRepo.Answer().UnpinAllForQuestion(ctx, nil, *answer.QuestionID); err != nil {
				return fmt.Errorf("failed to unpin answers: %w", err)
			}
		}
		return txRepo.Answer().SetPinned(ctx, nil, answerID, pinning)
	})
	if err != nil {
		return err
	}

	cache.InvalidateThreadCache(ctx, s.caches, *answer.QuestionID)
	if pinning {
		id := answerID
		s.publishEvent(ctx, events.NewEvent(events.EventAnswerPinned, &events.ThreadActivityEvent{
			QuestionID: *answer.QuestionID,
			AnswerID:   &id,
			AuthorID:   actor.ID,
		}))
	}
	s.logger.Info("Answer pin toggled", "answer_id", answerID, "pinned", pinning, "actor_id", actor.ID)
	return nil
}

// ===== PRIVATE MESSAGES =====

func (s *threadService) CreatePrivateMessage(ctx context.Context, authorID uint, req *CreatePrivateMessageRequest) (*models.PrivateMessage, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	var pm *models.PrivateMessage
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		msg := &models.Message{UserID: authorID, Content: req.Content}
		if err := txRepo.Message().Create(ctx, nil, msg); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		pm = &models.PrivateMessage{
			MessageID:              msg.ID,
			QuestionID:             req.QuestionID,
			ParentPrivateMessageID: req.ParentPrivateMessageID,
			Message:                *msg,
		}
		if errs := s.validator.ValidatePrivateMessage(pm); len(errs) > 0 {
			return errs
		}
		if err := txRepo.PrivateMessage().Create(ctx, nil, pm); err != nil {
			return fmt.Errorf("failed to create private message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Private message created", "private_message_id", pm.ID, "author_id", authorID)
	return pm, nil
}

// GetPrivateMessages returns the private thread of a question. Visible to
// the question owner and to staff, instructors and admins.
func (s *threadService) GetPrivateMessages(ctx context.Context, actor *models.User, questionID uint) ([]*models.PrivateMessage, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	owner := question.Message.UserID == actor.ID
	if !owner && !actor.Roles.HasAny(models.RoleAdmin, models.RoleInstructor, models.RoleStaff) {
		return nil, NewPermissionError(actor.ID, questionID, "private_message", "list", "not question owner or insufficient permissions")
	}

	messages, err := s.repo.PrivateMessage().GetByQuestion(ctx, nil, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list private messages: %w", err)
	}
	return messages, nil
}

// ===== ANNOUNCEMENTS =====

func (s *threadService) CreateAnnouncement(ctx context.Context, actor *models.User, title, content string) (*models.Announcement, error) {
	if !actor.Roles.HasAny(models.RoleAdmin, models.RoleStaff) {
		return nil, NewPermissionError(actor.ID, 0, "announcement", "create", "admin or staff role required")
	}

	var announcement *models.Announcement
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		msg := &models.Message{UserID: actor.ID, Content: content}
		if errs := s.validator.ValidateMessage(msg); len(errs) > 0 {
			return errs
		}
		if err := txRepo.Message().Create(ctx, nil, msg); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		announcement = &models.Announcement{MessageID: msg.ID, Title: title, Message: *msg}
		if errs := s.validator.Validate(announcement); len(errs) > 0 {
			return errs
		}
		return txRepo.Announcement().Create(ctx, nil, announcement)
	})
	if err != nil {
		return nil, err
	}

	// Fan the announcement out to every user. Delivery is best effort; the
	// announcement itself is already committed.
	if s.notifications != nil {
		if err := s.notifications.NotifyAnnouncement(ctx, announcement); err != nil {
			s.logger.ErrorContext(ctx, "Failed to notify announcement", "error", err, "announcement_id", announcement.ID)
		}
	}

	s.logger.Info("Announcement created", "announcement_id", announcement.ID, "actor_id", actor.ID)
	return announcement, nil
}

func (s *threadService) ListAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	announcements, err := s.repo.Announcement().GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

// ===== STAFF MESSAGES =====

func (s *threadService) CreateStaffMessage(ctx context.Context, actor *models.User, content string) (*models.StaffMessage, error) {
	if !actor.Roles.HasAny(models.RoleAdmin, models.RoleStaff, models.RoleInstructor) {
		return nil, NewPermissionError(actor.ID, 0, "staff_message", "create", "staff, instructor or admin role required")
	}

	var sm *models.StaffMessage
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		msg := &models.Message{UserID: actor.ID, Content: content}
		if errs := s.validator.ValidateMessage(msg); len(errs) > 0 {
			return errs
		}
		if err := txRepo.Message().Create(ctx, nil, msg); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		sm = &models.StaffMessage{MessageID: msg.ID, Message: *msg}
		return txRepo.StaffMessage().Create(ctx, nil, sm)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Staff message created", "staff_message_id", sm.ID, "actor_id", actor.ID)
	return sm, nil
}

func (s *threadService) ListStaffMessages(ctx context.Context, actor *models.User) ([]*models.StaffMessage, error) {
	if !actor.Roles.HasAny(models.RoleAdmin, models.RoleStaff, models.RoleInstructor) {
		return nil, NewPermissionError(actor.ID, 0, "staff_message", "list", "staff, instructor or admin role required")
	}
	messages, err := s.repo.StaffMessage().GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff messages: %w", err)
	}
	return messages, nil
}

// ===== READ MARKERS =====

func (s *threadService) MarkRead(ctx context.Context, userID, messageID uint) error {
	if _, err := s.repo.Message().GetByID(ctx, nil, messageID); err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get message: %w", err)
	}
	if err := s.repo.ReadMessage().Mark(ctx, nil, userID, messageID); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

func (s *threadService) UnmarkRead(ctx context.Context, userID, messageID uint) error {
	if err := s.repo.ReadMessage().DeleteByKey(ctx, nil, userID, messageID); err != nil {
		return fmt.Errorf("failed to unmark message: %w", err)
	}
	return nil
}

func (s *threadService) GetReadMessages(ctx context.Context, userID uint) ([]*models.ReadMessage, error) {
	marks, err := s.repo.ReadMessage().GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list read messages: %w", err)
	}
	return marks, nil
}

func (s *threadService) publishEvent(ctx context.Context, event *events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", event.Type)
	}
}
