package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published by the helpdesk service.
const (
	EventUserRegistered        = "user.registered"
	EventUserRolesChanged      = "user.roles_changed"
	EventUserDeleted           = "user.deleted"
	EventQuestionCreated       = "question.created"
	EventQuestionResolved      = "question.resolved"
	EventAnswerCreated         = "answer.created"
	EventAnswerPinned          = "answer.pinned"
	EventAdminRequestCreated   = "admin_request.created"
	EventAdminRequestDecided   = "admin_request.decided"
	EventReviewerRequestFiled  = "reviewer_request.filed"
	EventReviewerRequestClosed = "reviewer_request.closed"
	EventRatingRecomputed      = "rating.recomputed"
	EventOneTimePasswordIssued = "otp.issued"
)

const (
	eventSource  = "helpdesk-service"
	eventVersion = "1.0"
)

// Event is the envelope for every message published to the broker.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh ID and timestamp.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// UserRolesChangedEvent carries before/after role bitmasks.
type UserRolesChangedEvent struct {
	UserID   uint   `json:"user_id"`
	OldRoles int    `json:"old_roles"`
	NewRoles int    `json:"new_roles"`
	ActorID  uint   `json:"actor_id"`
	Reason   string `json:"reason,omitempty"`
}

// AdminRequestDecidedEvent is emitted when an admin request leaves the
// pending state.
type AdminRequestDecidedEvent struct {
	RequestID   uint   `json:"request_id"`
	RequesterID uint   `json:"requester_id"`
	TargetID    uint   `json:"target_id"`
	Type        string `json:"type"`
	State       string `json:"state"`
	DeciderID   uint   `json:"decider_id"`
}

// ReviewerRequestClosedEvent is emitted when an instructor accepts or
// rejects a reviewer request.
type ReviewerRequestClosedEvent struct {
	RequestID    uint `json:"request_id"`
	RequesterID  uint `json:"requester_id"`
	InstructorID uint `json:"instructor_id"`
	Accepted     bool `json:"accepted"`
}

// RatingRecomputedEvent carries the new aggregated rating for a reviewer.
type RatingRecomputedEvent struct {
	ReviewerID uint `json:"reviewer_id"`
	Rating     int  `json:"rating"`
	ListCount  int  `json:"list_count"`
}

// ThreadActivityEvent covers question and answer creation.
type ThreadActivityEvent struct {
	QuestionID uint  `json:"question_id"`
	AnswerID   *uint `json:"answer_id,omitempty"`
	AuthorID   uint  `json:"author_id"`
}
