package models

import (
	"time"
)

// Message is the atomic unit of authored text. Every Question, Answer,
// PrivateMessage, Announcement and StaffMessage owns exactly one message row
// via a 1:1 foreign key; the schema cascades deletes from messages to the
// owning rows.
type Message struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	UserID  uint   `json:"user_id" gorm:"not null;index" validate:"required,gt=0"`
	Content string `json:"content" gorm:"not null;type:text" validate:"required,min=1,max=2000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User `json:"author" gorm:"foreignKey:UserID"`
}

func (Message) TableName() string {
	return "messages"
}

type Question struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	MessageID uint   `json:"message_id" gorm:"uniqueIndex;not null"`
	Title     string `json:"title" gorm:"not null;size:100" validate:"required,min=5,max=100"`

	IsResolved bool `json:"is_resolved" gorm:"not null;default:false"`

	Message Message  `json:"message" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

// Answer replies either to a question or to another answer, never both and
// never neither. IsPinned marks the accepted solution; at most one answer per
// question may be pinned, enforced by the pin toggle and a partial unique
// index in the schema.
type Answer struct {
	ID             uint  `json:"id" gorm:"primaryKey"`
	MessageID      uint  `json:"message_id" gorm:"uniqueIndex;not null"`
	QuestionID     *uint `json:"question_id" gorm:"index"`
	ParentAnswerID *uint `json:"parent_answer_id" gorm:"index"`
	IsPinned       bool  `json:"is_pinned" gorm:"not null;default:false"`

	Message Message `json:"message" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (Answer) TableName() string {
	return "answers"
}

// PrivateMessage mirrors Answer's mutual-exclusion rule: it attaches either
// to a question or to another private message.
type PrivateMessage struct {
	ID                     uint  `json:"id" gorm:"primaryKey"`
	MessageID              uint  `json:"message_id" gorm:"uniqueIndex;not null"`
	QuestionID             *uint `json:"question_id" gorm:"index"`
	ParentPrivateMessageID *uint `json:"parent_private_message_id" gorm:"index"`

	Message Message `json:"message" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (PrivateMessage) TableName() string {
	return "private_messages"
}

// Announcement is a broadcast message authored by staff or admins.
type Announcement struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	MessageID uint   `json:"message_id" gorm:"uniqueIndex;not null"`
	Title     string `json:"title" gorm:"not null;size:100" validate:"required,min=5,max=100"`

	Message Message `json:"message" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (Announcement) TableName() string {
	return "announcements"
}

// StaffMessage is an internal note visible to staff and instructors only.
type StaffMessage struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	MessageID uint `json:"message_id" gorm:"uniqueIndex;not null"`

	Message Message `json:"message" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (StaffMessage) TableName() string {
	return "staff_messages"
}

// ReadMessage marks a message as read by a user. Composite primary key;
// single-id repository operations are unsupported for this table.
type ReadMessage struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	MessageID uint      `json:"message_id" gorm:"primaryKey;autoIncrement:false"`
	ReadAt    time.Time `json:"read_at"`
}

func (ReadMessage) TableName() string {
	return "read_messages"
}
