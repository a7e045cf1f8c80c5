package models

type NotificationType string

const (
	NotificationAnnouncementPosted NotificationType = "announcement_posted"
	NotificationQuestionAnswered   NotificationType = "question_answered"
	NotificationAnswerPinned       NotificationType = "answer_pinned"
	NotificationRequestDecided     NotificationType = "request_decided"
	NotificationReviewerStatus     NotificationType = "reviewer_status"
	NotificationPasswordIssued     NotificationType = "password_issued"
	NotificationAccountRoleChanged NotificationType = "account_role_changed"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)
