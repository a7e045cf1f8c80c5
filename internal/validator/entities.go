package validator

import (
	"github.com/FSE-2025/helpdesk-service/internal/models"
)

// Entity rules below stop at the first violated rule, so the caller always
// gets the most fundamental problem first.

func fail(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message, Value: value, Rule: "business_logic"}}
}

// ValidateMessage checks the atomic authored-text invariants.
func (v *Validator) ValidateMessage(m *models.Message) ValidationErrors {
	if m == nil {
		return fail("message", "is required", nil)
	}
	if m.UserID == 0 {
		return fail("user_id", "must be a positive id", m.UserID)
	}
	if len(m.Content) == 0 {
		return fail("content", "cannot be empty", m.Content)
	}
	if len(m.Content) > 2000 {
		return fail("content", "must be at most 2000 characters", len(m.Content))
	}
	return nil
}

// ValidateQuestion checks the title window and the embedded message.
func (v *Validator) ValidateQuestion(q *models.Question) ValidationErrors {
	if q == nil {
		return fail("question", "is required", nil)
	}
	if len(q.Title) < 5 || len(q.Title) > 100 {
		return fail("title", "must be 5-100 characters", len(q.Title))
	}
	if errs := v.ValidateMessage(&q.Message); errs != nil {
		return errs
	}
	if len(q.Message.Content) < 10 {
		return fail("content", "must be at least 10 characters", len(q.Message.Content))
	}
	return nil
}

// ValidateAnswer enforces the exactly-one-parent rule: an answer attaches to
// a question or to another answer, never both, never neither.
func (v *Validator) ValidateAnswer(a *models.Answer) ValidationErrors {
	if a == nil {
		return fail("answer", "is required", nil)
	}
	if a.QuestionID == nil && a.ParentAnswerID == nil {
		return fail("question_id", "answer must reference a question or a parent answer", nil)
	}
	if a.QuestionID != nil && a.ParentAnswerID != nil {
		return fail("question_id", "answer cannot reference both a question and a parent answer", nil)
	}
	if a.QuestionID != nil && *a.QuestionID == 0 {
		return fail("question_id", "must be a positive id", *a.QuestionID)
	}
	if a.ParentAnswerID != nil && *a.ParentAnswerID == 0 {
		return fail("parent_answer_id", "must be a positive id", *a.ParentAnswerID)
	}
	return v.ValidateMessage(&a.Message)
}

// ValidatePrivateMessage mirrors the answer parent rule.
func (v *Validator) ValidatePrivateMessage(pm *models.PrivateMessage) ValidationErrors {
	if pm == nil {
		return fail("private_message", "is required", nil)
	}
	if pm.QuestionID == nil && pm.ParentPrivateMessageID == nil {
		return fail("question_id", "private message must reference a question or a parent message", nil)
	}
	if pm.QuestionID != nil && pm.ParentPrivateMessageID != nil {
		return fail("question_id", "private message cannot reference both a question and a parent message", nil)
	}
	if pm.QuestionID != nil && *pm.QuestionID == 0 {
		return fail("question_id", "must be a positive id", *pm.QuestionID)
	}
	if pm.ParentPrivateMessageID != nil && *pm.ParentPrivateMessageID == 0 {
		return fail("parent_private_message_id", "must be a positive id", *pm.ParentPrivateMessageID)
	}
	return v.ValidateMessage(&pm.Message)
}

// ValidateReview requires the acting reviewer to actually hold the REVIEWER
// role and the rank to be positive (the unranked sentinel is positive too).
func (v *Validator) ValidateReview(r *models.Review, reviewer *models.User) ValidationErrors {
	if r == nil {
		return fail("review", "is required", nil)
	}
	if r.ReviewerID == 0 {
		return fail("reviewer_id", "must be a positive id", r.ReviewerID)
	}
	if r.UserID == 0 {
		return fail("user_id", "must be a positive id", r.UserID)
	}
	if r.Rating <= 0 {
		return fail("rating", "rank must be positive", r.Rating)
	}
	if reviewer == nil {
		return fail("reviewer_id", "reviewer does not exist", r.ReviewerID)
	}
	if !reviewer.Roles.Has(models.RoleReviewer) {
		return fail("reviewer_id", "reviewer must hold the Reviewer role", r.ReviewerID)
	}
	return nil
}

// ValidateReviewerRequest checks creation-time rules: a fresh request is
// pending (nil status) and its instructor, if routed, holds INSTRUCTOR.
func (v *Validator) ValidateReviewerRequest(req *models.ReviewerRequest, instructor *models.User) ValidationErrors {
	if req == nil {
		return fail("reviewer_request", "is required", nil)
	}
	if req.RequesterID == 0 {
		return fail("requester_id", "must be a positive id", req.RequesterID)
	}
	if req.Status != nil {
		return fail("status", "new requests must be pending", *req.Status)
	}
	if req.InstructorID != nil {
		if *req.InstructorID == 0 {
			return fail("instructor_id", "must be a positive id", *req.InstructorID)
		}
		if instructor == nil {
			return fail("instructor_id", "instructor does not exist", *req.InstructorID)
		}
		if !instructor.Roles.Has(models.RoleInstructor) {
			return fail("instructor_id", "instructor must hold the Instructor role", *req.InstructorID)
		}
	}
	return nil
}

// ValidateAdminRequest checks creation-time rules. The requester's authority
// is only checked here, not at transition time.
func (v *Validator) ValidateAdminRequest(req *models.AdminRequest, requester *models.User) ValidationErrors {
	if req == nil {
		return fail("admin_request", "is required", nil)
	}
	if req.RequesterID == 0 {
		return fail("requester_id", "must be a positive id", req.RequesterID)
	}
	if req.TargetID == 0 {
		return fail("target_id", "must be a positive id", req.TargetID)
	}
	switch req.Type {
	case models.AdminRequestDeleteUser, models.AdminRequestUpdateRole, models.AdminRequestRequestPassword:
	default:
		return fail("type", "unknown request type", req.Type)
	}
	if len(req.Reason) < 5 || len(req.Reason) > 500 {
		return fail("reason", "must be 5-500 characters", len(req.Reason))
	}
	if req.Type == models.AdminRequestUpdateRole {
		if req.RoleContext == nil {
			return fail("role_context", "is required for role update requests", nil)
		}
		if !models.RoleSet(*req.RoleContext).IsValid() || *req.RoleContext <= 0 {
			return fail("role_context", "must encode known role bits", *req.RoleContext)
		}
	}
	if requester == nil {
		return fail("requester_id", "requester does not exist", req.RequesterID)
	}
	if !requester.Roles.HasAny(models.RoleAdmin, models.RoleInstructor) {
		return fail("requester_id", "requester must hold the Admin or Instructor role", req.RequesterID)
	}
	return nil
}

// ValidateInvite checks code presence and that the granted mask only uses
// known bits.
func (v *Validator) ValidateInvite(inv *models.Invite) ValidationErrors {
	if inv == nil {
		return fail("invite", "is required", nil)
	}
	if inv.Code == "" {
		return fail("code", "cannot be empty", inv.Code)
	}
	if !inv.Roles.IsValid() {
		return fail("roles", "must only use known role bits", int(inv.Roles))
	}
	return nil
}

// ValidateUser checks registration-time identity fields.
func (v *Validator) ValidateUser(u *models.User) ValidationErrors {
	if u == nil {
		return fail("user", "is required", nil)
	}
	if errs := v.Validate(u); errs != nil {
		return errs
	}
	if !u.Roles.IsValid() {
		return fail("roles", "must only use known role bits", int(u.Roles))
	}
	return nil
}
