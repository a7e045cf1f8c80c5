package validator

import (
	"strings"
	"testing"

	"github.com/FSE-2025/helpdesk-service/internal/models"
)

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

func TestValidator_ValidateAnswer(t *testing.T) {
	v := New()
	message := models.Message{UserID: 1, Content: "some answer text"}

	tests := []struct {
		name    string
		answer  *models.Answer
		wantErr bool
	}{
		{
			name:   "attached to a question",
			answer: &models.Answer{QuestionID: uintPtr(1), Message: message},
		},
		{
			name:   "attached to a parent answer",
			answer: &models.Answer{ParentAnswerID: uintPtr(2), Message: message},
		},
		{
			name:    "no parent at all",
			answer:  &models.Answer{Message: message},
			wantErr: true,
		},
		{
			name:    "both parents",
			answer:  &models.Answer{QuestionID: uintPtr(1), ParentAnswerID: uintPtr(2), Message: message},
			wantErr: true,
		},
		{
			name:    "zero question id",
			answer:  &models.Answer{QuestionID: uintPtr(0), Message: message},
			wantErr: true,
		},
		{
			name:    "empty content",
			answer:  &models.Answer{QuestionID: uintPtr(1), Message: models.Message{UserID: 1}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateAnswer(tt.answer)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateAnswer = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidatePrivateMessage(t *testing.T) {
	v := New()
	message := models.Message{UserID: 1, Content: "private note"}

	t.Run("exactly one parent required", func(t *testing.T) {
		if errs := v.ValidatePrivateMessage(&models.PrivateMessage{Message: message}); len(errs) == 0 {
			t.Error("parentless private message should fail")
		}
		pm := &models.PrivateMessage{QuestionID: uintPtr(1), ParentPrivateMessageID: uintPtr(2), Message: message}
		if errs := v.ValidatePrivateMessage(pm); len(errs) == 0 {
			t.Error("double-parent private message should fail")
		}
		if errs := v.ValidatePrivateMessage(&models.PrivateMessage{QuestionID: uintPtr(1), Message: message}); len(errs) != 0 {
			t.Errorf("valid private message failed: %v", errs)
		}
	})
}

func TestValidator_ValidateQuestion(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		q := &models.Question{
			Title:   "How do I reset my password?",
			Message: models.Message{UserID: 1, Content: "I lost access to my account yesterday."},
		}
		if errs := v.ValidateQuestion(q); len(errs) != 0 {
			t.Errorf("ValidateQuestion = %v", errs)
		}
	})

	t.Run("title too short", func(t *testing.T) {
		q := &models.Question{Title: "Hi", Message: models.Message{UserID: 1, Content: "long enough content"}}
		if errs := v.ValidateQuestion(q); len(errs) == 0 {
			t.Error("short title should fail")
		}
	})

	t.Run("content below the question minimum", func(t *testing.T) {
		q := &models.Question{Title: "Valid title here", Message: models.Message{UserID: 1, Content: "short"}}
		if errs := v.ValidateQuestion(q); len(errs) == 0 {
			t.Error("short content should fail")
		}
	})
}

func TestValidator_ValidateReview(t *testing.T) {
	v := New()
	reviewer := &models.User{ID: 10, Roles: models.EncodeRoles([]models.Role{models.RoleUser, models.RoleReviewer})}

	t.Run("valid ranked entry", func(t *testing.T) {
		r := &models.Review{ReviewerID: 10, UserID: 1, Rating: 2}
		if errs := v.ValidateReview(r, reviewer); len(errs) != 0 {
			t.Errorf("ValidateReview = %v", errs)
		}
	})

	t.Run("unranked sentinel is accepted", func(t *testing.T) {
		r := &models.Review{ReviewerID: 10, UserID: 1, Rating: models.UnrankedRating}
		if errs := v.ValidateReview(r, reviewer); len(errs) != 0 {
			t.Errorf("ValidateReview = %v", errs)
		}
	})

	t.Run("non-positive rank is rejected", func(t *testing.T) {
		r := &models.Review{ReviewerID: 10, UserID: 1, Rating: 0}
		if errs := v.ValidateReview(r, reviewer); len(errs) == 0 {
			t.Error("zero rank should fail")
		}
	})

	t.Run("reviewer must hold the reviewer role", func(t *testing.T) {
		plain := &models.User{ID: 10, Roles: models.EncodeRoles([]models.Role{models.RoleUser})}
		r := &models.Review{ReviewerID: 10, UserID: 1, Rating: 1}
		errs := v.ValidateReview(r, plain)
		if len(errs) == 0 {
			t.Fatal("non-reviewer target should fail")
		}
		if errs[0].Field != "reviewer_id" {
			t.Errorf("Field = %s, want reviewer_id", errs[0].Field)
		}
	})

	t.Run("missing reviewer", func(t *testing.T) {
		r := &models.Review{ReviewerID: 10, UserID: 1, Rating: 1}
		if errs := v.ValidateReview(r, nil); len(errs) == 0 {
			t.Error("missing reviewer should fail")
		}
	})
}

func TestValidator_ValidateAdminRequest(t *testing.T) {
	v := New()
	admin := &models.User{ID: 1, Roles: models.EncodeRoles([]models.Role{models.RoleAdmin})}
	student := &models.User{ID: 2, Roles: models.EncodeRoles([]models.Role{models.RoleStudent})}

	base := func() *models.AdminRequest {
		return &models.AdminRequest{
			RequesterID: 1,
			TargetID:    2,
			Type:        models.AdminRequestDeleteUser,
			Reason:      "account abandoned",
		}
	}

	t.Run("valid", func(t *testing.T) {
		if errs := v.ValidateAdminRequest(base(), admin); len(errs) != 0 {
			t.Errorf("ValidateAdminRequest = %v", errs)
		}
	})

	t.Run("requester needs admin or instructor", func(t *testing.T) {
		if errs := v.ValidateAdminRequest(base(), student); len(errs) == 0 {
			t.Error("student requester should fail")
		}
	})

	t.Run("reason bounds", func(t *testing.T) {
		req := base()
		req.Reason = "tiny"
		if errs := v.ValidateAdminRequest(req, admin); len(errs) == 0 {
			t.Error("short reason should fail")
		}
		req.Reason = strings.Repeat("x", 501)
		if errs := v.ValidateAdminRequest(req, admin); len(errs) == 0 {
			t.Error("oversized reason should fail")
		}
	})

	t.Run("role update requires a known single bit", func(t *testing.T) {
		req := base()
		req.Type = models.AdminRequestUpdateRole
		if errs := v.ValidateAdminRequest(req, admin); len(errs) == 0 {
			t.Error("missing role context should fail")
		}
		req.RoleContext = intPtr(64)
		if errs := v.ValidateAdminRequest(req, admin); len(errs) == 0 {
			t.Error("unknown role bit should fail")
		}
		req.RoleContext = intPtr(int(models.RoleStaff))
		if errs := v.ValidateAdminRequest(req, admin); len(errs) != 0 {
			t.Errorf("valid role context failed: %v", errs)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		req := base()
		req.Type = "ResetEverything"
		if errs := v.ValidateAdminRequest(req, admin); len(errs) == 0 {
			t.Error("unknown type should fail")
		}
	})
}

func TestValidator_ValidateReviewerRequest(t *testing.T) {
	v := New()
	instructor := &models.User{ID: 5, Roles: models.EncodeRoles([]models.Role{models.RoleInstructor})}

	t.Run("unrouted request is fine", func(t *testing.T) {
		req := &models.ReviewerRequest{RequesterID: 1}
		if errs := v.ValidateReviewerRequest(req, nil); len(errs) != 0 {
			t.Errorf("ValidateReviewerRequest = %v", errs)
		}
	})

	t.Run("routed request needs an instructor", func(t *testing.T) {
		req := &models.ReviewerRequest{RequesterID: 1, InstructorID: uintPtr(5)}
		if errs := v.ValidateReviewerRequest(req, instructor); len(errs) != 0 {
			t.Errorf("ValidateReviewerRequest = %v", errs)
		}
		if errs := v.ValidateReviewerRequest(req, nil); len(errs) == 0 {
			t.Error("missing instructor should fail")
		}
		plain := &models.User{ID: 5, Roles: models.EncodeRoles([]models.Role{models.RoleUser})}
		if errs := v.ValidateReviewerRequest(req, plain); len(errs) == 0 {
			t.Error("non-instructor route should fail")
		}
	})

	t.Run("predecided request is rejected", func(t *testing.T) {
		decided := true
		req := &models.ReviewerRequest{RequesterID: 1, Status: &decided}
		if errs := v.ValidateReviewerRequest(req, nil); len(errs) == 0 {
			t.Error("non-pending status should fail")
		}
	})
}

func TestValidator_DTOValidation(t *testing.T) {
	v := New()

	t.Run("rank reviewer request", func(t *testing.T) {
		if errs := v.Validate(&RankReviewerRequest{ReviewerID: 1}); len(errs) != 0 {
			t.Errorf("nil rank should be allowed: %v", errs)
		}
		if errs := v.Validate(&RankReviewerRequest{}); len(errs) == 0 {
			t.Error("missing reviewer id should fail")
		}
		rank := 0
		if errs := v.Validate(&RankReviewerRequest{ReviewerID: 1, Rank: &rank}); len(errs) == 0 {
			t.Error("zero rank should fail")
		}
	})

	t.Run("invite roles bitmask", func(t *testing.T) {
		if errs := v.Validate(&CreateInviteRequest{Roles: int(models.RoleStudent | models.RoleUser)}); len(errs) != 0 {
			t.Errorf("known bits should pass: %v", errs)
		}
		if errs := v.Validate(&CreateInviteRequest{Roles: 1024}); len(errs) == 0 {
			t.Error("unknown bits should fail")
		}
	})
}
