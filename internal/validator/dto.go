package validator

// RegisterRequest redeems an invite code into a new account.
type RegisterRequest struct {
	UserName   string  `json:"user_name" validate:"required,min=3,max=50"`
	Email      string  `json:"email" validate:"required,email"`
	FullName   *string `json:"full_name" validate:"omitempty,max=100"`
	Password   string  `json:"password" validate:"required,min=8,max=128"`
	InviteCode string  `json:"invite_code" validate:"required"`
}

type LoginRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateInviteRequest issues a one-time registration code carrying a role
// bitmask to grant on redemption.
type CreateInviteRequest struct {
	Roles int `json:"roles" validate:"role_bitmask"`
}

type CreateQuestionRequest struct {
	Title   string `json:"title" validate:"required,question_title"`
	Content string `json:"content" validate:"required,question_content"`
}

type CreateAnswerRequest struct {
	QuestionID     *uint  `json:"question_id" validate:"omitempty,gt=0"`
	ParentAnswerID *uint  `json:"parent_answer_id" validate:"omitempty,gt=0"`
	Content        string `json:"content" validate:"required,min=1,max=2000"`
}

type CreatePrivateMessageRequest struct {
	QuestionID             *uint  `json:"question_id" validate:"omitempty,gt=0"`
	ParentPrivateMessageID *uint  `json:"parent_private_message_id" validate:"omitempty,gt=0"`
	Content                string `json:"content" validate:"required,min=1,max=2000"`
}

type CreateAdminRequestRequest struct {
	TargetID    uint   `json:"target_id" validate:"required,gt=0"`
	Type        string `json:"type" validate:"required,oneof=DeleteUser UpdateRole RequestPassword"`
	Reason      string `json:"reason" validate:"required,request_reason"`
	RoleContext *int   `json:"role_context" validate:"omitempty,role_bit"`
}

type CreateReviewerRequestRequest struct {
	InstructorID *uint `json:"instructor_id" validate:"omitempty,gt=0"`
}

// RankReviewerRequest places a reviewer at a 1-based position in the caller's
// trusted list. A nil rank adds the reviewer unranked.
type RankReviewerRequest struct {
	ReviewerID uint `json:"reviewer_id" validate:"required,gt=0"`
	Rank       *int `json:"rank" validate:"omitempty,gt=0"`
}
