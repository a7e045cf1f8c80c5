package models

import (
	"time"
)

type AdminRequestType string

const (
	AdminRequestDeleteUser      AdminRequestType = "DeleteUser"
	AdminRequestUpdateRole      AdminRequestType = "UpdateRole"
	AdminRequestRequestPassword AdminRequestType = "RequestPassword"
)

type AdminRequestState string

const (
	RequestPending  AdminRequestState = "Pending"
	RequestAccepted AdminRequestState = "Accepted"
	RequestDenied   AdminRequestState = "Denied"
)

// AdminRequest is an admin- or instructor-initiated change to another user's
// account. Pending requests move to Accepted or Denied exactly once; both end
// states are terminal.
type AdminRequest struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	RequesterID uint              `json:"requester_id" gorm:"not null;index" validate:"required,gt=0"`
	TargetID    uint              `json:"target_id" gorm:"not null;index" validate:"required,gt=0"`
	Type        AdminRequestType  `json:"type" gorm:"not null;size:32;index" validate:"required,oneof=DeleteUser UpdateRole RequestPassword"`
	State       AdminRequestState `json:"state" gorm:"not null;size:16;default:Pending;index" validate:"omitempty,oneof=Pending Accepted Denied"`
	Reason      string            `json:"reason" gorm:"not null;size:500" validate:"required,min=5,max=500"`

	// Role bit being requested. Required when Type is UpdateRole.
	RoleContext *int `json:"role_context"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Requester User `json:"requester" gorm:"foreignKey:RequesterID"`
	Target    User `json:"target" gorm:"foreignKey:TargetID"`
}

func (AdminRequest) TableName() string {
	return "admin_requests"
}

// ReviewerRequest asks an instructor to grant reviewer status. Status is
// tri-state: nil is pending, true approved, false rejected. Approval is the
// trigger for granting the REVIEWER bit; the request row itself never carries
// role state.
type ReviewerRequest struct {
	ID           uint  `json:"id" gorm:"primaryKey"`
	RequesterID  uint  `json:"requester_id" gorm:"not null;index" validate:"required,gt=0"`
	InstructorID *uint `json:"instructor_id" gorm:"index"`
	Status       *bool `json:"status" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Requester  User  `json:"requester" gorm:"foreignKey:RequesterID"`
	Instructor *User `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
}

func (ReviewerRequest) TableName() string {
	return "reviewer_requests"
}
