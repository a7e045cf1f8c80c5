package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	UserName string  `json:"user_name" gorm:"uniqueIndex;not null;size:50" validate:"required,min=3,max=50"`
	Email    string  `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	FullName *string `json:"full_name" gorm:"size:100" validate:"omitempty,max=100"`

	// Salted hash only; plaintext never reaches the store.
	PasswordHash string `json:"-" gorm:"not null;size:255"`

	// OR of the role bits the user holds. See RoleSet.
	Roles RoleSet `json:"roles" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// Invite is a one-time registration code. Redemption grants the embedded
// role bitmask and consumes the code. Expires InviteTTL after creation.
type Invite struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	Code      string  `json:"code" gorm:"uniqueIndex;not null;size:64" validate:"required"`
	CreatedBy *uint   `json:"created_by" gorm:"index"`
	Roles     RoleSet `json:"roles" gorm:"not null;default:0"`
	IsUsed    bool    `json:"is_used" gorm:"not null;default:false"`

	// Unix seconds, matching the wire format of the existing schema.
	CreatedAt int64 `json:"created_at" gorm:"not null"`
}

// InviteTTL is how long an invite stays redeemable, in seconds.
const InviteTTL = 86400

// Expired reports whether the invite is past its redemption window.
func (i *Invite) Expired(now time.Time) bool {
	return now.Unix()-i.CreatedAt > InviteTTL
}

func (Invite) TableName() string {
	return "invites"
}

// OneTimePassword is an admin-issued single-use credential. The value column
// holds a hash; consumption is an atomic conditional update on is_used.
type OneTimePassword struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedBy uint      `json:"created_by" gorm:"not null;index"`
	TargetID  uint      `json:"target_id" gorm:"not null;index"`
	ValueHash string    `json:"-" gorm:"not null;size:255"`
	IsUsed    bool      `json:"is_used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (OneTimePassword) TableName() string {
	return "one_time_passwords"
}
