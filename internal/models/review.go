package models

import (
	"math"
	"time"
)

// UnrankedRating marks a reviewer who has been added to a trusted list but
// not yet assigned a rank position.
const UnrankedRating = math.MaxInt32

// Review is one entry of a user's personal trusted list: the owner (UserID)
// placed the reviewer (ReviewerID) at a 1-based rank position. Lower rank
// means more trusted; Rating is a rank, not a star score. Composite primary
// key; single-id repository operations are unsupported for this table.
type Review struct {
	ReviewerID uint `json:"reviewer_id" gorm:"primaryKey;autoIncrement:false" validate:"required,gt=0"`
	UserID     uint `json:"user_id" gorm:"primaryKey;autoIncrement:false" validate:"required,gt=0"`
	Rating     int  `json:"rating" gorm:"not null" validate:"required,gt=0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reviewer User `json:"reviewer" gorm:"foreignKey:ReviewerID"`
	Owner    User `json:"owner" gorm:"foreignKey:UserID"`
}

// Ranked reports whether the owner has assigned an actual position.
func (r *Review) Ranked() bool {
	return r.Rating != UnrankedRating
}

func (Review) TableName() string {
	return "reviews"
}
