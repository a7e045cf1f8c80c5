package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// AuditLog records workflow decisions and role mutations for later review.
// Details carries the decision payload as JSON.
type AuditLog struct {
	ID       uint           `json:"id" gorm:"primaryKey"`
	ActorID  uint           `json:"actor_id" gorm:"not null;index"`
	Action   string         `json:"action" gorm:"not null;size:64;index"`
	Entity   string         `json:"entity" gorm:"not null;size:32"`
	TargetID uint           `json:"target_id" gorm:"not null;index"`
	Details  datatypes.JSON `json:"details"`

	CreatedAt time.Time `json:"created_at"`
}

// NewAuditLog builds an entry. The entity name is the action prefix up to the
// first dot; details may be nil.
func NewAuditLog(actorID uint, action string, targetID uint, details map[string]interface{}) *AuditLog {
	entity := action
	if i := strings.IndexByte(action, '.'); i > 0 {
		entity = action[:i]
	}
	entry := &AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		TargetID: targetID,
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = datatypes.JSON(raw)
		}
	}
	return entry
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
