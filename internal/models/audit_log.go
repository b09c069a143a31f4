package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records security-relevant events: authentication, permission
// denials, role changes, user management and certificate mutations. Rows are
// written asynchronously by the logging layer and pruned after the retention
// window.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp  time.Time      `gorm:"not null;index" json:"timestamp"`
	Level      string         `gorm:"size:10;not null;index" json:"level"`
	Event      string         `gorm:"size:100;not null;index" json:"event"`
	Message    string         `gorm:"type:text" json:"message"`
	ActorID    *string        `gorm:"size:36;index" json:"actor_id,omitempty"`
	ActorEmail string         `gorm:"size:255" json:"actor_email,omitempty"`
	TargetID   *string        `gorm:"size:36;index" json:"target_id,omitempty"`
	IP         string         `gorm:"size:45" json:"ip,omitempty"`
	UserAgent  string         `gorm:"size:255" json:"user_agent,omitempty"`
	Extra      datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
