package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateCategory groups certificates by domain (Security, Cloud,
// Networking...). Unlike providers, categories are never created implicitly:
// one must exist before a certificate can reference it.
type CertificateCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	IconClass   string    `gorm:"size:50" json:"icon_class,omitempty"`
	Color       string    `gorm:"size:7;not null;default:'#3B82F6'" json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *CertificateCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Color == "" {
		c.Color = "#3B82F6"
	}
	return nil
}
