package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Certificate status values. ACTIVE -> EXPIRED happens automatically when the
// expiry date passes; REVOKED is manual only and no transition leaves it.
const (
	CertStatusActive  = "ACTIVE"
	CertStatusExpired = "EXPIRED"
	CertStatusRevoked = "REVOKED"
)

// ValidCertStatus reports whether s is one of the known status values.
func ValidCertStatus(s string) bool {
	return s == CertStatusActive || s == CertStatusExpired || s == CertStatusRevoked
}

// Certificate is a professional certification held by an employee. A nil
// ExpiryDate means a lifetime credential. Deleting the owning user cascades
// to their certificates; providers and categories are protected while
// referenced.
type Certificate struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_certificates_user_status" json:"user_id"`
	ProviderID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"provider_id"`
	CategoryID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id"`
	Name            string     `gorm:"size:200;not null" json:"name"`
	CertificationID string     `gorm:"size:100" json:"certification_id,omitempty"`
	IssueDate       time.Time  `gorm:"type:date;not null;index" json:"issue_date"`
	ExpiryDate      *time.Time `gorm:"type:date;index" json:"expiry_date,omitempty"`
	Status          string     `gorm:"size:10;not null;default:'ACTIVE';index:idx_certificates_user_status;index" json:"status"`
	FilePath        string     `gorm:"size:255" json:"file_path,omitempty"`
	VerificationURL string     `gorm:"size:255" json:"verification_url,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	User     User                `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Provider CertificateProvider `gorm:"foreignKey:ProviderID;constraint:OnDelete:RESTRICT" json:"-"`
	Category CertificateCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CertStatusActive
	}
	return nil
}
