package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateProvider is an issuing organization (CompTIA, AWS, Microsoft...).
// Provider identity is the normalized name: certificates that name a provider
// that does not exist yet create it implicitly, and "CompTIA" and "comptia"
// must resolve to the same row. NameKey carries the unique index that backs
// that dedup rule at the storage layer.
type CertificateProvider struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	NameKey     string    `gorm:"size:100;not null;uniqueIndex" json:"-"`
	Website     string    `gorm:"size:255" json:"website,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	LogoPath    string    `gorm:"size:255" json:"logo_path,omitempty"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *CertificateProvider) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *CertificateProvider) BeforeSave(tx *gorm.DB) error {
	p.Name = strings.TrimSpace(p.Name)
	p.NameKey = NormalizeProviderName(p.Name)
	return nil
}

// NormalizeProviderName produces the case-insensitive dedup key for a
// provider name.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
