package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrProviderInUse    = errors.New("provider has certificates and cannot be deleted")
	ErrProviderExists   = errors.New("a provider with that name already exists")
)

type ProviderService struct {
	db *gorm.DB
}

func NewProviderService(db *gorm.DB) *ProviderService {
	return &ProviderService{db: db}
}

// List returns providers ordered by name. Inactive providers are hidden
// unless asked for.
func (s *ProviderService) List(includeInactive bool) ([]models.CertificateProvider, error) {
	query := s.db.Order("name")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var providers []models.CertificateProvider
	if err := query.Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

func (s *ProviderService) Update(id uuid.UUID, req *dto.ProviderUpdateRequest) (*models.CertificateProvider, error) {
	var provider models.CertificateProvider
	if err := s.db.First(&provider, "id = ?", id).Error; err != nil {
		return nil, ErrProviderNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrProviderRequired
		}
		provider.Name = name
	}
	if req.Website != nil {
		provider.Website = strings.TrimSpace(*req.Website)
	}
	if req.Description != nil {
		provider.Description = *req.Description
	}
	if req.LogoPath != nil {
		provider.LogoPath = *req.LogoPath
	}
	if req.IsActive != nil {
		provider.IsActive = *req.IsActive
	}

	if err := s.db.Save(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProviderExists
		}
		return nil, fmt.Errorf("failed to update provider: %w", err)
	}
	return &provider, nil
}

// Deactivate hides a provider from pickers without touching existing
// certificates.
func (s *ProviderService) Deactivate(id uuid.UUID) error {
	result := s.db.Model(&models.CertificateProvider{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate provider: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProviderNotFound
	}
	return nil
}

// Delete removes a provider outright, refused while any certificate still
// references it.
func (s *ProviderService) Delete(id uuid.UUID) error {
	var provider models.CertificateProvider
	if err := s.db.First(&provider, "id = ?", id).Error; err != nil {
		return ErrProviderNotFound
	}

	var count int64
	if err := s.db.Model(&models.Certificate{}).Where("provider_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count provider certificates: %w", err)
	}
	if count > 0 {
		return ErrProviderInUse
	}

	return s.db.Delete(&provider).Error
}
