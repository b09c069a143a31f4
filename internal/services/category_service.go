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
	ErrCategoryInUse  = errors.New("category has certificates and cannot be deleted")
	ErrCategoryExists = errors.New("a category with that name already exists")
)

// CategoryService manages certificate categories. Unlike providers they are
// never created implicitly: administrators curate the set up front.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) List() ([]models.CertificateCategory, error) {
	var categories []models.CertificateCategory
	if err := s.db.Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(req *dto.CategoryCreateRequest) (*models.CertificateCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	category := models.CertificateCategory{
		Name:        name,
		Description: req.Description,
		IconClass:   strings.TrimSpace(req.IconClass),
		Color:       strings.TrimSpace(req.Color),
	}
	if err := s.db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) Update(id uuid.UUID, req *dto.CategoryUpdateRequest) (*models.CertificateCategory, error) {
	var category models.CertificateCategory
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		return nil, ErrCategoryNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IconClass != nil {
		category.IconClass = strings.TrimSpace(*req.IconClass)
	}
	if req.Color != nil {
		category.Color = strings.TrimSpace(*req.Color)
	}

	if err := s.db.Save(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return &category, nil
}

// Delete removes a category, refused while any certificate still references
// it.
func (s *CategoryService) Delete(id uuid.UUID) error {
	var category models.CertificateCategory
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		return ErrCategoryNotFound
	}

	var count int64
	if err := s.db.Model(&models.Certificate{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count category certificates: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	return s.db.Delete(&category).Error
}
