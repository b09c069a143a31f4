package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larenzzx/aetas-cert-tracker/internal/authz"
	"github.com/larenzzx/aetas-cert-tracker/internal/config"
	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/lifecycle"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCategoryNotFound    = errors.New("category does not exist")
	ErrProviderRequired    = errors.New("provider name is required")
	ErrNameRequired        = errors.New("certificate name is required")
	ErrIssueDateInFuture   = errors.New("issue date cannot be in the future")
	ErrExpiryBeforeIssue   = errors.New("expiry date must be after issue date")
	ErrCertificateRevoked  = errors.New("a revoked certificate cannot change status")
	ErrInvalidStatus       = errors.New("invalid certificate status")
)

type CertificateService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewCertificateService(db *gorm.DB, cfg *config.Config) *CertificateService {
	return &CertificateService{db: db, cfg: cfg}
}

func (s *CertificateService) expiryThreshold() int {
	if s.cfg != nil && s.cfg.ExpirySoonDays > 0 {
		return s.cfg.ExpirySoonDays
	}
	return lifecycle.DefaultExpirySoonDays
}

// Create records a new certificate. Non-admins always own what they create;
// admins may create on behalf of any user. The provider is resolved by
// normalized name, creating it when missing; the category must already
// exist.
func (s *CertificateService) Create(actor authz.Principal, req *dto.CreateCertificateRequest) (*models.Certificate, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}

	issueDate, err := time.Parse(dto.DateLayout, req.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad issue date", ErrInvalidInput)
	}
	var expiryDate *time.Time
	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		expiry, err := time.Parse(dto.DateLayout, *req.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad expiry date", ErrInvalidInput)
		}
		expiryDate = &expiry
	}

	today := time.Now().UTC()
	if err := validateDates(issueDate, expiryDate, today); err != nil {
		return nil, err
	}

	ownerID := actor.ID
	if req.UserID != nil && *req.UserID != actor.ID {
		// Assigning to someone else is an admin-only mutation of that
		// user's records.
		if !authz.CanAct(actor, *req.UserID) {
			return nil, ErrForbidden
		}
		ownerID = *req.UserID
	}

	var category models.CertificateCategory
	if err := s.db.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		return nil, ErrCategoryNotFound
	}

	provider, err := s.getOrCreateProvider(req.ProviderName)
	if err != nil {
		return nil, err
	}

	cert := models.Certificate{
		UserID:          ownerID,
		ProviderID:      provider.ID,
		CategoryID:      category.ID,
		Name:            strings.TrimSpace(req.Name),
		CertificationID: strings.TrimSpace(req.CertificationID),
		IssueDate:       issueDate,
		ExpiryDate:      expiryDate,
		Status:          models.CertStatusActive,
		FilePath:        req.FilePath,
		VerificationURL: strings.TrimSpace(req.VerificationURL),
		Notes:           req.Notes,
	}

	lifecycle.Reconcile(&cert, today)

	if err := s.db.Create(&cert).Error; err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	return &cert, nil
}

// Update edits a certificate the actor owns (or any, for admins). The status
// of a revoked certificate is immutable; every other write runs through
// reconciliation before persisting.
func (s *CertificateService) Update(actor authz.Principal, id uuid.UUID, req *dto.UpdateCertificateRequest) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.First(&cert, "id = ?", id).Error; err != nil {
		return nil, ErrCertificateNotFound
	}

	if !authz.CanAct(actor, cert.UserID) {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		cert.Name = strings.TrimSpace(*req.Name)
	}
	if req.CertificationID != nil {
		cert.CertificationID = strings.TrimSpace(*req.CertificationID)
	}
	if req.FilePath != nil {
		cert.FilePath = *req.FilePath
	}
	if req.VerificationURL != nil {
		cert.VerificationURL = strings.TrimSpace(*req.VerificationURL)
	}
	if req.Notes != nil {
		cert.Notes = *req.Notes
	}

	if req.IssueDate != nil {
		issue, err := time.Parse(dto.DateLayout, *req.IssueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad issue date", ErrInvalidInput)
		}
		cert.IssueDate = issue
	}
	if req.ExpiryDate != nil {
		if *req.ExpiryDate == "" {
			cert.ExpiryDate = nil
		} else {
			expiry, err := time.Parse(dto.DateLayout, *req.ExpiryDate)
			if err != nil {
				return nil, fmt.Errorf("%w: bad expiry date", ErrInvalidInput)
			}
			cert.ExpiryDate = &expiry
		}
	}

	today := time.Now().UTC()
	if err := validateDates(cert.IssueDate, cert.ExpiryDate, today); err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status != cert.Status {
		if !models.ValidCertStatus(*req.Status) {
			return nil, ErrInvalidStatus
		}
		// REVOKED is terminal: nothing moves a certificate out of it, and
		// revoking goes through Revoke, not a field edit.
		if cert.Status == models.CertStatusRevoked || *req.Status == models.CertStatusRevoked {
			return nil, ErrCertificateRevoked
		}
		cert.Status = *req.Status
	}

	if req.CategoryID != nil {
		var category models.CertificateCategory
		if err := s.db.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
			return nil, ErrCategoryNotFound
		}
		cert.CategoryID = category.ID
	}
	if req.ProviderName != nil {
		provider, err := s.getOrCreateProvider(*req.ProviderName)
		if err != nil {
			return nil, err
		}
		cert.ProviderID = provider.ID
	}

	lifecycle.Reconcile(&cert, today)

	if err := s.db.Save(&cert).Error; err != nil {
		return nil, fmt.Errorf("failed to update certificate: %w", err)
	}
	return &cert, nil
}

func (s *CertificateService) Delete(actor authz.Principal, id uuid.UUID) error {
	var cert models.Certificate
	if err := s.db.First(&cert, "id = ?", id).Error; err != nil {
		return ErrCertificateNotFound
	}

	if !authz.CanAct(actor, cert.UserID) {
		return ErrForbidden
	}

	return s.db.Delete(&cert).Error
}

// Revoke marks a certificate REVOKED. Manual only, owner or admin, and
// irreversible in-system.
func (s *CertificateService) Revoke(actor authz.Principal, id uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.First(&cert, "id = ?", id).Error; err != nil {
		return nil, ErrCertificateNotFound
	}

	if !authz.CanAct(actor, cert.UserID) {
		return nil, ErrForbidden
	}

	if cert.Status != models.CertStatusRevoked {
		cert.Status = models.CertStatusRevoked
		if err := s.db.Model(&cert).Update("status", models.CertStatusRevoked).Error; err != nil {
			return nil, fmt.Errorf("failed to revoke certificate: %w", err)
		}
	}
	return &cert, nil
}

// Get returns a certificate with its derived display fields, whether the
// actor may edit it, and up to five related certificates from the same
// provider. Reads are open to every authenticated user.
func (s *CertificateService) Get(actor authz.Principal, id uuid.UUID) (*dto.CertificateDetailResponse, error) {
	var cert models.Certificate
	if err := s.db.Preload("User").Preload("Provider").Preload("Category").
		First(&cert, "id = ?", id).Error; err != nil {
		return nil, ErrCertificateNotFound
	}

	var related []models.Certificate
	s.db.Preload("User").Preload("Provider").Preload("Category").
		Where("provider_id = ? AND id <> ?", cert.ProviderID, cert.ID).
		Order("issue_date DESC").
		Limit(5).
		Find(&related)

	today := time.Now().UTC()
	resp := &dto.CertificateDetailResponse{
		Certificate: s.toResponse(&cert, today),
		CanEdit:     authz.CanAct(actor, cert.UserID),
		Related:     s.toResponses(related, today),
	}
	return resp, nil
}

// ListByUser returns one employee's certificates with their stats, newest
// first.
func (s *CertificateService) ListByUser(userID uuid.UUID) (*dto.CertificateListResponse, error) {
	var certs []models.Certificate
	if err := s.db.Preload("User").Preload("Provider").Preload("Category").
		Where("user_id = ?", userID).
		Order("issue_date DESC").
		Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}

	today := time.Now().UTC()
	return &dto.CertificateListResponse{
		Certificates: s.toResponses(certs, today),
		Stats:        s.stats(certs, today),
	}, nil
}

// EmployeeOverview is the certificate landing view: every employee holding
// at least one certificate, plus company-wide stats.
func (s *CertificateService) EmployeeOverview(search string) (*dto.EmployeeOverviewResponse, error) {
	users := NewUserService(s.db)
	employees, err := users.employeeSummaries(search, true)
	if err != nil {
		return nil, err
	}

	var certs []models.Certificate
	if err := s.db.Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("failed to load certificates: %w", err)
	}

	return &dto.EmployeeOverviewResponse{
		Employees: employees,
		Stats:     s.stats(certs, time.Now().UTC()),
	}, nil
}

// ReconcileAll is the batch form of lifecycle.Reconcile: every ACTIVE
// certificate whose expiry date has passed becomes EXPIRED in one statement.
// Invoked by the admin endpoint and the daily sweep.
func (s *CertificateService) ReconcileAll(today time.Time) (int64, error) {
	y, m, d := today.UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	result := s.db.Model(&models.Certificate{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", models.CertStatusActive, cutoff).
		Update("status", models.CertStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reconcile certificates: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// getOrCreateProvider resolves a provider by its normalized name, creating
// it when missing. Two concurrent creates of the same new name race to the
// unique index on name_key; the loser re-fetches and proceeds.
func (s *CertificateService) getOrCreateProvider(name string) (*models.CertificateProvider, error) {
	key := models.NormalizeProviderName(name)
	if key == "" {
		return nil, ErrProviderRequired
	}
	if len(key) > 100 {
		return nil, fmt.Errorf("%w: provider name must be 100 characters or less", ErrInvalidInput)
	}

	var provider models.CertificateProvider
	err := s.db.Where("name_key = ?", key).First(&provider).Error
	if err == nil {
		return &provider, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up provider: %w", err)
	}

	provider = models.CertificateProvider{
		Name:     strings.TrimSpace(name),
		IsActive: true,
	}
	if err := s.db.Create(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race; the row exists now.
			if err := s.db.Where("name_key = ?", key).First(&provider).Error; err != nil {
				return nil, fmt.Errorf("failed to re-fetch provider after conflict: %w", err)
			}
			return &provider, nil
		}
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return &provider, nil
}

func (s *CertificateService) stats(certs []models.Certificate, today time.Time) dto.CertificateStats {
	var stats dto.CertificateStats
	stats.Total = int64(len(certs))
	for i := range certs {
		switch certs[i].Status {
		case models.CertStatusActive:
			stats.Active++
			if lifecycle.IsExpiringSoon(&certs[i], today, s.expiryThreshold()) {
				stats.ExpiringSoon++
			}
		case models.CertStatusExpired:
			stats.Expired++
		}
	}
	return stats
}

// toResponse maps a certificate to its API shape; every derived field comes
// from the lifecycle engine.
func (s *CertificateService) toResponse(cert *models.Certificate, today time.Time) dto.CertificateResponse {
	state := lifecycle.DisplayState(cert, today, s.expiryThreshold())

	resp := dto.CertificateResponse{
		ID:              cert.ID,
		UserID:          cert.UserID,
		ProviderID:      cert.ProviderID,
		CategoryID:      cert.CategoryID,
		Name:            cert.Name,
		CertificationID: cert.CertificationID,
		IssueDate:       cert.IssueDate.Format(dto.DateLayout),
		Status:          cert.Status,
		DisplayState:    string(state),
		StatusBadge:     lifecycle.StatusBadgeClass(cert.Status),
		ExpiryBadge:     state.BadgeClass(),
		FilePath:        cert.FilePath,
		VerificationURL: cert.VerificationURL,
		Notes:           cert.Notes,
		CreatedAt:       cert.CreatedAt,
		UpdatedAt:       cert.UpdatedAt,
	}

	if cert.ExpiryDate != nil {
		formatted := cert.ExpiryDate.Format(dto.DateLayout)
		resp.ExpiryDate = &formatted
	}
	if days, ok := lifecycle.DaysUntilExpiry(cert, today); ok {
		resp.DaysUntilExpiry = &days
	}

	if cert.User.ID != uuid.Nil {
		resp.OwnerName = cert.User.FullName()
	}
	if cert.Provider.ID != uuid.Nil {
		resp.ProviderName = cert.Provider.Name
	}
	if cert.Category.ID != uuid.Nil {
		resp.CategoryName = cert.Category.Name
		resp.CategoryColor = cert.Category.Color
	}
	return resp
}

// Response reloads a certificate with its relations and maps it to the API
// shape, so a write returns the same representation a read would.
func (s *CertificateService) Response(cert *models.Certificate) (dto.CertificateResponse, error) {
	var loaded models.Certificate
	if err := s.db.Preload("User").Preload("Provider").Preload("Category").
		First(&loaded, "id = ?", cert.ID).Error; err != nil {
		return dto.CertificateResponse{}, ErrCertificateNotFound
	}
	return s.toResponse(&loaded, time.Now().UTC()), nil
}

func (s *CertificateService) toResponses(certs []models.Certificate, today time.Time) []dto.CertificateResponse {
	out := make([]dto.CertificateResponse, 0, len(certs))
	for i := range certs {
		out = append(out, s.toResponse(&certs[i], today))
	}
	return out
}

// validateDates rejects malformed temporal input at the boundary, before a
// certificate record is constructed or saved.
func validateDates(issue time.Time, expiry *time.Time, today time.Time) error {
	truncate := func(t time.Time) time.Time {
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	if issue.IsZero() {
		return fmt.Errorf("%w: issue date is required", ErrInvalidInput)
	}
	if truncate(issue).After(truncate(today)) {
		return ErrIssueDateInFuture
	}
	if expiry != nil && !truncate(*expiry).After(truncate(issue)) {
		return ErrExpiryBeforeIssue
	}
	return nil
}
