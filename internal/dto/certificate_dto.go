package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request dates use the 2006-01-02 wire format; handlers parse them before
// anything reaches the services.
const DateLayout = "2006-01-02"

type CreateCertificateRequest struct {
	UserID          *uuid.UUID `json:"user_id"`
	ProviderName    string     `json:"provider_name"`
	CategoryID      uuid.UUID  `json:"category_id"`
	Name            string     `json:"name"`
	CertificationID string     `json:"certification_id"`
	IssueDate       string     `json:"issue_date"`
	ExpiryDate      *string    `json:"expiry_date"`
	FilePath        string     `json:"file_path"`
	VerificationURL string     `json:"verification_url"`
	Notes           string     `json:"notes"`
}

type UpdateCertificateRequest struct {
	ProviderName    *string    `json:"provider_name"`
	CategoryID      *uuid.UUID `json:"category_id"`
	Name            *string    `json:"name"`
	CertificationID *string    `json:"certification_id"`
	IssueDate       *string    `json:"issue_date"`
	// ExpiryDate admits three states: absent (keep), empty string (clear,
	// making the certificate lifetime) and a date.
	ExpiryDate      *string `json:"expiry_date"`
	Status          *string `json:"status"`
	FilePath        *string `json:"file_path"`
	VerificationURL *string `json:"verification_url"`
	Notes           *string `json:"notes"`
}

type CertificateResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	OwnerName       string    `json:"owner_name,omitempty"`
	ProviderID      uuid.UUID `json:"provider_id"`
	ProviderName    string    `json:"provider_name,omitempty"`
	CategoryID      uuid.UUID `json:"category_id"`
	CategoryName    string    `json:"category_name,omitempty"`
	CategoryColor   string    `json:"category_color,omitempty"`
	Name            string    `json:"name"`
	CertificationID string    `json:"certification_id,omitempty"`
	IssueDate       string    `json:"issue_date"`
	ExpiryDate      *string   `json:"expiry_date,omitempty"`
	Status          string    `json:"status"`
	DisplayState    string    `json:"display_state"`
	StatusBadge     string    `json:"status_badge"`
	ExpiryBadge     string    `json:"expiry_badge"`
	DaysUntilExpiry *int      `json:"days_until_expiry,omitempty"`
	FilePath        string    `json:"file_path,omitempty"`
	VerificationURL string    `json:"verification_url,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CertificateDetailResponse struct {
	Certificate CertificateResponse   `json:"certificate"`
	CanEdit     bool                  `json:"can_edit"`
	Related     []CertificateResponse `json:"related"`
}

// CertificateStats accompanies every certificate listing.
type CertificateStats struct {
	Total        int64 `json:"total"`
	Active       int64 `json:"active"`
	Expired      int64 `json:"expired"`
	ExpiringSoon int64 `json:"expiring_soon"`
}

type CertificateListResponse struct {
	Certificates []CertificateResponse `json:"certificates"`
	Stats        CertificateStats      `json:"stats"`
}

// EmployeeOverviewResponse is the certificate landing view: employees holding
// at least one certificate plus company-wide stats.
type EmployeeOverviewResponse struct {
	Employees []EmployeeSummary `json:"employees"`
	Stats     CertificateStats  `json:"stats"`
}

type ReconcileResponse struct {
	Updated int64 `json:"updated"`
}
