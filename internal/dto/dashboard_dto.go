package dto

import "github.com/google/uuid"

type StatusSlice struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Color  string `json:"color"`
}

type ProviderSlice struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type TimelinePoint struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type TopEmployee struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	CertCount int64     `json:"cert_count"`
}

// DashboardResponse feeds the chart widgets. Admins get company-wide data,
// employees their own certificates only.
type DashboardResponse struct {
	TotalEmployees      int64                 `json:"total_employees"`
	TotalCertificates   int64                 `json:"total_certificates"`
	ActiveCertificates  int64                 `json:"active_certificates"`
	ExpiredCertificates int64                 `json:"expired_certificates"`
	ExpiringSoonCount   int64                 `json:"expiring_soon_count"`
	StatusDistribution  []StatusSlice         `json:"status_distribution"`
	TopProviders        []ProviderSlice       `json:"top_providers"`
	Timeline            []TimelinePoint       `json:"timeline"`
	TopEmployees        []TopEmployee         `json:"top_employees,omitempty"`
	RecentCertificates  []CertificateResponse `json:"recent_certificates"`
	ExpiringSoon        []CertificateResponse `json:"expiring_soon"`
}

type ProviderUpdateRequest struct {
	Name        *string `json:"name"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
	LogoPath    *string `json:"logo_path"`
	IsActive    *bool   `json:"is_active"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconClass   string `json:"icon_class"`
	Color       string `json:"color"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IconClass   *string `json:"icon_class"`
	Color       *string `json:"color"`
}
