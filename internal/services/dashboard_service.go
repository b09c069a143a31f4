package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"gorm.io/gorm"

	"github.com/larenzzx/aetas-cert-tracker/internal/authz"
	"github.com/larenzzx/aetas-cert-tracker/internal/config"
	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/lifecycle"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

// statusColors are the chart colors for the status doughnut.
var statusColors = map[string]string{
	models.CertStatusActive:  "#10b981",
	models.CertStatusExpired: "#ef4444",
	models.CertStatusRevoked: "#6b7280",
}

type DashboardService struct {
	db    *gorm.DB
	certs *CertificateService
}

func NewDashboardService(db *gorm.DB, cfg *config.Config) *DashboardService {
	return &DashboardService{db: db, certs: NewCertificateService(db, cfg)}
}

// Overview aggregates everything the dashboard renders. Admins see
// company-wide data; employees see only their own certificates.
func (s *DashboardService) Overview(actor authz.Principal) (*dto.DashboardResponse, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		if actor.IsAdmin() {
			return q
		}
		return q.Where("certificates.user_id = ?", actor.ID)
	}

	var certs []models.Certificate
	if err := scope(s.db.Preload("User").Preload("Provider").Preload("Category")).
		Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("failed to load certificates: %w", err)
	}

	today := time.Now().UTC()
	resp := &dto.DashboardResponse{
		TotalCertificates: int64(len(certs)),
	}

	if err := s.db.Model(&models.User{}).Where("is_active = ?", true).
		Count(&resp.TotalEmployees).Error; err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	statusCounts := map[string]int64{}
	providerCounts := map[string]int64{}
	var expiring []models.Certificate

	for i := range certs {
		cert := &certs[i]
		statusCounts[cert.Status]++
		providerCounts[cert.Provider.Name]++

		switch cert.Status {
		case models.CertStatusActive:
			resp.ActiveCertificates++
			if lifecycle.IsExpiringSoon(cert, today, s.certs.expiryThreshold()) {
				resp.ExpiringSoonCount++
				expiring = append(expiring, *cert)
			}
		case models.CertStatusExpired:
			resp.ExpiredCertificates++
		}
	}

	for _, status := range []string{models.CertStatusActive, models.CertStatusExpired, models.CertStatusRevoked} {
		if statusCounts[status] > 0 {
			resp.StatusDistribution = append(resp.StatusDistribution, dto.StatusSlice{
				Status: status,
				Count:  statusCounts[status],
				Color:  statusColors[status],
			})
		}
	}

	resp.TopProviders = topProviders(providerCounts, 10)
	resp.Timeline = issuanceTimeline(certs, today)

	// Soonest-expiring first, capped for the widget.
	sortByExpiry(expiring)
	if len(expiring) > 5 {
		expiring = expiring[:5]
	}
	resp.ExpiringSoon = s.certs.toResponses(expiring, today)

	// Sort a copy so the loaded slice keeps its query order.
	recent := make([]models.Certificate, len(certs))
	copy(recent, certs)
	sortByIssueDesc(recent)
	if len(recent) > 5 {
		recent = recent[:5]
	}
	resp.RecentCertificates = s.certs.toResponses(recent, today)

	if actor.IsAdmin() {
		top, err := s.topEmployees(5)
		if err != nil {
			return nil, err
		}
		resp.TopEmployees = top
	}

	return resp, nil
}

func (s *DashboardService) topEmployees(limit int) ([]dto.TopEmployee, error) {
	var rows []struct {
		ID        uuid.UUID
		FirstName string
		LastName  string
		CertCount int64
	}
	err := s.db.Model(&models.User{}).
		Select("users.id, users.first_name, users.last_name, COUNT(certificates.id) AS cert_count").
		Joins("JOIN certificates ON certificates.user_id = users.id").
		Where("users.is_active = ?", true).
		Group("users.id, users.first_name, users.last_name").
		Order("cert_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank employees: %w", err)
	}

	top := make([]dto.TopEmployee, 0, len(rows))
	for _, r := range rows {
		top = append(top, dto.TopEmployee{
			ID:        r.ID,
			FullName:  r.FirstName + " " + r.LastName,
			CertCount: r.CertCount,
		})
	}
	return top, nil
}

// issuanceTimeline buckets certificates issued in the last twelve months,
// zero-filling empty months so the chart axis stays continuous.
func issuanceTimeline(certs []models.Certificate, today time.Time) []dto.TimelinePoint {
	counts := map[string]int64{}
	start := today.AddDate(-1, 0, 0)

	for i := range certs {
		if certs[i].IssueDate.Before(start) {
			continue
		}
		counts[certs[i].IssueDate.Format("2006-01")]++
	}

	var points []dto.TimelinePoint
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		points = append(points, dto.TimelinePoint{
			Month: cursor.Format("Jan 2006"),
			Count: counts[cursor.Format("2006-01")],
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return points
}

func topProviders(counts map[string]int64, limit int) []dto.ProviderSlice {
	out := make([]dto.ProviderSlice, 0, len(counts))
	for name, count := range counts {
		if name == "" {
			continue
		}
		out = append(out, dto.ProviderSlice{Name: name, Count: count})
	}
	// Highest count first, name as tiebreaker for stable output.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortByExpiry(certs []models.Certificate) {
	sort.Slice(certs, func(i, j int) bool {
		a, b := certs[i].ExpiryDate, certs[j].ExpiryDate
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.Before(*b)
	})
}

func sortByIssueDesc(certs []models.Certificate) {
	sort.Slice(certs, func(i, j int) bool {
		return certs[i].IssueDate.After(certs[j].IssueDate)
	})
}
