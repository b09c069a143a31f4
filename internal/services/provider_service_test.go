package services

import (
	"errors"
	"testing"
	"time"

	"github.com/larenzzx/aetas-cert-tracker/internal/authz"
	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

func TestProviderDeleteRefusedWhileReferenced(t *testing.T) {
	db := newTestDB(t)
	svc := NewProviderService(db)
	owner := createTestUser(t, db, "owner@example.com", authz.RoleEmployee)
	category := createTestCategory(t, db, "Cloud")

	provider := models.CertificateProvider{Name: "AWS", IsActive: true}
	if err := db.Create(&provider).Error; err != nil {
		t.Fatalf("create provider: %v", err)
	}
	cert := models.Certificate{
		UserID:     owner.ID,
		ProviderID: provider.ID,
		CategoryID: category.ID,
		Name:       "Solutions Architect",
		IssueDate:  time.Now().UTC().AddDate(-1, 0, 0),
	}
	if err := db.Create(&cert).Error; err != nil {
		t.Fatalf("create certificate: %v", err)
	}

	if err := svc.Delete(provider.ID); !errors.Is(err, ErrProviderInUse) {
		t.Fatalf("expected ErrProviderInUse, got %v", err)
	}

	// Deactivation hides it without touching the certificate.
	if err := svc.Deactivate(provider.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	listed, err := svc.List(false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected deactivated provider hidden, got %d rows", len(listed))
	}

	// Once the certificate is gone the delete succeeds.
	if err := db.Delete(&cert).Error; err != nil {
		t.Fatalf("delete certificate: %v", err)
	}
	if err := svc.Delete(provider.ID); err != nil {
		t.Fatalf("delete provider: %v", err)
	}
}

func TestProviderRenameCollision(t *testing.T) {
	db := newTestDB(t)
	svc := NewProviderService(db)

	existing := models.CertificateProvider{Name: "Cisco", IsActive: true}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("create provider: %v", err)
	}
	other := models.CertificateProvider{Name: "Microsoft", IsActive: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create provider: %v", err)
	}

	name := "CISCO"
	_, err := svc.Update(other.ID, &dto.ProviderUpdateRequest{Name: &name})
	if !errors.Is(err, ErrProviderExists) {
		t.Fatalf("expected ErrProviderExists for a case-colliding rename, got %v", err)
	}
}

func TestCategoryDeleteRefusedWhileReferenced(t *testing.T) {
	db := newTestDB(t)
	svc := NewCategoryService(db)
	owner := createTestUser(t, db, "owner@example.com", authz.RoleEmployee)
	category := createTestCategory(t, db, "Cloud")

	provider := models.CertificateProvider{Name: "AWS", IsActive: true}
	if err := db.Create(&provider).Error; err != nil {
		t.Fatalf("create provider: %v", err)
	}
	cert := models.Certificate{
		UserID:     owner.ID,
		ProviderID: provider.ID,
		CategoryID: category.ID,
		Name:       "Solutions Architect",
		IssueDate:  time.Now().UTC().AddDate(-1, 0, 0),
	}
	if err := db.Create(&cert).Error; err != nil {
		t.Fatalf("create certificate: %v", err)
	}

	if err := svc.Delete(category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}

	if err := db.Delete(&cert).Error; err != nil {
		t.Fatalf("delete certificate: %v", err)
	}
	if err := svc.Delete(category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
}
