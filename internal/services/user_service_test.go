package services

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/larenzzx/aetas-cert-tracker/internal/authz"
	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

func TestCreateUserRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	employee := createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	_, _, err := svc.Create(employee.Principal(), &dto.CreateUserRequest{
		Email:     "new@example.com",
		FirstName: "New",
		LastName:  "Hire",
	})
	if !errors.Is(err, ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
}

func TestCreateUserIssuesTemporaryCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	admin := createTestUser(t, db, "admin@example.com", authz.RoleAdmin)

	user, tempPassword, err := svc.Create(admin.Principal(), &dto.CreateUserRequest{
		Email:      "New.Hire@Example.COM",
		FirstName:  "New",
		LastName:   "Hire",
		Department: "Engineering",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if user.Email != "new.hire@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if !user.MustChangePassword {
		t.Fatal("expected MustChangePassword to be set")
	}
	if user.Role != authz.RoleEmployee {
		t.Fatalf("expected default role EMPLOYEE, got %s", user.Role)
	}
	if user.IsStaff {
		t.Fatal("expected employee not to be staff")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tempPassword)); err != nil {
		t.Fatalf("temporary password does not match stored hash: %v", err)
	}
}

func TestCreateAdminDerivesStaffFlag(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	admin := createTestUser(t, db, "admin@example.com", authz.RoleAdmin)

	user, _, err := svc.Create(admin.Principal(), &dto.CreateUserRequest{
		Email:     "second.admin@example.com",
		FirstName: "Second",
		LastName:  "Admin",
		Role:      authz.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if !user.IsStaff {
		t.Fatal("expected admin account to carry the staff flag")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	admin := createTestUser(t, db, "admin@example.com", authz.RoleAdmin)
	createTestUser(t, db, "taken@example.com", authz.RoleEmployee)

	_, _, err := svc.Create(admin.Principal(), &dto.CreateUserRequest{
		Email:     "TAKEN@example.com",
		FirstName: "Some",
		LastName:  "Body",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateRoleByNonAdminRejectsWholeMutation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	employee := createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	role := authz.RoleAdmin
	department := "Sabotage"
	_, _, err := svc.Update(employee.Principal(), employee.ID, &dto.UpdateUserRequest{
		Department: &department,
		Role:       &role,
	})
	if !errors.Is(err, authz.ErrRoleChangeForbidden) {
		t.Fatalf("expected ErrRoleChangeForbidden, got %v", err)
	}

	// The denied role change must not leave the other fields saved.
	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", employee.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Department == department {
		t.Fatal("department was applied despite the rejected role change")
	}
	if reloaded.Role != authz.RoleEmployee {
		t.Fatalf("role escalated to %s", reloaded.Role)
	}
}

func TestUpdateOwnProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	employee := createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	position := "Senior Engineer"
	user, outcome, err := svc.Update(employee.Principal(), employee.ID, &dto.UpdateUserRequest{
		Position: &position,
	})
	if err != nil {
		t.Fatalf("update own profile: %v", err)
	}
	if user.Position != position {
		t.Fatalf("expected position %q, got %q", position, user.Position)
	}
	if outcome.Changed {
		t.Fatal("no role change expected")
	}
}

func TestUpdateOtherProfileForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	employee := createTestUser(t, db, "employee@example.com", authz.RoleEmployee)
	other := createTestUser(t, db, "other@example.com", authz.RoleEmployee)

	position := "Impostor"
	_, _, err := svc.Update(employee.Principal(), other.ID, &dto.UpdateUserRequest{
		Position: &position,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAdminRoleChangeReportsOutcome(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	admin := createTestUser(t, db, "admin@example.com", authz.RoleAdmin)
	employee := createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	role := authz.RoleAdmin
	user, outcome, err := svc.Update(admin.Principal(), employee.ID, &dto.UpdateUserRequest{
		Role: &role,
	})
	if err != nil {
		t.Fatalf("admin role change: %v", err)
	}
	if !outcome.Changed || outcome.OldRole != authz.RoleEmployee {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if user.Role != authz.RoleAdmin || !user.IsStaff {
		t.Fatalf("expected promoted staff admin, got role=%s staff=%v", user.Role, user.IsStaff)
	}
}

func TestDeactivateRevokesSessions(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	admin := createTestUser(t, db, "admin@example.com", authz.RoleAdmin)
	employee := createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	token := models.RefreshToken{
		UserID:    employee.ID,
		TokenHash: "deadbeef",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := db.Create(&token).Error; err != nil {
		t.Fatalf("seed refresh token: %v", err)
	}

	if err := svc.Deactivate(admin.Principal(), employee.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", employee.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("expected account to be inactive")
	}

	var reloadedToken models.RefreshToken
	if err := db.First(&reloadedToken, "id = ?", token.ID).Error; err != nil {
		t.Fatalf("reload token: %v", err)
	}
	if !reloadedToken.Revoked {
		t.Fatal("expected refresh token to be revoked")
	}
}

func TestDeactivateRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	employee := createTestUser(t, db, "employee@example.com", authz.RoleEmployee)
	other := createTestUser(t, db, "other@example.com", authz.RoleEmployee)

	if err := svc.Deactivate(employee.Principal(), other.ID); !errors.Is(err, ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
}

func TestEnsureBootstrapAdminIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	if err := svc.EnsureBootstrapAdmin("root@example.com", "bootstrap-pass"); err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	if err := svc.EnsureBootstrapAdmin("root@example.com", "bootstrap-pass"); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "root@example.com").Count(&count).Error; err != nil {
		t.Fatalf("count bootstrap admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 bootstrap admin, got %d", count)
	}

	var user models.User
	if err := db.First(&user, "email = ?", "root@example.com").Error; err != nil {
		t.Fatalf("load bootstrap admin: %v", err)
	}
	if !user.IsSuperuser || user.Role != authz.RoleAdmin {
		t.Fatalf("expected superuser admin, got role=%s superuser=%v", user.Role, user.IsSuperuser)
	}
}

func TestListAggregatesCertificateCounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	holder := createTestUser(t, db, "holder@example.com", authz.RoleEmployee)
	createTestUser(t, db, "empty@example.com", authz.RoleEmployee)

	category := createTestCategory(t, db, "Cloud")
	provider := models.CertificateProvider{Name: "AWS", IsActive: true}
	if err := db.Create(&provider).Error; err != nil {
		t.Fatalf("create provider: %v", err)
	}
	for _, status := range []string{models.CertStatusActive, models.CertStatusExpired} {
		cert := models.Certificate{
			UserID:     holder.ID,
			ProviderID: provider.ID,
			CategoryID: category.ID,
			Name:       "Cert " + status,
			IssueDate:  time.Now().UTC().AddDate(-1, 0, 0),
			Status:     status,
		}
		if err := db.Create(&cert).Error; err != nil {
			t.Fatalf("seed certificate: %v", err)
		}
	}

	resp, err := svc.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.TotalEmployees != 2 || resp.WithCerts != 1 {
		t.Fatalf("unexpected totals: %+v", resp)
	}

	for _, e := range resp.Employees {
		switch e.Email {
		case "holder@example.com":
			if e.TotalCerts != 2 || e.ActiveCerts != 1 || e.ExpiredCerts != 1 {
				t.Fatalf("unexpected holder counts: %+v", e)
			}
		case "empty@example.com":
			if e.TotalCerts != 0 || e.ActiveCerts != 0 || e.ExpiredCerts != 0 {
				t.Fatalf("expected zero counts for empty user, got %+v", e)
			}
		}
	}
}
