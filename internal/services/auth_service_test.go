package services

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/larenzzx/aetas-cert-tracker/internal/authz"
	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

const testPassword = "correct-horse1!"

func parseClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	return claims
}

func TestLoginSuccess(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg)
	user := createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	resp, err := svc.Login(&dto.LoginRequest{Email: "Employee@Example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
	if resp.PasswordChangeRequired {
		t.Fatal("no password change expected")
	}

	claims := parseClaims(t, resp.AccessToken, cfg.JWTSecret)
	if claims["sub"] != user.ID.String() {
		t.Fatalf("expected sub %s, got %v", user.ID, claims["sub"])
	}
	if claims["role"] != authz.RoleEmployee {
		t.Fatalf("expected role claim EMPLOYEE, got %v", claims["role"])
	}
	if _, present := claims["scope"]; present {
		t.Fatal("ordinary login must not carry a scope claim")
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.LastLoginAt == nil {
		t.Fatal("expected last login timestamp to be recorded")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	_, err := svc.Login(&dto.LoginRequest{Email: "employee@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Login(&dto.LoginRequest{Email: "ghost@example.com", Password: testPassword})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	user := createTestUser(t, db, "gone@example.com", authz.RoleEmployee)
	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	_, err := svc.Login(&dto.LoginRequest{Email: "gone@example.com", Password: testPassword})
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestLoginWithTemporaryPasswordScopesToken(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg)
	user := createTestUser(t, db, "fresh@example.com", authz.RoleEmployee)
	if err := db.Model(user).Update("must_change_password", true).Error; err != nil {
		t.Fatalf("flag user: %v", err)
	}

	resp, err := svc.Login(&dto.LoginRequest{Email: "fresh@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !resp.PasswordChangeRequired {
		t.Fatal("expected PasswordChangeRequired")
	}
	if resp.RefreshToken != "" {
		t.Fatal("no refresh token is issued before the forced password change")
	}

	claims := parseClaims(t, resp.AccessToken, cfg.JWTSecret)
	if claims["scope"] != ScopePasswordChange {
		t.Fatalf("expected password-change scope, got %v", claims["scope"])
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	login, err := svc.Login(&dto.LoginRequest{Email: "employee@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == "" || refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// The surrendered token is dead.
	if _, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: login.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for the rotated-out token, got %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	login, err := svc.Login(&dto.LoginRequest{Email: "employee@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(&dto.LogoutRequest{RefreshToken: login.RefreshToken}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: login.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestChangePasswordClearsFlagAndRevokesSessions(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	user := createTestUser(t, db, "fresh@example.com", authz.RoleEmployee)
	if err := db.Model(user).Update("must_change_password", true).Error; err != nil {
		t.Fatalf("flag user: %v", err)
	}

	login, err := svc.Login(&dto.LoginRequest{Email: "fresh@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.RefreshToken != "" {
		t.Fatal("precondition: scoped login must not hand out a refresh token")
	}

	err = svc.ChangePassword(user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "brand-new-secret9",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.MustChangePassword {
		t.Fatal("expected MustChangePassword to be cleared")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reloaded.PasswordHash), []byte("brand-new-secret9")); err != nil {
		t.Fatalf("new password does not verify: %v", err)
	}

	// The next login issues a full pair.
	full, err := svc.Login(&dto.LoginRequest{Email: "fresh@example.com", Password: "brand-new-secret9"})
	if err != nil {
		t.Fatalf("login after change: %v", err)
	}
	if full.RefreshToken == "" || full.PasswordChangeRequired {
		t.Fatal("expected an ordinary login after the password change")
	}
}

func TestChangePasswordValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	user := createTestUser(t, db, "employee@example.com", authz.RoleEmployee)

	tests := []struct {
		name    string
		current string
		next    string
		wantErr error
	}{
		{"wrong current password", "nope", "another-secret9", ErrInvalidCredentials},
		{"too short", testPassword, "short", ErrPasswordTooShort},
		{"unchanged", testPassword, testPassword, ErrPasswordUnchanged},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ChangePassword(user.ID, &dto.ChangePasswordRequest{
				CurrentPassword: tc.current,
				NewPassword:     tc.next,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
