package middleware

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/larenzzx/aetas-cert-tracker/internal/authz"
	"github.com/larenzzx/aetas-cert-tracker/internal/config"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
	"github.com/larenzzx/aetas-cert-tracker/internal/services"
)

func newTestApp(t *testing.T) (*fiber.App, *models.User, *config.Config) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "certs.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	user := models.User{
		Email:        "employee@example.com",
		PasswordHash: "irrelevant",
		FirstName:    "Test",
		LastName:     "User",
		Role:         authz.RoleEmployee,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}

	cfg := &config.Config{JWTSecret: "test-secret", JWTAccessExpiry: 15 * time.Minute}

	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app := fiber.New()
	api := app.Group("/api", JWTProtected(cfg), LoadAccount(db))
	api.Post(strings.TrimPrefix(PasswordChangePath, "/api"), ok)
	api.Get("/auth/me", ok)

	return app, &user, cfg
}

func signToken(t *testing.T, cfg *config.Config, user *models.User, scope string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(cfg.JWTAccessExpiry).Unix(),
	}
	if scope != "" {
		claims["scope"] = scope
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestScopedTokenConfinedToPasswordChange(t *testing.T) {
	app, user, cfg := newTestApp(t)
	scoped := signToken(t, cfg, user, services.ScopePasswordChange)

	req := httptest.NewRequest(fiber.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+scoped)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("scoped token off the password route: status = %d, want %d", resp.StatusCode, fiber.StatusForbidden)
	}

	req = httptest.NewRequest(fiber.MethodPost, PasswordChangePath, nil)
	req.Header.Set("Authorization", "Bearer "+scoped)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("scoped token on the password route: status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestUnscopedTokenUnrestricted(t *testing.T) {
	app, user, cfg := newTestApp(t)
	token := signToken(t, cfg, user, "")

	req := httptest.NewRequest(fiber.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}
