package routes

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/larenzzx/aetas-cert-tracker/internal/config"
	"github.com/larenzzx/aetas-cert-tracker/internal/handlers"
	"github.com/larenzzx/aetas-cert-tracker/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	certHandler *handlers.CertificateHandler,
	providerHandler *handlers.ProviderHandler,
	categoryHandler *handlers.CategoryHandler,
	dashboardHandler *handlers.DashboardHandler,
	auditHandler *handlers.AuditHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limit against credential stuffing.
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Everything below requires a valid token and a live account.
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.LoadAccount(db))

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Post(strings.TrimPrefix(middleware.PasswordChangePath, "/api"), authHandler.ChangePassword)
	protected.Get("/auth/me", authHandler.Me)

	protected.Get("/users", userHandler.List)
	protected.Get("/users/:id", userHandler.Get)
	protected.Put("/users/:id", userHandler.Update)
	protected.Get("/users/:id/certificates", certHandler.ListByUser)

	protected.Post("/certificates", certHandler.Create)
	protected.Get("/certificates/mine", certHandler.Mine)
	protected.Get("/certificates/overview", certHandler.EmployeeOverview)
	protected.Get("/certificates/:id", certHandler.Get)
	protected.Put("/certificates/:id", certHandler.Update)
	protected.Delete("/certificates/:id", certHandler.Delete)
	protected.Post("/certificates/:id/revoke", certHandler.Revoke)

	protected.Get("/providers", providerHandler.List)
	protected.Get("/categories", categoryHandler.List)
	protected.Get("/dashboard", dashboardHandler.Overview)

	// Admin panel
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.LoadAccount(db), middleware.AdminRequired())
	admin.Post("/users", userHandler.Create)
	admin.Delete("/users/:id", userHandler.Deactivate)

	admin.Put("/providers/:id", providerHandler.Update)
	admin.Post("/providers/:id/deactivate", providerHandler.Deactivate)
	admin.Delete("/providers/:id", providerHandler.Delete)

	admin.Post("/categories", categoryHandler.Create)
	admin.Put("/categories/:id", categoryHandler.Update)
	admin.Delete("/categories/:id", categoryHandler.Delete)

	admin.Post("/certificates/reconcile", certHandler.Reconcile)
	admin.Get("/audit-logs", auditHandler.List)
}
