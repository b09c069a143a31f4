package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
	"github.com/larenzzx/aetas-cert-tracker/internal/services"
)

const (
	// AccountKey is the fiber.Ctx locals key holding the loaded *models.User.
	AccountKey = "account"
	// ScopeKey holds the token scope claim, if any.
	ScopeKey = "token_scope"
	// PasswordChangePath is the only route a password-change-scoped token
	// may reach. Route registration derives from it so the two never drift.
	PasswordChangePath = "/api/auth/password"
)

// LoadAccount resolves the JWT subject to a user row and stores it in locals.
// Deactivated accounts are rejected even if their token has not expired yet,
// and tokens scoped to the password-change flow cannot reach anything else.
func LoadAccount(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return unauthorized(c, "Unauthorized")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, "Invalid claims")
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return unauthorized(c, "Invalid claims")
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return unauthorized(c, "Unauthorized")
		}
		if !user.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Account is deactivated",
			})
		}

		scope, _ := claims["scope"].(string)
		if scope == services.ScopePasswordChange && c.Path() != PasswordChangePath {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Password change required",
			})
		}

		c.Locals(AccountKey, &user)
		c.Locals(ScopeKey, scope)
		return c.Next()
	}
}

// Account returns the user loaded by LoadAccount, or nil outside it.
func Account(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(AccountKey).(*models.User)
	return user
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}
