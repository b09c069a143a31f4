package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
)

// AdminRequired rejects non-admin accounts. Must run after LoadAccount.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := Account(c)
		if user == nil {
			return unauthorized(c, "Unauthorized")
		}
		if !user.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}
		return c.Next()
	}
}
