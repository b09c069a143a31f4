package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/larenzzx/aetas-cert-tracker/internal/audit"
	"github.com/larenzzx/aetas-cert-tracker/internal/authz"
	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/middleware"
	"github.com/larenzzx/aetas-cert-tracker/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create provisions an employee account with a generated temporary password.
// Admin only; the password is returned once and never stored in plain form.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, tempPassword, err := h.userService.Create(actor.Principal(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAdminOnly):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	audit.UserCreated(c, actor, user)
	return c.Status(fiber.StatusCreated).JSON(dto.CreateUserResponse{
		User:              services.UserToResponse(user),
		TemporaryPassword: tempPassword,
	})
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	resp, err := h.userService.List(c.Query("search"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(resp)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	user, err := h.userService.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found",
		})
	}
	return c.JSON(services.UserToResponse(user))
}

// Update applies profile changes. A role value from a non-admin rejects the
// whole mutation, including any other fields sent alongside it.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, roleChange, err := h.userService.Update(actor.Principal(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, authz.ErrRoleChangeForbidden):
			audit.RoleChangeDenied(c, actor, id)
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrForbidden):
			audit.PermissionDenied(c, actor, "user.update", id)
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	if roleChange.Changed {
		audit.RoleChanged(c, actor, user, roleChange.OldRole)
	}
	return c.JSON(services.UserToResponse(user))
}

// Deactivate soft-deletes an account and revokes its refresh tokens.
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	if err := h.userService.Deactivate(actor.Principal(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrAdminOnly), errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	audit.UserDeactivated(c, actor, id)
	return c.JSON(dto.MessageResponse{Message: "User deactivated"})
}
