package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/middleware"
	"github.com/larenzzx/aetas-cert-tracker/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	resp, err := h.dashboardService.Overview(actor.Principal())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(resp)
}
