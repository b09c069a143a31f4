package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/larenzzx/aetas-cert-tracker/internal/audit"
	"github.com/larenzzx/aetas-cert-tracker/internal/dto"
	"github.com/larenzzx/aetas-cert-tracker/internal/middleware"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
	"github.com/larenzzx/aetas-cert-tracker/internal/services"
)

type CertificateHandler struct {
	certService *services.CertificateService
}

func NewCertificateHandler(certService *services.CertificateService) *CertificateHandler {
	return &CertificateHandler{certService: certService}
}

func (h *CertificateHandler) Create(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	var req dto.CreateCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	cert, err := h.certService.Create(actor.Principal(), &req)
	if err != nil {
		return certError(c, actor, "certificate.create", uuid.Nil, err)
	}

	audit.Certificate(c, actor, audit.EventCertCreated, cert.ID)

	resp, err := h.certService.Response(cert)
	if err != nil {
		return certError(c, actor, "certificate.create", cert.ID, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CertificateHandler) Get(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid certificate id",
		})
	}

	resp, err := h.certService.Get(actor.Principal(), id)
	if err != nil {
		return certError(c, actor, "certificate.get", id, err)
	}
	return c.JSON(resp)
}

func (h *CertificateHandler) Update(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid certificate id",
		})
	}

	var req dto.UpdateCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	cert, err := h.certService.Update(actor.Principal(), id, &req)
	if err != nil {
		return certError(c, actor, "certificate.update", id, err)
	}

	audit.Certificate(c, actor, audit.EventCertUpdated, cert.ID)

	resp, err := h.certService.Response(cert)
	if err != nil {
		return certError(c, actor, "certificate.update", cert.ID, err)
	}
	return c.JSON(resp)
}

func (h *CertificateHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid certificate id",
		})
	}

	if err := h.certService.Delete(actor.Principal(), id); err != nil {
		return certError(c, actor, "certificate.delete", id, err)
	}

	audit.Certificate(c, actor, audit.EventCertDeleted, id)
	return c.JSON(dto.MessageResponse{Message: "Certificate deleted"})
}

// Revoke is the only path that moves a certificate to REVOKED. The state is
// terminal; repeating the call is a no-op.
func (h *CertificateHandler) Revoke(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid certificate id",
		})
	}

	cert, err := h.certService.Revoke(actor.Principal(), id)
	if err != nil {
		return certError(c, actor, "certificate.revoke", id, err)
	}

	audit.Certificate(c, actor, audit.EventCertRevoked, cert.ID)
	return c.JSON(dto.MessageResponse{Message: "Certificate revoked"})
}

// Mine lists the authenticated account's own certificates.
func (h *CertificateHandler) Mine(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	resp, err := h.certService.ListByUser(actor.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(resp)
}

func (h *CertificateHandler) ListByUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	resp, err := h.certService.ListByUser(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(resp)
}

func (h *CertificateHandler) EmployeeOverview(c *fiber.Ctx) error {
	resp, err := h.certService.EmployeeOverview(c.Query("search"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(resp)
}

// Reconcile flips every ACTIVE certificate whose expiry has passed to
// EXPIRED. Admin only; the daily sweep does the same thing unattended.
func (h *CertificateHandler) Reconcile(c *fiber.Ctx) error {
	actor := middleware.Account(c)

	updated, err := h.certService.ReconcileAll(time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	audit.CertificatesReconciled(actor, updated)
	return c.JSON(dto.ReconcileResponse{Updated: updated})
}

func certError(c *fiber.Ctx, actor *models.User, action string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		audit.PermissionDenied(c, actor, action, id)
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrCertificateNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrCertificateRevoked):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrProviderRequired),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrIssueDateInFuture),
		errors.Is(err, services.ErrExpiryBeforeIssue),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
