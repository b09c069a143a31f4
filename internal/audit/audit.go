// Package audit emits security-relevant events through slog. The logging
// layer persists records that carry the event attribute to the audit_logs
// table; everything else about actor/IP/timestamp metadata lives here so the
// core services stay pure.
package audit

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/larenzzx/aetas-cert-tracker/internal/logging"
	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

// Event names.
const (
	EventLoginSuccess     = "LOGIN_SUCCESS"
	EventLoginFailure     = "LOGIN_FAILURE"
	EventLogout           = "LOGOUT"
	EventPasswordChanged  = "PASSWORD_CHANGED"
	EventPermissionDenied = "PERMISSION_DENIED"
	EventRoleChangeDenied = "ROLE_CHANGE_DENIED"
	EventRoleChanged      = "ROLE_CHANGED"
	EventUserCreated      = "USER_CREATED"
	EventUserDeactivated  = "USER_DEACTIVATED"
	EventCertCreated      = "CERTIFICATE_CREATED"
	EventCertUpdated      = "CERTIFICATE_UPDATED"
	EventCertDeleted      = "CERTIFICATE_DELETED"
	EventCertRevoked      = "CERTIFICATE_REVOKED"
	EventCertsReconciled  = "CERTIFICATES_RECONCILED"
)

// ClientIP returns the requesting address, preferring the first
// X-Forwarded-For hop when the service sits behind a proxy.
func ClientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return c.IP()
}

func requestAttrs(c *fiber.Ctx) []any {
	return []any{
		slog.String("ip", ClientIP(c)),
		slog.String("user_agent", c.Get("User-Agent")),
	}
}

func actorAttrs(u *models.User) []any {
	return []any{
		slog.String("actor_id", u.ID.String()),
		slog.String("actor_email", u.Email),
	}
}

func LoginSuccess(c *fiber.Ctx, u *models.User) {
	attrs := append([]any{slog.String(logging.EventKey, EventLoginSuccess)}, actorAttrs(u)...)
	slog.Info("login succeeded", append(attrs, requestAttrs(c)...)...)
}

func LoginFailure(c *fiber.Ctx, email, reason string) {
	attrs := []any{
		slog.String(logging.EventKey, EventLoginFailure),
		slog.String("actor_email", models.NormalizeEmail(email)),
		slog.String("reason", reason),
	}
	slog.Warn("login failed", append(attrs, requestAttrs(c)...)...)
}

func Logout(c *fiber.Ctx, u *models.User) {
	attrs := append([]any{slog.String(logging.EventKey, EventLogout)}, actorAttrs(u)...)
	slog.Info("logout", append(attrs, requestAttrs(c)...)...)
}

func PasswordChanged(c *fiber.Ctx, u *models.User, forced bool) {
	attrs := append([]any{
		slog.String(logging.EventKey, EventPasswordChanged),
		slog.Bool("forced", forced),
	}, actorAttrs(u)...)
	slog.Info("password changed", append(attrs, requestAttrs(c)...)...)
}

// PermissionDenied records a failed ownership/admin check on a mutation.
func PermissionDenied(c *fiber.Ctx, u *models.User, action string, targetID uuid.UUID) {
	attrs := append([]any{
		slog.String(logging.EventKey, EventPermissionDenied),
		slog.String("action", action),
		slog.String("target_id", targetID.String()),
	}, actorAttrs(u)...)
	slog.Warn("permission denied", append(attrs, requestAttrs(c)...)...)
}

// RoleChangeDenied records a non-admin attempting to set a role value. The
// whole mutation is rejected; this event is what lets the trail distinguish
// it from an ordinary validation failure.
func RoleChangeDenied(c *fiber.Ctx, u *models.User, targetID uuid.UUID) {
	attrs := append([]any{
		slog.String(logging.EventKey, EventRoleChangeDenied),
		slog.String("target_id", targetID.String()),
	}, actorAttrs(u)...)
	slog.Warn("role change denied", append(attrs, requestAttrs(c)...)...)
}

func RoleChanged(c *fiber.Ctx, admin *models.User, target *models.User, oldRole string) {
	attrs := append([]any{
		slog.String(logging.EventKey, EventRoleChanged),
		slog.String("target_id", target.ID.String()),
		slog.String("old_role", oldRole),
		slog.String("new_role", target.Role),
	}, actorAttrs(admin)...)
	slog.Info("role changed", append(attrs, requestAttrs(c)...)...)
}

func UserCreated(c *fiber.Ctx, admin *models.User, created *models.User) {
	attrs := append([]any{
		slog.String(logging.EventKey, EventUserCreated),
		slog.String("target_id", created.ID.String()),
		slog.String("role", created.Role),
	}, actorAttrs(admin)...)
	slog.Info("user created", append(attrs, requestAttrs(c)...)...)
}

func UserDeactivated(c *fiber.Ctx, admin *models.User, targetID uuid.UUID) {
	attrs := append([]any{
		slog.String(logging.EventKey, EventUserDeactivated),
		slog.String("target_id", targetID.String()),
	}, actorAttrs(admin)...)
	slog.Info("user deactivated", append(attrs, requestAttrs(c)...)...)
}

func Certificate(c *fiber.Ctx, u *models.User, event string, certID uuid.UUID) {
	attrs := append([]any{
		slog.String(logging.EventKey, event),
		slog.String("target_id", certID.String()),
	}, actorAttrs(u)...)
	slog.Info("certificate "+strings.ToLower(strings.TrimPrefix(event, "CERTIFICATE_")), append(attrs, requestAttrs(c)...)...)
}

func CertificatesReconciled(u *models.User, updated int64) {
	attrs := []any{
		slog.String(logging.EventKey, EventCertsReconciled),
		slog.Int64("updated", updated),
	}
	if u != nil {
		attrs = append(attrs, actorAttrs(u)...)
	}
	slog.Info("certificates reconciled", attrs...)
}
