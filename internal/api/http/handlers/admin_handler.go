package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/health-records-service/internal/api/dto"
	"github.com/spec-kit/health-records-service/internal/auth"
	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/service"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

// AdminHandler exposes the role authority, the vault writer slot, credential
// registration and the audit log. Every operation re-checks the admin role
// inside the services; the handler only identifies the caller.
type AdminHandler struct {
	authority *service.AuthorityService
	vault     *service.VaultService
	authSvc   *service.AuthService
	audit     *service.AuditService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authority *service.AuthorityService, vault *service.VaultService, authSvc *service.AuthService, audit *service.AuditService) *AdminHandler {
	return &AdminHandler{authority: authority, vault: vault, authSvc: authSvc, audit: audit}
}

// GrantRole POST /admin/roles/grant.
func (h *AdminHandler) GrantRole(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RoleChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.authority.Grant(c.Context(), actorID, req.PrincipalID, domain.Role(req.Role)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RevokeRole POST /admin/roles/revoke.
func (h *AdminHandler) RevokeRole(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RoleChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.authority.Revoke(c.Context(), actorID, req.PrincipalID, domain.Role(req.Role)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetActive PUT /admin/principals/:id/active.
func (h *AdminHandler) SetActive(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.authority.SetActive(c.Context(), actorID, c.Params("id"), req.Active); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListPrincipals GET /admin/principals.
func (h *AdminHandler) ListPrincipals(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	views, err := h.authority.ListPrincipals(c.Context(), actorID)
	if err != nil {
		return err
	}
	items := make([]dto.PrincipalResponse, 0, len(views))
	for _, view := range views {
		item := dto.PrincipalResponse{
			ID:        view.Principal.ID,
			Active:    view.Principal.Active,
			CreatedAt: view.Principal.CreatedAt,
		}
		for _, role := range view.Roles {
			item.Roles = append(item.Roles, string(role))
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetWriter PUT /admin/vault/writer.
func (h *AdminHandler) SetWriter(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SetWriterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.vault.SetAuthorizedWriter(c.Context(), actorID, req.PrincipalID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RegisterCredential POST /admin/credentials.
func (h *AdminHandler) RegisterCredential(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RegisterCredentialRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.authSvc.RegisterCredential(c.Context(), actorID, req.PrincipalID, req.Password); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListAudit GET /admin/audit.
func (h *AdminHandler) ListAudit(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	entries, err := h.audit.ListEntries(c.Context(), actorID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:         entry.ID,
			EventType:  entry.EventType,
			EntityID:   entry.EntityID,
			ActorID:    entry.ActorID,
			OccurredAt: entry.OccurredAt,
			Details:    entry.Details,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
