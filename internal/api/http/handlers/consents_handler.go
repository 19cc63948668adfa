package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/health-records-service/internal/api/dto"
	"github.com/spec-kit/health-records-service/internal/auth"
	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/service"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

// ConsentsHandler exposes the consent ledger. Grant and revoke always act on
// behalf of the authenticated caller: consent is subject-to-delegate and
// only the subject can move it.
type ConsentsHandler struct {
	consents *service.ConsentService
}

// NewConsentsHandler constructs handler.
func NewConsentsHandler(consents *service.ConsentService) *ConsentsHandler {
	return &ConsentsHandler{consents: consents}
}

// Give POST /consents.
func (h *ConsentsHandler) Give(c *fiber.Ctx) error {
	subjectID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.GiveConsentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	grant, err := h.consents.GiveConsent(c.Context(), subjectID, req.DelegateID, req.DurationDays)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": consentResponse(grant)})
}

// Revoke DELETE /consents/:delegate.
func (h *ConsentsHandler) Revoke(c *fiber.Ctx) error {
	subjectID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.consents.RevokeConsent(c.Context(), subjectID, c.Params("delegate")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Check GET /consents/check?subject=&delegate=.
func (h *ConsentsHandler) Check(c *fiber.Ctx) error {
	subjectID := c.Query("subject")
	delegateID := c.Query("delegate")
	if subjectID == "" || delegateID == "" {
		return apperrors.NewValidationError("subject and delegate query parameters required", nil)
	}
	permitted, err := h.consents.CheckConsent(c.Context(), subjectID, delegateID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ConsentCheckResponse{
		SubjectID:  subjectID,
		DelegateID: delegateID,
		Permitted:  permitted,
	}})
}

// ListOwn GET /consents.
func (h *ConsentsHandler) ListOwn(c *fiber.Ctx) error {
	subjectID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	grants, err := h.consents.ListForSubject(c.Context(), subjectID)
	if err != nil {
		return err
	}
	items := make([]dto.ConsentResponse, 0, len(grants))
	for i := range grants {
		items = append(items, consentResponse(&grants[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func consentResponse(grant *domain.ConsentGrant) dto.ConsentResponse {
	return dto.ConsentResponse{
		SubjectID:  grant.SubjectID,
		DelegateID: grant.DelegateID,
		ExpiresAt:  grant.ExpiresAt,
		Active:     grant.Active,
		GrantedAt:  grant.GrantedAt,
	}
}
