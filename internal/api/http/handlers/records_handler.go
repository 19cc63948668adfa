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

// RecordsHandler exposes the record vault. The vault enforces the single
// writer gate and subject validation itself; reads are open by design, with
// read policy belonging to the consent checks in front.
type RecordsHandler struct {
	vault *service.VaultService
}

// NewRecordsHandler constructs handler.
func NewRecordsHandler(vault *service.VaultService) *RecordsHandler {
	return &RecordsHandler{vault: vault}
}

// Create POST /records.
func (h *RecordsHandler) Create(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.vault.AddRecord(c.Context(), actorID, req.AuthorID, req.SubjectID, req.Diagnosis, req.Treatment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": recordResponse(record)})
}

// Update PATCH /records/:id.
func (h *RecordsHandler) Update(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseRecordID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.vault.UpdateRecord(c.Context(), actorID, id, req.Diagnosis, req.Treatment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recordResponse(record)})
}

// Archive POST /records/:id/archive.
func (h *RecordsHandler) Archive(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseRecordID(c)
	if err != nil {
		return err
	}
	if err := h.vault.Archive(c.Context(), actorID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get GET /records/:id.
func (h *RecordsHandler) Get(c *fiber.Ctx) error {
	id, err := parseRecordID(c)
	if err != nil {
		return err
	}
	record, err := h.vault.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recordResponse(record)})
}

// ListBySubject GET /records?subject=.
func (h *RecordsHandler) ListBySubject(c *fiber.Ctx) error {
	subjectID := c.Query("subject")
	if subjectID == "" {
		return apperrors.NewValidationError("subject query parameter required", nil)
	}
	records, err := h.vault.ListBySubject(c.Context(), subjectID)
	if err != nil {
		return err
	}
	items := make([]dto.RecordResponse, 0, len(records))
	for i := range records {
		items = append(items, recordResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseRecordID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid record id", nil)
	}
	return id, nil
}

func recordResponse(record *domain.Record) dto.RecordResponse {
	return dto.RecordResponse{
		ID:        record.ID,
		AuthorID:  record.AuthorID,
		SubjectID: record.SubjectID,
		Diagnosis: record.Diagnosis,
		Treatment: record.Treatment,
		CreatedAt: record.CreatedAt,
		Active:    record.Active,
	}
}
